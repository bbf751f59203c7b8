package prover

import (
	"github.com/vocdoni/anonvote/config"
	"github.com/vocdoni/anonvote/types"
)

// MembershipArtifacts contains the published artifacts of the membership
// circuit: the witness calculator, the proving key and the verification key,
// each pinned to the hash of its released content.
var MembershipArtifacts = NewCircuitArtifacts(
	&Artifact{
		RemoteURL: config.MembershipCircuitURL,
		Hash:      types.HexStringToHexBytes(config.MembershipCircuitHash),
	},
	&Artifact{
		RemoteURL: config.MembershipProvingKeyURL,
		Hash:      types.HexStringToHexBytes(config.MembershipProvingKeyHash),
	},
	&Artifact{
		RemoteURL: config.MembershipVerificationKeyURL,
		Hash:      types.HexStringToHexBytes(config.MembershipVerificationKeyHash),
	})
