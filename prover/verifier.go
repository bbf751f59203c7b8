package prover

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-rapidsnark/verifier"

	"github.com/vocdoni/anonvote/types"
)

// VerifierArgs is the proof in the exact calling shape of the external
// verifier contract: the three groth16 proof points and the two public
// signals, every value encoded as canonical even-length zero-padded
// big-endian hex.
type VerifierArgs struct {
	ProofA        [2]string    `json:"proofA"`
	ProofB        [2][2]string `json:"proofB"`
	ProofC        [2]string    `json:"proofC"`
	PublicSignals [2]string    `json:"publicSignals"`
}

// hexArg converts a decimal field element string to the canonical hex
// encoding of the verifier contract.
func hexArg(decimal string) (string, error) {
	v, ok := new(big.Int).SetString(decimal, 10)
	if !ok || v.Sign() < 0 {
		return "", fmt.Errorf("%w: not a decimal value: %q", ErrInvalidPublicSignals, decimal)
	}
	h := v.Text(16)
	if len(h)%2 != 0 {
		h = "0" + h
	}
	return "0x" + h, nil
}

// PackageForVerifier converts a generated proof into verifier contract
// arguments. The proof point shapes and the public signal count are
// validated here: a reordered or miscounted signal list would not crash the
// verifier, it would silently fail verification.
func PackageForVerifier(proof *Proof) (*VerifierArgs, error) {
	if proof == nil || proof.ZKProof == nil || proof.ZKProof.Proof == nil {
		return nil, fmt.Errorf("%w: empty proof", ErrInvalidPublicSignals)
	}
	data := proof.ZKProof.Proof
	// circom proof points carry a trailing projective coordinate
	if len(data.A) < 2 || len(data.C) < 2 {
		return nil, fmt.Errorf("%w: proof points A/C of %d/%d elements",
			ErrInvalidPublicSignals, len(data.A), len(data.C))
	}
	if len(data.B) < 2 || len(data.B[0]) < 2 || len(data.B[1]) < 2 {
		return nil, fmt.Errorf("%w: malformed proof point B", ErrInvalidPublicSignals)
	}
	if len(proof.ZKProof.PubSignals) != 2 {
		return nil, fmt.Errorf("%w: got %d signals, want 2",
			ErrInvalidPublicSignals, len(proof.ZKProof.PubSignals))
	}

	args := &VerifierArgs{}
	var err error
	for i := 0; i < 2; i++ {
		if args.ProofA[i], err = hexArg(data.A[i]); err != nil {
			return nil, err
		}
		if args.ProofC[i], err = hexArg(data.C[i]); err != nil {
			return nil, err
		}
		// the B point swaps the inner pair order between the prover output
		// and the contract calling convention
		if args.ProofB[i][0], err = hexArg(data.B[i][1]); err != nil {
			return nil, err
		}
		if args.ProofB[i][1], err = hexArg(data.B[i][0]); err != nil {
			return nil, err
		}
		if args.PublicSignals[i], err = hexArg(proof.ZKProof.PubSignals[i]); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// Verify checks the proof against the loaded verification key. It also
// re-validates that the proof's public signals match its decoded nullifier
// hash and root.
func (p *Prover) Verify(proof *Proof) error {
	if len(p.vkey) == 0 {
		return ErrProverUnavailable
	}
	if proof == nil || proof.ZKProof == nil {
		return fmt.Errorf("%w: empty proof", ErrInvalidPublicSignals)
	}
	if len(proof.ZKProof.PubSignals) != 2 {
		return fmt.Errorf("%w: got %d signals, want 2",
			ErrInvalidPublicSignals, len(proof.ZKProof.PubSignals))
	}
	nh, err := types.ParseFieldElement(proof.ZKProof.PubSignals[0])
	if err != nil {
		return fmt.Errorf("%w: nullifier hash: %v", ErrInvalidPublicSignals, err)
	}
	root, err := types.ParseFieldElement(proof.ZKProof.PubSignals[1])
	if err != nil {
		return fmt.Errorf("%w: root: %v", ErrInvalidPublicSignals, err)
	}
	if !nh.Equal(proof.NullifierHash) || !root.Equal(proof.Root) {
		return fmt.Errorf("%w: decoded signals diverge from proof", ErrInvalidPublicSignals)
	}
	return verifier.VerifyGroth16(*proof.ZKProof, p.vkey)
}
