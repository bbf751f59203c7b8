package prover

import (
	"fmt"

	"github.com/vocdoni/circom2gnark/parser"
)

// ToRecursionProof converts a generated circom proof into a gnark recursion
// proof, the form a gnark outer circuit can verify in-circuit. The
// conversion consumes the raw prover output and the circuit verification
// key loaded into the Prover.
func (p *Prover) ToRecursionProof(proof *Proof) (*parser.GnarkRecursionProof, error) {
	if len(p.vkey) == 0 {
		return nil, ErrProverUnavailable
	}
	if proof == nil || proof.rawProof == "" {
		return nil, fmt.Errorf("%w: proof without raw prover output", ErrInvalidPublicSignals)
	}
	proofData, err := parser.UnmarshalCircomProofJSON([]byte(proof.rawProof))
	if err != nil {
		return nil, fmt.Errorf("unmarshal circom proof: %w", err)
	}
	signalsData, err := parser.UnmarshalCircomPublicSignalsJSON([]byte(proof.rawSignals))
	if err != nil {
		return nil, fmt.Errorf("unmarshal public signals: %w", err)
	}
	vkeyData, err := parser.UnmarshalCircomVerificationKeyJSON(p.vkey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal verification key: %w", err)
	}
	return parser.ConvertCircomToGnarkRecursion(vkeyData, proofData, signalsData, true)
}

// RecursionPlaceholder builds the compile-time placeholders for verifying a
// membership proof inside an outer gnark circuit.
func (p *Prover) RecursionPlaceholder() (*parser.GnarkRecursionPlaceholders, error) {
	if len(p.vkey) == 0 {
		return nil, ErrProverUnavailable
	}
	vkeyData, err := parser.UnmarshalCircomVerificationKeyJSON(p.vkey)
	if err != nil {
		return nil, fmt.Errorf("unmarshal verification key: %w", err)
	}
	return parser.PlaceholdersForRecursion(vkeyData, 2, true)
}
