// Package prover bridges the registry to the external circom prover and
// verifier: it packages witness inputs for the membership circuit, drives
// the rapidsnark groth16 prover with a timeout, and converts the resulting
// proof into the shapes the verifier contract and the recursive gnark
// circuits expect.
package prover

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vocdoni/anonvote/crypto/mimcsponge"
	"github.com/vocdoni/anonvote/tree"
	"github.com/vocdoni/anonvote/types"
)

// ErrCommitmentMismatch is returned when the (nullifier, secret) pair does
// not hash to the leaf the membership path was generated for.
var ErrCommitmentMismatch = errors.New("nullifier and secret do not match the path leaf")

// ProverInputs is the witness input document of the external membership
// circuit. All four fields are private circuit inputs; field elements are
// encoded as decimal strings, the format the circom witness calculator
// parses.
type ProverInputs struct {
	Nullifier    *types.BigInt   `json:"nullifier"`
	Secret       *types.BigInt   `json:"secret"`
	PathElements []*types.BigInt `json:"pathElements"`
	PathIndices  []int           `json:"pathIndices"`
}

// PrepareInputs packages a (nullifier, secret) pair and a membership path
// into prover inputs. The pair must hash to the path's leaf and the path
// itself must recombine to its root; both are checked here so a bad witness
// fails loudly instead of producing a proof the verifier rejects.
func PrepareInputs(nullifier, secret *types.FieldElement, path *tree.Path) (*ProverInputs, error) {
	if err := path.Verify(); err != nil {
		return nil, err
	}
	commitment, err := mimcsponge.HashElements(nullifier, secret)
	if err != nil {
		return nil, err
	}
	if !commitment.Equal(path.Leaf) {
		return nil, fmt.Errorf("%w: leaf %d", ErrCommitmentMismatch, path.Index)
	}

	inputs := &ProverInputs{
		Nullifier:    (*types.BigInt)(nullifier.BigInt()),
		Secret:       (*types.BigInt)(secret.BigInt()),
		PathElements: make([]*types.BigInt, len(path.Elements)),
		PathIndices:  make([]int, len(path.Bits)),
	}
	for i, el := range path.Elements {
		inputs.PathElements[i] = (*types.BigInt)(el.BigInt())
		inputs.PathIndices[i] = int(path.Bits[i])
	}
	return inputs, nil
}

// Encode serializes the inputs for the witness calculator.
func (pi *ProverInputs) Encode() ([]byte, error) {
	return json.Marshal(pi)
}

// NullifierHash computes the public nullifier hash of a nullifier, the
// sponge hash of the nullifier with a zero right input.
func NullifierHash(nullifier *types.FieldElement) (*types.FieldElement, error) {
	return mimcsponge.HashElements(nullifier, types.FieldZero())
}

// Commitment computes the accumulator leaf of a (nullifier, secret) pair.
func Commitment(nullifier, secret *types.FieldElement) (*types.FieldElement, error) {
	return mimcsponge.HashElements(nullifier, secret)
}
