// Package membership holds the gnark equivalent of the external membership
// circuit: it proves knowledge of a (nullifier, secret) pair whose
// commitment sits in the accumulator under a public root, and binds the
// public nullifier hash to the same nullifier. The gadgets reuse the round
// constants of the native sponge, so native and in-circuit hashes agree by
// construction.
package membership

import (
	"github.com/consensys/gnark/frontend"

	"github.com/vocdoni/anonvote/crypto/mimcsponge"
)

// Circuit is the membership statement. NullifierHash and Root are the only
// public inputs, in this order, matching the public signal order of the
// external verifier contract; everything else stays private.
type Circuit struct {
	NullifierHash frontend.Variable `gnark:",public"`
	Root          frontend.Variable `gnark:",public"`

	Nullifier    frontend.Variable
	Secret       frontend.Variable
	PathElements []frontend.Variable
	PathIndices  []frontend.Variable
}

// NewCircuit returns a compilable placeholder for the given accumulator
// depth.
func NewCircuit(depth int) *Circuit {
	return &Circuit{
		PathElements: make([]frontend.Variable, depth),
		PathIndices:  make([]frontend.Variable, depth),
	}
}

// permute is the in-circuit Feistel permutation, round constant by round
// constant the same computation as the native one.
func permute(api frontend.API, xL, xR frontend.Variable) (frontend.Variable, frontend.Variable) {
	cts := mimcsponge.Constants()
	for i := 0; i < mimcsponge.NumRounds(); i++ {
		t := xL
		if i > 0 {
			t = api.Add(t, cts[i])
		}
		t2 := api.Mul(t, t)
		t4 := api.Mul(t2, t2)
		t5 := api.Mul(t4, t)
		if i < mimcsponge.NumRounds()-1 {
			xL, xR = api.Add(t5, xR), xL
		} else {
			xR = api.Add(t5, xR)
		}
	}
	return xL, xR
}

// hashLeftRight is the in-circuit two-step sponge hash.
func hashLeftRight(api frontend.API, left, right frontend.Variable) frontend.Variable {
	r, c := permute(api, left, 0)
	r = api.Add(r, right)
	r, _ = permute(api, r, c)
	return r
}

// Define declares the membership constraints: the nullifier hash matches
// the private nullifier, and the commitment built from (nullifier, secret)
// recombines with the path to the public root.
func (circuit *Circuit) Define(api frontend.API) error {
	nh := hashLeftRight(api, circuit.Nullifier, 0)
	api.AssertIsEqual(nh, circuit.NullifierHash)

	cur := hashLeftRight(api, circuit.Nullifier, circuit.Secret)
	for level := range circuit.PathElements {
		bit := circuit.PathIndices[level]
		api.AssertIsBoolean(bit)
		sibling := circuit.PathElements[level]
		// bit == 0: cur is the left child; bit == 1: cur is the right child
		left := api.Select(bit, sibling, cur)
		right := api.Select(bit, cur, sibling)
		cur = hashLeftRight(api, left, right)
	}
	api.AssertIsEqual(cur, circuit.Root)
	return nil
}
