// Package mimcsponge implements the Feistel-MiMC permutation and the
// two-step sponge hash used by the commitment accumulator. The construction
// mirrors, arithmetic step by arithmetic step, the hasher of the external
// membership circuit: any divergence here produces roots the verifier
// rejects without an error anywhere else in the pipeline.
package mimcsponge

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/utils"

	"github.com/vocdoni/anonvote/types"
)

// Permute applies the raw nRounds Feistel permutation to the state (xL, xR)
// with round key k. Inputs must already be canonical field elements; the
// permutation itself keeps values in range.
func Permute(xLIn, xRIn, k *big.Int) (*big.Int, *big.Int) {
	xL := new(big.Int).Set(xLIn)
	xR := new(big.Int).Set(xRIn)
	t := new(big.Int)
	t2 := new(big.Int)
	t4 := new(big.Int)
	for i := 0; i < nRounds; i++ {
		t.Add(xL, k)
		if i > 0 {
			t.Add(t, cts[i])
		}
		t.Mod(t, q)
		// S-box: t^5
		t2.Mul(t, t)
		t2.Mod(t2, q)
		t4.Mul(t2, t2)
		t4.Mod(t4, q)
		t5 := new(big.Int).Mul(t4, t)
		t5.Mod(t5, q)
		if i < nRounds-1 {
			t5.Add(t5, xR)
			t5.Mod(t5, q)
			xR = xL
			xL = t5
		} else {
			// final round does not swap
			t5.Add(t5, xR)
			t5.Mod(t5, q)
			xR = t5
		}
	}
	return xL, xR
}

// Hash combines two field elements into one with the two-step sponge:
// permute (left, 0), absorb right into the rate half, permute again, and
// return the rate half. Left and right enter at different steps, so the
// hash is not symmetric in its arguments. Inputs outside the field fail
// with types.ErrNotInField; they are never reduced.
func Hash(left, right *big.Int) (*big.Int, error) {
	if left == nil || left.Sign() < 0 || !utils.CheckBigIntInField(left) {
		return nil, fmt.Errorf("%w: left input %v", types.ErrNotInField, left)
	}
	if right == nil || right.Sign() < 0 || !utils.CheckBigIntInField(right) {
		return nil, fmt.Errorf("%w: right input %v", types.ErrNotInField, right)
	}
	zero := big.NewInt(0)
	r, c := Permute(left, zero, zero)
	r.Add(r, right)
	r.Mod(r, q)
	r, _ = Permute(r, c, zero)
	return r, nil
}

// HashElements is Hash over the validated FieldElement type, for callers at
// component boundaries.
func HashElements(left, right *types.FieldElement) (*types.FieldElement, error) {
	h, err := Hash(left.BigInt(), right.BigInt())
	if err != nil {
		return nil, err
	}
	return types.NewFieldElement(h)
}
