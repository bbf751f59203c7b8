package mimcsponge

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/anonvote/types"
)

func TestRoundConstants(t *testing.T) {
	c := qt.New(t)

	list := Constants()
	c.Assert(list, qt.HasLen, NumRounds())
	c.Assert(list[0].Sign(), qt.Equals, 0)
	c.Assert(list[NumRounds()-1].Sign(), qt.Equals, 0)
	for i, ct := range list {
		c.Assert(ct.Cmp(types.FieldModulus()) < 0, qt.IsTrue,
			qt.Commentf("constant %d out of field", i))
	}
	// two independent derivations must agree
	c.Assert(Constants(), qt.DeepEquals, list)
}

func TestPermuteDeterministicAndMixing(t *testing.T) {
	c := qt.New(t)

	xL1, xR1 := Permute(big.NewInt(1), big.NewInt(2), big.NewInt(0))
	xL2, xR2 := Permute(big.NewInt(1), big.NewInt(2), big.NewInt(0))
	c.Assert(xL1.Cmp(xL2), qt.Equals, 0)
	c.Assert(xR1.Cmp(xR2), qt.Equals, 0)

	// the permutation must not fix the zero state
	zL, zR := Permute(big.NewInt(0), big.NewInt(0), big.NewInt(0))
	c.Assert(zL.Sign() == 0 && zR.Sign() == 0, qt.IsFalse)

	// outputs stay in the field
	c.Assert(xL1.Cmp(types.FieldModulus()) < 0, qt.IsTrue)
	c.Assert(xR1.Cmp(types.FieldModulus()) < 0, qt.IsTrue)
}

func TestHashDeterministic(t *testing.T) {
	c := qt.New(t)

	h1, err := Hash(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	h2, err := Hash(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h2), qt.Equals, 0)
	c.Assert(h1.Cmp(types.FieldModulus()) < 0, qt.IsTrue)
}

func TestHashKnownVector(t *testing.T) {
	c := qt.New(t)

	// circomlib mimcsponge multiHash([1, 2]). A drift in the round-constant
	// derivation fails here before it produces roots the external verifier
	// silently rejects.
	h, err := Hash(big.NewInt(1), big.NewInt(2))
	c.Assert(err, qt.IsNil)
	c.Assert(h.String(), qt.Equals,
		"19814528709687996974327303300007262407299502847885145507292406548098437687919")
}

func TestZeroLeafSeedDerivation(t *testing.T) {
	c := qt.New(t)

	// the empty-leaf constant is keccak256("tornado") reduced into the field
	seed := new(big.Int).Mod(
		new(big.Int).SetBytes(crypto.Keccak256([]byte("tornado"))),
		types.FieldModulus())
	c.Assert(seed.String(), qt.Equals, types.ZeroLeafSeed)
}

func TestHashRoleAsymmetry(t *testing.T) {
	c := qt.New(t)

	// left and right enter at different sponge steps, so swapping the
	// arguments must change the digest
	ab, err := Hash(big.NewInt(3), big.NewInt(7))
	c.Assert(err, qt.IsNil)
	ba, err := Hash(big.NewInt(7), big.NewInt(3))
	c.Assert(err, qt.IsNil)
	c.Assert(ab.Cmp(ba), qt.Not(qt.Equals), 0)
}

func TestHashRejectsOutOfRange(t *testing.T) {
	c := qt.New(t)

	_, err := Hash(types.FieldModulus(), big.NewInt(0))
	c.Assert(err, qt.ErrorIs, types.ErrNotInField)

	_, err = Hash(big.NewInt(0), types.FieldModulus())
	c.Assert(err, qt.ErrorIs, types.ErrNotInField)

	_, err = Hash(big.NewInt(-1), big.NewInt(0))
	c.Assert(err, qt.ErrorIs, types.ErrNotInField)
}

func TestHashElements(t *testing.T) {
	c := qt.New(t)

	left, err := types.NewFieldElement(big.NewInt(11))
	c.Assert(err, qt.IsNil)
	right, err := types.NewFieldElement(big.NewInt(13))
	c.Assert(err, qt.IsNil)

	he, err := HashElements(left, right)
	c.Assert(err, qt.IsNil)

	raw, err := Hash(big.NewInt(11), big.NewInt(13))
	c.Assert(err, qt.IsNil)
	c.Assert(he.BigInt().Cmp(raw), qt.Equals, 0)
}
