package membership

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/anonvote/crypto/mimcsponge"
	"github.com/vocdoni/anonvote/tree"
	"github.com/vocdoni/anonvote/types"
)

// a small depth keeps the test solver fast while exercising both child
// positions along the path
const testDepth = 4

func testAssignment(t *testing.T, nullifier, secret int64, fill int) (*Circuit, *types.FieldElement, *types.FieldElement) {
	t.Helper()
	c := qt.New(t)

	n, err := types.NewFieldElement(big.NewInt(nullifier))
	c.Assert(err, qt.IsNil)
	s, err := types.NewFieldElement(big.NewInt(secret))
	c.Assert(err, qt.IsNil)
	commitment, err := mimcsponge.HashElements(n, s)
	c.Assert(err, qt.IsNil)
	nullifierHash, err := mimcsponge.Hash(n.BigInt(), big.NewInt(0))
	c.Assert(err, qt.IsNil)
	nh, err := types.NewFieldElement(nullifierHash)
	c.Assert(err, qt.IsNil)

	seed, err := types.ParseFieldElement(types.ZeroLeafSeed)
	c.Assert(err, qt.IsNil)
	tr, err := tree.New(testDepth, seed)
	c.Assert(err, qt.IsNil)
	// surround the prover's leaf with other commitments
	for i := 0; i < fill; i++ {
		filler, err := types.NewFieldElement(big.NewInt(int64(i)*97 + 5))
		c.Assert(err, qt.IsNil)
		_, _, err = tr.Insert(filler)
		c.Assert(err, qt.IsNil)
	}
	index, _, err := tr.Insert(commitment)
	c.Assert(err, qt.IsNil)

	path, err := tr.GenPath(index)
	c.Assert(err, qt.IsNil)
	c.Assert(path.Verify(), qt.IsNil)

	assignment := NewCircuit(testDepth)
	assignment.Root = path.Root.BigInt()
	assignment.NullifierHash = nh.BigInt()
	assignment.Nullifier = n.BigInt()
	assignment.Secret = s.BigInt()
	for level := range path.Elements {
		assignment.PathElements[level] = path.Elements[level].BigInt()
		assignment.PathIndices[level] = int(path.Bits[level])
	}
	return assignment, path.Root, nh
}

func TestMembershipCircuit(t *testing.T) {
	assert := test.NewAssert(t)

	for _, fill := range []int{0, 1, 3} {
		assignment, _, _ := testAssignment(t, 12345, 67890, fill)
		assert.ProverSucceeded(NewCircuit(testDepth), assignment,
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	}
}

func TestMembershipCircuitRejectsWrongPublicInputs(t *testing.T) {
	assert := test.NewAssert(t)

	// wrong nullifier hash
	assignment, _, _ := testAssignment(t, 111, 222, 2)
	assignment.NullifierHash = big.NewInt(42)
	assert.ProverFailed(NewCircuit(testDepth), assignment,
		test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))

	// wrong root
	assignment, _, _ = testAssignment(t, 111, 222, 2)
	assignment.Root = big.NewInt(42)
	assert.ProverFailed(NewCircuit(testDepth), assignment,
		test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))

	// non-boolean path index
	assignment, _, _ = testAssignment(t, 111, 222, 2)
	assignment.PathIndices[0] = 2
	assert.ProverFailed(NewCircuit(testDepth), assignment,
		test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
}

// the in-circuit sponge must agree with the native one on raw pairs
type hashAgreementCircuit struct {
	Left     frontend.Variable
	Right    frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *hashAgreementCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(hashLeftRight(api, c.Left, c.Right), c.Expected)
	return nil
}

func TestHashGadgetMatchesNative(t *testing.T) {
	assert := test.NewAssert(t)
	c := qt.New(t)

	pairs := [][2]int64{{0, 0}, {1, 2}, {7, 3}, {123456789, 987654321}}
	for _, p := range pairs {
		expected, err := mimcsponge.Hash(big.NewInt(p[0]), big.NewInt(p[1]))
		c.Assert(err, qt.IsNil)
		assert.ProverSucceeded(&hashAgreementCircuit{},
			&hashAgreementCircuit{
				Left:     p[0],
				Right:    p[1],
				Expected: expected,
			},
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	}
}
