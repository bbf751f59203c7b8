package tree

import (
	"fmt"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/anonvote/crypto/mimcsponge"
	"github.com/vocdoni/anonvote/types"
)

func testSeed(t *testing.T) *types.FieldElement {
	t.Helper()
	seed, err := types.ParseFieldElement(types.ZeroLeafSeed)
	qt.Assert(t, err, qt.IsNil)
	return seed
}

func fe(t *testing.T, v int64) *types.FieldElement {
	t.Helper()
	el, err := types.NewFieldElement(big.NewInt(v))
	qt.Assert(t, err, qt.IsNil)
	return el
}

// naiveRoot recomputes the root from scratch over the dense leaf layer,
// padding with the zero ladder. The incremental tree must always agree.
func naiveRoot(t *testing.T, depth int, seed *types.FieldElement, leaves []*types.FieldElement) *types.FieldElement {
	t.Helper()
	ladder, err := ZeroLadder(seed, depth)
	qt.Assert(t, err, qt.IsNil)

	level := make([]*types.FieldElement, 1<<uint(depth))
	for i := range level {
		if i < len(leaves) {
			level[i] = leaves[i]
		} else {
			level[i] = ladder[0]
		}
	}
	for l := 0; l < depth; l++ {
		next := make([]*types.FieldElement, len(level)/2)
		for i := range next {
			h, err := mimcsponge.HashElements(level[2*i], level[2*i+1])
			qt.Assert(t, err, qt.IsNil)
			next[i] = h
		}
		level = next
	}
	return level[0]
}

func TestEmptyRootIsZeroLadderTop(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	tr, err := New(8, seed)
	c.Assert(err, qt.IsNil)

	ladder, err := ZeroLadder(seed, 8)
	c.Assert(err, qt.IsNil)
	c.Assert(tr.Root().Equal(ladder[8]), qt.IsTrue)
	c.Assert(tr.Size(), qt.Equals, uint64(0))
}

func TestZeroLadderRejectsBadDepth(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	_, err := ZeroLadder(seed, 0)
	c.Assert(err, qt.ErrorIs, ErrInvalidDepth)
	_, err = ZeroLadder(seed, maxDepth+1)
	c.Assert(err, qt.ErrorIs, ErrInvalidDepth)
}

func TestInsertMatchesNaiveRecomputation(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)
	const depth = 4

	tr, err := New(depth, seed)
	c.Assert(err, qt.IsNil)

	var leaves []*types.FieldElement
	for i := int64(1); i <= 10; i++ {
		leaf := fe(t, i*1000+7)
		index, root, err := tr.Insert(leaf)
		c.Assert(err, qt.IsNil)
		c.Assert(index, qt.Equals, uint64(i-1))

		leaves = append(leaves, leaf)
		want := naiveRoot(t, depth, seed, leaves)
		c.Assert(root.Equal(want), qt.IsTrue,
			qt.Commentf("root mismatch after %d insertions", i))
		c.Assert(tr.Root().Equal(want), qt.IsTrue)
	}
	c.Assert(tr.Size(), qt.Equals, uint64(10))
}

func TestInsertFullTree(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	tr, err := New(2, seed)
	c.Assert(err, qt.IsNil)
	for i := int64(0); i < 4; i++ {
		_, _, err := tr.Insert(fe(t, i+1))
		c.Assert(err, qt.IsNil)
	}
	rootBefore := tr.Root()

	_, _, err = tr.Insert(fe(t, 99))
	c.Assert(err, qt.ErrorIs, ErrTreeFull)
	// the failed insertion must not disturb the accumulator
	c.Assert(tr.Size(), qt.Equals, uint64(4))
	c.Assert(tr.Root().Equal(rootBefore), qt.IsTrue)
}

func TestGenPathRecombines(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	tr, err := New(types.CommitmentTreeDepth, seed)
	c.Assert(err, qt.IsNil)
	for i := int64(0); i < 3; i++ {
		_, _, err := tr.Insert(fe(t, (i+1)*11))
		c.Assert(err, qt.IsNil)
	}

	for index := uint64(0); index < 3; index++ {
		path, err := tr.GenPath(index)
		c.Assert(err, qt.IsNil)
		c.Assert(path.Index, qt.Equals, index)
		c.Assert(path.Elements, qt.HasLen, types.CommitmentTreeDepth)
		c.Assert(path.Bits, qt.HasLen, types.CommitmentTreeDepth)
		c.Assert(path.Root.Equal(tr.Root()), qt.IsTrue)
		c.Assert(path.Verify(), qt.IsNil, qt.Commentf("path for leaf %d", index))
	}

	// leaf 2 sits left of an empty sibling, its level-0 element is the seed
	path, err := tr.GenPath(2)
	c.Assert(err, qt.IsNil)
	c.Assert(path.Bits[0], qt.Equals, uint8(0))
	c.Assert(path.Elements[0].Equal(seed), qt.IsTrue)
	// and its level-1 sibling is the hash of leaves 0 and 1
	sib, err := mimcsponge.HashElements(fe(t, 11), fe(t, 22))
	c.Assert(err, qt.IsNil)
	c.Assert(path.Bits[1], qt.Equals, uint8(1))
	c.Assert(path.Elements[1].Equal(sib), qt.IsTrue)
}

func TestGenPathUnknownLeaf(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	tr, err := New(4, seed)
	c.Assert(err, qt.IsNil)
	_, err = tr.GenPath(0)
	c.Assert(err, qt.ErrorIs, ErrLeafNotFound)

	_, _, err = tr.Insert(fe(t, 5))
	c.Assert(err, qt.IsNil)
	_, err = tr.GenPath(1)
	c.Assert(err, qt.ErrorIs, ErrLeafNotFound)
}

func TestPathVerifyDetectsTampering(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	tr, err := New(6, seed)
	c.Assert(err, qt.IsNil)
	for i := int64(0); i < 5; i++ {
		_, _, err := tr.Insert(fe(t, i+100))
		c.Assert(err, qt.IsNil)
	}

	path, err := tr.GenPath(3)
	c.Assert(err, qt.IsNil)
	c.Assert(path.Verify(), qt.IsNil)

	path.Elements[2] = fe(t, 424242)
	c.Assert(path.Verify(), qt.Not(qt.IsNil))

	// malformed shapes
	bad := &Path{Leaf: fe(t, 1), Root: fe(t, 2)}
	c.Assert(bad.Verify(), qt.ErrorIs, ErrMalformedPath)
	bad = &Path{
		Leaf:     fe(t, 1),
		Root:     fe(t, 2),
		Elements: []*types.FieldElement{fe(t, 3)},
		Bits:     []uint8{2},
	}
	c.Assert(bad.Verify(), qt.ErrorIs, ErrMalformedPath)
}

func TestRootHistoryEviction(t *testing.T) {
	c := qt.New(t)

	hist := NewRootHistory(3, fe(t, 1))
	c.Assert(hist.Known(fe(t, 1)), qt.IsTrue)
	c.Assert(hist.Current().Equal(fe(t, 1)), qt.IsTrue)

	hist.Record(fe(t, 2))
	hist.Record(fe(t, 3))
	c.Assert(hist.Known(fe(t, 1)), qt.IsTrue)
	c.Assert(hist.Known(fe(t, 3)), qt.IsTrue)

	// fourth record evicts the oldest
	hist.Record(fe(t, 4))
	c.Assert(hist.Known(fe(t, 1)), qt.IsFalse)
	c.Assert(hist.Known(fe(t, 2)), qt.IsTrue)
	c.Assert(hist.Known(fe(t, 4)), qt.IsTrue)
	c.Assert(hist.Current().Equal(fe(t, 4)), qt.IsTrue)

	c.Assert(hist.Known(nil), qt.IsFalse)
	c.Assert(hist.Known(types.FieldZero()), qt.IsFalse)
	c.Assert(hist.Known(fe(t, 77)), qt.IsFalse)
}

func TestRebuildEquivalence(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)
	const depth = 5

	live, err := New(depth, seed)
	c.Assert(err, qt.IsNil)
	var events []InsertionEvent
	for i := int64(0); i < 7; i++ {
		leaf := fe(t, i*31+17)
		index, _, err := live.Insert(leaf)
		c.Assert(err, qt.IsNil)
		events = append(events, InsertionEvent{
			Commitment: leaf,
			LeafIndex:  index,
			Timestamp:  1700000000 + i,
		})

		// replaying the prefix must reproduce the live state at every point
		mirror, err := Rebuild(depth, seed, events)
		c.Assert(err, qt.IsNil)
		c.Assert(mirror.Root().Equal(live.Root()), qt.IsTrue,
			qt.Commentf("divergence after %d events", i+1))
		c.Assert(mirror.Size(), qt.Equals, live.Size())
	}

	// out-of-order logs replay fine
	shuffled := []InsertionEvent{events[4], events[0], events[6], events[2],
		events[1], events[5], events[3]}
	mirror, err := Rebuild(depth, seed, shuffled)
	c.Assert(err, qt.IsNil)
	c.Assert(mirror.Root().Equal(live.Root()), qt.IsTrue)

	// mirror paths match live paths
	livePath, err := live.GenPath(4)
	c.Assert(err, qt.IsNil)
	mirrorPath, err := mirror.GenPath(4)
	c.Assert(err, qt.IsNil)
	c.Assert(mirrorPath.Root.Equal(livePath.Root), qt.IsTrue)
	for i := range livePath.Elements {
		c.Assert(mirrorPath.Elements[i].Equal(livePath.Elements[i]), qt.IsTrue)
		c.Assert(mirrorPath.Bits[i], qt.Equals, livePath.Bits[i])
	}
}

func TestRebuildBadLog(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	// gap
	_, err := Rebuild(4, seed, []InsertionEvent{
		{Commitment: fe(t, 1), LeafIndex: 0},
		{Commitment: fe(t, 2), LeafIndex: 2},
	})
	c.Assert(err, qt.ErrorIs, ErrBadEventLog)

	// duplicate
	_, err = Rebuild(4, seed, []InsertionEvent{
		{Commitment: fe(t, 1), LeafIndex: 0},
		{Commitment: fe(t, 2), LeafIndex: 0},
	})
	c.Assert(err, qt.ErrorIs, ErrBadEventLog)

	// missing genesis
	_, err = Rebuild(4, seed, []InsertionEvent{
		{Commitment: fe(t, 1), LeafIndex: 1},
	})
	c.Assert(err, qt.ErrorIs, ErrBadEventLog)

	// nil commitment
	_, err = Rebuild(4, seed, []InsertionEvent{
		{LeafIndex: 0},
	})
	c.Assert(err, qt.ErrorIs, ErrBadEventLog)
}

func TestInsertConcurrentReaders(t *testing.T) {
	c := qt.New(t)
	seed := testSeed(t)

	tr, err := New(10, seed)
	c.Assert(err, qt.IsNil)

	done := make(chan error, 1)
	go func() {
		for i := int64(0); i < 50; i++ {
			el, err := types.NewFieldElement(big.NewInt(i + 1))
			if err != nil {
				done <- err
				return
			}
			if _, _, err := tr.Insert(el); err != nil {
				done <- fmt.Errorf("insert %d: %w", i, err)
				return
			}
		}
		done <- nil
	}()
	for i := 0; i < 200; i++ {
		_ = tr.Root()
		_ = tr.Size()
		if tr.Size() > 0 {
			if _, err := tr.GenPath(0); err != nil {
				t.Fatalf("path for leaf 0: %v", err)
			}
		}
	}
	c.Assert(<-done, qt.IsNil)
}
