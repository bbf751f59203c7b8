// Package tree implements the append-only incremental Merkle accumulator
// that holds registration commitments, together with its bounded root
// history and the event-replay rebuild used by off-chain mirrors.
package tree

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/vocdoni/anonvote/crypto/mimcsponge"
	"github.com/vocdoni/anonvote/types"
)

var (
	// ErrTreeFull is returned when an insertion would exceed 2^depth leaves.
	// The failed insertion leaves the accumulator untouched.
	ErrTreeFull = errors.New("accumulator is full")
	// ErrLeafNotFound is returned when a path is requested for an index that
	// has not been inserted.
	ErrLeafNotFound = errors.New("leaf index not present in the accumulator")
	// ErrInvalidDepth is returned for non-positive or oversized depths.
	ErrInvalidDepth = errors.New("invalid accumulator depth")
)

// maxDepth bounds the configurable depth; 2^32 leaves is already far beyond
// any single registration session.
const maxDepth = 32

// Tree is a fixed-depth, append-only Merkle accumulator over the sponge
// hash. Empty positions take the zero-ladder value of their level, so the
// root is always defined. A single writer mutates the tree; readers are
// serialized against in-flight insertions and observe either the pre- or
// post-insertion state, never a torn one.
type Tree struct {
	mu     sync.RWMutex
	depth  int
	seed   *types.FieldElement
	zeros  []*big.Int   // empty-subtree hash per level, len depth+1
	filled []*big.Int   // filled-subtree checkpoint per level, len depth
	nodes  [][]*big.Int // computed node values per level, grown on insert
	size   uint64       // next free leaf index
	root   *big.Int
}

// ZeroLadder derives the per-level empty-subtree hashes: ladder[0] is the
// seed, ladder[i] = Hash(ladder[i-1], ladder[i-1]). The derivation is
// deterministic; callers may recompute it at any time and obtain the same
// values.
func ZeroLadder(seed *types.FieldElement, depth int) ([]*types.FieldElement, error) {
	if depth <= 0 || depth > maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}
	ladder := make([]*types.FieldElement, depth+1)
	ladder[0] = seed
	for i := 1; i <= depth; i++ {
		h, err := mimcsponge.HashElements(ladder[i-1], ladder[i-1])
		if err != nil {
			return nil, err
		}
		ladder[i] = h
	}
	return ladder, nil
}

// New creates an empty accumulator of the given depth. The root of the
// empty tree is the top of the zero ladder.
func New(depth int, seed *types.FieldElement) (*Tree, error) {
	ladder, err := ZeroLadder(seed, depth)
	if err != nil {
		return nil, err
	}
	zeros := make([]*big.Int, depth+1)
	for i, z := range ladder {
		zeros[i] = z.BigInt()
	}
	filled := make([]*big.Int, depth)
	for i := range filled {
		filled[i] = zeros[i]
	}
	return &Tree{
		depth:  depth,
		seed:   seed,
		zeros:  zeros,
		filled: filled,
		nodes:  make([][]*big.Int, depth+1),
		root:   zeros[depth],
	}, nil
}

// Depth returns the fixed number of levels.
func (t *Tree) Depth() int {
	return t.depth
}

// Size returns the number of inserted leaves, which is also the next free
// insertion index.
func (t *Tree) Size() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Capacity returns the maximum number of leaves.
func (t *Tree) Capacity() uint64 {
	return 1 << uint(t.depth)
}

// Root returns the current accumulator root.
func (t *Tree) Root() *types.FieldElement {
	t.mu.RLock()
	defer t.mu.RUnlock()
	root, _ := types.NewFieldElement(t.root)
	return root
}

// Zero returns the zero-ladder value for a level.
func (t *Tree) Zero(level int) (*types.FieldElement, error) {
	if level < 0 || level > t.depth {
		return nil, fmt.Errorf("%w: level %d", ErrInvalidDepth, level)
	}
	return types.NewFieldElement(t.zeros[level])
}

// Insert appends a leaf and returns its index and the new root. The update
// walks one node per level: an even index becomes the new filled-subtree
// checkpoint of its level and pairs with the zero ladder; an odd index
// pairs with the checkpoint its left sibling stored earlier. The resulting
// root is identical to a from-scratch recomputation over all leaves.
func (t *Tree) Insert(leaf *types.FieldElement) (uint64, *types.FieldElement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.size >= t.Capacity() {
		return 0, nil, fmt.Errorf("%w: %d leaves at depth %d", ErrTreeFull, t.size, t.depth)
	}
	index := t.size

	cur := leaf.BigInt()
	idx := index
	for level := 0; level < t.depth; level++ {
		t.setNode(level, idx, cur)
		var left, right *big.Int
		if idx%2 == 0 {
			t.filled[level] = cur
			left, right = cur, t.zeros[level]
		} else {
			left, right = t.filled[level], cur
		}
		h, err := mimcsponge.Hash(left, right)
		if err != nil {
			return 0, nil, err
		}
		cur = h
		idx /= 2
	}
	t.setNode(t.depth, 0, cur)
	t.root = cur
	t.size = index + 1

	root, err := types.NewFieldElement(cur)
	if err != nil {
		return 0, nil, err
	}
	return index, root, nil
}

// setNode records a computed node value. Insertions are sequential, so the
// per-level slices only ever grow by the node being written.
func (t *Tree) setNode(level int, idx uint64, v *big.Int) {
	for uint64(len(t.nodes[level])) <= idx {
		t.nodes[level] = append(t.nodes[level], nil)
	}
	t.nodes[level][idx] = v
}

// node returns the value of a node, falling back to the zero ladder for
// positions no insertion has reached yet.
func (t *Tree) node(level int, idx uint64) *big.Int {
	if idx < uint64(len(t.nodes[level])) && t.nodes[level][idx] != nil {
		return t.nodes[level][idx]
	}
	return t.zeros[level]
}

// GenPath builds the membership path for the leaf at index: one sibling and
// one side bit per level, leaf level first. The path derives from the node
// values maintained during insertion; no historical leaves are re-walked.
func (t *Tree) GenPath(index uint64) (*Path, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if index >= t.size {
		return nil, fmt.Errorf("%w: index %d, size %d", ErrLeafNotFound, index, t.size)
	}
	leaf, err := types.NewFieldElement(t.node(0, index))
	if err != nil {
		return nil, err
	}
	elements := make([]*types.FieldElement, t.depth)
	bits := make([]uint8, t.depth)
	idx := index
	for level := 0; level < t.depth; level++ {
		sibling, err := types.NewFieldElement(t.node(level, idx^1))
		if err != nil {
			return nil, err
		}
		elements[level] = sibling
		bits[level] = uint8(idx & 1)
		idx /= 2
	}
	root, err := types.NewFieldElement(t.root)
	if err != nil {
		return nil, err
	}
	return &Path{
		Index:    index,
		Leaf:     leaf,
		Elements: elements,
		Bits:     bits,
		Root:     root,
	}, nil
}
