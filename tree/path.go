package tree

import (
	"errors"
	"fmt"

	"github.com/vocdoni/anonvote/crypto/mimcsponge"
	"github.com/vocdoni/anonvote/types"
)

// ErrMalformedPath is returned by Verify when the path shape is inconsistent.
var ErrMalformedPath = errors.New("malformed membership path")

// Path is the membership witness of a single leaf: the sibling and side bit
// for every level, ordered leaf level first. A bit of 0 means the node on
// the path is the left child at that level, so the sibling hashes on the
// right.
type Path struct {
	Index    uint64                `json:"index"`
	Leaf     *types.FieldElement   `json:"leaf"`
	Elements []*types.FieldElement `json:"pathElements"`
	Bits     []uint8               `json:"pathIndices"`
	Root     *types.FieldElement   `json:"root"`
}

// Verify recombines the leaf with the path elements and checks the result
// against the recorded root. It returns nil on success, ErrMalformedPath on
// a shape problem, and a descriptive error when the recombined root differs.
func (p *Path) Verify() error {
	if p.Leaf == nil || p.Root == nil {
		return fmt.Errorf("%w: missing leaf or root", ErrMalformedPath)
	}
	if len(p.Elements) == 0 || len(p.Elements) != len(p.Bits) {
		return fmt.Errorf("%w: %d elements, %d bits", ErrMalformedPath, len(p.Elements), len(p.Bits))
	}
	cur := p.Leaf
	for level, sibling := range p.Elements {
		if sibling == nil {
			return fmt.Errorf("%w: nil element at level %d", ErrMalformedPath, level)
		}
		var err error
		switch p.Bits[level] {
		case 0:
			cur, err = mimcsponge.HashElements(cur, sibling)
		case 1:
			cur, err = mimcsponge.HashElements(sibling, cur)
		default:
			return fmt.Errorf("%w: bit %d at level %d", ErrMalformedPath, p.Bits[level], level)
		}
		if err != nil {
			return err
		}
	}
	if !cur.Equal(p.Root) {
		return fmt.Errorf("path does not recombine to root: got %s, want %s", cur, p.Root)
	}
	return nil
}
