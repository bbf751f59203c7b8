package tree

import (
	"sync"

	"github.com/vocdoni/anonvote/types"
)

// RootHistory is a bounded ring of the most recent accumulator roots.
// Recording beyond the capacity evicts the oldest entry, so proofs built
// against a sufficiently old root stop verifying once enough insertions
// happen. The window is small by construction; membership checks scan it
// linearly.
type RootHistory struct {
	mu    sync.RWMutex
	roots []*types.FieldElement
	next  int
	count int
}

// NewRootHistory creates a ring holding up to size roots, pre-seeded with
// the current root so the empty accumulator is immediately provable
// against.
func NewRootHistory(size int, initial *types.FieldElement) *RootHistory {
	h := &RootHistory{roots: make([]*types.FieldElement, size)}
	h.Record(initial)
	return h
}

// Record appends a root, evicting the oldest when the ring is full.
func (h *RootHistory) Record(root *types.FieldElement) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots[h.next] = root
	h.next = (h.next + 1) % len(h.roots)
	if h.count < len(h.roots) {
		h.count++
	}
}

// Known reports whether root is one of the retained recent roots. The zero
// field element is never a valid root, uninitialized slots cannot match.
func (h *RootHistory) Known(root *types.FieldElement) bool {
	if root == nil || root.IsZero() {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := 0; i < h.count; i++ {
		if h.roots[i] != nil && h.roots[i].Equal(root) {
			return true
		}
	}
	return false
}

// Current returns the most recently recorded root.
func (h *RootHistory) Current() *types.FieldElement {
	h.mu.RLock()
	defer h.mu.RUnlock()
	idx := (h.next - 1 + len(h.roots)) % len(h.roots)
	return h.roots[idx]
}

// Size returns the ring capacity.
func (h *RootHistory) Size() int {
	return len(h.roots)
}
