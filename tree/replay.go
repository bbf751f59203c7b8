package tree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vocdoni/anonvote/types"
)

// ErrBadEventLog is returned by Rebuild when the event log has gaps,
// duplicate indices or invalid commitments.
var ErrBadEventLog = errors.New("inconsistent insertion event log")

// InsertionEvent is the durable record of one accepted commitment. A mirror
// that replays the full ordered log arrives at the same accumulator as the
// live instance.
type InsertionEvent struct {
	Commitment *types.FieldElement `cbor:"1,keyasint" json:"commitment"`
	LeafIndex  uint64              `cbor:"2,keyasint" json:"leafIndex"`
	Timestamp  int64               `cbor:"3,keyasint" json:"timestamp"`
}

// Rebuild reconstructs an accumulator from an insertion event log. Events
// may arrive in any order; they are replayed by leaf index and must form a
// contiguous sequence starting at zero, otherwise ErrBadEventLog is
// returned. The returned tree is byte-for-byte equivalent to one built by
// applying the same insertions live.
func Rebuild(depth int, seed *types.FieldElement, events []InsertionEvent) (*Tree, error) {
	ordered := make([]InsertionEvent, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LeafIndex < ordered[j].LeafIndex
	})

	t, err := New(depth, seed)
	if err != nil {
		return nil, err
	}
	for i, ev := range ordered {
		if ev.LeafIndex != uint64(i) {
			return nil, fmt.Errorf("%w: expected leaf index %d, got %d",
				ErrBadEventLog, i, ev.LeafIndex)
		}
		if ev.Commitment == nil {
			return nil, fmt.Errorf("%w: nil commitment at index %d", ErrBadEventLog, i)
		}
		index, _, err := t.Insert(ev.Commitment)
		if err != nil {
			return nil, err
		}
		if index != ev.LeafIndex {
			return nil, fmt.Errorf("%w: replay assigned index %d to event %d",
				ErrBadEventLog, index, ev.LeafIndex)
		}
	}
	return t, nil
}
