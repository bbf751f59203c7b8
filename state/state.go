// Package state ties the commitment accumulator, the root history and the
// nullifier registry to a persistent key-value store. A State is the
// durable registry of one registration session: commitments are appended,
// nullifiers are spent at most once, and the full insertion event log is
// kept so any mirror can rebuild the exact same accumulator.
//
// The following key prefixes are used inside the session namespace:
//   - 'e/' for insertion events, keyed by 8-byte big-endian leaf index
//   - 'n/' for spent nullifier hashes, keyed by the 32-byte hash
//   - 's/' for session metadata (current root)
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/tree"
	"github.com/vocdoni/anonvote/types"
)

var (
	// ErrNullifierUsed is returned when a nullifier hash has already been
	// spent in this session.
	ErrNullifierUsed = errors.New("nullifier already used")
	// ErrUnknownRoot is returned when a spend references a root outside the
	// retained history window.
	ErrUnknownRoot = errors.New("root is not in the recent history")
	// ErrMirrorDivergence is returned when the replayed event log does not
	// reproduce the persisted root. The store must be treated as corrupt.
	ErrMirrorDivergence = errors.New("event log does not reproduce the persisted root")
	// ErrStateDiverged is returned by every mutation after a partial commit
	// left the in-memory accumulator ahead of the store.
	ErrStateDiverged = errors.New("in-memory state diverged from the store, reopen required")
)

var (
	eventPrefix     = []byte("e/")
	nullifierPrefix = []byte("n/")
	metaPrefix      = []byte("s/")

	rootKey = []byte("root")
)

// State is the persistent registry of one registration session. All methods
// are safe for concurrent use; mutations serialize on an internal lock.
type State struct {
	mu        sync.RWMutex
	db        db.Database
	sessionID []byte
	tree      *tree.Tree
	history   *tree.RootHistory
	diverged  bool
}

// New opens (or creates) the session registry identified by sessionID inside
// kv. Any persisted insertion events are replayed into a fresh accumulator
// and every intermediate root is re-recorded, so the root history window
// after a reopen is identical to the one before shutdown. The replayed root
// is audited against the persisted one; a mismatch fails with
// ErrMirrorDivergence.
func New(kv db.Database, sessionID []byte) (*State, error) {
	database := prefixeddb.NewPrefixedDatabase(kv, append([]byte("anonvote/"), sessionID...))

	seed, err := types.ParseFieldElement(types.ZeroLeafSeed)
	if err != nil {
		return nil, err
	}
	events, err := loadEvents(database)
	if err != nil {
		return nil, fmt.Errorf("load event log: %w", err)
	}

	t, err := tree.New(types.CommitmentTreeDepth, seed)
	if err != nil {
		return nil, err
	}
	history := tree.NewRootHistory(types.RootHistorySize, t.Root())
	for _, ev := range events {
		index, root, err := t.Insert(ev.Commitment)
		if err != nil {
			return nil, fmt.Errorf("replay event %d: %w", ev.LeafIndex, err)
		}
		if index != ev.LeafIndex {
			return nil, fmt.Errorf("%w: event %d replayed at index %d",
				tree.ErrBadEventLog, ev.LeafIndex, index)
		}
		history.Record(root)
	}

	s := &State{
		db:        database,
		sessionID: sessionID,
		tree:      t,
		history:   history,
	}
	if err := s.auditPersistedRoot(); err != nil {
		return nil, err
	}
	log.Infow("session state opened",
		"sessionID", fmt.Sprintf("%x", sessionID),
		"commitments", t.Size(),
		"root", t.Root().String())
	return s, nil
}

// loadEvents reads the full ordered insertion log.
func loadEvents(database db.Database) ([]tree.InsertionEvent, error) {
	rd := prefixeddb.NewPrefixedReader(database, eventPrefix)
	var events []tree.InsertionEvent
	var iterErr error
	if err := rd.Iterate(nil, func(k, v []byte) bool {
		if len(k) != 8 {
			iterErr = fmt.Errorf("%w: event key of %d bytes", tree.ErrBadEventLog, len(k))
			return false
		}
		var ev tree.InsertionEvent
		if err := cbor.Unmarshal(v, &ev); err != nil {
			iterErr = fmt.Errorf("decode event %d: %w", binary.BigEndian.Uint64(k), err)
			return false
		}
		events = append(events, ev)
		return true
	}); err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	// iteration over fixed-width big-endian keys already yields insertion
	// order; the contiguity check guards against a truncated or edited log
	for i, ev := range events {
		if ev.LeafIndex != uint64(i) {
			return nil, fmt.Errorf("%w: expected leaf index %d, got %d",
				tree.ErrBadEventLog, i, ev.LeafIndex)
		}
	}
	return events, nil
}

// auditPersistedRoot compares the replayed accumulator root with the root
// stored at the last successful commit.
func (s *State) auditPersistedRoot() error {
	rd := prefixeddb.NewPrefixedReader(s.db, metaPrefix)
	stored, err := rd.Get(rootKey)
	if errors.Is(err, db.ErrKeyNotFound) {
		// fresh session, nothing persisted yet
		if s.tree.Size() == 0 {
			return nil
		}
		return fmt.Errorf("%w: %d events but no persisted root",
			ErrMirrorDivergence, s.tree.Size())
	}
	if err != nil {
		return err
	}
	storedRoot, err := types.FieldElementFromBytes(stored)
	if err != nil {
		return fmt.Errorf("%w: corrupt persisted root: %v", ErrMirrorDivergence, err)
	}
	if !s.tree.Root().Equal(storedRoot) {
		return fmt.Errorf("%w: replayed %s, persisted %s",
			ErrMirrorDivergence, s.tree.Root(), storedRoot)
	}
	return nil
}

// AddCommitment appends a commitment to the accumulator and durably records
// the insertion event and the new root in a single transaction. It returns
// the assigned leaf index and the post-insertion root.
func (s *State) AddCommitment(commitment *types.FieldElement) (uint64, *types.FieldElement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diverged {
		return 0, nil, ErrStateDiverged
	}

	index, root, err := s.tree.Insert(commitment)
	if err != nil {
		return 0, nil, err
	}

	ev := tree.InsertionEvent{
		Commitment: commitment,
		LeafIndex:  index,
		Timestamp:  time.Now().Unix(),
	}
	data, err := cbor.Marshal(ev)
	if err != nil {
		s.diverged = true
		return 0, nil, err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)

	wtx := s.db.WriteTx()
	defer wtx.Discard()
	if err := prefixeddb.NewPrefixedWriteTx(wtx, eventPrefix).Set(key, data); err != nil {
		s.diverged = true
		return 0, nil, err
	}
	if err := prefixeddb.NewPrefixedWriteTx(wtx, metaPrefix).Set(rootKey, root.Bytes()); err != nil {
		s.diverged = true
		return 0, nil, err
	}
	if err := wtx.Commit(); err != nil {
		// the accumulator already moved; refuse further mutations
		s.diverged = true
		return 0, nil, fmt.Errorf("commit insertion event: %w", err)
	}

	s.history.Record(root)
	log.Debugw("commitment added",
		"index", index,
		"root", root.String())
	return index, root, nil
}

// Root returns the current accumulator root.
func (s *State) Root() *types.FieldElement {
	return s.tree.Root()
}

// Size returns the number of registered commitments.
func (s *State) Size() uint64 {
	return s.tree.Size()
}

// KnownRoot reports whether root is within the retained history window.
func (s *State) KnownRoot(root *types.FieldElement) bool {
	return s.history.Known(root)
}

// GenPath builds the membership path for the commitment at index against
// the current root.
func (s *State) GenPath(index uint64) (*tree.Path, error) {
	return s.tree.GenPath(index)
}

// HasNullifier reports whether a nullifier hash has already been spent.
func (s *State) HasNullifier(nullifierHash *types.FieldElement) (bool, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, nullifierPrefix)
	_, err := rd.Get(nullifierHash.Bytes())
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SpendNullifier marks a nullifier hash as used, bound to the root its
// proof was generated against. The root must still be inside the history
// window (ErrUnknownRoot) and the hash must be fresh (ErrNullifierUsed).
// The check and the write happen under the state lock, so two concurrent
// spends of the same hash cannot both succeed.
func (s *State) SpendNullifier(nullifierHash, root *types.FieldElement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diverged {
		return ErrStateDiverged
	}

	if !s.history.Known(root) {
		return fmt.Errorf("%w: %s", ErrUnknownRoot, root)
	}
	used, err := s.HasNullifier(nullifierHash)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s", ErrNullifierUsed, nullifierHash)
	}

	wtx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), nullifierPrefix)
	defer wtx.Discard()
	if err := wtx.Set(nullifierHash.Bytes(), root.Bytes()); err != nil {
		return err
	}
	if err := wtx.Commit(); err != nil {
		return fmt.Errorf("commit nullifier: %w", err)
	}
	log.Debugw("nullifier spent",
		"nullifierHash", nullifierHash.String(),
		"root", root.String())
	return nil
}

// Events returns the full ordered insertion event log.
func (s *State) Events() ([]tree.InsertionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadEvents(s.db)
}

// Audit replays the persisted event log into a fresh accumulator and checks
// it reproduces the live root. It returns ErrMirrorDivergence when the
// store and the in-memory state disagree.
func (s *State) Audit() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, err := loadEvents(s.db)
	if err != nil {
		return err
	}
	seed, err := types.ParseFieldElement(types.ZeroLeafSeed)
	if err != nil {
		return err
	}
	mirror, err := tree.Rebuild(types.CommitmentTreeDepth, seed, events)
	if err != nil {
		return err
	}
	if !mirror.Root().Equal(s.tree.Root()) {
		return fmt.Errorf("%w: replayed %s, live %s",
			ErrMirrorDivergence, mirror.Root(), s.tree.Root())
	}
	return nil
}

// Close releases the state. The underlying database is owned by the caller
// and stays open.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Debugw("session state closed", "sessionID", fmt.Sprintf("%x", s.sessionID))
}
