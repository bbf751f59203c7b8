package api

import (
	"github.com/vocdoni/anonvote/tree"
	"github.com/vocdoni/anonvote/types"
)

// Commitment is the request body to register a new commitment.
type Commitment struct {
	Commitment *types.FieldElement `json:"commitment"`
}

// CommitmentResponse is the response to a commitment registration: the
// assigned leaf index and the post-insertion root.
type CommitmentResponse struct {
	Index uint64              `json:"index"`
	Root  *types.FieldElement `json:"root"`
}

// Root is the response to a current root request.
type Root struct {
	Root *types.FieldElement `json:"root"`
	Size uint64              `json:"size"`
}

// RootKnown is the response to a root history check.
type RootKnown struct {
	Root  *types.FieldElement `json:"root"`
	Known bool                `json:"known"`
}

// SpendNullifier is the request body to mark a nullifier hash as used.
type SpendNullifier struct {
	NullifierHash *types.FieldElement `json:"nullifierHash"`
	Root          *types.FieldElement `json:"root"`
}

// NullifierStatus is the response to a nullifier consumption check.
type NullifierStatus struct {
	NullifierHash *types.FieldElement `json:"nullifierHash"`
	Spent         bool                `json:"spent"`
}

// Events is the full insertion event log, the input of an event-replay
// mirror rebuild.
type Events struct {
	Events []tree.InsertionEvent `json:"events"`
}
