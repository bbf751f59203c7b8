package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vocdoni/anonvote/api"
	"github.com/vocdoni/anonvote/tree"
	"github.com/vocdoni/anonvote/types"
)

// AddCommitment registers a commitment and returns its leaf index and the
// post-insertion root.
func (c *HTTPclient) AddCommitment(commitment *types.FieldElement) (uint64, *types.FieldElement, error) {
	data, status, err := c.Request(HTTPPOST,
		&api.Commitment{Commitment: commitment}, api.CommitmentsEndpoint)
	if err != nil {
		return 0, nil, err
	}
	if status != http.StatusOK {
		return 0, nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	res := &api.CommitmentResponse{}
	if err := json.Unmarshal(data, res); err != nil {
		return 0, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Index, res.Root, nil
}

// Path retrieves the membership path of the commitment at the given index.
func (c *HTTPclient) Path(index uint64) (*tree.Path, error) {
	data, status, err := c.Request(HTTPGET, nil,
		api.CommitmentsEndpoint, strconv.FormatUint(index, 10), "path")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	path := &tree.Path{}
	if err := json.Unmarshal(data, path); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return path, nil
}

// Root retrieves the current accumulator root and size.
func (c *HTTPclient) Root() (*types.FieldElement, uint64, error) {
	data, status, err := c.Request(HTTPGET, nil, api.RootEndpoint)
	if err != nil {
		return nil, 0, err
	}
	if status != http.StatusOK {
		return nil, 0, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	res := &api.Root{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Root, res.Size, nil
}

// RootKnown checks a root against the server's recent history window.
func (c *HTTPclient) RootKnown(root *types.FieldElement) (bool, error) {
	data, status, err := c.Request(HTTPGET, nil, "roots", root.String())
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	res := &api.RootKnown{}
	if err := json.Unmarshal(data, res); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Known, nil
}

// SpendNullifier marks a nullifier hash as used against a recent root.
func (c *HTTPclient) SpendNullifier(nullifierHash, root *types.FieldElement) error {
	data, status, err := c.Request(HTTPPOST,
		&api.SpendNullifier{NullifierHash: nullifierHash, Root: root},
		api.NullifiersEndpoint)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	return nil
}

// NullifierSpent checks whether a nullifier hash has been consumed.
func (c *HTTPclient) NullifierSpent(nullifierHash *types.FieldElement) (bool, error) {
	data, status, err := c.Request(HTTPGET, nil, "nullifiers", nullifierHash.String())
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	res := &api.NullifierStatus{}
	if err := json.Unmarshal(data, res); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Spent, nil
}

// Events downloads the full insertion event log.
func (c *HTTPclient) Events() ([]tree.InsertionEvent, error) {
	data, status, err := c.Request(HTTPGET, nil, api.CommitmentsEndpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	res := &api.Events{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Events, nil
}

// Rebuild downloads the event log and reconstructs the accumulator locally,
// the event-replay mirror of a remote registry.
func (c *HTTPclient) Rebuild() (*tree.Tree, error) {
	events, err := c.Events()
	if err != nil {
		return nil, err
	}
	seed, err := types.ParseFieldElement(types.ZeroLeafSeed)
	if err != nil {
		return nil, err
	}
	return tree.Rebuild(types.CommitmentTreeDepth, seed, events)
}
