package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/tree"
	"github.com/vocdoni/anonvote/types"
)

// newCommitment registers a new commitment in the accumulator
// POST /commitments
func (a *API) newCommitment(w http.ResponseWriter, r *http.Request) {
	req := &Commitment{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if errors.Is(err, types.ErrNotInField) {
			ErrInvalidFieldElement.WithErr(err).Write(w)
			return
		}
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Commitment == nil {
		ErrMalformedBody.With("missing commitment").Write(w)
		return
	}

	index, root, err := a.state.AddCommitment(req.Commitment)
	if err != nil {
		if errors.Is(err, tree.ErrTreeFull) {
			ErrAccumulatorFull.WithErr(err).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	log.Infow("commitment registered", "index", index, "root", root.String())
	httpWriteJSON(w, &CommitmentResponse{Index: index, Root: root})
}

// events returns the full insertion event log
// GET /commitments
func (a *API) events(w http.ResponseWriter, r *http.Request) {
	events, err := a.state.Events()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &Events{Events: events})
}

// commitmentPath returns the membership path of a registered commitment
// GET /commitments/{index}/path
func (a *API) commitmentPath(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, LeafIndexURLParam), 10, 64)
	if err != nil {
		ErrMalformedLeafIndex.WithErr(err).Write(w)
		return
	}
	path, err := a.state.GenPath(index)
	if err != nil {
		if errors.Is(err, tree.ErrLeafNotFound) {
			ErrLeafNotFound.Withf("index %d", index).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, path)
}

// root returns the current accumulator root
// GET /root
func (a *API) root(w http.ResponseWriter, r *http.Request) {
	httpWriteJSON(w, &Root{Root: a.state.Root(), Size: a.state.Size()})
}

// rootKnown checks a root against the recent history window
// GET /roots/{root}
func (a *API) rootKnown(w http.ResponseWriter, r *http.Request) {
	root, err := types.ParseFieldElement(chi.URLParam(r, RootURLParam))
	if err != nil {
		ErrInvalidFieldElement.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &RootKnown{Root: root, Known: a.state.KnownRoot(root)})
}
