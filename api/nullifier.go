package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/state"
	"github.com/vocdoni/anonvote/types"
)

// spendNullifier marks a nullifier hash as used
// POST /nullifiers
func (a *API) spendNullifier(w http.ResponseWriter, r *http.Request) {
	req := &SpendNullifier{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if errors.Is(err, types.ErrNotInField) {
			ErrInvalidFieldElement.WithErr(err).Write(w)
			return
		}
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.NullifierHash == nil || req.Root == nil {
		ErrMalformedBody.With("missing nullifierHash or root").Write(w)
		return
	}

	if err := a.state.SpendNullifier(req.NullifierHash, req.Root); err != nil {
		switch {
		case errors.Is(err, state.ErrUnknownRoot):
			ErrUnknownRoot.Withf("root %s", req.Root).Write(w)
		case errors.Is(err, state.ErrNullifierUsed):
			ErrNullifierAlreadyUsed.Withf("nullifierHash %s", req.NullifierHash).Write(w)
		default:
			ErrGenericInternalServerError.WithErr(err).Write(w)
		}
		return
	}
	log.Infow("nullifier spent",
		"nullifierHash", req.NullifierHash.String(),
		"root", req.Root.String())
	httpWriteOK(w)
}

// nullifierStatus checks whether a nullifier hash has been spent
// GET /nullifiers/{nullifierHash}
func (a *API) nullifierStatus(w http.ResponseWriter, r *http.Request) {
	nullifierHash, err := types.ParseFieldElement(chi.URLParam(r, NullifierURLParam))
	if err != nil {
		ErrInvalidFieldElement.WithErr(err).Write(w)
		return
	}
	spent, err := a.state.HasNullifier(nullifierHash)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &NullifierStatus{NullifierHash: nullifierHash, Spent: spent})
}
