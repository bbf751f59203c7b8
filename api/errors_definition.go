//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the
// current last 4XXX or 5XXX. Gaps in the numbering must not be reused.
var (
	ErrResourceNotFound     = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody        = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidFieldElement  = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("value is not a canonical field element")}
	ErrMalformedLeafIndex   = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed leaf index")}
	ErrLeafNotFound         = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("leaf not found in the accumulator")}
	ErrUnknownRoot          = Error{Code: 40901, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("root is not in the recent history")}
	ErrNullifierAlreadyUsed = Error{Code: 40905, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("nullifier already used")}
	ErrAccumulatorFull      = Error{Code: 40906, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("accumulator is full")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
