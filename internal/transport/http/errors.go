package httptransport

import (
	"errors"
	"net/http"

	apptable "chip-ledger/internal/app/table"
	appuser "chip-ledger/internal/app/user"
	"chip-ledger/internal/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{apptable.ErrInvalidRequest, http.StatusBadRequest},
	{appuser.ErrInvalidRequest, http.StatusBadRequest},
	{auth.ErrUnauthorized, http.StatusUnauthorized},
	{apptable.ErrForbidden, http.StatusForbidden},
	{appuser.ErrForbidden, http.StatusForbidden},
	{apptable.ErrTableNotFound, http.StatusNotFound},
	{apptable.ErrPlayerNotFound, http.StatusNotFound},
	{apptable.ErrBuyInNotFound, http.StatusNotFound},
	{appuser.ErrHistoryNotFound, http.StatusNotFound},
	{apptable.ErrDenominationsNotSet, http.StatusConflict},
	{apptable.ErrTableEnded, http.StatusGone},
}

// writeAppError maps a service error to its status and wire code. Anything
// unrecognised is logged and reported as internal_error.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			metricAPIErrors.Add(e.err.Error(), 1)
			WriteHTTPError(w, e.status, e.err.Error())
			return
		}
	}
	writeInternalError(w, r, err)
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	metricAPIErrors.Add("internal_error", 1)
	log.Error().
		Err(err).
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}
