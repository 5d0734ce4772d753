package httptransport

import (
	"net/http"

	appuser "chip-ledger/internal/app/user"

	"github.com/go-chi/chi/v5"
)

type UserHandlers struct {
	svc *appuser.Service
}

func NewUserHandlers(svc *appuser.Service) *UserHandlers {
	return &UserHandlers{svc: svc}
}

func (h *UserHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Me(r.Context(), callerFrom(r))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *UserHandlers) UpdateMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in appuser.UpdateProfileInput
		if !decodeBody(w, r, "update_profile.json", &in) {
			return
		}
		resp, err := h.svc.UpdateDisplayName(r.Context(), callerFrom(r), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *UserHandlers) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.History(r.Context(), callerFrom(r), limit, offset)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *UserHandlers) GameHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.GameHistory(r.Context(), callerFrom(r), chi.URLParam(r, "history_id"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
