package httptransport

import (
	"net/http"

	apptable "chip-ledger/internal/app/table"

	"github.com/go-chi/chi/v5"
)

func (h *TableHandlers) AddPlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in apptable.AddPlayerInput
		if !decodeBody(w, r, "add_player.json", &in) {
			return
		}
		resp, err := h.svc.AddPlayer(r.Context(), callerFrom(r), chi.URLParam(r, "ref"), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *TableHandlers) RemovePlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.svc.RemovePlayer(r.Context(), chi.URLParam(r, "ref"), chi.URLParam(r, "player_id"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apptable.DeleteResponse{OK: true})
	}
}

func (h *TableHandlers) AddBuyIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in apptable.AddBuyInInput
		if !decodeBody(w, r, "add_buyin.json", &in) {
			return
		}
		resp, err := h.svc.AddBuyIn(r.Context(), chi.URLParam(r, "ref"), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metricBuyInsRecorded.Add(1)
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *TableHandlers) RemoveBuyIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.svc.RemoveBuyIn(r.Context(), chi.URLParam(r, "ref"), chi.URLParam(r, "buyin_id"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apptable.DeleteResponse{OK: true})
	}
}

func (h *TableHandlers) UpsertChipCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in apptable.ChipCountInput
		if !decodeBody(w, r, "chip_counts.json", &in) {
			return
		}
		resp, err := h.svc.UpsertChipCount(r.Context(), chi.URLParam(r, "ref"), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metricChipCountsRecorded.Add(1)
		writeJSON(w, http.StatusOK, resp)
	}
}
