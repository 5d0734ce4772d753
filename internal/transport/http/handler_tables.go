package httptransport

import (
	"net/http"

	apptable "chip-ledger/internal/app/table"
	"chip-ledger/internal/money"

	"github.com/go-chi/chi/v5"
)

type TableHandlers struct {
	svc *apptable.Service
}

func NewTableHandlers(svc *apptable.Service) *TableHandlers {
	return &TableHandlers{svc: svc}
}

func (h *TableHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in apptable.CreateTableInput
		if !decodeBody(w, r, "create_table.json", &in) {
			return
		}
		resp, err := h.svc.CreateTable(r.Context(), callerFrom(r), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metricTablesCreated.Add(1)
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *TableHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in apptable.JoinTableInput
		if !decodeBody(w, r, "join_table.json", &in) {
			return
		}
		resp, err := h.svc.JoinTable(r.Context(), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.GetTable(r.Context(), chi.URLParam(r, "ref"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) End() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.EndTable(r.Context(), callerFrom(r), chi.URLParam(r, "ref"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metricTablesEnded.Add(1)
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) Archive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.ArchiveTable(r.Context(), callerFrom(r), chi.URLParam(r, "ref"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metricTablesArchived.Add(1)
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) GetDenominations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.GetDenominations(r.Context(), chi.URLParam(r, "ref"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) SetDenominations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in money.Denominations
		if !decodeBody(w, r, "denominations.json", &in) {
			return
		}
		resp, err := h.svc.SetDenominations(r.Context(), callerFrom(r), chi.URLParam(r, "ref"), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) SetEndChipCounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in money.ChipCounts
		if !decodeBody(w, r, "chip_counts.json", &in) {
			return
		}
		resp, err := h.svc.SetEndChipCounts(r.Context(), chi.URLParam(r, "ref"), in)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *TableHandlers) Reconcile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Reconcile(r.Context(), chi.URLParam(r, "ref"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		metricReconcileTotal.Add(1)
		writeJSON(w, http.StatusOK, resp)
	}
}
