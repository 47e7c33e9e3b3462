package api

import (
	"net/http"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/deliverylog"
)

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	f := deliverylog.Filter{
		Type:   deliverylog.Type(queryParam(r, "type")),
		Status: deliverylog.Status(queryParam(r, "status")),
	}
	entries, err := h.bridge.Log().List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*deliverylog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) clearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Log().Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hookbridge.Result{Success: true, Message: "Logs cleared"})
}
