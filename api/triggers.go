package api

import (
	"net/http"

	"github.com/xraph/hookbridge/payload"
)

func (h *Handler) listTriggers(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.bridge.Triggers().Statuses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// testTrigger sends a test delivery. The body is the supplied test data.
func (h *Handler) testTrigger(w http.ResponseWriter, r *http.Request) {
	supplied := map[string]any{}
	if err := decodeJSON(r, &supplied); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeResult(w, h.bridge.TestTrigger(r.Context(), r.PathValue("id"), supplied))
}

// fireEvent fires a trigger with the body as its payload.
func (h *Handler) fireEvent(w http.ResponseWriter, r *http.Request) {
	data := payload.Document{}
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeResult(w, h.bridge.Fire(r.Context(), r.PathValue("trigger"), data))
}
