package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/trigger"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := settings.Load(r.Context(), h.bridge.Store())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var u settings.Update
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Store destinations in canonical form; legacy strings become objects.
	if len(u.WebhookURLs) > 0 {
		dests, err := trigger.ParseDestinations(u.WebhookURLs)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		raw, err := json.Marshal(dests)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		u.WebhookURLs = raw
	}

	if err := u.Apply(r.Context(), h.bridge.Store()); err != nil {
		var verr *hookbridge.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "settings updated", "request_id", RequestID(r.Context()))
	writeJSON(w, http.StatusOK, hookbridge.Result{Success: true, Message: "Settings updated successfully"})
}
