package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/xraph/hookbridge/action"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/workflow"
)

// handleWebhook receives {action, ...params} from the engine.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.webhookAuthorized(r) {
		h.logger.WarnContext(ctx, "webhook rejected", "request_id", RequestID(ctx), "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Sorry, you are not allowed to do that.")
		return
	}

	params := action.Params{}
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeResult(w, h.bridge.Receive(ctx, actionName(params), params))
}

// actionName returns the action parameter. Only an absent or null action is
// missing; any other non-string value is passed on as an unknown name.
func actionName(params action.Params) string {
	switch v := params["action"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// webhookAuthorized compares the API key header with the stored key. An
// unset key denies every call.
func (h *Handler) webhookAuthorized(r *http.Request) bool {
	key, err := settings.String(r.Context(), h.bridge.Store(), settings.KeyAPIKey)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "read api key failed", "error", err)
		return false
	}
	if key == "" {
		return false
	}
	got := r.Header.Get(workflow.HeaderAPIKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
}
