package api

import (
	"net/http"
)

type testConnectionRequest struct {
	EngineURL string `json:"engine_url"`
}

type executeWorkflowRequest struct {
	WorkflowID string         `json:"workflow_id"`
	Data       map[string]any `json:"data"`
}

func (h *Handler) testConnection(w http.ResponseWriter, r *http.Request) {
	var req testConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeResult(w, h.bridge.Workflows().TestConnection(r.Context(), req.EngineURL))
}

func (h *Handler) listWorkflows(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.bridge.Workflows().ListWorkflows(r.Context()))
}

func (h *Handler) executeWorkflow(w http.ResponseWriter, r *http.Request) {
	var req executeWorkflowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeResult(w, h.bridge.Workflows().ExecuteWorkflow(r.Context(), req.WorkflowID, req.Data))
}

func (h *Handler) workflowStatus(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.bridge.Workflows().ExecutionStatus(r.Context(), r.PathValue("execution_id")))
}
