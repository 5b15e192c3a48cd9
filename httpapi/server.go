// Package httpapi exposes the compaction engine's control
// surface over HTTP: config inspection and update, per-
// conversation status, and manual compaction. It is a thin
// wrapper — all behavior lives in the controller package.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rickchristie/recap"
	"github.com/rickchristie/recap/controller"
)

// maxBodyBytes bounds control request bodies. Histories sent to
// POST /compact can be large, but not unbounded.
const maxBodyBytes = 8 << 20

// Handler serves the control API for a Controller.
//
// Routes:
//
//	GET  /config  — current config
//	POST /config  — partial JSON update
//	GET  /status  — per-conversation state snapshots
//	POST /compact — manually compact a supplied history
//
// The endpoints are unauthenticated; bind them to a loopback or
// otherwise trusted listener.
type Handler struct {
	ctrl *controller.Controller
	mux  *http.ServeMux
}

// New creates a Handler over the given controller.
func New(ctrl *controller.Controller) *Handler {
	h := &Handler{ctrl: ctrl, mux: http.NewServeMux()}
	h.mux.HandleFunc("/config", h.handleConfig)
	h.mux.HandleFunc("/status", h.handleStatus)
	h.mux.HandleFunc("/compact", h.handleCompact)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Config())
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body")
			return
		}
		cfg, err := h.ctrl.UpdateConfig(body)
		var vErr *recap.ConfigValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		if err != nil {
			// Config applied but persistence failed.
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"status": "error",
				"error":  err.Error(),
				"config": cfg,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"config": cfg,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":       h.ctrl.Config().Enabled,
		"conversations": h.ctrl.Status(),
	})
}

// compactRequest is the body of POST /compact.
type compactRequest struct {
	ConversationID string          `json:"conversation_id"`
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
	Messages       []recap.Message `json:"messages"`
}

func (h *Handler) handleCompact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	var req compactRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "no messages provided")
		return
	}

	result := h.ctrl.TriggerCompaction(
		r.Context(), req.ConversationID, req.Messages,
		req.Provider, req.Model,
	)

	response := map[string]any{"status": statusOf(result.Kind)}
	if result.Messages != nil {
		response["messages"] = result.Messages
	}
	if result.Err != nil {
		response["error"] = result.Err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

func statusOf(kind controller.ResultKind) string {
	switch kind {
	case controller.ResultCompacted:
		return "compacted"
	case controller.ResultFailed:
		return "failed"
	case controller.ResultSkipped:
		return "skipped"
	case controller.ResultBusy:
		return "busy"
	default:
		return "none"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors past the header write can only be
	// surfaced to the client as a broken body.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
