// Package api provides the HTTP surface of the phishguard email
// classification service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/theopenlane/phishguard/internal/types"
)

// ClassifierService runs the classification pipeline for one request.
// It never fails: internal faults degrade to a conservative verdict.
type ClassifierService interface {
	ClassifyEmail(ctx context.Context, req types.ClassificationRequest) *types.ClassificationResponse
}

// Handler manages API endpoints
type Handler struct {
	service ClassifierService
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "phishguard",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleClassify runs the classification pipeline on the submitted email
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req types.ClassificationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Code: errCodeInvalidRequest, Message: ErrInvalidRequestBody.Error()})

		return
	}

	if !req.HasContent() {
		writeJSON(w, http.StatusBadRequest, Error{Code: errCodeValidation, Message: ErrEmptyEmail.Error()})

		return
	}

	response := h.service.ClassifyEmail(r.Context(), req)

	writeJSON(w, http.StatusOK, response)
}
