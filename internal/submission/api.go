package submission

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/corex-health/corex/internal/shared/errors"
	"github.com/corex-health/corex/internal/shared/metrics"
)

// Handler provides HTTP handlers for the submission module
type Handler struct {
	controller *Controller
}

// NewHandler creates a new submission handler
func NewHandler(controller *Controller) *Handler {
	return &Handler{controller: controller}
}

// Routes registers the submission routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/form", h.UpdateField)
	r.Post("/narrative", h.UpdateNarrative)
	r.Post("/submit", h.Submit)
	r.Post("/reset", h.Reset)
	r.Get("/state", h.GetState)

	return r
}

// UpdateField handles one form field mutation
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	if err := h.controller.UpdateField(req.Name, req.Value); err != nil {
		writeError(w, apperrors.BadRequest(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateNarrative replaces the clinical narrative
func (h *Handler) UpdateNarrative(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	h.controller.UpdateNarrative(req.Text)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Submit runs one submission against the prediction service and returns
// the resulting controller state
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	_, err := h.controller.Submit(r.Context())
	if err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			writeError(w, apperrors.Conflict("a submission is already in progress"))
			return
		}
		// Cause stays server-side; the state carries the generic message
		state := h.controller.State()
		log.Printf("submission %s failed: %v", state.CorrelationID, err)
		metrics.RecordSubmission("failed")
		writeJSON(w, http.StatusBadGateway, state)
		return
	}

	metrics.RecordSubmission("succeeded")
	writeJSON(w, http.StatusOK, h.controller.State())
}

// Reset dismisses the current result or error
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Reset(); err != nil {
		writeError(w, apperrors.Conflict("a submission is already in progress"))
		return
	}
	writeJSON(w, http.StatusOK, h.controller.State())
}

// GetState returns the current controller state for renderers
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.State())
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*apperrors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
