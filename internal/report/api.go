package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/corex-health/corex/internal/shared/errors"
	"github.com/corex-health/corex/internal/shared/metrics"
	"github.com/corex-health/corex/internal/submission"
)

// RegionOpener opens the rendered report view for capture. Each export
// gets a fresh region so browser state never leaks between runs.
type RegionOpener interface {
	Open(ctx context.Context) (Region, error)
}

// Handler provides HTTP handlers for the report module
type Handler struct {
	exporter   *Exporter
	opener     RegionOpener
	controller *submission.Controller
}

// NewHandler creates a new report handler
func NewHandler(exporter *Exporter, opener RegionOpener, controller *submission.Controller) *Handler {
	return &Handler{exporter: exporter, opener: opener, controller: controller}
}

// Routes registers the report routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/export", h.Export)

	return r
}

// Export captures the rendered report and streams it back as a PDF
// attachment. 404 when no result exists yet, 409 when an export is
// already running, 502 when the capture browser or assembly fails.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	state := h.controller.State()
	if state.Result == nil {
		writeError(w, apperrors.NotFound("recommendation"))
		return
	}

	start := time.Now()

	region, err := h.opener.Open(r.Context())
	if err != nil {
		log.Printf("export %s: open report region: %v", state.CorrelationID, err)
		metrics.RecordExport("failed", 0, time.Since(start))
		writeError(w, apperrors.Unavailable("report capture is unavailable", err))
		return
	}
	defer region.Close()

	doc, err := h.exporter.Export(r.Context(), region, A4Portrait, state.Result.SubjectID)
	if err != nil {
		if errors.Is(err, ErrExportInProgress) {
			writeError(w, apperrors.Conflict("an export is already in progress"))
			return
		}
		log.Printf("export %s failed: %v", state.CorrelationID, err)
		metrics.RecordExport("failed", 0, time.Since(start))
		writeError(w, apperrors.Unavailable("report export failed", err))
		return
	}

	if doc.Pages == 0 {
		metrics.RecordExport("empty", 0, time.Since(start))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	metrics.RecordExport("succeeded", doc.Pages, time.Since(start))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Write(doc.Data)
}

// --- Helpers ---

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
