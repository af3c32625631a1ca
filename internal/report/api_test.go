package report

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corex-health/corex/internal/predictor"
	"github.com/corex-health/corex/internal/submission"
)

type stubPredictor struct {
	result *predictor.PredictionResult
}

func (s *stubPredictor) Predict(ctx context.Context, payload predictor.RequestPayload) (*predictor.PredictionResult, error) {
	return s.result, nil
}

type stubOpener struct {
	region  Region
	openErr error
}

func (s *stubOpener) Open(ctx context.Context) (Region, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.region, nil
}

func succeededController(t *testing.T, subjectID *int64) *submission.Controller {
	t.Helper()
	controller := submission.NewController(&stubPredictor{
		result: &predictor.PredictionResult{
			SubjectID:        subjectID,
			RecommendedDrugs: []string{"Metformin"},
			Probabilities:    []float64{0.82},
		},
	})
	if _, err := controller.Submit(context.Background()); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return controller
}

// TestExportEndpoint tests the full download path: PDF body, content
// type, and the subject-id file name
func TestExportEndpoint(t *testing.T) {
	subjectID := int64(77)
	region := &fakeRegion{
		snapshot: Snapshot{PNG: encodePNG(t, 40, 60), Width: 40, Height: 60},
	}
	handler := NewHandler(NewExporter(), &stubOpener{region: region}, succeededController(t, &subjectID))

	srv := httptest.NewServer(handler.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/export", "application/json", nil)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "corex_report_77.pdf") {
		t.Errorf("file name missing from disposition: %q", cd)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(string(body), "%PDF") {
		t.Error("response body is not a PDF")
	}
	if region.restoreCalls != 1 {
		t.Errorf("expected one restore, got %d", region.restoreCalls)
	}
}

// TestExportEndpointWithoutResult tests that export is rejected before
// a recommendation exists
func TestExportEndpointWithoutResult(t *testing.T) {
	controller := submission.NewController(&stubPredictor{})
	handler := NewHandler(NewExporter(), &stubOpener{}, controller)

	srv := httptest.NewServer(handler.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/export", "application/json", nil)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

// TestExportEndpointCaptureFailure tests that a browser failure maps to
// a rejected export with no partial file
func TestExportEndpointCaptureFailure(t *testing.T) {
	region := &fakeRegion{captureErr: errors.New("render process gone")}
	handler := NewHandler(NewExporter(), &stubOpener{region: region}, succeededController(t, nil))

	srv := httptest.NewServer(handler.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/export", "application/json", nil)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("failure response must be JSON, got %q", ct)
	}
	if region.restoreCalls != 1 {
		t.Errorf("restore must run on the failure path, got %d", region.restoreCalls)
	}
}

// TestExportEndpointOpenerFailure tests the unreachable-browser path
func TestExportEndpointOpenerFailure(t *testing.T) {
	handler := NewHandler(NewExporter(), &stubOpener{openErr: errors.New("chrome not found")}, succeededController(t, nil))

	srv := httptest.NewServer(handler.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/export", "application/json", nil)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

// TestExportEndpointEmptyRegion tests the zero-page response
func TestExportEndpointEmptyRegion(t *testing.T) {
	region := &fakeRegion{snapshot: Snapshot{}}
	handler := NewHandler(NewExporter(), &stubOpener{region: region}, succeededController(t, nil))

	srv := httptest.NewServer(handler.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/export", "application/json", nil)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}
