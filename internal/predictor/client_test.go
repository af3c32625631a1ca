package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corex-health/corex/internal/shared/config"
)

func testClient(url string) *Client {
	return NewClient(config.PredictorConfig{URL: url, Timeout: 5 * time.Second})
}

// TestPredictSuccess tests the request wire format and response parsing
func TestPredictSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
			return
		}
		for _, key := range []string{"subject_id", "age", "GENDER", "RELIGION", "Maladie_chronique", "Symptômes", "Traitement_régulier", "narrative"} {
			if _, ok := body[key]; !ok {
				t.Errorf("request body missing key %q", key)
			}
		}
		if body["RELIGION"] != "" {
			t.Errorf("RELIGION must be empty, got %v", body["RELIGION"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"recommended_drugs": []string{"Metformin", "Glipizide"},
			"probabilities":     []float64{0.82, 0.11},
			"explanation":       "pattern matches adult-onset diabetes",
			"similar_cases": []map[string]string{
				{"Maladie_chronique": "diabetes", "Symptômes": "thirst", "Allergies": "", "Traitement_régulier": "metformin"},
			},
		})
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Predict(context.Background(), RequestPayload{SubjectID: 1, Age: 45})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(result.RecommendedDrugs) != 2 || result.RecommendedDrugs[0] != "Metformin" {
		t.Errorf("unexpected drugs: %v", result.RecommendedDrugs)
	}
	if result.Probabilities[0] != 0.82 {
		t.Errorf("unexpected probability: %v", result.Probabilities[0])
	}
	if len(result.SimilarCases) != 1 || result.SimilarCases[0].ChronicCondition != "diabetes" {
		t.Errorf("similar cases not parsed: %+v", result.SimilarCases)
	}
}

// TestPredictServerError tests that a non-2xx status becomes a typed
// StatusError carrying the code for logging
func TestPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Predict(context.Background(), RequestPayload{})
	if err == nil {
		t.Fatal("expected an error")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("expected code 500, got %d", statusErr.Code)
	}
}

// TestPredictParityViolation tests that mismatched drugs/probabilities
// lengths are rejected at decode
func TestPredictParityViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"recommended_drugs": []string{"Metformin"},
			"probabilities":     []float64{0.8, 0.2},
			"explanation":       "",
			"similar_cases":     []any{},
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Predict(context.Background(), RequestPayload{})
	if err == nil {
		t.Fatal("expected an error for mismatched array lengths")
	}
}

// TestPredictTransportError tests the no-response path
func TestPredictTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).Predict(context.Background(), RequestPayload{})
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Error("transport failure must not masquerade as a status error")
	}
}
