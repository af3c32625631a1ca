package predictor

import "fmt"

// RequestPayload is the wire format expected by the prediction service.
// The external schema is wider than the intake form: RELIGION is always
// sent as an empty placeholder so the service's validation stays happy.
type RequestPayload struct {
	SubjectID         int64   `json:"subject_id"`
	Age               float64 `json:"age"`
	Gender            string  `json:"GENDER"`
	Language          string  `json:"LANGUAGE"`
	Insurance         string  `json:"INSURANCE"`
	Religion          string  `json:"RELIGION"`
	MaritalStatus     string  `json:"MARITAL_STATUS"`
	Ethnicity         string  `json:"ETHNICITY"`
	ChronicConditions string  `json:"Maladie_chronique"`
	Symptoms          string  `json:"Symptômes"`
	Allergies         string  `json:"Allergies"`
	RegularTreatment  string  `json:"Traitement_régulier"`
	Narrative         string  `json:"narrative"`
}

// SimilarCase is one historical case returned alongside a recommendation
type SimilarCase struct {
	ChronicCondition string `json:"Maladie_chronique"`
	Symptoms         string `json:"Symptômes"`
	Allergies        string `json:"Allergies"`
	RegularTreatment string `json:"Traitement_régulier"`
}

// PredictionResult is the prediction service's response. RecommendedDrugs
// and Probabilities are parallel arrays; index 0 is the primary
// recommendation.
type PredictionResult struct {
	SubjectID        *int64        `json:"subject_id,omitempty"`
	RecommendedDrugs []string      `json:"recommended_drugs"`
	Probabilities    []float64     `json:"probabilities"`
	Explanation      string        `json:"explanation"`
	SimilarCases     []SimilarCase `json:"similar_cases"`
}

// Validate enforces the parity invariant between drugs and probabilities
func (r *PredictionResult) Validate() error {
	if len(r.RecommendedDrugs) != len(r.Probabilities) {
		return fmt.Errorf("got %d drugs but %d probabilities",
			len(r.RecommendedDrugs), len(r.Probabilities))
	}
	return nil
}
