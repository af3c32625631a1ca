package submission

import (
	"testing"
)

// TestBuildPayloadAgeCoercion tests that the age field is coerced to a
// number only at payload-build time, defaulting to 0 on anything that
// does not parse
func TestBuildPayloadAgeCoercion(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"45", 45},
		{"45.5", 45.5},
		{" 45 ", 45},
		{"NaN", 0},
		{"+Inf", 0},
		{"-3", -3},
	}

	for _, tc := range cases {
		form := Form{Age: tc.raw}
		payload := buildPayload(form, "", 1)
		if payload.Age != tc.want {
			t.Errorf("age %q: expected %v, got %v", tc.raw, tc.want, payload.Age)
		}
	}
}

// TestBuildPayloadRemap tests the internal-to-external field remapping,
// including the empty RELIGION placeholder
func TestBuildPayloadRemap(t *testing.T) {
	form := Form{
		Age:           "61",
		Gender:        "F",
		Allergies:     "penicillin",
		Insurance:     "Medicare",
		Ethnicity:     "white",
		Symptoms:      "fatigue",
		Treatments:    "insulin",
		Conditions:    "diabetes",
		Language:      "ENGL",
		MaritalStatus: "married",
	}

	payload := buildPayload(form, "patient reports fatigue", 4711)

	if payload.SubjectID != 4711 {
		t.Errorf("expected subject_id 4711, got %d", payload.SubjectID)
	}
	if payload.Gender != "F" || payload.Language != "ENGL" || payload.Insurance != "Medicare" {
		t.Error("demographic fields not remapped")
	}
	if payload.ChronicConditions != "diabetes" {
		t.Errorf("expected conditions remapped to Maladie_chronique, got %q", payload.ChronicConditions)
	}
	if payload.Symptoms != "fatigue" || payload.Allergies != "penicillin" {
		t.Error("clinical fields not remapped")
	}
	if payload.RegularTreatment != "insulin" {
		t.Errorf("expected treatments remapped to Traitement_régulier, got %q", payload.RegularTreatment)
	}
	if payload.Religion != "" {
		t.Errorf("RELIGION must always be the empty placeholder, got %q", payload.Religion)
	}
	if payload.Narrative != "patient reports fatigue" {
		t.Errorf("narrative not passed verbatim: %q", payload.Narrative)
	}
}

// TestSubjectIDGenerator tests uniqueness and the JSON-safe range
func TestSubjectIDGenerator(t *testing.T) {
	g := newSubjectIDGenerator()

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if id < 0 || id > maxSafeSubjectID {
			t.Fatalf("id %d outside JSON-safe range", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
