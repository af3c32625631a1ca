package submission

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corex-health/corex/internal/predictor"
)

// maxSafeSubjectID keeps subject identifiers within the integer range a
// JSON number can represent exactly (2^53 - 1)
const maxSafeSubjectID = 1<<53 - 1

// subjectIDGenerator hands out per-submission subject identifiers: a
// monotonic counter seeded from the wall clock, so identifiers stay
// unique across restarts within practical collision tolerance. Not
// cryptographic and not globally unique.
type subjectIDGenerator struct {
	next atomic.Int64
}

func newSubjectIDGenerator() *subjectIDGenerator {
	g := &subjectIDGenerator{}
	g.next.Store(time.Now().UnixNano())
	return g
}

func (g *subjectIDGenerator) Next() int64 {
	return g.next.Add(1) & maxSafeSubjectID
}

// buildPayload snapshots the form and narrative into the wire format.
// The age field is coerced to a number here and only here; anything
// that does not parse cleanly becomes 0 rather than an error.
func buildPayload(form Form, narrative string, subjectID int64) predictor.RequestPayload {
	age, err := strconv.ParseFloat(strings.TrimSpace(form.Age), 64)
	if err != nil || math.IsNaN(age) || math.IsInf(age, 0) {
		age = 0
	}

	return predictor.RequestPayload{
		SubjectID:         subjectID,
		Age:               age,
		Gender:            form.Gender,
		Language:          form.Language,
		Insurance:         form.Insurance,
		Religion:          "",
		MaritalStatus:     form.MaritalStatus,
		Ethnicity:         form.Ethnicity,
		ChronicConditions: form.Conditions,
		Symptoms:          form.Symptoms,
		Allergies:         form.Allergies,
		RegularTreatment:  form.Treatments,
		Narrative:         narrative,
	}
}
