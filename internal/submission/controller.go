package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/corex-health/corex/internal/predictor"
	"github.com/corex-health/corex/internal/shared/types"
)

// Status is the lifecycle state of the current submission
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// genericSubmitError is the only failure text users ever see; the
// underlying cause (transport vs. service status) stays in the logs
const genericSubmitError = "Erreur lors de l’appel à l’API"

// ErrSubmissionInFlight is returned when Submit is called while an
// earlier submission has not finished
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Predictor is the outbound dependency of the controller
type Predictor interface {
	Predict(ctx context.Context, payload predictor.RequestPayload) (*predictor.PredictionResult, error)
}

// State is a point-in-time snapshot of the controller for renderers.
// Exactly one of Result and Error is set outside the idle state.
type State struct {
	Status        Status                      `json:"status"`
	Form          Form                        `json:"form"`
	Narrative     string                      `json:"narrative"`
	Result        *predictor.PredictionResult `json:"result,omitempty"`
	Error         string                      `json:"error,omitempty"`
	CorrelationID types.ID                    `json:"correlation_id,omitempty"`
}

// Controller owns the intake form, the narrative and the submission
// state machine. It is the single writer for all of them; the form,
// results view and report exporter read through State().
type Controller struct {
	mu        sync.Mutex
	status    Status
	form      Form
	narrative string
	result    *predictor.PredictionResult
	errMsg    string
	inFlight  bool
	corrID    types.ID

	client Predictor
	ids    *subjectIDGenerator
}

// NewController creates a controller in the idle state
func NewController(client Predictor) *Controller {
	return &Controller{
		status: StatusIdle,
		client: client,
		ids:    newSubjectIDGenerator(),
	}
}

// UpdateField mutates one form field. Always succeeds for known fields;
// values are never validated.
func (c *Controller) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Set(name, value)
}

// UpdateNarrative replaces the clinical narrative
func (c *Controller) UpdateNarrative(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.narrative = text
}

// Submit builds the request payload from the current form state and
// calls the prediction service. Empty fields are permitted; the service
// defines required-ness. At most one submission runs at a time: a
// second call while one is outstanding gets ErrSubmissionInFlight.
//
// The returned error is for logging; the user-facing outcome is always
// read back through State().
func (c *Controller) Submit(ctx context.Context) (*predictor.PredictionResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.inFlight = true
	c.status = StatusSubmitting
	c.result = nil
	c.errMsg = ""
	c.corrID = types.NewID()
	payload := buildPayload(c.form, c.narrative, c.ids.Next())
	c.mu.Unlock()

	// The network call runs outside the lock so reads stay responsive
	// while the request is in flight
	result, err := c.client.Predict(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.status = StatusFailed
		c.errMsg = genericSubmitError
		return nil, err
	}
	c.status = StatusSucceeded
	c.result = result
	return result, nil
}

// Reset dismisses the current result or error and returns to idle.
// Rejected while a submission is outstanding so the eventual response
// cannot resurrect state the user just cleared.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrSubmissionInFlight
	}
	c.status = StatusIdle
	c.result = nil
	c.errMsg = ""
	c.corrID = ""
	return nil
}

// State returns a snapshot of the controller. The result pointer is
// shared; callers must treat it as immutable.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Status:        c.status,
		Form:          c.form,
		Narrative:     c.narrative,
		Result:        c.result,
		Error:         c.errMsg,
		CorrelationID: c.corrID,
	}
}
