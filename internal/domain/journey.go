package domain

import "time"

// JourneyStep is one stage of the onboarding journey.
type JourneyStep string

const (
	StepSignIn       JourneyStep = "signin"
	StepVerification JourneyStep = "verification"
	StepPayment      JourneyStep = "payment"
	StepDashboard    JourneyStep = "dashboard"
)

// JourneySteps lists every step in onboarding order.
var JourneySteps = []JourneyStep{StepSignIn, StepVerification, StepPayment, StepDashboard}

// StepState records completion of a single journey step. Steps are only ever
// extended, never cleared.
type StepState struct {
	Completed   bool           `json:"completed"`
	CompletedAt time.Time      `json:"completedAt,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// JourneyRecord tracks a user's onboarding progress, keyed by userID.
type JourneyRecord struct {
	UserID         string                    `json:"userID"`
	JourneyStarted time.Time                 `json:"journeyStarted"`
	Steps          map[JourneyStep]StepState `json:"steps"`
}

// Step returns the state for the given step, zero-valued if never touched.
func (j JourneyRecord) Step(step JourneyStep) StepState {
	if j.Steps == nil {
		return StepState{}
	}
	return j.Steps[step]
}
