package trust

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the reported result of an interaction with a subject.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNeutral  Outcome = "neutral"
	OutcomeCaution  Outcome = "caution"
)

// Outcomes lists all legal outcome values.
var Outcomes = []Outcome{
	OutcomePositive,
	OutcomeNeutral,
	OutcomeCaution,
}

// Status is the moderation state of a feedback event.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisputed Status = "disputed"
	StatusRemoved  Status = "removed"
)

// Statuses lists all legal status values.
var Statuses = []Status{
	StatusActive,
	StatusDisputed,
	StatusRemoved,
}

// FeedbackEvent is a single piece of feedback about a subject.
// Weight is the pre-assigned importance of the event (e.g. reflecting
// the submitter's own standing) and must be >= 0.
type FeedbackEvent struct {
	Outcome   Outcome   `json:"outcome" yaml:"outcome"`
	CreatedAt time.Time `json:"created_at" yaml:"createdAt"`
	Weight    float64   `json:"weight" yaml:"weight"`
	Status    Status    `json:"status" yaml:"status"`
}

// ParseOutcome converts a string to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Outcomes {
		if o == v {
			return o, nil
		}
	}
	return "", fmt.Errorf("unrecognized outcome: %q", s)
}

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Statuses {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("unrecognized status: %q", s)
}
