package trust

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ModelVersion is the current scoring model version.
const ModelVersion = "1.0.0"

const (
	// decayScaleDays is the exponential decay scale: an event's influence
	// falls to 1/e after this many days (half-life ~125 days).
	decayScaleDays = 180.0

	// disputedMultiplier is the weight retained by a disputed event.
	disputedMultiplier = 0.25

	// priorStrength and priorMean drive the Bayesian shrinkage: subjects
	// with total evidence weight well below priorStrength stay near the
	// neutral midpoint.
	priorStrength = 8.0
	priorMean     = 0.5

	// neutralFraction is the evidence fraction when there is no usable
	// evidence at all.
	neutralFraction = 0.5

	// Bucket thresholds. Scores at or below cautionMaxScore classify as
	// mostly-caution, at or below mixedMaxScore as mixed. Subjects with
	// fewer than minBucketEvents non-removed events classify as
	// insufficient-data regardless of score.
	cautionMaxScore = 34
	mixedMaxScore   = 64
	minBucketEvents = 3

	hoursPerDay = 24.0
)

// Bucket is the coarse trust classification derived from score and
// evidence count.
type Bucket string

const (
	BucketInsufficientData Bucket = "insufficient_data"
	BucketMostlyCaution    Bucket = "mostly_caution"
	BucketMixed            Bucket = "mixed"
	BucketMostlyPositive   Bucket = "mostly_positive"
)

// Result is the outcome of one scoring pass over a subject's feedback.
type Result struct {
	Score       int     `json:"score" yaml:"score"`
	Bucket      Bucket  `json:"bucket" yaml:"bucket"`
	Events      int     `json:"events" yaml:"events"`
	TotalWeight float64 `json:"total_weight" yaml:"totalWeight"`
}

// Compute scores a subject from its feedback events as of now.
// Removed events are excluded, disputed events contribute at a quarter
// weight, and older events decay exponentially. The weighted mean is
// shrunk toward the neutral midpoint so that thin evidence cannot
// produce an extreme score. The returned score is always in [0, 100].
//
// Compute is pure: it has no side effects and may be called concurrently.
// It fails on an unrecognized outcome or a negative event weight; both
// indicate a data-integrity bug upstream and are never coerced.
func Compute(events []FeedbackEvent, now time.Time) (*Result, error) {
	var (
		weightedSum float64
		totalWeight float64
		counted     int
	)

	for i, e := range events {
		if e.Status == StatusRemoved {
			continue
		}

		val, err := outcomeValue(e.Outcome)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("event %d: negative weight: %f", i, e.Weight)
		}

		w := e.Weight * decayFactor(ageDays(e.CreatedAt, now)) * statusMultiplier(e.Status)
		weightedSum += w * val
		totalWeight += w
		counted++
	}

	p := neutralFraction
	if totalWeight > 0 {
		mean := weightedSum / totalWeight // [-1, 1]
		p = (mean + 1) / 2
	}

	frac := (priorStrength*priorMean + totalWeight*p) / (priorStrength + totalWeight)
	score := clampScore(int(math.Round(100 * frac)))

	slog.Debug("trust score computed",
		"events", counted,
		"total_weight", totalWeight,
		"fraction", frac,
		"score", score,
	)

	return &Result{
		Score:       score,
		Bucket:      bucketFor(score, counted),
		Events:      counted,
		TotalWeight: totalWeight,
	}, nil
}

// outcomeValue maps an outcome to its contribution value.
func outcomeValue(o Outcome) (float64, error) {
	switch o {
	case OutcomePositive:
		return 1, nil
	case OutcomeNeutral:
		return 0, nil
	case OutcomeCaution:
		return -1, nil
	default:
		return 0, fmt.Errorf("unrecognized outcome: %q", o)
	}
}

// ageDays returns the event age in days, clamped at zero so clock skew
// cannot inflate an event's weight.
func ageDays(createdAt, now time.Time) float64 {
	d := now.Sub(createdAt).Hours() / hoursPerDay
	if d < 0 {
		return 0
	}
	return d
}

// decayFactor is 1.0 at zero age and decays exponentially with age.
func decayFactor(days float64) float64 {
	return math.Exp(-days / decayScaleDays)
}

func statusMultiplier(s Status) float64 {
	if s == StatusDisputed {
		return disputedMultiplier
	}
	return 1.0
}

// bucketFor classifies a score given the number of counted events.
func bucketFor(score, events int) Bucket {
	switch {
	case events < minBucketEvents:
		return BucketInsufficientData
	case score <= cautionMaxScore:
		return BucketMostlyCaution
	case score <= mixedMaxScore:
		return BucketMixed
	default:
		return BucketMostlyPositive
	}
}

// clampScore guards against floating-point overshoot at the boundaries.
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
