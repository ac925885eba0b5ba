package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raidtrust/raidtrust/pkg/trust"
)

const (
	insertFeedbackSQL = `INSERT INTO feedback (
			id,
			subject_id,
			reporter,
			outcome,
			weight,
			status,
			note,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectFeedbackStatusSQL = `SELECT status FROM feedback WHERE id = ?`

	updateFeedbackStatusSQL = `UPDATE feedback SET status = ?, updated_at = ? WHERE id = ?`

	selectSubjectEventsSQL = `SELECT outcome, weight, status, created_at
		FROM feedback
		WHERE subject_id = ?
	`
)

// Resolution is the outcome of a dispute review.
type Resolution string

const (
	// ResolutionUpheld removes the event from scoring entirely.
	ResolutionUpheld Resolution = "upheld"
	// ResolutionRejected restores the event to full weight.
	ResolutionRejected Resolution = "rejected"
	// ResolutionPartial leaves the event disputed: it keeps counting,
	// permanently dampened.
	ResolutionPartial Resolution = "partial"
)

// Resolutions lists all legal dispute resolutions.
var Resolutions = []Resolution{
	ResolutionUpheld,
	ResolutionRejected,
	ResolutionPartial,
}

// resolutionStatus maps a dispute resolution to the resulting event status.
var resolutionStatus = map[Resolution]trust.Status{
	ResolutionUpheld:   trust.StatusRemoved,
	ResolutionRejected: trust.StatusActive,
	ResolutionPartial:  trust.StatusDisputed,
}

// Feedback is one stored feedback event about a subject.
type Feedback struct {
	ID        string        `json:"id" yaml:"id"`
	SubjectID string        `json:"subject_id" yaml:"subjectID"`
	Reporter  string        `json:"reporter,omitempty" yaml:"reporter,omitempty"`
	Outcome   trust.Outcome `json:"outcome" yaml:"outcome"`
	Weight    float64       `json:"weight" yaml:"weight"`
	Status    trust.Status  `json:"status" yaml:"status"`
	Note      string        `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt string        `json:"created_at" yaml:"createdAt"`
	UpdatedAt string        `json:"updated_at,omitempty" yaml:"updatedAt,omitempty"`
}

// FeedbackFilter narrows ListFeedback results. Zero values mean "any".
type FeedbackFilter struct {
	SubjectID string
	Status    trust.Status
	Since     string
	Limit     int
}

// SaveFeedback validates and stores a feedback event. A missing ID,
// status, and created time are assigned.
func SaveFeedback(db *sql.DB, f *Feedback) error {
	if db == nil {
		return errDBNotInitialized
	}
	if f == nil || f.SubjectID == "" {
		return errors.New("feedback subject is required")
	}

	if _, err := trust.ParseOutcome(string(f.Outcome)); err != nil {
		return err
	}
	if f.Weight < 0 {
		return fmt.Errorf("negative feedback weight: %f", f.Weight)
	}

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = trust.StatusActive
	} else if _, err := trust.ParseStatus(string(f.Status)); err != nil {
		return err
	}
	if f.CreatedAt == "" {
		f.CreatedAt = time.Now().UTC().Format(timeFormat)
	}

	_, err := db.Exec(insertFeedbackSQL,
		f.ID, f.SubjectID, f.Reporter, f.Outcome, f.Weight, f.Status, f.Note, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback for %s: %w", f.SubjectID, err)
	}
	return nil
}

// ListFeedback returns feedback events matching the filter, newest first.
func ListFeedback(db *sql.DB, filter FeedbackFilter) ([]*Feedback, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, subject_id, COALESCE(reporter, ''), outcome, weight, status,
		COALESCE(note, ''), created_at, COALESCE(updated_at, '')
		FROM feedback WHERE 1=1`)
	args := make([]any, 0, 4)

	if filter.SubjectID != "" {
		sb.WriteString(" AND subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.Status != "" {
		sb.WriteString(" AND status = ?")
		args = append(args, filter.Status)
	}
	if filter.Since != "" {
		sb.WriteString(" AND created_at >= ?")
		args = append(args, filter.Since)
	}

	sb.WriteString(" ORDER BY created_at DESC")

	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := db.Query(sb.String(), args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	list := make([]*Feedback, 0)
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.SubjectID, &f.Reporter, &f.Outcome, &f.Weight,
			&f.Status, &f.Note, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		list = append(list, &f)
	}

	return list, rows.Err()
}

// DisputeFeedback marks an active feedback event as disputed.
func DisputeFeedback(db *sql.DB, id string) error {
	return transitionFeedback(db, id, trust.StatusActive, trust.StatusDisputed)
}

// RemoveFeedback excludes a feedback event from scoring. Allowed from
// any non-removed state.
func RemoveFeedback(db *sql.DB, id string) error {
	if db == nil {
		return errDBNotInitialized
	}

	current, err := getFeedbackStatus(db, id)
	if err != nil {
		return err
	}
	if current == trust.StatusRemoved {
		return nil
	}
	return setFeedbackStatus(db, id, trust.StatusRemoved)
}

// ResolveDispute applies a dispute review outcome to a disputed event:
// upheld removes it, rejected restores it to active, and partial keeps
// it disputed at dampened weight.
func ResolveDispute(db *sql.DB, id string, r Resolution) error {
	if db == nil {
		return errDBNotInitialized
	}

	next, ok := resolutionStatus[r]
	if !ok {
		return fmt.Errorf("unrecognized resolution: %q", r)
	}

	current, err := getFeedbackStatus(db, id)
	if err != nil {
		return err
	}
	if current != trust.StatusDisputed {
		return fmt.Errorf("feedback %s is not disputed (status: %s)", id, current)
	}
	if next == current {
		return nil
	}
	return setFeedbackStatus(db, id, next)
}

// GetSubjectEvents loads all of a subject's feedback as scoring input.
func GetSubjectEvents(db *sql.DB, subjectID string) ([]trust.FeedbackEvent, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectSubjectEventsSQL, subjectID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query events for %s: %w", subjectID, err)
	}
	defer rows.Close()

	events := make([]trust.FeedbackEvent, 0)
	for rows.Next() {
		var e trust.FeedbackEvent
		var created string
		if err := rows.Scan(&e.Outcome, &e.Weight, &e.Status, &created); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		t, err := time.Parse(timeFormat, created)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at on event for %s: %w", subjectID, err)
		}
		e.CreatedAt = t
		events = append(events, e)
	}

	return events, rows.Err()
}

func transitionFeedback(db *sql.DB, id string, from, to trust.Status) error {
	if db == nil {
		return errDBNotInitialized
	}

	current, err := getFeedbackStatus(db, id)
	if err != nil {
		return err
	}
	if current != from {
		return fmt.Errorf("feedback %s cannot move from %s to %s", id, current, to)
	}
	return setFeedbackStatus(db, id, to)
}

func getFeedbackStatus(db *sql.DB, id string) (trust.Status, error) {
	var s trust.Status
	err := db.QueryRow(selectFeedbackStatusSQL, id).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("feedback not found: %s", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get feedback %s: %w", id, err)
	}
	return s, nil
}

func setFeedbackStatus(db *sql.DB, id string, s trust.Status) error {
	now := time.Now().UTC().Format(timeFormat)
	if _, err := db.Exec(updateFeedbackStatusSQL, s, now, id); err != nil {
		return fmt.Errorf("failed to update feedback %s: %w", id, err)
	}
	return nil
}
