package data

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raidtrust/raidtrust/pkg/trust"
)

const (
	insertSubjectSQL = `INSERT INTO subject (
			id,
			handle,
			display_name,
			platform,
			created_at
		)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			display_name = ?,
			platform = ?
	`

	selectSubjectSQL = `SELECT
			id,
			handle,
			COALESCE(display_name, ''),
			COALESCE(platform, ''),
			created_at,
			score,
			COALESCE(bucket, ''),
			COALESCE(score_events, 0),
			COALESCE(score_weight, 0),
			COALESCE(score_updated_at, '')
		FROM subject
		WHERE handle = ?
	`

	querySubjectsSQL = `SELECT
			handle,
			COALESCE(display_name, '') AS display_name,
			score,
			COALESCE(bucket, '') AS bucket
		FROM subject
		WHERE handle LIKE ?
		OR display_name LIKE ?
		ORDER BY handle
		LIMIT ?
	`
)

// Subject is a player whose trust score the platform tracks.
type Subject struct {
	ID             string       `json:"id,omitempty" yaml:"id,omitempty"`
	Handle         string       `json:"handle" yaml:"handle"`
	DisplayName    string       `json:"display_name,omitempty" yaml:"displayName,omitempty"`
	Platform       string       `json:"platform,omitempty" yaml:"platform,omitempty"`
	CreatedAt      string       `json:"created_at,omitempty" yaml:"createdAt,omitempty"`
	Score          *int         `json:"score,omitempty" yaml:"score,omitempty"`
	Bucket         trust.Bucket `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	ScoreEvents    int          `json:"score_events,omitempty" yaml:"scoreEvents,omitempty"`
	ScoreWeight    float64      `json:"score_weight,omitempty" yaml:"scoreWeight,omitempty"`
	ScoreUpdatedAt string       `json:"score_updated_at,omitempty" yaml:"scoreUpdatedAt,omitempty"`
}

// SubjectListItem is the fuzzy-query projection of a subject.
type SubjectListItem struct {
	Handle      string       `json:"handle" yaml:"handle"`
	DisplayName string       `json:"display_name,omitempty" yaml:"displayName,omitempty"`
	Score       *int         `json:"score,omitempty" yaml:"score,omitempty"`
	Bucket      trust.Bucket `json:"bucket,omitempty" yaml:"bucket,omitempty"`
}

// SaveSubject inserts a subject or updates its mutable fields.
// A missing ID and created time are assigned.
func SaveSubject(db *sql.DB, s *Subject) error {
	if db == nil {
		return errDBNotInitialized
	}
	if s == nil || s.Handle == "" {
		return errors.New("subject handle is required")
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt == "" {
		s.CreatedAt = time.Now().UTC().Format(timeFormat)
	}

	_, err := db.Exec(insertSubjectSQL,
		s.ID, s.Handle, s.DisplayName, s.Platform, s.CreatedAt,
		s.DisplayName, s.Platform,
	)
	if err != nil {
		return fmt.Errorf("failed to save subject %s: %w", s.Handle, err)
	}
	return nil
}

// GetSubject returns the subject with the given handle, or nil when not found.
func GetSubject(db *sql.DB, handle string) (*Subject, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var s Subject
	var score sql.NullInt64
	err := db.QueryRow(selectSubjectSQL, handle).Scan(
		&s.ID, &s.Handle, &s.DisplayName, &s.Platform, &s.CreatedAt,
		&score, &s.Bucket, &s.ScoreEvents, &s.ScoreWeight, &s.ScoreUpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject %s: %w", handle, err)
	}
	if score.Valid {
		v := int(score.Int64)
		s.Score = &v
	}
	return &s, nil
}

// QuerySubjects fuzzy-searches subjects by handle or display name.
func QuerySubjects(db *sql.DB, like string, limit int) ([]*SubjectListItem, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	q := "%" + like + "%"
	rows, err := db.Query(querySubjectsSQL, q, q, limit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	list := make([]*SubjectListItem, 0)
	for rows.Next() {
		var item SubjectListItem
		var score sql.NullInt64
		if err := rows.Scan(&item.Handle, &item.DisplayName, &score, &item.Bucket); err != nil {
			return nil, fmt.Errorf("failed to scan subject row: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			item.Score = &v
		}
		list = append(list, &item)
	}

	return list, rows.Err()
}
