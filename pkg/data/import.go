package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raidtrust/raidtrust/pkg/net"
	"github.com/raidtrust/raidtrust/pkg/trust"
)

const insertImportedFeedbackSQL = `INSERT INTO feedback (
		id, subject_id, reporter, outcome, weight, status, note, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

// FeedbackFeedItem is one record from the remote feedback feed.
type FeedbackFeedItem struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	Reporter  string  `json:"reporter,omitempty"`
	Outcome   string  `json:"outcome"`
	Weight    float64 `json:"weight"`
	Status    string  `json:"status,omitempty"`
	Note      string  `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ImportResult summarizes a feed import run.
type ImportResult struct {
	Imported int `json:"imported" yaml:"imported"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Errors   int `json:"errors" yaml:"errors"`
}

// ImportFeedback pulls feedback events from the remote JSON feed and
// stores them, creating unknown subjects on the fly. Re-importing the
// same feed is idempotent: items are deduplicated on their feed ID.
// Items that fail validation are logged and counted, not fatal.
func ImportFeedback(ctx context.Context, db *sql.DB, feedURL, token string) (*ImportResult, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if feedURL == "" {
		return nil, errors.New("feed URL is required")
	}

	var items []FeedbackFeedItem
	if err := net.GetJSON(ctx, feedURL, token, &items); err != nil {
		return nil, fmt.Errorf("error fetching feedback feed: %w", err)
	}

	slog.Info("importing feedback feed", "url", feedURL, "items", len(items))

	res := &ImportResult{}
	subjects := make(map[string]string) // handle -> id

	for _, item := range items {
		id, err := importSubjectID(db, subjects, item.Subject)
		if err != nil {
			slog.Error("error resolving feed subject", "subject", item.Subject, "error", err)
			res.Errors++
			continue
		}

		f, err := feedItemToFeedback(item, id)
		if err != nil {
			slog.Error("invalid feed item", "id", item.ID, "error", err)
			res.Errors++
			continue
		}

		r, err := db.Exec(insertImportedFeedbackSQL,
			f.ID, f.SubjectID, f.Reporter, f.Outcome, f.Weight, f.Status, f.Note, f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error saving feed item %s: %w", f.ID, err)
		}
		if n, _ := r.RowsAffected(); n == 0 {
			res.Skipped++
		} else {
			res.Imported++
		}
	}

	slog.Info("feedback feed imported",
		"imported", res.Imported, "skipped", res.Skipped, "errors", res.Errors)

	return res, nil
}

func importSubjectID(db *sql.DB, cache map[string]string, handle string) (string, error) {
	if handle == "" {
		return "", errors.New("feed item without subject handle")
	}
	if id, ok := cache[handle]; ok {
		return id, nil
	}

	s, err := GetSubject(db, handle)
	if err != nil {
		return "", err
	}
	if s == nil {
		s = &Subject{Handle: handle}
		if err := SaveSubject(db, s); err != nil {
			return "", err
		}
	}

	cache[handle] = s.ID
	return s.ID, nil
}

func feedItemToFeedback(item FeedbackFeedItem, subjectID string) (*Feedback, error) {
	if item.ID == "" {
		return nil, errors.New("feed item without id")
	}
	created, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid feed item created_at %q: %w", item.CreatedAt, err)
	}

	outcome, err := trust.ParseOutcome(item.Outcome)
	if err != nil {
		return nil, err
	}
	if item.Weight < 0 {
		return nil, fmt.Errorf("negative feed item weight: %f", item.Weight)
	}

	status := trust.StatusActive
	if item.Status != "" {
		if status, err = trust.ParseStatus(item.Status); err != nil {
			return nil, err
		}
	}

	return &Feedback{
		ID:        item.ID,
		SubjectID: subjectID,
		Reporter:  item.Reporter,
		Outcome:   outcome,
		Weight:    item.Weight,
		Status:    status,
		Note:      item.Note,
		CreatedAt: created.UTC().Format(timeFormat),
	}, nil
}
