package data

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raidtrust/raidtrust/pkg/trust"
	"golang.org/x/sync/errgroup"
)

const (
	scoreStaleHours = 24

	// recomputeWorkersDefault bounds the scoring fan-out.
	recomputeWorkersDefault = 4

	distributionLimit = 20

	selectStaleSubjectIDsSQL = `SELECT id FROM subject
		WHERE score_updated_at IS NULL
		   OR score_updated_at < ?
	`

	updateSubjectScoreSQL = `UPDATE subject
		SET score = ?, bucket = ?, score_events = ?, score_weight = ?,
		    score_updated_at = ?
		WHERE id = ?
	`

	selectBucketCountsSQL = `SELECT bucket, COUNT(*)
		FROM subject
		WHERE score IS NOT NULL
		GROUP BY bucket
	`

	selectLowestScoredSQL = `SELECT handle, score, bucket
		FROM subject
		WHERE score IS NOT NULL
		ORDER BY score ASC, handle ASC
		LIMIT ?
	`
)

// RecomputeResult summarizes a bulk score recompute.
type RecomputeResult struct {
	Updated int `json:"updated" yaml:"updated"`
	Errors  int `json:"errors" yaml:"errors"`
}

// SubjectScore is the per-subject score returned to callers.
type SubjectScore struct {
	Handle      string       `json:"handle" yaml:"handle"`
	Score       int          `json:"score" yaml:"score"`
	Bucket      trust.Bucket `json:"bucket" yaml:"bucket"`
	Events      int          `json:"events" yaml:"events"`
	TotalWeight float64      `json:"total_weight" yaml:"totalWeight"`
	UpdatedAt   string       `json:"updated_at" yaml:"updatedAt"`
	Cached      bool         `json:"cached" yaml:"cached"`
}

// ScoreDistribution is the bucket breakdown plus the lowest-scored
// subjects, used for review queues.
type ScoreDistribution struct {
	Buckets map[trust.Bucket]int64 `json:"buckets" yaml:"buckets"`
	Lowest  []*SubjectListItem     `json:"lowest" yaml:"lowest"`
}

type scoredSubject struct {
	id     string
	result *trust.Result
}

// RecomputeScores rescores every subject with a missing or stale score.
// Scoring fans out over a bounded worker pool; results are written in a
// single transaction. Subjects whose stored events fail validation are
// counted as errors and left untouched.
func RecomputeScores(db *sql.DB, workers int) (*RecomputeResult, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if workers < 1 {
		workers = recomputeWorkersDefault
	}

	threshold := time.Now().UTC().Add(-scoreStaleHours * time.Hour).Format(timeFormat)

	ids, err := getStaleSubjectIDs(db, threshold)
	if err != nil {
		return nil, fmt.Errorf("error getting stale subjects: %w", err)
	}

	res := &RecomputeResult{}
	if len(ids) == 0 {
		slog.Info("no stale trust scores to update")
		return res, nil
	}

	slog.Info("recomputing trust scores", "subjects", len(ids), "workers", workers)

	now := time.Now().UTC()
	scored := make([]*scoredSubject, len(ids))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			events, err := GetSubjectEvents(db, id)
			if err != nil {
				return err
			}
			r, err := trust.Compute(events, now)
			if err != nil {
				// Bad stored data for one subject must not sink the run.
				slog.Error("error scoring subject", "subject", id, "error", err)
				return nil
			}
			scored[i] = &scoredSubject{id: id, result: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error loading subject events: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting score tx: %w", err)
	}

	stmt, err := tx.Prepare(updateSubjectScoreSQL)
	if err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error preparing score update: %w", err)
	}

	nowStr := now.Format(timeFormat)
	for _, s := range scored {
		if s == nil {
			res.Errors++
			continue
		}
		if _, execErr := stmt.Exec(s.result.Score, s.result.Bucket, s.result.Events,
			s.result.TotalWeight, nowStr, s.id); execErr != nil {
			rollbackTransaction(tx)
			return nil, fmt.Errorf("error updating score for %s: %w", s.id, execErr)
		}
		res.Updated++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing score tx: %w", err)
	}

	slog.Info("trust scores recomputed", "updated", res.Updated, "errors", res.Errors)

	return res, nil
}

// GetOrComputeScore returns the subject's cached score if fresh (<24h),
// otherwise computes and stores a new one.
func GetOrComputeScore(db *sql.DB, handle string) (*SubjectScore, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s, err := GetSubject(db, handle)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("subject not found: %s", handle)
	}

	threshold := time.Now().UTC().Add(-scoreStaleHours * time.Hour).Format(timeFormat)
	if s.Score != nil && s.ScoreUpdatedAt >= threshold {
		return &SubjectScore{
			Handle:      s.Handle,
			Score:       *s.Score,
			Bucket:      s.Bucket,
			Events:      s.ScoreEvents,
			TotalWeight: s.ScoreWeight,
			UpdatedAt:   s.ScoreUpdatedAt,
			Cached:      true,
		}, nil
	}

	return ComputeScore(db, handle)
}

// ComputeScore rescores a single subject and stores the result.
func ComputeScore(db *sql.DB, handle string) (*SubjectScore, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s, err := GetSubject(db, handle)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("subject not found: %s", handle)
	}

	events, err := GetSubjectEvents(db, s.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r, err := trust.Compute(events, now)
	if err != nil {
		return nil, fmt.Errorf("error scoring %s: %w", handle, err)
	}

	nowStr := now.Format(timeFormat)
	if _, err := db.Exec(updateSubjectScoreSQL, r.Score, r.Bucket, r.Events,
		r.TotalWeight, nowStr, s.ID); err != nil {
		return nil, fmt.Errorf("error storing score for %s: %w", handle, err)
	}

	return &SubjectScore{
		Handle:      s.Handle,
		Score:       r.Score,
		Bucket:      r.Bucket,
		Events:      r.Events,
		TotalWeight: r.TotalWeight,
		UpdatedAt:   nowStr,
	}, nil
}

// GetScoreDistribution returns per-bucket subject counts and the
// lowest-scored subjects.
func GetScoreDistribution(db *sql.DB) (*ScoreDistribution, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	d := &ScoreDistribution{
		Buckets: make(map[trust.Bucket]int64),
		Lowest:  make([]*SubjectListItem, 0),
	}

	rows, err := db.Query(selectBucketCountsSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query bucket counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b trust.Bucket
		var count int64
		if err := rows.Scan(&b, &count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}
		d.Buckets[b] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	low, err := db.Query(selectLowestScoredSQL, distributionLimit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query lowest scores: %w", err)
	}
	defer low.Close()

	for low.Next() {
		var item SubjectListItem
		var score int
		if err := low.Scan(&item.Handle, &score, &item.Bucket); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		item.Score = &score
		d.Lowest = append(d.Lowest, &item)
	}

	return d, low.Err()
}

func getStaleSubjectIDs(db *sql.DB, threshold string) ([]string, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectStaleSubjectIDsSQL, threshold)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query stale subjects: %w", err)
	}
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan subject id: %w", err)
		}
		list = append(list, id)
	}

	return list, rows.Err()
}
