package data

import (
	"database/sql"
	"fmt"
)

var stateQueries = map[string]string{
	"subjects":          "SELECT COUNT(*) FROM subject",
	"scored_subjects":   "SELECT COUNT(*) FROM subject WHERE score IS NOT NULL",
	"feedback":          "SELECT COUNT(*) FROM feedback",
	"active_feedback":   "SELECT COUNT(*) FROM feedback WHERE status = 'active'",
	"disputed_feedback": "SELECT COUNT(*) FROM feedback WHERE status = 'disputed'",
	"removed_feedback":  "SELECT COUNT(*) FROM feedback WHERE status = 'removed'",
}

// GetDataState returns row counts for the main tables.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64, len(stateQueries))
	for k, q := range stateQueries {
		var count int64
		if err := db.QueryRow(q).Scan(&count); err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}
