package data

import (
	"database/sql"
	"errors"
	"fmt"
)

const updateSubjectHandleSQL = `UPDATE subject SET handle = ? WHERE handle = ?`

// Rename records a subject handle change.
type Rename struct {
	Old     string `json:"old" yaml:"old"`
	New     string `json:"new" yaml:"new"`
	Records int64  `json:"records" yaml:"records"`
}

// RenameSubject changes a subject's handle (players rename freely; the
// subject ID and its feedback history stay attached). Fails when the
// new handle is already taken.
func RenameSubject(db *sql.DB, oldHandle, newHandle string) (*Rename, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if oldHandle == "" || newHandle == "" {
		return nil, errors.New("old and new handles are required")
	}

	existing, err := GetSubject(db, newHandle)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("handle already taken: %s", newHandle)
	}

	res, err := db.Exec(updateSubjectHandleSQL, newHandle, oldHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to rename subject %s: %w", oldHandle, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("subject not found: %s", oldHandle)
	}

	return &Rename{Old: oldHandle, New: newHandle, Records: affected}, nil
}
