package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DataFileName is the default database file name.
	DataFileName = "data.db"

	timeFormat = "2006-01-02T15:04:05Z"

	createSchemaVersionSQL = `CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`

	selectSchemaVersionSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_version`

	insertSchemaVersionSQL = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`
)

var (
	//go:embed sql/*.sql
	migrationFS embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Init creates the database file if needed and applies any pending
// schema migrations. Safe to call repeatedly.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", dbFilePath, err)
	}
	defer db.Close()

	if _, err := db.Exec(createSchemaVersionSQL); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := db.QueryRow(selectSchemaVersionSQL).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		slog.Debug("applying migration", "version", m.version, "file", m.name)
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

// GetDB opens the SQLite database at the given path.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return conn, nil
}

type migration struct {
	version int
	name    string
	stmts   string
}

// loadMigrations reads the embedded sql files, ordered by their numeric
// file name prefix (e.g. 001_init.sql).
func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	list := make([]migration, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		prefix, _, found := strings.Cut(name, "_")
		if !found {
			return nil, fmt.Errorf("migration file without version prefix: %s", name)
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", name, err)
		}
		b, err := migrationFS.ReadFile("sql/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		list = append(list, migration{version: v, name: name, stmts: string(b)})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].version < list[j].version })
	return list, nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting migration tx: %w", err)
	}

	if _, err := tx.Exec(m.stmts); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("applying migration %s: %w", m.name, err)
	}

	now := time.Now().UTC().Format(timeFormat)
	if _, err := tx.Exec(insertSchemaVersionSQL, m.version, now); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("recording migration %s: %w", m.name, err)
	}

	return tx.Commit()
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("transaction rollback failed", "error", err)
	}
}
