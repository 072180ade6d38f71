// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists compiled dictionaries in SQLite so a version is
// compiled once and reloaded on later runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/donor-match/internal/compile"
	"github.com/pdiddy/donor-match/internal/logging"
	"github.com/pdiddy/donor-match/pkg/types"
)

const (
	indexDir  = "index"
	exportDir = "export"
	dbFile    = "dictionaries.db"
)

// Store manages the dictionary SQLite database. It implements
// compile.Persister.
type Store struct {
	db  *sql.DB
	dir string
	log zerolog.Logger
}

var _ compile.Persister = (*Store)(nil)

// VersionInfo describes one stored version.
type VersionInfo struct {
	Version    string    `json:"version" yaml:"version"`
	CompiledAt time.Time `json:"compiled_at" yaml:"compiled_at"`
	Records    int       `json:"records" yaml:"records"`
}

// NewStore opens or creates the database at <cfg.Dir>/index/dictionaries.db
// and creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig, log zerolog.Logger) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir, log: logging.Component(log, "store")}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS versions (
			version TEXT PRIMARY KEY,
			compiled_at TEXT NOT NULL,
			records INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS matching_lookups (
			version TEXT NOT NULL REFERENCES versions(version) ON DELETE CASCADE,
			locus TEXT NOT NULL,
			name TEXT NOT NULL,
			method TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (version, locus, name, method)
		)`,
		`CREATE TABLE IF NOT EXISTS scoring_lookups (
			version TEXT NOT NULL REFERENCES versions(version) ON DELETE CASCADE,
			locus TEXT NOT NULL,
			name TEXT NOT NULL,
			method TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (version, locus, name, method)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scoring_kind ON scoring_lookups(version, kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save writes dict in one transaction, replacing any stored copy of the
// same version. Readers never observe a partly written version.
func (s *Store) Save(ctx context.Context, dict *compile.Dictionary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	version := dict.Version()
	if _, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE version = ?`, version); err != nil {
		return fmt.Errorf("removing stored version %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO versions (version, compiled_at, records) VALUES (?, ?, ?)`,
		version, time.Now().UTC().Format(time.RFC3339Nano), dict.Len(),
	); err != nil {
		return fmt.Errorf("inserting version %s: %w", version, err)
	}

	matchStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matching_lookups (version, locus, name, method, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing matching insert: %w", err)
	}
	defer matchStmt.Close()

	scoreStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scoring_lookups (version, locus, name, method, kind, payload) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing scoring insert: %w", err)
	}
	defer scoreStmt.Close()

	for _, r := range dict.Records() {
		k := r.Key
		matching, err := json.Marshal(r.Matching)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", k, err)
		}
		if _, err := matchStmt.ExecContext(ctx, version, string(k.Locus), k.Name, string(k.Method), string(matching)); err != nil {
			return fmt.Errorf("inserting %s: %w", k, err)
		}

		if r.Scoring == nil {
			continue
		}
		scoring, err := types.MarshalScoringInfo(r.Scoring)
		if err != nil {
			return fmt.Errorf("encoding scoring info of %s: %w", k, err)
		}
		if _, err := scoreStmt.ExecContext(ctx, version, string(k.Locus), k.Name, string(k.Method), string(r.Scoring.Kind()), string(scoring)); err != nil {
			return fmt.Errorf("inserting scoring info of %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing version %s: %w", version, err)
	}
	s.log.Info().Str("version", version).Int("records", dict.Len()).Msg("dictionary stored")
	return nil
}

// Load rebuilds the stored dictionary for version. A version that was never
// saved returns an error wrapping compile.ErrNotFound.
func (s *Store) Load(ctx context.Context, version string) (*compile.Dictionary, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT records FROM versions WHERE version = ?`, version).Scan(&n)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("version %s: %w", version, compile.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying version %s: %w", version, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT m.locus, m.name, m.method, m.payload, s.payload
		 FROM matching_lookups m
		 LEFT JOIN scoring_lookups s
		   ON s.version = m.version AND s.locus = m.locus AND s.name = m.name AND s.method = m.method
		 WHERE m.version = ?`, version)
	if err != nil {
		return nil, fmt.Errorf("querying records of %s: %w", version, err)
	}
	defer rows.Close()

	records := make([]types.LookupRecord, 0, n)
	for rows.Next() {
		var (
			locus, name, method, matching string
			scoring                       sql.NullString
		)
		if err := rows.Scan(&locus, &name, &method, &matching, &scoring); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		r := types.LookupRecord{
			Key: types.LookupKey{Locus: types.Locus(locus), Name: name, Method: types.TypingMethod(method)},
		}
		if err := json.Unmarshal([]byte(matching), &r.Matching); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", r.Key, err)
		}
		if scoring.Valid {
			info, err := types.UnmarshalScoringInfo([]byte(scoring.String))
			if err != nil {
				return nil, fmt.Errorf("decoding scoring info of %s: %w", r.Key, err)
			}
			r.Scoring = info
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	if len(records) != n {
		return nil, fmt.Errorf("version %s: stored %d records, read %d", version, n, len(records))
	}

	return compile.NewDictionary(version, records)
}

// Versions lists stored versions in ascending order.
func (s *Store) Versions(ctx context.Context) ([]VersionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version, compiled_at, records FROM versions ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var out []VersionInfo
	for rows.Next() {
		var (
			v        VersionInfo
			compiled string
		)
		if err := rows.Scan(&v.Version, &compiled, &v.Records); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, compiled); err == nil {
			v.CompiledAt = t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Delete removes a stored version. Deleting an absent version is not an
// error.
func (s *Store) Delete(ctx context.Context, version string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM versions WHERE version = ?`, version); err != nil {
		return fmt.Errorf("deleting version %s: %w", version, err)
	}
	return nil
}
