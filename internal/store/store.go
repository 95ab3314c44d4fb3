// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis results in a local SQLite database. Each
// result is stored verbatim as JSON under a generated analysis ID.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// ErrNotFound is returned when no analysis matches the lookup.
var ErrNotFound = errors.New("analysis not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the analysis SQLite database.
type Store struct {
	db *sql.DB

	// now is replaced in tests.
	now func() time.Time
}

// Record is a stored analysis with its bookkeeping columns.
type Record struct {
	ID             string                `json:"id" yaml:"id"`
	OrganizationID string                `json:"organization_id" yaml:"organization_id"`
	CreatedAt      time.Time             `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at" yaml:"updated_at"`
	Result         *types.AnalysisResult `json:"result" yaml:"result"`
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			organization_name TEXT NOT NULL,
			query_timestamp TEXT NOT NULL,
			total_trials INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_org ON analyses(organization_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveAnalysis stores result for organizationID and returns the new
// analysis ID.
func (s *Store) SaveAnalysis(ctx context.Context, organizationID string, result *types.AnalysisResult) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization id is empty")
	}
	if result == nil {
		return "", fmt.Errorf("no analysis result to save")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling analysis: %w", err)
	}

	id := uuid.New().String()
	now := s.now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, organization_id, organization_name, query_timestamp, total_trials, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, organizationID, result.OrganizationName,
		result.QueryTimestamp.UTC().Format(timeLayout),
		result.Analytics.TotalTrials, string(payload), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting analysis: %w", err)
	}
	return id, nil
}

// Update replaces the stored result for an analysis ID.
func (s *Store) Update(ctx context.Context, id string, result *types.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to save")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET organization_name = ?, query_timestamp = ?, total_trials = ?, payload = ?, updated_at = ?
		 WHERE id = ?`,
		result.OrganizationName, result.QueryTimestamp.UTC().Format(timeLayout),
		result.Analytics.TotalTrials, string(payload),
		s.now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("updating analysis %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating analysis %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return nil
}

const selectColumns = `SELECT id, organization_id, created_at, updated_at, payload FROM analyses`

// Get returns the analysis with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// Latest returns the most recently created analysis for organizationID.
func (s *Store) Latest(ctx context.Context, organizationID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` WHERE organization_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, organizationID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", organizationID, ErrNotFound)
	}
	return rec, err
}

// List returns every stored analysis, oldest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec                  Record
		created, updated, pl string
	)
	if err := sc.Scan(&rec.ID, &rec.OrganizationID, &created, &updated, &pl); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning analysis: %w", err)
	}

	var err error
	if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at for %s: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at for %s: %w", rec.ID, err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(pl), &result); err != nil {
		return nil, fmt.Errorf("decoding analysis %s: %w", rec.ID, err)
	}
	rec.Result = &result
	return &rec, nil
}
