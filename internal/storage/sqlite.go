package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// SQLiteStore keeps run history in a local SQLite file
type SQLiteStore struct {
	db     *sqlx.DB
	logger logrus.FieldLogger
}

var _ Store = (*SQLiteStore)(nil)

// usageRow mirrors the script_usages table
type usageRow struct {
	RunID      string `db:"run_id"`
	Position   int    `db:"position"`
	Name       string `db:"name"`
	Namespace  string `db:"namespace"`
	Kind       string `db:"kind"`
	Path       string `db:"path"`
	AttachedTo string `db:"attached_to"`
	Status     string `db:"status"`
	References string `db:"references_field"`
	HitCount   int    `db:"hit_count"`
	Collision  bool   `db:"collision"`
}

// hitRow mirrors the reference_hits table
type hitRow struct {
	Position int    `db:"position"`
	File     string `db:"file"`
	Line     int    `db:"line"`
	Text     string `db:"text"`
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string, logger logrus.FieldLogger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// sqliteDSN sets the pragmas through the connection string so every
// pooled connection gets them, not only the first one
func sqliteDSN(path string) string {
	return path + "?_foreign_keys=on&_journal_mode=WAL"
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		target_root TEXT NOT NULL,
		report_path TEXT
	);

	CREATE TABLE IF NOT EXISTS script_usages (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		namespace TEXT,
		kind TEXT NOT NULL,
		path TEXT NOT NULL,
		attached_to TEXT NOT NULL,
		status TEXT NOT NULL,
		references_field TEXT,
		hit_count INTEGER NOT NULL DEFAULT 0,
		collision INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reference_hits (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		hit_index INTEGER NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (run_id, position, hit_index),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS run_warnings (
		run_id TEXT NOT NULL,
		message TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_usages_name ON script_usages(name);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores the run and its usages in one transaction
func (s *SQLiteStore) SaveRun(ctx context.Context, run *models.Run) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, target_root, report_path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			target_root = excluded.target_root,
			report_path = excluded.report_path
	`, run.ID, run.StartedAt, run.TargetRoot, run.ReportPath)
	if err != nil {
		return err
	}

	for _, table := range []string{"script_usages", "reference_hits", "run_warnings"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, run.ID); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO script_usages
		(run_id, position, name, namespace, kind, path, attached_to,
		 status, references_field, hit_count, collision)
		VALUES (:run_id, :position, :name, :namespace, :kind, :path, :attached_to,
		 :status, :references_field, :hit_count, :collision)
	`
	hitQuery := `
		INSERT INTO reference_hits (run_id, position, hit_index, file, line, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i := range run.Usages {
		u := &run.Usages[i]
		if _, err := tx.NamedExecContext(ctx, query, toRow(run.ID, i, u)); err != nil {
			return err
		}
		for j, hit := range u.References {
			if _, err := tx.ExecContext(ctx, hitQuery, run.ID, i, j, hit.File, hit.Line, hit.Text); err != nil {
				return err
			}
		}
	}

	for _, warn := range run.Warnings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_warnings (run_id, message) VALUES (?, ?)`, run.ID, warn); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id": run.ID,
		"usages": len(run.Usages),
	}).Debug("Saved run")

	return nil
}

// GetRun loads a run with its usages and reference hits
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	var run models.Run
	err := s.db.GetContext(ctx, &run,
		`SELECT id, started_at, target_root, COALESCE(report_path, '') AS report_path FROM runs WHERE id = ?`, runID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rows []usageRow
	err = s.db.SelectContext(ctx, &rows, `
		SELECT run_id, position, name, COALESCE(namespace, '') AS namespace, kind, path,
		       attached_to, status, COALESCE(references_field, '') AS references_field,
		       hit_count, collision
		FROM script_usages WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}

	run.Usages = make([]models.Usage, 0, len(rows))
	for _, r := range rows {
		run.Usages = append(run.Usages, fromRow(r))
	}

	var hits []hitRow
	err = s.db.SelectContext(ctx, &hits, `
		SELECT position, file, line, text
		FROM reference_hits WHERE run_id = ? ORDER BY position, hit_index
	`, runID)
	if err != nil {
		return nil, err
	}
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(run.Usages) {
			continue
		}
		u := &run.Usages[h.Position]
		u.References = append(u.References, models.ReferenceHit{File: h.File, Line: h.Line, Text: h.Text})
	}

	if err := s.db.SelectContext(ctx, &run.Warnings,
		`SELECT message FROM run_warnings WHERE run_id = ? ORDER BY rowid`, runID); err != nil {
		return nil, err
	}

	return &run, nil
}

// ListRuns returns the most recent runs without their usages
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	var runs []*models.Run
	query := `
		SELECT id, started_at, target_root, COALESCE(report_path, '') AS report_path
		FROM runs ORDER BY started_at DESC LIMIT ?
	`

	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}

	return runs, nil
}

func toRow(runID string, position int, u *models.Usage) usageRow {
	return usageRow{
		RunID:      runID,
		Position:   position,
		Name:       u.Entity.Name,
		Namespace:  u.Entity.Namespace,
		Kind:       u.Entity.Kind.String(),
		Path:       u.Entity.Path,
		AttachedTo: u.AttachedToField(),
		Status:     u.Verdict.String(),
		References: u.ReferencesField(),
		HitCount:   len(u.References),
		Collision:  u.Collision,
	}
}

func fromRow(r usageRow) models.Usage {
	u := models.Usage{
		Entity: models.ScriptEntity{
			Name:      r.Name,
			Namespace: r.Namespace,
			Kind:      models.ParseKind(r.Kind),
			Path:      r.Path,
		},
		Collision: r.Collision,
	}

	if r.AttachedTo != models.NoAttachments && r.AttachedTo != "" {
		u.AttachedTo = strings.Split(r.AttachedTo, ";")
	}
	if r.Status == models.VerdictUsed.String() {
		u.Verdict = models.VerdictUsed
	}

	return u
}
