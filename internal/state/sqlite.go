package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new store instance. A nil logger discards.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the SQLite database at path. Use ":memory:" for an in-memory
// database. Foreign keys are enabled; file-backed databases use WAL.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// CreateRun creates a new pipeline run.
func (s *SQLiteStore) CreateRun(env string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:          generateID(),
		Environment: env,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("environment", env))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, environment, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Environment, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as completed with the given status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		status, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, environment, status, error, started_at, completed_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, environment, status, error, started_at, completed_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		errMsg      sql.NullString
		completedAt sql.NullTime
	)
	if err := sc.Scan(&run.ID, &run.Environment, &run.Status, &errMsg, &run.StartedAt, &completedAt); err != nil {
		return nil, err
	}
	run.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// StartStage records the start of a pipeline stage and returns its row id.
func (s *SQLiteStore) StartStage(runID, stage string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	s.logger.Debug("starting stage", slog.String("run", runID), slog.String("stage", stage))
	res, err := s.db.Exec(
		`INSERT INTO stage_runs (run_id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, stage, StageStatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start stage %s: %w", stage, err)
	}
	return res.LastInsertId()
}

// CompleteStage records the outcome of a stage.
func (s *SQLiteStore) CompleteStage(stageID int64, status StageStatus, rowsOut int64, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(
		`UPDATE stage_runs SET status = ?, rows_out = ?, error = ?, completed_at = ? WHERE id = ?`,
		status, rowsOut, errMsg, time.Now().UTC(), stageID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete stage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stage not found: %d", stageID)
	}
	return nil
}

// ListStages returns the stages of a run in execution order.
func (s *SQLiteStore) ListStages(runID string) ([]*StageRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, stage, status, rows_out, error, started_at, completed_at
		 FROM stage_runs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var stages []*StageRun
	for rows.Next() {
		var (
			st          StageRun
			errMsg      sql.NullString
			completedAt sql.NullTime
		)
		if err := rows.Scan(&st.ID, &st.RunID, &st.Stage, &st.Status, &st.RowsOut, &errMsg, &st.StartedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		st.Error = errMsg.String
		if completedAt.Valid {
			t := completedAt.Time
			st.CompletedAt = &t
		}
		stages = append(stages, &st)
	}
	return stages, rows.Err()
}

// RecordSourceFile records an input workbook consumed by a run.
func (s *SQLiteStore) RecordSourceFile(runID, category, path string, rows int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO source_files (run_id, category, path, rows) VALUES (?, ?, ?, ?)`,
		runID, category, path, rows,
	)
	if err != nil {
		return fmt.Errorf("failed to record source file %s: %w", path, err)
	}
	return nil
}

// ListSourceFiles returns the source files of a run grouped by insertion order.
func (s *SQLiteStore) ListSourceFiles(runID string) ([]*SourceFile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT run_id, category, path, rows FROM source_files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}
	defer rows.Close()

	var files []*SourceFile
	for rows.Next() {
		var f SourceFile
		if err := rows.Scan(&f.RunID, &f.Category, &f.Path, &f.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan source file: %w", err)
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}
