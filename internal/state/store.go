// Package state records pipeline runs in a SQLite database so past
// executions can be inspected after the fact.
package state

import "time"

// RunStatus describes the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StageStatus describes the outcome of a single pipeline stage.
type StageStatus string

const (
	StageStatusRunning StageStatus = "running"
	StageStatusSuccess StageStatus = "success"
	StageStatusFailed  StageStatus = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID          string
	Environment string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// StageRun is one stage within a run.
type StageRun struct {
	ID          int64
	RunID       string
	Stage       string
	Status      StageStatus
	RowsOut     int64
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SourceFile records an input workbook consumed by a run.
type SourceFile struct {
	RunID    string
	Category string
	Path     string
	Rows     int64
}

// Store persists runs, stages, and source files.
type Store interface {
	CreateRun(env string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	StartStage(runID, stage string) (int64, error)
	CompleteStage(stageID int64, status StageStatus, rowsOut int64, errMsg string) error
	ListStages(runID string) ([]*StageRun, error)

	RecordSourceFile(runID, category, path string, rows int64) error
	ListSourceFiles(runID string) ([]*SourceFile, error)

	Close() error
}
