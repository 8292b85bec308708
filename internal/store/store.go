// Package store persists run audit records: one row per cleaning run
// plus every record the run changed, suppressed, or deduplicated.
// SQLite is the default backend; Postgres is available for shared
// deployments.
package store

import (
	"context"
	"time"

	"github.com/sells-group/mailclean/internal/model"
	"github.com/sells-group/mailclean/internal/report"
)

// RunStatus tracks the lifecycle of a cleaning run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the audit record for one cleaning run. Options is an opaque
// JSON snapshot of the engine settings the run was evaluated under, so
// past decisions stay explainable after config changes.
type Run struct {
	ID        string          `json:"id"`
	Input     string          `json:"input"`
	Output    string          `json:"output"`
	Options   string          `json:"options,omitempty"`
	Status    RunStatus       `json:"status"`
	Summary   *report.Summary `json:"summary,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for run audit data.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, input, output, options string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, sum report.Summary) error
	FailRun(ctx context.Context, runID string, msg string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Changes
	SaveChanges(ctx context.Context, runID string, records []*model.EmailRecord) error
	ListChanges(ctx context.Context, runID string) ([]model.EmailRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// auditWorthy reports whether a record belongs in the run_changes
// table. Unchanged accepted records are the bulk of most datasets and
// carry no audit value.
func auditWorthy(rec *model.EmailRecord) bool {
	return rec.Changed ||
		rec.Action == model.ActionSuppress ||
		rec.Action == model.ActionDuplicate ||
		rec.Action == model.ActionReview
}
