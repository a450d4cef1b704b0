package scenario

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines the interface for execution-log persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	CreateExecution(ctx context.Context, exec *Execution) error
	ListExecutions(ctx context.Context, limit int) ([]Execution, error)
}

// executionColumns is the SELECT column list for execution queries.
const executionColumns = `id, scenario, camera_serial, zone_name, outcome, detail,
			resolved_user, triggered_at, duration_ms`

// timestampLayout is RFC3339 with fixed nine-digit fractional seconds.
// Timestamps are stored as UTC text; the fixed width keeps lexicographic
// order chronological, which ORDER BY triggered_at relies on.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateExecution inserts one execution row.
func (r *SQLiteRepository) CreateExecution(ctx context.Context, exec *Execution) error {
	query := `INSERT INTO scenario_executions (` + executionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		exec.ID,
		exec.Scenario,
		exec.CameraSerial,
		exec.ZoneName,
		exec.Outcome,
		exec.Detail,
		exec.ResolvedUser,
		exec.TriggeredAt.UTC().Format(timestampLayout),
		exec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

// ListExecutions returns the most recent executions, newest first.
func (r *SQLiteRepository) ListExecutions(ctx context.Context, limit int) ([]Execution, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + executionColumns + ` FROM scenario_executions
		ORDER BY triggered_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		var (
			exec        Execution
			triggeredAt string
		)
		if err := rows.Scan(
			&exec.ID,
			&exec.Scenario,
			&exec.CameraSerial,
			&exec.ZoneName,
			&exec.Outcome,
			&exec.Detail,
			&exec.ResolvedUser,
			&triggeredAt,
			&exec.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scanning execution: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, triggeredAt); parseErr == nil {
			exec.TriggeredAt = parsed
		}
		executions = append(executions, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating executions: %w", err)
	}

	return executions, nil
}
