package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardCounts aggregates the headline numbers for the supervisor
// dashboard.
type DashboardCounts struct {
	Subjects        int `json:"subjects"`
	Questions       int `json:"questions"`
	Tests           int `json:"tests"`
	ActiveSessions  int `json:"active_sessions"`
	PendingGrading  int `json:"pending_grading"`
	GradedSessions  int `json:"graded_sessions"`
	RegisteredUsers int `json:"registered_users"`
}

// DashboardRepository serves aggregate counts in a single round trip.
type DashboardRepository struct {
	db DBTX
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: pool}
}

// GetCounts gathers all dashboard counters with one query.
func (r *DashboardRepository) GetCounts(ctx context.Context) (*DashboardCounts, error) {
	c := &DashboardCounts{}
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM subjects WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM questions WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM tests WHERE deleted_at IS NULL AND is_latest),
			(SELECT COUNT(*) FROM test_sessions WHERE status = 'IN_PROGRESS' AND NOT is_completed),
			(SELECT COUNT(*) FROM test_sessions WHERE status = 'SUBMITTED' AND NOT auto_graded),
			(SELECT COUNT(*) FROM test_sessions WHERE status = 'GRADED' OR (status = 'SUBMITTED' AND auto_graded)),
			(SELECT COUNT(*) FROM users)`,
	).Scan(&c.Subjects, &c.Questions, &c.Tests, &c.ActiveSessions,
		&c.PendingGrading, &c.GradedSessions, &c.RegisteredUsers)
	if err != nil {
		return nil, err
	}
	return c, nil
}
