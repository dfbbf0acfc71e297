package repository

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRepository handles test definition data access.
type TestRepository struct {
	db DBTX
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{db: pool}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *TestRepository) WithTx(tx pgx.Tx) *TestRepository {
	return &TestRepository{db: tx}
}

const testColumns = `id, subject_id, title, description, time_limit_minutes, passing_score,
	is_published, version, is_latest, question_count, easy_count, medium_count, hard_count,
	creator_id, created_at, updated_at`

func scanTest(row pgx.Row, t *model.Test) error {
	return row.Scan(&t.ID, &t.SubjectID, &t.Title, &t.Description, &t.TimeLimitMinutes,
		&t.PassingScore, &t.IsPublished, &t.Version, &t.IsLatest, &t.QuestionCount,
		&t.EasyCount, &t.MediumCount, &t.HardCount, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt)
}

// Insert stores a new test row (initial authoring or a fork).
func (r *TestRepository) Insert(ctx context.Context, t *model.Test) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tests (subject_id, title, description, time_limit_minutes, passing_score,
			is_published, version, is_latest, question_count, easy_count, medium_count, hard_count,
			creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		t.SubjectID, t.Title, t.Description, t.TimeLimitMinutes, t.PassingScore,
		t.IsPublished, t.Version, t.IsLatest, t.QuestionCount, t.EasyCount, t.MediumCount,
		t.HardCount, t.CreatorID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a live test by id.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := scanTest(r.db.QueryRow(ctx,
		`SELECT `+testColumns+` FROM tests
		 WHERE id = $1 AND deleted_at IS NULL`, id), t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByIDForUpdate retrieves a live test with a row lock. Must run inside
// a transaction.
func (r *TestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := scanTest(r.db.QueryRow(ctx,
		`SELECT `+testColumns+` FROM tests
		 WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id), t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListBySubjectPaginated lists live tests of a subject, latest versions first.
func (r *TestRepository) ListBySubjectPaginated(ctx context.Context, subjectID, limit, offset int) ([]model.Test, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tests WHERE subject_id = $1 AND deleted_at IS NULL`, subjectID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+testColumns+` FROM tests
		 WHERE subject_id = $1 AND deleted_at IS NULL
		 ORDER BY is_latest DESC, created_at DESC
		 LIMIT $2 OFFSET $3`, subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := scanTest(rows, &t); err != nil {
			return nil, 0, err
		}
		tests = append(tests, t)
	}
	return tests, total, rows.Err()
}

// UpdateInPlace overwrites every editable field of an existing test row.
func (r *TestRepository) UpdateInPlace(ctx context.Context, t *model.Test) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tests
		 SET title = $1, description = $2, time_limit_minutes = $3, passing_score = $4,
		     is_published = $5, is_latest = $6, question_count = $7,
		     easy_count = $8, medium_count = $9, hard_count = $10, updated_at = NOW()
		 WHERE id = $11 AND deleted_at IS NULL`,
		t.Title, t.Description, t.TimeLimitMinutes, t.PassingScore,
		t.IsPublished, t.IsLatest, t.QuestionCount,
		t.EasyCount, t.MediumCount, t.HardCount, t.ID)
	return err
}

// Supersede marks an old test version as no longer latest and unpublished.
// An old version must never remain independently published.
func (r *TestRepository) Supersede(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tests SET is_latest = FALSE, is_published = FALSE, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

// SoftDelete marks a test as deleted.
func (r *TestRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tests SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}
