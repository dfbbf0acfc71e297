package repository

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	db DBTX
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: pool}
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO subjects (name, code, description, creator_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Code, s.Description, s.CreatorID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a subject by id, excluding soft-deleted rows.
func (r *SubjectRepository) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, code, description, creator_id, created_at, updated_at
		 FROM subjects WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&s.ID, &s.Name, &s.Code, &s.Description, &s.CreatorID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetAll lists all live subjects ordered by name.
func (r *SubjectRepository) GetAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code, description, creator_id, created_at, updated_at
		 FROM subjects WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Description, &s.CreatorID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Update modifies the mutable subject fields.
func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subjects SET name = $1, code = $2, description = $3, updated_at = NOW()
		 WHERE id = $4 AND deleted_at IS NULL`,
		s.Name, s.Code, s.Description, s.ID)
	return err
}

// SoftDelete marks a subject as deleted.
func (r *SubjectRepository) SoftDelete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subjects SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

// CountOwnedContent returns how many live questions and tests the subject owns.
func (r *SubjectRepository) CountOwnedContent(ctx context.Context, id int) (questions, tests int, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM questions WHERE subject_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM tests WHERE subject_id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&questions, &tests)
	return questions, tests, err
}
