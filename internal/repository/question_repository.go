package repository

import (
	"context"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question and answer data access.
type QuestionRepository struct {
	db DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: pool}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *QuestionRepository) WithTx(tx pgx.Tx) *QuestionRepository {
	return &QuestionRepository{db: tx}
}

const questionColumns = `id, subject_id, question_text, question_type, points, difficulty,
	creator_id, version, is_active, created_at, updated_at`

func scanQuestion(row pgx.Row, q *model.Question) error {
	return row.Scan(&q.ID, &q.SubjectID, &q.QuestionText, &q.QuestionType, &q.Points,
		&q.Difficulty, &q.CreatorID, &q.Version, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
}

// Insert stores a new question row (initial authoring or a fork).
func (r *QuestionRepository) Insert(ctx context.Context, q *model.Question) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO questions (subject_id, question_text, question_type, points, difficulty,
			creator_id, version, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		q.SubjectID, q.QuestionText, q.QuestionType, q.Points, q.Difficulty,
		q.CreatorID, q.Version, q.IsActive,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a live question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := scanQuestion(r.db.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE id = $1 AND deleted_at IS NULL`, id), q)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByIDForUpdate retrieves a live question with a row lock. Must run
// inside a transaction.
func (r *QuestionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := scanQuestion(r.db.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id), q)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListBySubjectPaginated lists live questions of a subject.
func (r *QuestionRepository) ListBySubjectPaginated(ctx context.Context, subjectID, limit, offset int) ([]model.Question, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE subject_id = $1 AND deleted_at IS NULL`, subjectID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE subject_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// ListActiveByDifficulty lists the sampling pool for one subject+tier.
func (r *QuestionRepository) ListActiveByDifficulty(ctx context.Context, subjectID int, d model.Difficulty) ([]model.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE subject_id = $1 AND difficulty = $2 AND is_active AND deleted_at IS NULL`,
		subjectID, d)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// UpdateInPlace overwrites every editable field of an existing question row.
func (r *QuestionRepository) UpdateInPlace(ctx context.Context, q *model.Question) error {
	_, err := r.db.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, question_type = $2, points = $3, difficulty = $4,
		     is_active = $5, updated_at = NOW()
		 WHERE id = $6 AND deleted_at IS NULL`,
		q.QuestionText, q.QuestionType, q.Points, q.Difficulty, q.IsActive, q.ID)
	return err
}

// SetActive toggles a question's active flag.
func (r *QuestionRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE questions SET is_active = $1, updated_at = NOW()
		 WHERE id = $2 AND deleted_at IS NULL`, active, id)
	return err
}

// SoftDelete marks a question as deleted.
func (r *QuestionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE questions SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

// HasAnswers reports whether the question still owns any live answer rows.
func (r *QuestionRepository) HasAnswers(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM answers WHERE question_id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	return exists, err
}

// ─── Answers ─────────────────────────────────────────────────────────

const answerColumns = `id, question_id, answer_text, is_correct, explanation, is_active,
	created_at, updated_at`

func scanAnswer(row pgx.Row, a *model.Answer) error {
	return row.Scan(&a.ID, &a.QuestionID, &a.AnswerText, &a.IsCorrect, &a.Explanation,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
}

// InsertAnswer stores a new answer row (initial authoring or a fork).
func (r *QuestionRepository) InsertAnswer(ctx context.Context, a *model.Answer) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO answers (question_id, answer_text, is_correct, explanation, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		a.QuestionID, a.AnswerText, a.IsCorrect, a.Explanation, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetAnswerByID retrieves a live answer by id.
func (r *QuestionRepository) GetAnswerByID(ctx context.Context, id uuid.UUID) (*model.Answer, error) {
	a := &model.Answer{}
	err := scanAnswer(r.db.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE id = $1 AND deleted_at IS NULL`, id), a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAnswerByIDForUpdate retrieves a live answer with a row lock. Must run
// inside a transaction.
func (r *QuestionRepository) GetAnswerByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Answer, error) {
	a := &model.Answer{}
	err := scanAnswer(r.db.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id), a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAnswersByQuestion lists a question's live answers, optionally only
// the active ones.
func (r *QuestionRepository) ListAnswersByQuestion(ctx context.Context, questionID uuid.UUID, activeOnly bool) ([]model.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers
		 WHERE question_id = $1 AND deleted_at IS NULL`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := scanAnswer(rows, &a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// UpdateAnswerInPlace overwrites every editable field of an answer row.
func (r *QuestionRepository) UpdateAnswerInPlace(ctx context.Context, a *model.Answer) error {
	_, err := r.db.Exec(ctx,
		`UPDATE answers
		 SET answer_text = $1, is_correct = $2, explanation = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5 AND deleted_at IS NULL`,
		a.AnswerText, a.IsCorrect, a.Explanation, a.IsActive, a.ID)
	return err
}

// SetAnswerActive toggles an answer's active flag.
func (r *QuestionRepository) SetAnswerActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE answers SET is_active = $1, updated_at = NOW()
		 WHERE id = $2 AND deleted_at IS NULL`, active, id)
	return err
}

// DeactivateAnswersByQuestion marks every live answer of a question inactive.
// Used when an in-place question update replaces the answer set.
func (r *QuestionRepository) DeactivateAnswersByQuestion(ctx context.Context, questionID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE answers SET is_active = FALSE, updated_at = NOW()
		 WHERE question_id = $1 AND deleted_at IS NULL AND is_active`, questionID)
	return err
}
