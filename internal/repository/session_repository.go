package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionResult combines a session with its taker for supervisor listings.
type SessionResult struct {
	SessionID   uuid.UUID           `json:"session_id"`
	UserID      int                 `json:"user_id"`
	UserName    string              `json:"user_name"`
	Status      model.SessionStatus `json:"status"`
	Score       *int                `json:"score"`
	StartedAt   time.Time           `json:"started_at"`
	SubmittedAt *time.Time          `json:"submitted_at"`
	AutoGraded  bool                `json:"auto_graded"`
}

// SessionRepository handles test session, snapshot, and user answer data access.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: pool}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *SessionRepository) WithTx(tx pgx.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

const sessionColumns = `id, test_id, user_id, started_at, submitted_at, score,
	time_spent_seconds, status, is_completed, auto_graded, supervisor_id`

func scanSession(row pgx.Row, s *model.TestSession) error {
	return row.Scan(&s.ID, &s.TestID, &s.UserID, &s.StartedAt, &s.SubmittedAt, &s.Score,
		&s.TimeSpentSeconds, &s.Status, &s.IsCompleted, &s.AutoGraded, &s.SupervisorID)
}

// GetByID retrieves a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByIDForUpdate retrieves a session with a row lock. Must run inside a
// transaction.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1 FOR UPDATE`, id), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByUserAndTest retrieves the single in-progress, incomplete
// session for a (user, test) pair, if any.
func (r *SessionRepository) GetActiveByUserAndTest(ctx context.Context, testID uuid.UUID, userID int) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions
		 WHERE test_id = $1 AND user_id = $2 AND status = $3 AND NOT is_completed`,
		testID, userID, model.SessionStatusInProgress), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new in-progress session. The partial unique index on
// (test_id, user_id) for in-progress rows backs up the advisory-lock
// serialization: a concurrent duplicate surfaces as pgx.ErrNoRows.
func (r *SessionRepository) Create(ctx context.Context, s *model.TestSession) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO test_sessions (test_id, user_id, status, is_completed)
		 VALUES ($1, $2, $3, FALSE)
		 ON CONFLICT (test_id, user_id) WHERE status = 'IN_PROGRESS' AND NOT is_completed
		 DO NOTHING
		 RETURNING id, started_at`,
		s.TestID, s.UserID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
}

// AdvisoryLockSessionStart serializes concurrent session creation for one
// (test, user) pair within the surrounding transaction.
func (r *SessionRepository) AdvisoryLockSessionStart(ctx context.Context, testID uuid.UUID, userID int) error {
	key := advisoryKey(testID, userID)
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key)
	return err
}

// advisoryKey derives a stable int64 lock key from a test id and user id
// (FNV-1a over the uuid bytes folded with the user id).
func advisoryKey(testID uuid.UUID, userID int) int64 {
	const prime64 = 1099511628211
	h := uint64(14695981039346656037)
	for _, b := range testID {
		h ^= uint64(b)
		h *= prime64
	}
	h ^= uint64(userID)
	h *= prime64
	return int64(h)
}

// ─── Session questions (snapshots) ───────────────────────────────────

// InsertSessionQuestion persists one frozen session question with its
// answer snapshot, and the reverse-index rows used to detect later answer
// edits against historical snapshots.
func (r *SessionRepository) InsertSessionQuestion(ctx context.Context, sq *model.TestSessionQuestion) error {
	snapshot, err := json.Marshal(sq.AnswersSnapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO test_session_questions
			(session_id, question_id, order_number, question_text, question_type, points, answers_snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		sq.SessionID, sq.QuestionID, sq.OrderNumber, sq.QuestionText, sq.QuestionType,
		sq.Points, snapshot,
	).Scan(&sq.ID)
	if err != nil {
		return err
	}

	if len(sq.AnswersSnapshot) == 0 {
		return nil
	}

	answerIDs := make([]uuid.UUID, len(sq.AnswersSnapshot))
	for i, a := range sq.AnswersSnapshot {
		answerIDs[i] = a.ID
	}

	// Bulk insert the reverse index via UNNEST.
	_, err = r.db.Exec(ctx,
		`INSERT INTO session_answer_refs (session_question_id, question_id, answer_id)
		 SELECT $1, $2, u.answer_id
		 FROM UNNEST($3::uuid[]) AS u (answer_id)`,
		sq.ID, sq.QuestionID, answerIDs)
	return err
}

// ListQuestionsBySession lists a session's frozen questions in
// presentation order.
func (r *SessionRepository) ListQuestionsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.TestSessionQuestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, question_id, order_number, question_text, question_type,
			points, answers_snapshot
		 FROM test_session_questions
		 WHERE session_id = $1
		 ORDER BY order_number ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.TestSessionQuestion
	for rows.Next() {
		var sq model.TestSessionQuestion
		var snapshot []byte
		if err := rows.Scan(&sq.ID, &sq.SessionID, &sq.QuestionID, &sq.OrderNumber,
			&sq.QuestionText, &sq.QuestionType, &sq.Points, &snapshot); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &sq.AnswersSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		questions = append(questions, sq)
	}
	return questions, rows.Err()
}

// ─── Guard queries ───────────────────────────────────────────────────

// HasActiveSessionForQuestion reports whether a question is referenced by
// any in-progress, incomplete session.
func (r *SessionRepository) HasActiveSessionForQuestion(ctx context.Context, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM test_session_questions tsq
			JOIN test_sessions ts ON ts.id = tsq.session_id
			WHERE tsq.question_id = $1 AND ts.status = $2 AND NOT ts.is_completed
		)`, questionID, model.SessionStatusInProgress,
	).Scan(&exists)
	return exists, err
}

// HasActiveSessionForTest reports whether a test has any in-progress,
// incomplete session.
func (r *SessionRepository) HasActiveSessionForTest(ctx context.Context, testID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM test_sessions
			WHERE test_id = $1 AND status = $2 AND NOT is_completed
		)`, testID, model.SessionStatusInProgress,
	).Scan(&exists)
	return exists, err
}

// HasSnapshotForQuestion reports whether a question appears in any session
// snapshot at all (active or historical).
func (r *SessionRepository) HasSnapshotForQuestion(ctx context.Context, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM test_session_questions WHERE question_id = $1)`, questionID,
	).Scan(&exists)
	return exists, err
}

// IsAnswerSnapshotted reports whether a specific answer id appears in any
// historical snapshot, via the reverse index.
func (r *SessionRepository) IsAnswerSnapshotted(ctx context.Context, answerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM session_answer_refs WHERE answer_id = $1)`, answerID,
	).Scan(&exists)
	return exists, err
}

// HasUserAnswersForQuestion reports whether any learner has ever answered
// this question in any session.
func (r *SessionRepository) HasUserAnswersForQuestion(ctx context.Context, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_answers WHERE question_id = $1)`, questionID,
	).Scan(&exists)
	return exists, err
}

// CountSessionsByTest counts every session ever created for a test.
func (r *SessionRepository) CountSessionsByTest(ctx context.Context, testID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_sessions WHERE test_id = $1`, testID,
	).Scan(&count)
	return count, err
}

// ─── User answers ────────────────────────────────────────────────────

// InsertUserAnswers bulk-inserts the full graded answer batch of a
// submission using UNNEST.
func (r *SessionRepository) InsertUserAnswers(ctx context.Context, answers []model.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	n := len(answers)
	sessionIDs := make([]uuid.UUID, n)
	questionIDs := make([]uuid.UUID, n)
	answerIDs := make([]*uuid.UUID, n)
	texts := make([]*string, n)
	corrects := make([]bool, n)
	points := make([]*int, n)

	for i, a := range answers {
		sessionIDs[i] = a.SessionID
		questionIDs[i] = a.QuestionID
		answerIDs[i] = a.AnswerID
		texts[i] = a.AnswerText
		corrects[i] = a.IsCorrect
		points[i] = a.PointsEarned
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO user_answers (session_id, question_id, answer_id, answer_text, is_correct, points_earned)
		 SELECT u.session_id, u.question_id, u.answer_id, u.answer_text, u.is_correct, u.points_earned
		 FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::uuid[],
			$4::text[],
			$5::bool[],
			$6::int[]
		 ) AS u (session_id, question_id, answer_id, answer_text, is_correct, points_earned)`,
		sessionIDs, questionIDs, answerIDs, texts, corrects, points)
	return err
}

// ListUserAnswersBySession lists all recorded answers for a session.
func (r *SessionRepository) ListUserAnswersBySession(ctx context.Context, sessionID uuid.UUID) ([]model.UserAnswer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, question_id, answer_id, answer_text, is_correct,
			points_earned, grader_id, graded_at
		 FROM user_answers WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.UserAnswer
	for rows.Next() {
		var a model.UserAnswer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.AnswerID, &a.AnswerText,
			&a.IsCorrect, &a.PointsEarned, &a.GraderID, &a.GradedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// UpdateUserAnswerGrade records a manual grade on one essay answer.
// Re-grading overwrites the previous grade.
func (r *SessionRepository) UpdateUserAnswerGrade(ctx context.Context, sessionID, questionID uuid.UUID, points int, isCorrect *bool, graderID int) error {
	if isCorrect != nil {
		_, err := r.db.Exec(ctx,
			`UPDATE user_answers
			 SET points_earned = $1, is_correct = $2, grader_id = $3, graded_at = NOW()
			 WHERE session_id = $4 AND question_id = $5`,
			points, *isCorrect, graderID, sessionID, questionID)
		return err
	}
	_, err := r.db.Exec(ctx,
		`UPDATE user_answers
		 SET points_earned = $1, grader_id = $2, graded_at = NOW()
		 WHERE session_id = $3 AND question_id = $4`,
		points, graderID, sessionID, questionID)
	return err
}

// SumPointsEarned totals points across all of a session's answers.
func (r *SessionRepository) SumPointsEarned(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(points_earned), 0) FROM user_answers WHERE session_id = $1`,
		sessionID,
	).Scan(&total)
	return total, err
}

// ─── Session finalization ────────────────────────────────────────────

// UpdateSubmitted persists the scoring outcome of a submission.
func (r *SessionRepository) UpdateSubmitted(ctx context.Context, s *model.TestSession) error {
	_, err := r.db.Exec(ctx,
		`UPDATE test_sessions
		 SET submitted_at = $1, score = $2, time_spent_seconds = $3, status = $4,
		     is_completed = TRUE, auto_graded = $5
		 WHERE id = $6`,
		s.SubmittedAt, s.Score, s.TimeSpentSeconds, s.Status, s.AutoGraded, s.ID)
	return err
}

// UpdateGraded persists the outcome of manual essay grading.
func (r *SessionRepository) UpdateGraded(ctx context.Context, sessionID uuid.UUID, score, supervisorID int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE test_sessions
		 SET score = $1, status = $2, auto_graded = FALSE, supervisor_id = $3
		 WHERE id = $4`,
		score, model.SessionStatusGraded, supervisorID, sessionID)
	return err
}

// ─── Listings ────────────────────────────────────────────────────────

// ListByTest retrieves paginated session results for a test.
func (r *SessionRepository) ListByTest(ctx context.Context, testID uuid.UUID, limit, offset int) ([]SessionResult, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_sessions WHERE test_id = $1`, testID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT ts.id, ts.user_id, u.name, ts.status, ts.score, ts.started_at,
			ts.submitted_at, ts.auto_graded
		 FROM test_sessions ts
		 JOIN users u ON u.id = ts.user_id
		 WHERE ts.test_id = $1
		 ORDER BY ts.started_at DESC
		 LIMIT $2 OFFSET $3`, testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var sr SessionResult
		if err := rows.Scan(&sr.SessionID, &sr.UserID, &sr.UserName, &sr.Status, &sr.Score,
			&sr.StartedAt, &sr.SubmittedAt, &sr.AutoGraded); err != nil {
			return nil, 0, err
		}
		results = append(results, sr)
	}
	return results, total, rows.Err()
}

// ListByUser retrieves a learner's session history, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int) ([]model.TestSession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions
		 WHERE user_id = $1 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TestSession
	for rows.Next() {
		var s model.TestSession
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
