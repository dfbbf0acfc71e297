package service

import (
	"context"
	"fmt"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// QuestionService handles question and answer authoring, routing every
// mutation through the copy-on-write versioning rules.
type QuestionService struct {
	pool         *pgxpool.Pool
	questionRepo *repository.QuestionRepository
	sessionRepo  *repository.SessionRepository
	subjectRepo  *repository.SubjectRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	pool *pgxpool.Pool,
	questionRepo *repository.QuestionRepository,
	sessionRepo *repository.SessionRepository,
	subjectRepo *repository.SubjectRepository,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		pool:         pool,
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		subjectRepo:  subjectRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// Create authors a new question with its full answer set in one
// transaction.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest, creatorID int) (*model.Question, error) {
	qt := model.QuestionType(req.QuestionType)
	if err := model.ValidateAnswerSet(qt, req.Answers); err != nil {
		return nil, err
	}

	if _, err := s.subjectRepo.GetByID(ctx, req.SubjectID); err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	question := &model.Question{
		SubjectID:    req.SubjectID,
		QuestionText: req.QuestionText,
		QuestionType: qt,
		Points:       req.Points,
		Difficulty:   model.Difficulty(req.Difficulty),
		CreatorID:    creatorID,
		Version:      1,
		IsActive:     true,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qr := s.questionRepo.WithTx(tx)
	if err := qr.Insert(ctx, question); err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}

	for _, p := range req.Answers {
		answer := &model.Answer{
			QuestionID:  question.ID,
			AnswerText:  p.AnswerText,
			IsCorrect:   p.IsCorrect,
			Explanation: p.Explanation,
			IsActive:    p.IsActive,
		}
		if err := qr.InsertAnswer(ctx, answer); err != nil {
			return nil, fmt.Errorf("insert answer: %w", err)
		}
		question.Answers = append(question.Answers, *answer)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Str("question_id", question.ID.String()).Int("subject_id", question.SubjectID).Msg("question created")
	return question, nil
}

// GetByID retrieves a question with its full answer set.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := s.questionRepo.ListAnswersByQuestion(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	question.Answers = answers
	return question, nil
}

// ListBySubject retrieves a subject's questions with pagination.
func (s *QuestionService) ListBySubject(ctx context.Context, subjectID, page, perPage int) ([]model.Question, int, error) {
	limit, offset := pageWindow(page, perPage)
	questions, total, err := s.questionRepo.ListBySubjectPaginated(ctx, subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, total, nil
}

// Update applies a question edit through the versioning rules. Returns the
// resulting row (the same row for an in-place update, the successor row
// for a fork) and the decision taken.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, VersionDecision, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qr := s.questionRepo.WithTx(tx)
	sr := s.sessionRepo.WithTx(tx)

	question, err := qr.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, "", err
	}

	// Content being taken in an exam must not shift under the learner.
	active, err := sr.HasActiveSessionForQuestion(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("check active sessions: %w", err)
	}
	if active {
		return nil, "", ErrContentInUse
	}

	referenced, err := sr.HasSnapshotForQuestion(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("check snapshot usage: %w", err)
	}

	change := questionChangeFromRequest(question, req, referenced)
	decision := DecideQuestionEdit(change)

	var result *model.Question
	switch decision {
	case DecisionFork:
		result, err = s.forkQuestion(ctx, qr, question, req)
	default:
		result, err = s.updateQuestionInPlace(ctx, qr, question, req)
	}
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("question_id", id.String()).
		Str("decision", string(decision)).
		Str("result_id", result.ID.String()).
		Msg("question updated")
	return result, decision, nil
}

// forkQuestion creates the successor version and deactivates the old row.
// The successor copies unchanged fields, applies the diff, and takes its
// answer set from the payload when present (active-flagged entries only)
// or from the current active answers otherwise.
func (s *QuestionService) forkQuestion(ctx context.Context, qr *repository.QuestionRepository, old *model.Question, req *model.UpdateQuestionRequest) (*model.Question, error) {
	successor := &model.Question{
		SubjectID:    old.SubjectID,
		QuestionText: old.QuestionText,
		QuestionType: old.QuestionType,
		Points:       old.Points,
		Difficulty:   old.Difficulty,
		CreatorID:    old.CreatorID,
		Version:      old.Version + 1,
		IsActive:     true,
	}
	applyQuestionDiff(successor, req)

	var payloads []model.AnswerPayload
	if req.Answers != nil {
		for _, p := range req.Answers {
			if p.IsActive {
				payloads = append(payloads, p)
			}
		}
	} else {
		current, err := qr.ListAnswersByQuestion(ctx, old.ID, true)
		if err != nil {
			return nil, fmt.Errorf("list active answers: %w", err)
		}
		payloads = model.PayloadsFromAnswers(current)
	}

	if err := model.ValidateAnswerSet(successor.QuestionType, payloads); err != nil {
		return nil, err
	}

	if err := qr.Insert(ctx, successor); err != nil {
		return nil, fmt.Errorf("insert successor: %w", err)
	}
	for _, p := range payloads {
		answer := &model.Answer{
			QuestionID:  successor.ID,
			AnswerText:  p.AnswerText,
			IsCorrect:   p.IsCorrect,
			Explanation: p.Explanation,
			IsActive:    true,
		}
		if err := qr.InsertAnswer(ctx, answer); err != nil {
			return nil, fmt.Errorf("insert successor answer: %w", err)
		}
		successor.Answers = append(successor.Answers, *answer)
	}

	if err := qr.SetActive(ctx, old.ID, false); err != nil {
		return nil, fmt.Errorf("deactivate old version: %w", err)
	}
	return successor, nil
}

// updateQuestionInPlace merges the diff into the existing row. A payload
// answer set replaces the current one.
func (s *QuestionService) updateQuestionInPlace(ctx context.Context, qr *repository.QuestionRepository, question *model.Question, req *model.UpdateQuestionRequest) (*model.Question, error) {
	applyQuestionDiff(question, req)

	if req.Answers != nil {
		if err := model.ValidateAnswerSet(question.QuestionType, req.Answers); err != nil {
			return nil, err
		}
		if err := qr.DeactivateAnswersByQuestion(ctx, question.ID); err != nil {
			return nil, fmt.Errorf("deactivate answers: %w", err)
		}
		question.Answers = nil
		for _, p := range req.Answers {
			answer := &model.Answer{
				QuestionID:  question.ID,
				AnswerText:  p.AnswerText,
				IsCorrect:   p.IsCorrect,
				Explanation: p.Explanation,
				IsActive:    p.IsActive,
			}
			if err := qr.InsertAnswer(ctx, answer); err != nil {
				return nil, fmt.Errorf("insert answer: %w", err)
			}
			question.Answers = append(question.Answers, *answer)
		}
	}

	if err := qr.UpdateInPlace(ctx, question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return question, nil
}

func applyQuestionDiff(q *model.Question, req *model.UpdateQuestionRequest) {
	if req.QuestionText != nil {
		q.QuestionText = *req.QuestionText
	}
	if req.QuestionType != nil {
		q.QuestionType = model.QuestionType(*req.QuestionType)
	}
	if req.Points != nil {
		q.Points = *req.Points
	}
	if req.Difficulty != nil {
		q.Difficulty = model.Difficulty(*req.Difficulty)
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
}

// Delete soft-deletes a question. Deletion is blocked while the question
// has answers, recorded learner answers, snapshot references, or active
// session usage.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qr := s.questionRepo.WithTx(tx)
	sr := s.sessionRepo.WithTx(tx)

	if _, err := qr.GetByIDForUpdate(ctx, id); err != nil {
		return err
	}

	active, err := sr.HasActiveSessionForQuestion(ctx, id)
	if err != nil {
		return fmt.Errorf("check active sessions: %w", err)
	}
	if active {
		return ErrContentInUse
	}

	hasAnswers, err := qr.HasAnswers(ctx, id)
	if err != nil {
		return fmt.Errorf("check answers: %w", err)
	}
	answered, err := sr.HasUserAnswersForQuestion(ctx, id)
	if err != nil {
		return fmt.Errorf("check learner answers: %w", err)
	}
	snapshotted, err := sr.HasSnapshotForQuestion(ctx, id)
	if err != nil {
		return fmt.Errorf("check snapshot usage: %w", err)
	}
	if hasAnswers || answered || snapshotted {
		return ErrQuestionInUse
	}

	if err := qr.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	return tx.Commit(ctx)
}

// ─── Answers ─────────────────────────────────────────────────────────

// AddAnswer appends one answer option to a question, validating the
// resulting active set.
func (s *QuestionService) AddAnswer(ctx context.Context, questionID uuid.UUID, payload *model.AnswerPayload) (*model.Answer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qr := s.questionRepo.WithTx(tx)

	question, err := qr.GetByIDForUpdate(ctx, questionID)
	if err != nil {
		return nil, err
	}

	current, err := qr.ListAnswersByQuestion(ctx, questionID, true)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	resulting := append(model.PayloadsFromAnswers(current), *payload)
	if err := model.ValidateAnswerSet(question.QuestionType, resulting); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID:  questionID,
		AnswerText:  payload.AnswerText,
		IsCorrect:   payload.IsCorrect,
		Explanation: payload.Explanation,
		IsActive:    payload.IsActive,
	}
	if err := qr.InsertAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return answer, nil
}

// UpdateAnswer applies an answer edit through the versioning rules. A
// snapshotted answer forks a replacement row on any change other than
// is_active; the snapshot itself is an independent copy and never moves.
func (s *QuestionService) UpdateAnswer(ctx context.Context, questionID, answerID uuid.UUID, req *model.UpdateAnswerRequest) (*model.Answer, VersionDecision, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qr := s.questionRepo.WithTx(tx)
	sr := s.sessionRepo.WithTx(tx)

	// Lock the parent question so concurrent edits to the same answer
	// set serialize, then the answer row itself.
	question, err := qr.GetByIDForUpdate(ctx, questionID)
	if err != nil {
		return nil, "", err
	}
	answer, err := qr.GetAnswerByIDForUpdate(ctx, answerID)
	if err != nil {
		return nil, "", err
	}
	if answer.QuestionID != questionID {
		return nil, "", pgx.ErrNoRows
	}

	snapshotted, err := sr.IsAnswerSnapshotted(ctx, answerID)
	if err != nil {
		return nil, "", fmt.Errorf("check snapshot usage: %w", err)
	}

	change := answerChangeFromRequest(answer, req, snapshotted)
	decision := DecideAnswerEdit(change)

	var result *model.Answer
	switch decision {
	case DecisionFork:
		result, err = s.forkAnswer(ctx, qr, question, answer, req)
	default:
		result, err = s.updateAnswerInPlace(ctx, qr, question, answer, req, snapshotted)
	}
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("answer_id", answerID.String()).
		Str("decision", string(decision)).
		Msg("answer updated")
	return result, decision, nil
}

// forkAnswer creates the replacement row, deactivates the old one, and
// validates the resulting live active set.
func (s *QuestionService) forkAnswer(ctx context.Context, qr *repository.QuestionRepository, question *model.Question, old *model.Answer, req *model.UpdateAnswerRequest) (*model.Answer, error) {
	replacement := &model.Answer{
		QuestionID:  old.QuestionID,
		AnswerText:  old.AnswerText,
		IsCorrect:   old.IsCorrect,
		Explanation: old.Explanation,
		IsActive:    true,
	}
	applyAnswerDiff(replacement, req)
	replacement.IsActive = true

	if err := qr.SetAnswerActive(ctx, old.ID, false); err != nil {
		return nil, fmt.Errorf("deactivate old answer: %w", err)
	}
	if err := qr.InsertAnswer(ctx, replacement); err != nil {
		return nil, fmt.Errorf("insert replacement: %w", err)
	}

	if err := s.validateLiveAnswerSet(ctx, qr, question); err != nil {
		return nil, err
	}
	return replacement, nil
}

func (s *QuestionService) updateAnswerInPlace(ctx context.Context, qr *repository.QuestionRepository, question *model.Question, answer *model.Answer, req *model.UpdateAnswerRequest, snapshotted bool) (*model.Answer, error) {
	applyAnswerDiff(answer, req)
	if err := qr.UpdateAnswerInPlace(ctx, answer); err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}

	// An is_active toggle on a snapshotted answer skips set validation:
	// history lives in independent snapshot copies.
	if !snapshotted {
		if err := s.validateLiveAnswerSet(ctx, qr, question); err != nil {
			return nil, err
		}
	}
	return answer, nil
}

// validateLiveAnswerSet checks the question's active answers against the
// set rules. Inactive rows are versioning leftovers, superseded originals
// that keep their is_correct flag for history, so they stay out of the
// live set.
func (s *QuestionService) validateLiveAnswerSet(ctx context.Context, qr *repository.QuestionRepository, question *model.Question) error {
	answers, err := qr.ListAnswersByQuestion(ctx, question.ID, true)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	return model.ValidateAnswerSet(question.QuestionType, model.PayloadsFromAnswers(answers))
}

func applyAnswerDiff(a *model.Answer, req *model.UpdateAnswerRequest) {
	if req.AnswerText != nil {
		a.AnswerText = *req.AnswerText
	}
	if req.IsCorrect != nil {
		a.IsCorrect = *req.IsCorrect
	}
	if req.Explanation != nil {
		a.Explanation = req.Explanation
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
}

// pageWindow clamps pagination parameters to sane bounds.
func pageWindow(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return perPage, (page - 1) * perPage
}
