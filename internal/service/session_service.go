package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionService drives the test session lifecycle: stratified sampling
// with answer snapshotting on creation, draft autosave, submission scoring,
// and manual essay grading.
type SessionService struct {
	cfg          *config.Config
	pool         *pgxpool.Pool
	sessionRepo  *repository.SessionRepository
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger

	// rng feeds sampling and shuffling. Guarded because rand.Rand is not
	// safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSessionService creates a new SessionService. The rng is injected so
// sampling can be made deterministic in tests.
func NewSessionService(
	cfg *config.Config,
	pool *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
	rng *rand.Rand,
) *SessionService {
	return &SessionService{
		cfg:          cfg,
		pool:         pool,
		sessionRepo:  sessionRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "session_service").Logger(),
		rng:          rng,
	}
}

// CreateSession starts (or idempotently re-enters) a session for a test.
// The whole sampling-and-snapshot step runs in one transaction serialized
// by an advisory lock, so concurrent start calls from the same learner
// yield exactly one session.
func (s *SessionService) CreateSession(ctx context.Context, testID uuid.UUID, userID int) (*model.TestSession, error) {
	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished {
		return nil, ErrTestNotPublished
	}
	if !test.IsLatest {
		return nil, ErrTestNotLatest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sr := s.sessionRepo.WithTx(tx)
	qr := s.questionRepo.WithTx(tx)

	if err := sr.AdvisoryLockSessionStart(ctx, testID, userID); err != nil {
		return nil, fmt.Errorf("advisory lock: %w", err)
	}

	// Idempotent re-entry: page refresh returns the running session.
	existing, err := sr.GetActiveByUserAndTest(ctx, testID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup active session: %w", err)
	}

	pools := make(map[model.Difficulty][]model.Question, len(model.Difficulties))
	for _, d := range model.Difficulties {
		if test.TierCount(d) == 0 {
			continue
		}
		pool, err := qr.ListActiveByDifficulty(ctx, test.SubjectID, d)
		if err != nil {
			return nil, fmt.Errorf("list %s questions: %w", d, err)
		}
		pools[d] = pool
	}

	s.rngMu.Lock()
	paper, err := sampleStratified(test, pools, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return nil, err
	}

	session := &model.TestSession{
		TestID:      testID,
		UserID:      userID,
		Status:      model.SessionStatusInProgress,
		IsCompleted: false,
	}
	if err := sr.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race despite the lock; hand back the winner's row.
			return sr.GetActiveByUserAndTest(ctx, testID, userID)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	for i, q := range paper {
		answers, err := qr.ListAnswersByQuestion(ctx, q.ID, true)
		if err != nil {
			return nil, fmt.Errorf("list answers for snapshot: %w", err)
		}

		snapshot := make([]model.AnswerSnapshot, len(answers))
		for j, a := range answers {
			snapshot[j] = model.AnswerSnapshot{
				ID:          a.ID,
				AnswerText:  a.AnswerText,
				IsCorrect:   a.IsCorrect,
				Explanation: a.Explanation,
			}
		}
		// Shuffle at snapshot time so review shows the same option
		// order the learner saw.
		s.rngMu.Lock()
		snapshot = shuffleAnswers(snapshot, s.rng)
		s.rngMu.Unlock()

		sq := &model.TestSessionQuestion{
			SessionID:       session.ID,
			QuestionID:      q.ID,
			OrderNumber:     i + 1,
			QuestionText:    q.QuestionText,
			QuestionType:    q.QuestionType,
			Points:          q.Points,
			AnswersSnapshot: snapshot,
		}
		if err := sr.InsertSessionQuestion(ctx, sq); err != nil {
			return nil, fmt.Errorf("insert session question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.cacheStartTime(ctx, session, test)

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("test_id", testID.String()).
		Int("user_id", userID).
		Int("questions", len(paper)).
		Msg("session created")
	return session, nil
}

// sessionTTL is how long session-scoped Redis keys live: the time limit
// plus grace, with headroom for post-submission reads.
func (s *SessionService) sessionTTL(test *model.Test) time.Duration {
	return time.Duration(test.TimeLimitMinutes)*time.Minute + s.cfg.SubmitGrace + time.Hour
}

func (s *SessionService) cacheStartTime(ctx context.Context, session *model.TestSession, test *model.Test) {
	key := config.CacheKey.SessionStartKey(session.ID.String())
	if err := s.rdb.Set(ctx, key, session.StartedAt.Format(time.RFC3339Nano), s.sessionTTL(test)).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("cache start time failed")
	}
}

// startedAt reads a session's start time from Redis, self-healing from the
// database row on a miss.
func (s *SessionService) startedAt(ctx context.Context, session *model.TestSession, test *model.Test) time.Time {
	key := config.CacheKey.SessionStartKey(session.ID.String())
	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			return t
		}
	}
	if !errors.Is(err, redis.Nil) && err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("read start time failed")
	}
	s.cacheStartTime(ctx, session, test)
	return session.StartedAt
}

// GetPaper returns the learner-facing view of an in-progress session with
// answer correctness stripped, cached in Redis per session.
func (s *SessionService) GetPaper(ctx context.Context, sessionID uuid.UUID, userID int) (*model.SessionPaper, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}

	key := config.CacheKey.SessionPaperKey(sessionID.String())
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		paper := &model.SessionPaper{}
		if jerr := json.Unmarshal(raw, paper); jerr == nil {
			return paper, nil
		}
	}

	test, err := s.testRepo.GetByID(ctx, session.TestID)
	if err != nil {
		return nil, err
	}
	questions, err := s.sessionRepo.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session questions: %w", err)
	}

	paper := &model.SessionPaper{
		SessionID:        sessionID,
		TestID:           session.TestID,
		TimeLimitMinutes: test.TimeLimitMinutes,
		Questions:        make([]model.SessionQuestionForDoing, len(questions)),
	}
	for i, sq := range questions {
		options := make([]model.AnswerOptionForDoing, len(sq.AnswersSnapshot))
		for j, a := range sq.AnswersSnapshot {
			options[j] = model.AnswerOptionForDoing{ID: a.ID, AnswerText: a.AnswerText}
		}
		paper.Questions[i] = model.SessionQuestionForDoing{
			QuestionID:   sq.QuestionID,
			OrderNumber:  sq.OrderNumber,
			QuestionText: sq.QuestionText,
			QuestionType: sq.QuestionType,
			Points:       sq.Points,
			Answers:      options,
		}
	}

	if raw, err := json.Marshal(paper); err == nil {
		if cerr := s.rdb.Set(ctx, key, raw, s.sessionTTL(test)).Err(); cerr != nil {
			s.log.Warn().Err(cerr).Str("session_id", sessionID.String()).Msg("cache paper failed")
		}
	}
	return paper, nil
}

// GetState reports remaining time and autosaved drafts for session
// re-entry after a reload.
func (s *SessionService) GetState(ctx context.Context, sessionID uuid.UUID, userID int) (*model.SessionState, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}

	test, err := s.testRepo.GetByID(ctx, session.TestID)
	if err != nil {
		return nil, err
	}

	started := s.startedAt(ctx, session, test)
	limit := time.Duration(test.TimeLimitMinutes) * time.Minute
	remaining := limit - time.Since(started)
	if remaining < 0 || session.IsCompleted {
		remaining = 0
	}

	drafts, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionDraftKey(sessionID.String())).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("read drafts failed")
		drafts = map[string]string{}
	}
	if drafts == nil {
		drafts = map[string]string{}
	}

	return &model.SessionState{
		SessionID:        sessionID,
		RemainingSeconds: remaining.Seconds(),
		DraftAnswers:     drafts,
	}, nil
}

// SaveDrafts autosaves in-progress answers. Drafts live only in Redis and
// never touch the database; submission is the sole durable write.
func (s *SessionService) SaveDrafts(ctx context.Context, sessionID uuid.UUID, userID int, req *model.SaveDraftRequest) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return ErrNotSessionOwner
	}
	if session.IsCompleted || session.Status != model.SessionStatusInProgress {
		return ErrSessionAlreadySubmitted
	}

	test, err := s.testRepo.GetByID(ctx, session.TestID)
	if err != nil {
		return err
	}

	fields := make([]interface{}, 0, len(req.Answers)*2)
	for _, d := range req.Answers {
		fields = append(fields, d.QuestionID.String(), d.Value)
	}

	key := config.CacheKey.SessionDraftKey(sessionID.String())
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, fields...)
	pipe.Expire(ctx, key, s.sessionTTL(test))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save drafts: %w", err)
	}
	return nil
}

// Submit finalizes a session: scores the submission against the frozen
// snapshot and persists every answer plus the session outcome atomically.
// Resubmission is rejected, as are submissions arriving after the time
// limit plus the configured grace window.
func (s *SessionService) Submit(ctx context.Context, sessionID uuid.UUID, userID int, req *model.SubmitSessionRequest) (*model.TestSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sr := s.sessionRepo.WithTx(tx)

	session, err := sr.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.IsCompleted || session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionAlreadySubmitted
	}

	test, err := s.testRepo.WithTx(tx).GetByID(ctx, session.TestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	elapsed := now.Sub(session.StartedAt)
	limit := time.Duration(test.TimeLimitMinutes) * time.Minute
	if elapsed > limit+s.cfg.SubmitGrace {
		return nil, ErrTimeLimitExceeded
	}

	questions, err := sr.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session questions: %w", err)
	}

	result := scoreSubmission(sessionID, questions, req.Answers)

	if err := sr.InsertUserAnswers(ctx, result.Answers); err != nil {
		return nil, fmt.Errorf("insert answers: %w", err)
	}

	spent := int(elapsed.Seconds())
	session.SubmittedAt = &now
	session.Score = &result.Score
	session.TimeSpentSeconds = &spent
	session.Status = result.Status
	session.IsCompleted = true
	session.AutoGraded = result.AutoGraded
	if err := sr.UpdateSubmitted(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.clearSessionCache(ctx, sessionID)
	s.publishMonitorEvent(ctx, session)

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("score", result.Score).
		Bool("auto_graded", result.AutoGraded).
		Msg("session submitted")
	return session, nil
}

func (s *SessionService) clearSessionCache(ctx context.Context, sessionID uuid.UUID) {
	id := sessionID.String()
	if err := s.rdb.Del(ctx,
		config.CacheKey.SessionDraftKey(id),
		config.CacheKey.SessionPaperKey(id),
	).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("clear session cache failed")
	}
}

func (s *SessionService) publishMonitorEvent(ctx context.Context, session *model.TestSession) {
	event := model.MonitorEvent{
		SessionID: session.ID,
		TestID:    session.TestID,
		UserID:    session.UserID,
		Status:    session.Status,
		Score:     session.Score,
		At:        time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := config.CacheKey.TestMonitorChannel(session.TestID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("publish monitor event failed")
	}
}

// GradeEssays applies manual essay grades to a submitted session and
// recomputes its total score. Grading is idempotent per question and may
// cover a subset of the essays in one call.
func (s *SessionService) GradeEssays(ctx context.Context, sessionID uuid.UUID, req *model.GradeSessionRequest, supervisorID int) (*model.TestSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sr := s.sessionRepo.WithTx(tx)

	session, err := sr.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsCompleted || session.Status == model.SessionStatusInProgress {
		return nil, ErrSessionNotSubmitted
	}

	questions, err := sr.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session questions: %w", err)
	}
	byQuestion := make(map[uuid.UUID]*model.TestSessionQuestion, len(questions))
	for i := range questions {
		byQuestion[questions[i].QuestionID] = &questions[i]
	}

	for _, grade := range req.Grades {
		sq := byQuestion[grade.QuestionID]
		if sq == nil || sq.QuestionType != model.QuestionTypeEssay {
			return nil, ErrNotEssayQuestion
		}
		if grade.Points > sq.Points {
			return nil, ErrPointsExceedMaximum
		}
		if err := sr.UpdateUserAnswerGrade(ctx, sessionID, grade.QuestionID, grade.Points, grade.IsCorrect, supervisorID); err != nil {
			return nil, fmt.Errorf("apply grade: %w", err)
		}
	}

	total, err := sr.SumPointsEarned(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sum points: %w", err)
	}
	if err := sr.UpdateGraded(ctx, sessionID, total, supervisorID); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	session.Score = &total
	session.Status = model.SessionStatusGraded
	session.AutoGraded = false
	session.SupervisorID = &supervisorID

	s.publishMonitorEvent(ctx, session)

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("score", total).
		Int("supervisor_id", supervisorID).
		Msg("session graded")
	return session, nil
}

// GetDetail returns the post-hoc review view of a session: full snapshots
// with correctness markers plus the learner's recorded answers. Learners
// may only review their own sessions.
func (s *SessionService) GetDetail(ctx context.Context, sessionID uuid.UUID, requesterID int, supervisor bool) (*model.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !supervisor && session.UserID != requesterID {
		return nil, ErrNotSessionOwner
	}

	questions, err := s.sessionRepo.ListQuestionsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session questions: %w", err)
	}
	answers, err := s.sessionRepo.ListUserAnswersBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	if answers == nil {
		answers = []model.UserAnswer{}
	}

	return &model.SessionDetail{
		Session:   *session,
		Questions: questions,
		Answers:   answers,
	}, nil
}

// ListByTest retrieves paginated session results for a test.
func (s *SessionService) ListByTest(ctx context.Context, testID uuid.UUID, page, perPage int) ([]repository.SessionResult, int, error) {
	limit, offset := pageWindow(page, perPage)
	results, total, err := s.sessionRepo.ListByTest(ctx, testID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if results == nil {
		results = []repository.SessionResult{}
	}
	return results, total, nil
}

// ListByUser retrieves a learner's own session history.
func (s *SessionService) ListByUser(ctx context.Context, userID int) ([]model.TestSession, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.TestSession{}
	}
	return sessions, nil
}
