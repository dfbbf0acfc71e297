package service

import (
	"context"
	"fmt"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// TestService handles test authoring and versioning.
type TestService struct {
	pool        *pgxpool.Pool
	testRepo    *repository.TestRepository
	sessionRepo *repository.SessionRepository
	subjectRepo *repository.SubjectRepository
	log         zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(
	pool *pgxpool.Pool,
	testRepo *repository.TestRepository,
	sessionRepo *repository.SessionRepository,
	subjectRepo *repository.SubjectRepository,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		pool:        pool,
		testRepo:    testRepo,
		sessionRepo: sessionRepo,
		subjectRepo: subjectRepo,
		log:         log.With().Str("component", "test_service").Logger(),
	}
}

// Create authors a new test. question_count is always derived from the
// three difficulty targets.
func (s *TestService) Create(ctx context.Context, req *model.CreateTestRequest, creatorID int) (*model.Test, error) {
	if _, err := s.subjectRepo.GetByID(ctx, req.SubjectID); err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	test := &model.Test{
		SubjectID:        req.SubjectID,
		Title:            req.Title,
		Description:      req.Description,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassingScore:     req.PassingScore,
		EasyCount:        req.EasyCount,
		MediumCount:      req.MediumCount,
		HardCount:        req.HardCount,
		QuestionCount:    req.EasyCount + req.MediumCount + req.HardCount,
		CreatorID:        creatorID,
		Version:          1,
		IsLatest:         true,
	}

	if err := s.testRepo.Insert(ctx, test); err != nil {
		return nil, fmt.Errorf("insert test: %w", err)
	}

	s.log.Info().Str("test_id", test.ID.String()).Str("title", test.Title).Msg("test created")
	return test, nil
}

// GetByID retrieves a test by id.
func (s *TestService) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return s.testRepo.GetByID(ctx, id)
}

// ListBySubject retrieves a subject's tests with pagination, latest
// versions first.
func (s *TestService) ListBySubject(ctx context.Context, subjectID, page, perPage int) ([]model.Test, int, error) {
	limit, offset := pageWindow(page, perPage)
	tests, total, err := s.testRepo.ListBySubjectPaginated(ctx, subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if tests == nil {
		tests = []model.Test{}
	}
	return tests, total, nil
}

// Update applies a test edit through the versioning rules. Publication
// flags toggle in place; once any session exists, every other field change
// forks a new version and the old one is superseded and unpublished.
func (s *TestService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateTestRequest) (*model.Test, VersionDecision, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tr := s.testRepo.WithTx(tx)
	sr := s.sessionRepo.WithTx(tx)

	test, err := tr.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, "", err
	}

	active, err := sr.HasActiveSessionForTest(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("check active sessions: %w", err)
	}
	if active {
		return nil, "", ErrContentInUse
	}

	sessions, err := sr.CountSessionsByTest(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("count sessions: %w", err)
	}

	decision := DecisionUpdateInPlace
	if hasUnsafeTestChange(test, req) {
		decision = DecideTestEdit(TestChange{HasSessions: sessions > 0})
	}

	var result *model.Test
	switch decision {
	case DecisionFork:
		result, err = s.forkTest(ctx, tr, test, req)
	default:
		applyTestDiff(test, req)
		test.QuestionCount = test.EasyCount + test.MediumCount + test.HardCount
		if err = tr.UpdateInPlace(ctx, test); err != nil {
			err = fmt.Errorf("update test: %w", err)
		}
		result = test
	}
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("test_id", id.String()).
		Str("decision", string(decision)).
		Str("result_id", result.ID.String()).
		Msg("test updated")
	return result, decision, nil
}

// forkTest creates the successor version and supersedes the old row. The
// old version is also unpublished: a stale version must never remain
// independently startable.
func (s *TestService) forkTest(ctx context.Context, tr *repository.TestRepository, old *model.Test, req *model.UpdateTestRequest) (*model.Test, error) {
	successor := &model.Test{
		SubjectID:        old.SubjectID,
		Title:            old.Title,
		Description:      old.Description,
		TimeLimitMinutes: old.TimeLimitMinutes,
		PassingScore:     old.PassingScore,
		IsPublished:      old.IsPublished,
		EasyCount:        old.EasyCount,
		MediumCount:      old.MediumCount,
		HardCount:        old.HardCount,
		CreatorID:        old.CreatorID,
		Version:          old.Version + 1,
		IsLatest:         true,
	}
	applyTestDiff(successor, req)
	successor.QuestionCount = successor.EasyCount + successor.MediumCount + successor.HardCount

	if err := tr.Supersede(ctx, old.ID); err != nil {
		return nil, fmt.Errorf("supersede old version: %w", err)
	}
	if err := tr.Insert(ctx, successor); err != nil {
		return nil, fmt.Errorf("insert successor: %w", err)
	}
	return successor, nil
}

// hasUnsafeTestChange reports whether the request touches anything beyond
// the publication flags.
func hasUnsafeTestChange(t *model.Test, req *model.UpdateTestRequest) bool {
	switch {
	case req.Title != nil && *req.Title != t.Title:
		return true
	case req.Description != nil && *req.Description != t.Description:
		return true
	case req.TimeLimitMinutes != nil && *req.TimeLimitMinutes != t.TimeLimitMinutes:
		return true
	case req.PassingScore != nil && *req.PassingScore != t.PassingScore:
		return true
	case req.EasyCount != nil && *req.EasyCount != t.EasyCount:
		return true
	case req.MediumCount != nil && *req.MediumCount != t.MediumCount:
		return true
	case req.HardCount != nil && *req.HardCount != t.HardCount:
		return true
	}
	return false
}

func applyTestDiff(t *model.Test, req *model.UpdateTestRequest) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.TimeLimitMinutes != nil {
		t.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.PassingScore != nil {
		t.PassingScore = *req.PassingScore
	}
	if req.EasyCount != nil {
		t.EasyCount = *req.EasyCount
	}
	if req.MediumCount != nil {
		t.MediumCount = *req.MediumCount
	}
	if req.HardCount != nil {
		t.HardCount = *req.HardCount
	}
	if req.IsPublished != nil {
		t.IsPublished = *req.IsPublished
	}
	if req.IsLatest != nil {
		t.IsLatest = *req.IsLatest
	}
}

// Delete soft-deletes a test. Tests with any session history cannot be
// removed.
func (s *TestService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tr := s.testRepo.WithTx(tx)
	sr := s.sessionRepo.WithTx(tx)

	if _, err := tr.GetByIDForUpdate(ctx, id); err != nil {
		return err
	}

	sessions, err := sr.CountSessionsByTest(ctx, id)
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	if sessions > 0 {
		return ErrContentInUse
	}

	if err := tr.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	return tx.Commit(ctx)
}
