package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SubjectService handles subject business logic.
type SubjectService struct {
	subjectRepo *repository.SubjectRepository
	log         zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(subjectRepo *repository.SubjectRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

// Create registers a new subject. Subject codes are unique across the
// catalog.
func (s *SubjectService) Create(ctx context.Context, req *model.CreateSubjectRequest, creatorID int) (*model.Subject, error) {
	subject := &model.Subject{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		CreatorID:   creatorID,
	}

	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSubjectCodeTaken
		}
		return nil, fmt.Errorf("create subject: %w", err)
	}

	s.log.Info().Int("subject_id", subject.ID).Str("code", subject.Code).Msg("subject created")
	return subject, nil
}

// GetByID retrieves a subject by id.
func (s *SubjectService) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	return s.subjectRepo.GetByID(ctx, id)
}

// List retrieves all subjects.
func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.subjectRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	return subjects, nil
}

// Update modifies a subject's metadata.
func (s *SubjectService) Update(ctx context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	subject, err := s.subjectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if req.Description != nil {
		subject.Description = *req.Description
	}

	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSubjectCodeTaken
		}
		return nil, fmt.Errorf("update subject: %w", err)
	}
	return subject, nil
}

// Delete soft-deletes a subject. Subjects that still own questions or
// tests cannot be removed.
func (s *SubjectService) Delete(ctx context.Context, id int) error {
	if _, err := s.subjectRepo.GetByID(ctx, id); err != nil {
		return err
	}

	questions, tests, err := s.subjectRepo.CountOwnedContent(ctx, id)
	if err != nil {
		return fmt.Errorf("count owned content: %w", err)
	}
	if questions > 0 || tests > 0 {
		return ErrSubjectHasContent
	}

	return s.subjectRepo.SoftDelete(ctx, id)
}

// isUniqueViolation reports whether an error is a Postgres unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsNotFound reports whether an error means a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
