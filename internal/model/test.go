package model

import (
	"time"

	"github.com/google/uuid"
)

// Test represents one version of a composite test definition. Editing a
// test that already has sessions forks a new row (version+1, is_latest);
// the superseded row is unpublished so it can never be taken again.
type Test struct {
	ID               uuid.UUID  `json:"id"`
	SubjectID        int        `json:"subject_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	PassingScore     int        `json:"passing_score"`
	IsPublished      bool       `json:"is_published"`
	Version          int        `json:"version"`
	IsLatest         bool       `json:"is_latest"`
	QuestionCount    int        `json:"question_count"`
	EasyCount        int        `json:"easy_count"`
	MediumCount      int        `json:"medium_count"`
	HardCount        int        `json:"hard_count"`
	CreatorID        int        `json:"creator_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// TierCount returns the target question count for a difficulty tier.
func (t *Test) TierCount(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return t.EasyCount
	case DifficultyMedium:
		return t.MediumCount
	case DifficultyHard:
		return t.HardCount
	}
	return 0
}

// CreateTestRequest is the payload for creating a test.
type CreateTestRequest struct {
	SubjectID        int    `json:"subject_id" binding:"required"`
	Title            string `json:"title" binding:"required,min=3,max=255"`
	Description      string `json:"description" binding:"omitempty,max=5000"`
	TimeLimitMinutes int    `json:"time_limit_minutes" binding:"required,min=1,max=480"`
	PassingScore     int    `json:"passing_score" binding:"min=0"`
	EasyCount        int    `json:"easy_count" binding:"min=0"`
	MediumCount      int    `json:"medium_count" binding:"min=0"`
	HardCount        int    `json:"hard_count" binding:"min=0"`
}

// UpdateTestRequest is a partial update. Nil fields are unchanged.
type UpdateTestRequest struct {
	Title            *string `json:"title" binding:"omitempty,min=3,max=255"`
	Description      *string `json:"description" binding:"omitempty,max=5000"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	PassingScore     *int    `json:"passing_score" binding:"omitempty,min=0"`
	EasyCount        *int    `json:"easy_count" binding:"omitempty,min=0"`
	MediumCount      *int    `json:"medium_count" binding:"omitempty,min=0"`
	HardCount        *int    `json:"hard_count" binding:"omitempty,min=0"`
	IsPublished      *bool   `json:"is_published" binding:"omitempty"`
	IsLatest         *bool   `json:"is_latest" binding:"omitempty"`
}
