package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeEssay          QuestionType = "ESSAY"
)

// Difficulty enumerates the stratification tiers used by test sampling.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists all tiers in sampling order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Question represents one version of an authored question. Editing a
// question that already has recorded learner answers forks a new row with
// version+1 instead of mutating this one.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	SubjectID    int          `json:"subject_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Points       int          `json:"points"`
	Difficulty   Difficulty   `json:"difficulty"`
	CreatorID    int          `json:"creator_id"`
	Version      int          `json:"version"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`

	// Answers is populated by read paths that load the answer set.
	Answers []Answer `json:"answers,omitempty"`
}

// CreateQuestionRequest is the payload for authoring a new question with
// its full answer set.
type CreateQuestionRequest struct {
	SubjectID    int             `json:"subject_id" binding:"required"`
	QuestionText string          `json:"question_text" binding:"required,min=1,max=5000"`
	QuestionType string          `json:"question_type" binding:"required,oneof=MULTIPLE_CHOICE ESSAY"`
	Points       int             `json:"points" binding:"required,min=1"`
	Difficulty   string          `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
	Answers      []AnswerPayload `json:"answers" binding:"required,dive"`
}

// UpdateQuestionRequest is a partial update. Nil fields are unchanged.
// Presence of an Answers payload replaces the active answer set and counts
// as an unsafe change for versioning purposes.
type UpdateQuestionRequest struct {
	QuestionText *string         `json:"question_text" binding:"omitempty,min=1,max=5000"`
	QuestionType *string         `json:"question_type" binding:"omitempty,oneof=MULTIPLE_CHOICE ESSAY"`
	Points       *int            `json:"points" binding:"omitempty,min=1"`
	Difficulty   *string         `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	IsActive     *bool           `json:"is_active" binding:"omitempty"`
	Answers      []AnswerPayload `json:"answers" binding:"omitempty,dive"`
}
