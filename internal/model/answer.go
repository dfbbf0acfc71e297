package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Answer represents one answer option of a question. Like questions,
// answers referenced by session snapshots fork on edit instead of mutating.
type Answer struct {
	ID          uuid.UUID  `json:"id"`
	QuestionID  uuid.UUID  `json:"question_id"`
	AnswerText  string     `json:"answer_text"`
	IsCorrect   bool       `json:"is_correct"`
	Explanation *string    `json:"explanation,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// AnswerPayload is one answer option inside a question create/update payload.
type AnswerPayload struct {
	AnswerText  string  `json:"answer_text" binding:"required,max=2000"`
	IsCorrect   bool    `json:"is_correct"`
	Explanation *string `json:"explanation" binding:"omitempty,max=2000"`
	IsActive    bool    `json:"is_active"`
}

// UpdateAnswerRequest is a partial update to a single answer option.
// Nil fields are unchanged.
type UpdateAnswerRequest struct {
	AnswerText  *string `json:"answer_text" binding:"omitempty,max=2000"`
	IsCorrect   *bool   `json:"is_correct" binding:"omitempty"`
	Explanation *string `json:"explanation" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active" binding:"omitempty"`
}

// AnswerSetError reports a violated answer-set shape rule. Reason is a
// machine-stable identifier the API layer maps to an error code.
type AnswerSetError struct {
	Reason string
}

func (e *AnswerSetError) Error() string {
	return fmt.Sprintf("invalid answer set: %s", e.Reason)
}

// Answer-set violation reasons.
const (
	ReasonAnswerCountRange  = "active_answer_count_out_of_range"
	ReasonCorrectCount      = "active_correct_count_invalid"
	ReasonInactiveCorrect   = "inactive_answer_marked_correct"
	ReasonEssayAnswerCount  = "essay_active_answer_count_invalid"
	ReasonEssayCorrectCount = "essay_correct_count_invalid"
	ReasonEssayModelEmpty   = "essay_model_answer_empty"
)

// ValidateAnswerSet checks the shape invariants of an answer set against
// the question type. Authoring payloads pass their full set so the
// inactive-correct rule catches author mistakes; live sets pass active
// rows only, since superseded rows keep their flags for history:
//
//	MULTIPLE_CHOICE: 2–4 active answers, exactly 1 active correct, no
//	inactive answer marked correct.
//	ESSAY: at most 1 active answer, at most 1 correct answer overall; an
//	active correct answer (the model answer) must have non-empty text.
func ValidateAnswerSet(qt QuestionType, answers []AnswerPayload) error {
	var (
		active         int
		activeCorrect  int
		totalCorrect   int
		modelTextEmpty bool
	)
	for _, a := range answers {
		if a.IsCorrect {
			totalCorrect++
		}
		if a.IsActive {
			active++
			if a.IsCorrect {
				activeCorrect++
				if a.AnswerText == "" {
					modelTextEmpty = true
				}
			}
		} else if a.IsCorrect && qt == QuestionTypeMultipleChoice {
			return &AnswerSetError{Reason: ReasonInactiveCorrect}
		}
	}

	switch qt {
	case QuestionTypeMultipleChoice:
		if active < 2 || active > 4 {
			return &AnswerSetError{Reason: ReasonAnswerCountRange}
		}
		if activeCorrect != 1 {
			return &AnswerSetError{Reason: ReasonCorrectCount}
		}
	case QuestionTypeEssay:
		if active > 1 {
			return &AnswerSetError{Reason: ReasonEssayAnswerCount}
		}
		if totalCorrect > 1 {
			return &AnswerSetError{Reason: ReasonEssayCorrectCount}
		}
		if activeCorrect == 1 && modelTextEmpty {
			return &AnswerSetError{Reason: ReasonEssayModelEmpty}
		}
	}
	return nil
}

// PayloadsFromAnswers converts stored answers to payload form so the
// validation rules can run against a live answer set.
func PayloadsFromAnswers(answers []Answer) []AnswerPayload {
	payloads := make([]AnswerPayload, len(answers))
	for i, a := range answers {
		payloads[i] = AnswerPayload{
			AnswerText:  a.AnswerText,
			IsCorrect:   a.IsCorrect,
			Explanation: a.Explanation,
			IsActive:    a.IsActive,
		}
	}
	return payloads
}
