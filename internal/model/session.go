package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitted  SessionStatus = "SUBMITTED"
	SessionStatusGraded     SessionStatus = "GRADED"
)

// TestSession represents a learner's attempt at a test. At most one
// IN_PROGRESS, incomplete session exists per (user, test) pair.
type TestSession struct {
	ID               uuid.UUID     `json:"id"`
	TestID           uuid.UUID     `json:"test_id"`
	UserID           int           `json:"user_id"`
	StartedAt        time.Time     `json:"started_at"`
	SubmittedAt      *time.Time    `json:"submitted_at,omitempty"`
	Score            *int          `json:"score,omitempty"`
	TimeSpentSeconds *int          `json:"time_spent_seconds,omitempty"`
	Status           SessionStatus `json:"status"`
	IsCompleted      bool          `json:"is_completed"`
	AutoGraded       bool          `json:"auto_graded"`
	SupervisorID     *int          `json:"supervisor_id,omitempty"`
}

// AnswerSnapshot is one frozen answer option inside a session question
// snapshot. It is an independent copy: later edits to the live Answer row
// never touch it.
type AnswerSnapshot struct {
	ID          uuid.UUID `json:"id"`
	AnswerText  string    `json:"answer_text"`
	IsCorrect   bool      `json:"is_correct"`
	Explanation *string   `json:"explanation,omitempty"`
}

// TestSessionQuestion is the immutable snapshot unit: the question as the
// learner saw it, with type and points captured at sampling time so that
// scoring never depends on the live Question row.
type TestSessionQuestion struct {
	ID              uuid.UUID        `json:"id"`
	SessionID       uuid.UUID        `json:"session_id"`
	QuestionID      uuid.UUID        `json:"question_id"`
	OrderNumber     int              `json:"order_number"`
	QuestionText    string           `json:"question_text"`
	QuestionType    QuestionType     `json:"question_type"`
	Points          int              `json:"points"`
	AnswersSnapshot []AnswerSnapshot `json:"answers_snapshot"`
}

// UserAnswer records the learner's response to one session question.
type UserAnswer struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    uuid.UUID  `json:"session_id"`
	QuestionID   uuid.UUID  `json:"question_id"`
	AnswerID     *uuid.UUID `json:"answer_id,omitempty"`
	AnswerText   *string    `json:"answer_text,omitempty"`
	IsCorrect    bool       `json:"is_correct"`
	PointsEarned *int       `json:"points_earned,omitempty"`
	GraderID     *int       `json:"grader_id,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

// SubmitAnswerItem is one submitted answer inside a submission payload.
type SubmitAnswerItem struct {
	QuestionID uuid.UUID  `json:"question_id" binding:"required"`
	AnswerID   *uuid.UUID `json:"answer_id" binding:"omitempty"`
	AnswerText *string    `json:"answer_text" binding:"omitempty,max=20000"`
}

// SubmitSessionRequest is the payload for submitting a session.
type SubmitSessionRequest struct {
	Answers []SubmitAnswerItem `json:"answers" binding:"dive"`
}

// EssayGradeItem is one manual grade inside a grading payload.
type EssayGradeItem struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Points     int       `json:"points" binding:"min=0"`
	IsCorrect  *bool     `json:"is_correct" binding:"omitempty"`
}

// GradeSessionRequest is the payload for grading essay answers.
type GradeSessionRequest struct {
	Grades []EssayGradeItem `json:"grades" binding:"required,min=1,dive"`
}

// DraftAnswerItem is one autosaved draft answer (held in Redis only).
type DraftAnswerItem struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Value      string    `json:"value" binding:"max=20000"`
}

// SaveDraftRequest is the payload for draft autosave.
type SaveDraftRequest struct {
	Answers []DraftAnswerItem `json:"answers" binding:"required,min=1,dive"`
}

// ─── Read views ──────────────────────────────────────────────────────

// AnswerOptionForDoing is an answer option with correctness stripped,
// safe to show while a session is in progress.
type AnswerOptionForDoing struct {
	ID         uuid.UUID `json:"id"`
	AnswerText string    `json:"answer_text"`
}

// SessionQuestionForDoing is a session question as presented to the
// learner during the exam.
type SessionQuestionForDoing struct {
	QuestionID   uuid.UUID              `json:"question_id"`
	OrderNumber  int                    `json:"order_number"`
	QuestionText string                 `json:"question_text"`
	QuestionType QuestionType           `json:"question_type"`
	Points       int                    `json:"points"`
	Answers      []AnswerOptionForDoing `json:"answers"`
}

// SessionPaper is the full in-progress view of a session.
type SessionPaper struct {
	SessionID        uuid.UUID                 `json:"session_id"`
	TestID           uuid.UUID                 `json:"test_id"`
	TimeLimitMinutes int                       `json:"time_limit_minutes"`
	Questions        []SessionQuestionForDoing `json:"questions"`
}

// SessionState reports remaining time and autosaved drafts for re-entry.
type SessionState struct {
	SessionID        uuid.UUID         `json:"session_id"`
	RemainingSeconds float64           `json:"remaining_seconds"`
	DraftAnswers     map[string]string `json:"draft_answers"`
}

// SessionDetail is the post-hoc review view: full snapshots including
// correctness markers plus the learner's recorded answers.
type SessionDetail struct {
	Session   TestSession           `json:"session"`
	Questions []TestSessionQuestion `json:"questions"`
	Answers   []UserAnswer          `json:"answers"`
}

// MonitorEvent is published on the test monitor channel when a session
// changes state.
type MonitorEvent struct {
	SessionID uuid.UUID     `json:"session_id"`
	TestID    uuid.UUID     `json:"test_id"`
	UserID    int           `json:"user_id"`
	Status    SessionStatus `json:"status"`
	Score     *int          `json:"score,omitempty"`
	At        time.Time     `json:"at"`
}
