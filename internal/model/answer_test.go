package model

import (
	"errors"
	"testing"
)

func mc(text string, correct, active bool) AnswerPayload {
	return AnswerPayload{AnswerText: text, IsCorrect: correct, IsActive: active}
}

func TestValidateAnswerSetMultipleChoice(t *testing.T) {
	testCases := []struct {
		name       string
		answers    []AnswerPayload
		wantReason string
	}{
		{
			name:    "valid two options",
			answers: []AnswerPayload{mc("a", true, true), mc("b", false, true)},
		},
		{
			name: "valid four options",
			answers: []AnswerPayload{
				mc("a", false, true), mc("b", true, true),
				mc("c", false, true), mc("d", false, true),
			},
		},
		{
			name:       "single active answer",
			answers:    []AnswerPayload{mc("a", true, true)},
			wantReason: ReasonAnswerCountRange,
		},
		{
			name: "five active answers",
			answers: []AnswerPayload{
				mc("a", true, true), mc("b", false, true), mc("c", false, true),
				mc("d", false, true), mc("e", false, true),
			},
			wantReason: ReasonAnswerCountRange,
		},
		{
			name:       "no correct answer",
			answers:    []AnswerPayload{mc("a", false, true), mc("b", false, true)},
			wantReason: ReasonCorrectCount,
		},
		{
			name:       "two correct answers",
			answers:    []AnswerPayload{mc("a", true, true), mc("b", true, true)},
			wantReason: ReasonCorrectCount,
		},
		{
			name:       "inactive answer marked correct",
			answers:    []AnswerPayload{mc("a", true, true), mc("b", false, true), mc("c", true, false)},
			wantReason: ReasonInactiveCorrect,
		},
		{
			name:    "inactive wrong answers ignored",
			answers: []AnswerPayload{mc("a", true, true), mc("b", false, true), mc("old", false, false)},
		},
		{
			// Forking the correct option leaves the superseded row behind
			// with its flags intact. The live set the service validates is
			// the active rows only, which must pass.
			name:    "active rows after correct-answer fork",
			answers: []AnswerPayload{mc("a reworded", true, true), mc("b", false, true)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAnswerSet(QuestionTypeMultipleChoice, tc.answers)
			checkReason(t, err, tc.wantReason)
		})
	}
}

func TestValidateAnswerSetEssay(t *testing.T) {
	testCases := []struct {
		name       string
		answers    []AnswerPayload
		wantReason string
	}{
		{
			name:    "no answers at all",
			answers: nil,
		},
		{
			name:    "one model answer",
			answers: []AnswerPayload{mc("model essay", true, true)},
		},
		{
			name:    "one inactive historical answer",
			answers: []AnswerPayload{mc("model essay", true, true), mc("old model", false, false)},
		},
		{
			name:       "two active answers",
			answers:    []AnswerPayload{mc("a", true, true), mc("b", false, true)},
			wantReason: ReasonEssayAnswerCount,
		},
		{
			name:       "two correct answers overall",
			answers:    []AnswerPayload{mc("a", true, true), mc("old", true, false)},
			wantReason: ReasonEssayCorrectCount,
		},
		{
			name:       "empty model answer text",
			answers:    []AnswerPayload{mc("", true, true)},
			wantReason: ReasonEssayModelEmpty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAnswerSet(QuestionTypeEssay, tc.answers)
			checkReason(t, err, tc.wantReason)
		})
	}
}

func checkReason(t *testing.T, err error, wantReason string) {
	t.Helper()
	if wantReason == "" {
		if err != nil {
			t.Fatalf("expected valid answer set, got %v", err)
		}
		return
	}
	var setErr *AnswerSetError
	if !errors.As(err, &setErr) {
		t.Fatalf("expected AnswerSetError, got %v", err)
	}
	if setErr.Reason != wantReason {
		t.Errorf("reason = %q, want %q", setErr.Reason, wantReason)
	}
}
