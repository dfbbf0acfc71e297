package service

import (
	"testing"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
)

func mcQuestion(points int, correct, wrong uuid.UUID) model.TestSessionQuestion {
	return model.TestSessionQuestion{
		QuestionID:   uuid.New(),
		QuestionType: model.QuestionTypeMultipleChoice,
		Points:       points,
		AnswersSnapshot: []model.AnswerSnapshot{
			{ID: correct, AnswerText: "right", IsCorrect: true},
			{ID: wrong, AnswerText: "wrong", IsCorrect: false},
		},
	}
}

func essayQuestion(points int) model.TestSessionQuestion {
	return model.TestSessionQuestion{
		QuestionID:   uuid.New(),
		QuestionType: model.QuestionTypeEssay,
		Points:       points,
	}
}

func strPtr(s string) *string { return &s }

func TestScoreSubmissionAllCorrect(t *testing.T) {
	sessionID := uuid.New()
	c1, w1 := uuid.New(), uuid.New()
	c2, w2 := uuid.New(), uuid.New()
	q1 := mcQuestion(10, c1, w1)
	q2 := mcQuestion(5, c2, w2)

	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q1, q2},
		[]model.SubmitAnswerItem{
			{QuestionID: q1.QuestionID, AnswerID: &c1},
			{QuestionID: q2.QuestionID, AnswerID: &c2},
		})

	if !result.AutoGraded {
		t.Fatal("expected auto-graded result")
	}
	if result.Status != model.SessionStatusGraded {
		t.Fatalf("status = %v, want GRADED", result.Status)
	}
	if result.Score != 15 {
		t.Fatalf("score = %d, want 15", result.Score)
	}
	for _, ua := range result.Answers {
		if !ua.IsCorrect {
			t.Errorf("question %s marked incorrect", ua.QuestionID)
		}
	}
}

func TestScoreSubmissionWrongAndUnanswered(t *testing.T) {
	sessionID := uuid.New()
	c1, w1 := uuid.New(), uuid.New()
	c2, w2 := uuid.New(), uuid.New()
	q1 := mcQuestion(10, c1, w1)
	q2 := mcQuestion(5, c2, w2)

	// q1 answered wrong, q2 not answered at all.
	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q1, q2},
		[]model.SubmitAnswerItem{
			{QuestionID: q1.QuestionID, AnswerID: &w1},
		})

	if result.Score != 0 {
		t.Fatalf("score = %d, want 0", result.Score)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("answer count = %d, want 2 (unanswered synthesized)", len(result.Answers))
	}
	for _, ua := range result.Answers {
		if ua.IsCorrect {
			t.Errorf("question %s marked correct", ua.QuestionID)
		}
		if ua.PointsEarned == nil || *ua.PointsEarned != 0 {
			t.Errorf("question %s points = %v, want 0", ua.QuestionID, ua.PointsEarned)
		}
	}
}

func TestScoreSubmissionUnknownAnswerID(t *testing.T) {
	sessionID := uuid.New()
	c1, w1 := uuid.New(), uuid.New()
	q1 := mcQuestion(10, c1, w1)

	stranger := uuid.New()
	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q1},
		[]model.SubmitAnswerItem{
			{QuestionID: q1.QuestionID, AnswerID: &stranger},
		})

	if result.Score != 0 {
		t.Fatalf("score = %d, want 0 for answer id outside the snapshot", result.Score)
	}
}

func TestScoreSubmissionEssayDefersGrading(t *testing.T) {
	sessionID := uuid.New()
	c1, w1 := uuid.New(), uuid.New()
	q1 := mcQuestion(10, c1, w1)
	q2 := essayQuestion(20)

	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q1, q2},
		[]model.SubmitAnswerItem{
			{QuestionID: q1.QuestionID, AnswerID: &c1},
			{QuestionID: q2.QuestionID, AnswerText: strPtr("my essay")},
		})

	if result.AutoGraded {
		t.Fatal("session with an essay question must not auto-grade")
	}
	if result.Status != model.SessionStatusSubmitted {
		t.Fatalf("status = %v, want SUBMITTED", result.Status)
	}
	if result.Score != 10 {
		t.Fatalf("score = %d, want 10 (objective part only)", result.Score)
	}

	var essay *model.UserAnswer
	for i := range result.Answers {
		if result.Answers[i].QuestionID == q2.QuestionID {
			essay = &result.Answers[i]
		}
	}
	if essay == nil {
		t.Fatal("essay answer missing from result")
	}
	if essay.PointsEarned == nil || *essay.PointsEarned != 0 {
		t.Errorf("essay points = %v, want 0 until graded", essay.PointsEarned)
	}
	if essay.AnswerText == nil || *essay.AnswerText != "my essay" {
		t.Errorf("essay text = %v, want preserved verbatim", essay.AnswerText)
	}
}

func TestScoreSubmissionUnansweredEssayStillDefers(t *testing.T) {
	sessionID := uuid.New()
	q := essayQuestion(20)

	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q}, nil)

	if result.AutoGraded {
		t.Fatal("essay-bearing session must await manual grading")
	}
	if result.Status != model.SessionStatusSubmitted {
		t.Fatalf("status = %v, want SUBMITTED", result.Status)
	}
	if result.Score != 0 {
		t.Fatalf("score = %d, want 0", result.Score)
	}
}

func TestScoreSubmissionDuplicateKeepsFirst(t *testing.T) {
	sessionID := uuid.New()
	c1, w1 := uuid.New(), uuid.New()
	q1 := mcQuestion(10, c1, w1)

	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q1},
		[]model.SubmitAnswerItem{
			{QuestionID: q1.QuestionID, AnswerID: &c1},
			{QuestionID: q1.QuestionID, AnswerID: &w1},
		})

	if result.Score != 10 {
		t.Fatalf("score = %d, want 10 (first submission wins)", result.Score)
	}
	if len(result.Answers) != 1 {
		t.Fatalf("answer count = %d, want 1", len(result.Answers))
	}
}

func TestScoreSubmissionIgnoresForeignQuestions(t *testing.T) {
	sessionID := uuid.New()
	c1, w1 := uuid.New(), uuid.New()
	q1 := mcQuestion(10, c1, w1)

	foreign := uuid.New()
	result := scoreSubmission(sessionID, []model.TestSessionQuestion{q1},
		[]model.SubmitAnswerItem{
			{QuestionID: q1.QuestionID, AnswerID: &c1},
			{QuestionID: foreign, AnswerID: &c1},
		})

	if len(result.Answers) != 1 {
		t.Fatalf("answer count = %d, want 1 (foreign question dropped)", len(result.Answers))
	}
	if result.Score != 10 {
		t.Fatalf("score = %d, want 10", result.Score)
	}
}
