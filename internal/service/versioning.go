package service

import "github.com/examina/examina-backend/internal/model"

// VersionDecision tags how an edit must be applied to referenced content.
type VersionDecision string

const (
	// DecisionUpdateInPlace mutates the current row directly.
	DecisionUpdateInPlace VersionDecision = "UPDATE_IN_PLACE"
	// DecisionFork archives the current row and creates a successor
	// version carrying the changes.
	DecisionFork VersionDecision = "FORK"
)

// QuestionChange describes one pending question edit, reduced to the facts
// the versioning rules care about.
type QuestionChange struct {
	// Referenced is true when the question appears in any session snapshot.
	Referenced bool
	// TextChanged is true when question_text differs from the stored value.
	TextChanged bool
	// TypeChanged is true when question_type differs from the stored value.
	TypeChanged bool
	// PointsChanged is true when points differ from the stored value.
	PointsChanged bool
	// DifficultyChanged is true when difficulty differs from the stored value.
	DifficultyChanged bool
	// AnswersReplaced is true when the edit carries a replacement answer set.
	AnswersReplaced bool
}

// DecideQuestionEdit applies the question versioning rules. Unreferenced
// questions always mutate in place. For referenced questions only is_active
// is safe to change; any other differing field forks a new version.
func DecideQuestionEdit(c QuestionChange) VersionDecision {
	if !c.Referenced {
		return DecisionUpdateInPlace
	}
	if c.TextChanged || c.TypeChanged || c.PointsChanged || c.DifficultyChanged || c.AnswersReplaced {
		return DecisionFork
	}
	return DecisionUpdateInPlace
}

// AnswerChange describes one pending answer edit.
type AnswerChange struct {
	// Snapshotted is true when the answer id appears in any session snapshot.
	Snapshotted bool
	// TextChanged is true when answer_text differs from the stored value.
	TextChanged bool
	// CorrectnessChanged is true when is_correct differs from the stored value.
	CorrectnessChanged bool
	// ExplanationChanged is true when the explanation differs from the
	// stored value.
	ExplanationChanged bool
}

// DecideAnswerEdit applies the answer versioning rules. For snapshotted
// answers only is_active may change in place; any other differing field
// forks a replacement row so historical papers keep showing what the
// learner actually saw.
func DecideAnswerEdit(c AnswerChange) VersionDecision {
	if !c.Snapshotted {
		return DecisionUpdateInPlace
	}
	if c.TextChanged || c.CorrectnessChanged || c.ExplanationChanged {
		return DecisionFork
	}
	return DecisionUpdateInPlace
}

// TestChange describes one pending test edit.
type TestChange struct {
	// HasSessions is true when any session was ever created from the test.
	HasSessions bool
}

// DecideTestEdit applies the test versioning rules. Any edit to a test that
// has ever produced a session forks a new version; the old version is
// superseded and unpublished so no new session can start from it.
func DecideTestEdit(c TestChange) VersionDecision {
	if c.HasSessions {
		return DecisionFork
	}
	return DecisionUpdateInPlace
}

// questionChangeFromRequest reduces an update request against the stored
// question into the change facts DecideQuestionEdit consumes.
func questionChangeFromRequest(q *model.Question, req *model.UpdateQuestionRequest, referenced bool) QuestionChange {
	c := QuestionChange{Referenced: referenced}
	if req.QuestionText != nil && *req.QuestionText != q.QuestionText {
		c.TextChanged = true
	}
	if req.QuestionType != nil && model.QuestionType(*req.QuestionType) != q.QuestionType {
		c.TypeChanged = true
	}
	if req.Points != nil && *req.Points != q.Points {
		c.PointsChanged = true
	}
	if req.Difficulty != nil && model.Difficulty(*req.Difficulty) != q.Difficulty {
		c.DifficultyChanged = true
	}
	if req.Answers != nil {
		c.AnswersReplaced = true
	}
	return c
}

// answerChangeFromRequest reduces an answer update request against the
// stored answer into the change facts DecideAnswerEdit consumes.
func answerChangeFromRequest(a *model.Answer, req *model.UpdateAnswerRequest, snapshotted bool) AnswerChange {
	c := AnswerChange{Snapshotted: snapshotted}
	if req.AnswerText != nil && *req.AnswerText != a.AnswerText {
		c.TextChanged = true
	}
	if req.IsCorrect != nil && *req.IsCorrect != a.IsCorrect {
		c.CorrectnessChanged = true
	}
	if req.Explanation != nil && (a.Explanation == nil || *req.Explanation != *a.Explanation) {
		c.ExplanationChanged = true
	}
	return c
}
