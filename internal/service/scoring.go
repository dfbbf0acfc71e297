package service

import (
	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
)

// submissionResult is the outcome of scoring one submission against the
// session's frozen question set.
type submissionResult struct {
	Answers []model.UserAnswer
	// Score is the objective multiple-choice total. Essay answers
	// contribute zero until a supervisor grades them.
	Score int
	// AutoGraded is true when the session holds no essay questions, so
	// the score above is already final.
	AutoGraded bool
	Status     model.SessionStatus
}

// scoreSubmission grades a submission purely from the session snapshot:
// type, points, and answer correctness all come from what the learner was
// shown, never from the live question rows. Duplicate items for the same
// question keep the first occurrence, items for questions outside the
// session are ignored, and unanswered questions are recorded as wrong with
// zero points.
func scoreSubmission(sessionID uuid.UUID, questions []model.TestSessionQuestion, items []model.SubmitAnswerItem) submissionResult {
	byQuestion := make(map[uuid.UUID]*model.SubmitAnswerItem, len(items))
	for i := range items {
		if _, dup := byQuestion[items[i].QuestionID]; dup {
			continue
		}
		byQuestion[items[i].QuestionID] = &items[i]
	}

	result := submissionResult{
		Answers:    make([]model.UserAnswer, 0, len(questions)),
		AutoGraded: true,
	}

	for _, q := range questions {
		if q.QuestionType == model.QuestionTypeEssay {
			result.AutoGraded = false
		}

		zero := 0
		ua := model.UserAnswer{
			SessionID:    sessionID,
			QuestionID:   q.QuestionID,
			PointsEarned: &zero,
		}

		if item := byQuestion[q.QuestionID]; item != nil {
			switch q.QuestionType {
			case model.QuestionTypeMultipleChoice:
				ua.AnswerID = item.AnswerID
				if item.AnswerID != nil {
					if snap := findSnapshot(q.AnswersSnapshot, *item.AnswerID); snap != nil && snap.IsCorrect {
						ua.IsCorrect = true
						points := q.Points
						ua.PointsEarned = &points
						result.Score += q.Points
					}
				}
			case model.QuestionTypeEssay:
				ua.AnswerText = item.AnswerText
			}
		}

		result.Answers = append(result.Answers, ua)
	}

	if result.AutoGraded {
		result.Status = model.SessionStatusGraded
	} else {
		result.Status = model.SessionStatusSubmitted
	}
	return result
}

func findSnapshot(snapshot []model.AnswerSnapshot, answerID uuid.UUID) *model.AnswerSnapshot {
	for i := range snapshot {
		if snapshot[i].ID == answerID {
			return &snapshot[i]
		}
	}
	return nil
}
