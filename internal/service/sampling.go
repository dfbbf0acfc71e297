package service

import (
	"fmt"
	"math/rand"

	"github.com/examina/examina-backend/internal/model"
)

// sampleStratified draws the test's configured number of questions from
// each difficulty tier without replacement and shuffles the combined paper.
// pools maps each difficulty to its active candidate questions. The rng is
// injected so callers control the seed.
func sampleStratified(t *model.Test, pools map[model.Difficulty][]model.Question, rng *rand.Rand) ([]model.Question, error) {
	for _, d := range model.Difficulties {
		if len(pools[d]) < t.TierCount(d) {
			return nil, fmt.Errorf("%w: difficulty %s has %d of %d required",
				ErrInsufficientQuestions, d, len(pools[d]), t.TierCount(d))
		}
	}

	paper := make([]model.Question, 0, t.QuestionCount)
	for _, d := range model.Difficulties {
		paper = append(paper, drawWithoutReplacement(pools[d], t.TierCount(d), rng)...)
	}

	rng.Shuffle(len(paper), func(i, j int) {
		paper[i], paper[j] = paper[j], paper[i]
	})
	return paper, nil
}

// drawWithoutReplacement picks n distinct questions from the pool using a
// partial Fisher-Yates over a copy, leaving the pool untouched.
func drawWithoutReplacement(pool []model.Question, n int, rng *rand.Rand) []model.Question {
	candidates := make([]model.Question, len(pool))
	copy(candidates, pool)

	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:n]
}

// shuffleAnswers returns a shuffled copy of a question's answer snapshot for
// presentation. The stored snapshot keeps authoring order; only the view
// shown to the learner is randomized.
func shuffleAnswers(answers []model.AnswerSnapshot, rng *rand.Rand) []model.AnswerSnapshot {
	shuffled := make([]model.AnswerSnapshot, len(answers))
	copy(shuffled, answers)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
