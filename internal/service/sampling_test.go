package service

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/examina/examina-backend/internal/model"
	"github.com/google/uuid"
)

func makePool(d model.Difficulty, n int) []model.Question {
	pool := make([]model.Question, n)
	for i := range pool {
		pool[i] = model.Question{
			ID:         uuid.New(),
			Difficulty: d,
			IsActive:   true,
		}
	}
	return pool
}

func TestSampleStratified(t *testing.T) {
	test := &model.Test{
		QuestionCount: 6,
		EasyCount:     3,
		MediumCount:   2,
		HardCount:     1,
	}
	pools := map[model.Difficulty][]model.Question{
		model.DifficultyEasy:   makePool(model.DifficultyEasy, 10),
		model.DifficultyMedium: makePool(model.DifficultyMedium, 5),
		model.DifficultyHard:   makePool(model.DifficultyHard, 1),
	}

	rng := rand.New(rand.NewSource(42))
	paper, err := sampleStratified(test, pools, rng)
	if err != nil {
		t.Fatalf("sampleStratified() error = %v", err)
	}

	if len(paper) != 6 {
		t.Fatalf("paper size = %d, want 6", len(paper))
	}

	counts := map[model.Difficulty]int{}
	seen := map[uuid.UUID]bool{}
	for _, q := range paper {
		counts[q.Difficulty]++
		if seen[q.ID] {
			t.Errorf("question %s drawn twice", q.ID)
		}
		seen[q.ID] = true
	}

	if counts[model.DifficultyEasy] != 3 || counts[model.DifficultyMedium] != 2 || counts[model.DifficultyHard] != 1 {
		t.Errorf("tier counts = %v, want easy=3 medium=2 hard=1", counts)
	}
}

func TestSampleStratifiedDeterministic(t *testing.T) {
	test := &model.Test{QuestionCount: 4, EasyCount: 2, MediumCount: 1, HardCount: 1}
	pools := map[model.Difficulty][]model.Question{
		model.DifficultyEasy:   makePool(model.DifficultyEasy, 8),
		model.DifficultyMedium: makePool(model.DifficultyMedium, 4),
		model.DifficultyHard:   makePool(model.DifficultyHard, 4),
	}

	first, err := sampleStratified(test, pools, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	second, err := sampleStratified(test, pools, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("second draw: %v", err)
	}

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different papers at index %d", i)
		}
	}
}

func TestSampleStratifiedInsufficientPool(t *testing.T) {
	test := &model.Test{QuestionCount: 5, EasyCount: 2, MediumCount: 2, HardCount: 1}
	pools := map[model.Difficulty][]model.Question{
		model.DifficultyEasy:   makePool(model.DifficultyEasy, 2),
		model.DifficultyMedium: makePool(model.DifficultyMedium, 1), // short by one
		model.DifficultyHard:   makePool(model.DifficultyHard, 1),
	}

	_, err := sampleStratified(test, pools, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("error = %v, want ErrInsufficientQuestions", err)
	}
}

func TestSampleStratifiedZeroTier(t *testing.T) {
	test := &model.Test{QuestionCount: 2, EasyCount: 2, MediumCount: 0, HardCount: 0}
	pools := map[model.Difficulty][]model.Question{
		model.DifficultyEasy: makePool(model.DifficultyEasy, 3),
	}

	paper, err := sampleStratified(test, pools, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("sampleStratified() error = %v", err)
	}
	if len(paper) != 2 {
		t.Fatalf("paper size = %d, want 2", len(paper))
	}
}

func TestShuffleAnswersPreservesSource(t *testing.T) {
	answers := []model.AnswerSnapshot{
		{ID: uuid.New(), AnswerText: "a"},
		{ID: uuid.New(), AnswerText: "b"},
		{ID: uuid.New(), AnswerText: "c"},
		{ID: uuid.New(), AnswerText: "d"},
	}
	original := make([]model.AnswerSnapshot, len(answers))
	copy(original, answers)

	shuffled := shuffleAnswers(answers, rand.New(rand.NewSource(3)))

	if len(shuffled) != len(answers) {
		t.Fatalf("shuffled size = %d, want %d", len(shuffled), len(answers))
	}
	for i := range answers {
		if answers[i].ID != original[i].ID {
			t.Fatalf("source slice mutated at index %d", i)
		}
	}

	seen := map[uuid.UUID]bool{}
	for _, a := range shuffled {
		seen[a.ID] = true
	}
	for _, a := range original {
		if !seen[a.ID] {
			t.Errorf("answer %s missing after shuffle", a.ID)
		}
	}
}
