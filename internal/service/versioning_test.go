package service

import "testing"

func TestDecideQuestionEdit(t *testing.T) {
	tests := []struct {
		name   string
		change QuestionChange
		want   VersionDecision
	}{
		{
			name:   "unreferenced text edit stays in place",
			change: QuestionChange{Referenced: false, TextChanged: true},
			want:   DecisionUpdateInPlace,
		},
		{
			name:   "unreferenced answer replacement stays in place",
			change: QuestionChange{Referenced: false, AnswersReplaced: true},
			want:   DecisionUpdateInPlace,
		},
		{
			name:   "referenced text edit forks",
			change: QuestionChange{Referenced: true, TextChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "referenced type edit forks",
			change: QuestionChange{Referenced: true, TypeChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "referenced points edit forks",
			change: QuestionChange{Referenced: true, PointsChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "referenced difficulty edit forks",
			change: QuestionChange{Referenced: true, DifficultyChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "referenced answer replacement forks",
			change: QuestionChange{Referenced: true, AnswersReplaced: true},
			want:   DecisionFork,
		},
		{
			name:   "referenced metadata-only edit stays in place",
			change: QuestionChange{Referenced: true},
			want:   DecisionUpdateInPlace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideQuestionEdit(tt.change); got != tt.want {
				t.Errorf("DecideQuestionEdit(%+v) = %v, want %v", tt.change, got, tt.want)
			}
		})
	}
}

func TestDecideAnswerEdit(t *testing.T) {
	tests := []struct {
		name   string
		change AnswerChange
		want   VersionDecision
	}{
		{
			name:   "unsnapshotted text edit stays in place",
			change: AnswerChange{Snapshotted: false, TextChanged: true},
			want:   DecisionUpdateInPlace,
		},
		{
			name:   "snapshotted text edit forks",
			change: AnswerChange{Snapshotted: true, TextChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "snapshotted correctness flip forks",
			change: AnswerChange{Snapshotted: true, CorrectnessChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "snapshotted explanation edit forks",
			change: AnswerChange{Snapshotted: true, ExplanationChanged: true},
			want:   DecisionFork,
		},
		{
			name:   "snapshotted activity-only edit stays in place",
			change: AnswerChange{Snapshotted: true},
			want:   DecisionUpdateInPlace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideAnswerEdit(tt.change); got != tt.want {
				t.Errorf("DecideAnswerEdit(%+v) = %v, want %v", tt.change, got, tt.want)
			}
		})
	}
}

func TestDecideTestEdit(t *testing.T) {
	if got := DecideTestEdit(TestChange{HasSessions: false}); got != DecisionUpdateInPlace {
		t.Errorf("test without sessions: got %v, want %v", got, DecisionUpdateInPlace)
	}
	if got := DecideTestEdit(TestChange{HasSessions: true}); got != DecisionFork {
		t.Errorf("test with sessions: got %v, want %v", got, DecisionFork)
	}
}
