package app_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

var unlockTime = time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

func attempt(topicID, subject string, percentage float64) domain.AttemptRecord {
	return domain.AttemptRecord{
		UserID:         "u1",
		TopicID:        topicID,
		SubjectName:    subject,
		Percentage:     percentage,
		TotalQuestions: 5,
		TimeSpent:      600,
	}
}

func unlockedTypes(achievements []domain.Achievement) []string {
	types := make([]string, 0, len(achievements))
	for _, a := range achievements {
		types = append(types, a.Type)
	}
	sort.Strings(types)
	return types
}

func TestEvaluateFirstQuizIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	evaluator := app.NewAchievementEvaluatorWithClock(store, nil, func() time.Time { return unlockTime })
	first := attempt("t1", "Math", 40)

	got := evaluator.Evaluate(context.Background(), "u1", first, []domain.AttemptRecord{first})
	if len(got) != 1 || got[0].Type != app.AchievementFirstQuiz {
		t.Fatalf("expected first_quiz, got %+v", got)
	}
	if got[0].Title != "First Steps" || !got[0].UnlockedAt.Equal(unlockTime) || got[0].UserID != "u1" {
		t.Fatalf("unexpected achievement %+v", got[0])
	}

	again := evaluator.Evaluate(context.Background(), "u1", first, []domain.AttemptRecord{first})
	if len(again) != 0 {
		t.Fatalf("re-evaluation must not unlock again, got %+v", again)
	}
	if stored := store.Achievements("u1"); len(stored) != 1 {
		t.Fatalf("expected one stored achievement, got %d", len(stored))
	}
}

func TestEvaluateRules(t *testing.T) {
	history := func(n int, subject string, percentage float64) []domain.AttemptRecord {
		out := make([]domain.AttemptRecord, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, attempt("t1", subject, percentage))
		}
		return out
	}

	cases := []struct {
		name    string
		attempt domain.AttemptRecord
		history []domain.AttemptRecord
		want    []string
	}{
		{
			name:    "perfect score carries topic",
			attempt: attempt("t7", "", 100),
			history: history(2, "", 50),
			want:    []string{"perfect_score_t7"},
		},
		{
			name:    "speed demon",
			attempt: domain.AttemptRecord{UserID: "u1", TopicID: "t1", TotalQuestions: 10, TimeSpent: 119, Percentage: 20},
			history: history(2, "", 20),
			want:    []string{app.AchievementSpeedDemon},
		},
		{
			name:    "speed demon needs ten questions",
			attempt: domain.AttemptRecord{UserID: "u1", TopicID: "t1", TotalQuestions: 9, TimeSpent: 30, Percentage: 20},
			history: history(2, "", 20),
			want:    []string{},
		},
		{
			name:    "veteran at exactly ten",
			attempt: attempt("t1", "", 10),
			history: history(10, "", 10),
			want:    []string{app.AchievementQuizVeteran},
		},
		{
			name:    "no veteran past ten",
			attempt: attempt("t1", "", 10),
			history: history(11, "", 10),
			want:    []string{},
		},
		{
			name:    "subject master at five in subject",
			attempt: attempt("t1", "Math", 10),
			history: append(history(5, "Math", 10), history(3, "Science", 10)...),
			want:    []string{"subject_master_Math"},
		},
		{
			name:    "high achiever average",
			attempt: attempt("t1", "", 95),
			history: history(5, "", 95),
			want:    []string{app.AchievementHighAchiever},
		},
		{
			name:    "high achiever needs five attempts",
			attempt: attempt("t1", "", 95),
			history: history(4, "", 95),
			want:    []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := app.NewAchievementEvaluator(memory.NewStore(), nil)
			got := unlockedTypes(evaluator.Evaluate(context.Background(), "u1", tc.attempt, tc.history))
			sort.Strings(tc.want)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

type failingAchievements struct {
	*memory.Store
	failType string
}

func (f failingAchievements) UpsertAchievement(ctx context.Context, a domain.Achievement) (bool, error) {
	if a.Type == f.failType {
		return false, errors.New("write failed")
	}
	return f.Store.UpsertAchievement(ctx, a)
}

func TestEvaluatePartialFailure(t *testing.T) {
	store := memory.NewStore()
	evaluator := app.NewAchievementEvaluator(failingAchievements{Store: store, failType: app.AchievementFirstQuiz}, nil)
	first := attempt("t3", "", 100)

	got := unlockedTypes(evaluator.Evaluate(context.Background(), "u1", first, []domain.AttemptRecord{first}))
	if len(got) != 1 || got[0] != "perfect_score_t3" {
		t.Fatalf("failed rule must not block the others, got %v", got)
	}
}
