package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-engine/internal/domain"
)

func TestStoreProjectionHasNoAnswerKey(t *testing.T) {
	store := sampleStore()
	bank, err := store.FindQuestionsByTopicIDs(context.Background(), []string{"t1"})
	if err != nil {
		t.Fatalf("find questions: %v", err)
	}
	if len(bank) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(bank))
	}

	bank[0].Options[0].Text = "mutated"
	again, _ := store.FindQuestionsByTopicIDs(context.Background(), []string{"t1"})
	if again[0].Options[0].Text == "mutated" {
		t.Fatalf("projection must not alias stored options")
	}
}

func TestStoreUpsertAchievementIsCreateIfAbsent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	a := domain.Achievement{UserID: "u1", Type: "first_quiz", Title: "First Steps"}

	created, err := store.UpsertAchievement(ctx, a)
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	a.Title = "changed"
	created, err = store.UpsertAchievement(ctx, a)
	if err != nil || created {
		t.Fatalf("expected no-op on conflict, got created=%v err=%v", created, err)
	}
	if got := store.Achievements("u1"); len(got) != 1 || got[0].Title != "First Steps" {
		t.Fatalf("existing achievement must not change: %+v", got)
	}
}

func TestStoreAttemptsInWindowAndScope(t *testing.T) {
	store := sampleStore()
	store.AddSubject(domain.Subject{ID: "s2", Name: "Science"})
	store.AddTopic(domain.Topic{ID: "t2", Name: "Physics", SubjectID: "s2"})
	ctx := context.Background()
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

	for _, a := range []domain.AttemptRecord{
		{ID: "a1", UserID: "u1", TopicID: "t1", CompletedAt: now.Add(-time.Hour)},
		{ID: "a2", UserID: "u1", TopicID: "t2", CompletedAt: now.Add(-time.Hour)},
		{ID: "a3", UserID: "u2", TopicID: "t1", CompletedAt: now.Add(-10 * 24 * time.Hour)},
	} {
		if err := store.SaveAttempt(ctx, a); err != nil {
			t.Fatalf("save attempt: %v", err)
		}
	}

	since := now.Add(-7 * 24 * time.Hour)
	got, err := store.FindAttemptsInWindow(ctx, &since, "")
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recent attempts, got %d", len(got))
	}

	got, err = store.FindAttemptsInWindow(ctx, nil, "Math")
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a3" || got[0].SubjectName != "Math" {
		t.Fatalf("unexpected scoped attempts %+v", got)
	}

	if _, err := store.FindAttemptsInWindow(ctx, nil, "History"); !errors.Is(err, domain.ErrSubjectNotFound) {
		t.Fatalf("expected subject not found, got %v", err)
	}

	history, _ := store.FindAttemptsByUser(ctx, "u1")
	if len(history) != 2 || history[1].SubjectName != "Science" {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStoreSubjectNamesAreUnique(t *testing.T) {
	store := sampleStore()
	ctx := context.Background()

	err := store.AddSubject(domain.Subject{ID: "s9", Name: "Math"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected duplicate name rejection, got %v", err)
	}

	store.AddTopic(domain.Topic{ID: "t9", Name: "Algebra", SubjectID: "s9"})
	if err := store.SaveAttempt(ctx, domain.AttemptRecord{ID: "a1", UserID: "u1", TopicID: "t1", CompletedAt: time.Now()}); err != nil {
		t.Fatalf("save attempt: %v", err)
	}
	for i := 0; i < 20; i++ {
		got, err := store.FindAttemptsInWindow(ctx, nil, "Math")
		if err != nil || len(got) != 1 {
			t.Fatalf("scope must resolve to the registered subject, got %+v err=%v", got, err)
		}
	}

	if err := store.AddSubject(domain.Subject{ID: "s1", Name: "Mathematics"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := store.FindAttemptsInWindow(ctx, nil, "Math"); !errors.Is(err, domain.ErrSubjectNotFound) {
		t.Fatalf("old name must no longer resolve, got %v", err)
	}
	if err := store.AddSubject(domain.Subject{ID: "s9", Name: "Math"}); err != nil {
		t.Fatalf("freed name must be reusable: %v", err)
	}
}
