package app

import (
	"context"
	"time"

	"quiz-engine/internal/domain"
)

// TopicRepository resolves topics together with their subject name and notes reference.
type TopicRepository interface {
	FindTopicByID(ctx context.Context, id string) (domain.Topic, error)
	// FindTopicsByIDs returns the topics that exist, skipping unknown ids.
	FindTopicsByIDs(ctx context.Context, ids []string) ([]domain.Topic, error)
}

// QuestionRepository loads question banks. The projection never includes answer keys.
type QuestionRepository interface {
	FindQuestionsByTopicIDs(ctx context.Context, topicIDs []string) ([]domain.BankQuestion, error)
}

// AnswerKeyRepository is the narrow lookup used only when scoring.
type AnswerKeyRepository interface {
	FindAnswerKeysByQuestionIDs(ctx context.Context, questionIDs []string) (map[string]string, error)
}

// AttemptRepository stores and reads immutable attempt records.
type AttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt domain.AttemptRecord) error
	FindAttemptsByUser(ctx context.Context, userID string) ([]domain.AttemptRecord, error)
	// FindAttemptsInWindow returns attempts completed at or after since (nil: no bound),
	// optionally restricted to a subject by name. It returns domain.ErrSubjectNotFound
	// when subject is set but unknown.
	FindAttemptsInWindow(ctx context.Context, since *time.Time, subject string) ([]domain.AttemptRecord, error)
}

// AchievementRepository creates achievements if absent. created is false when the
// (userID, type) pair already existed.
type AchievementRepository interface {
	UpsertAchievement(ctx context.Context, achievement domain.Achievement) (created bool, err error)
}

// UserDirectory supplies display identity for leaderboards.
type UserDirectory interface {
	FindUserDisplayInfoByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserDisplay, error)
}

// QuizStore persists normalized bilingual quiz documents.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz domain.MultilingualQuiz) error
	LoadQuiz(ctx context.Context, quizID string) (domain.MultilingualQuiz, error)
}

// LeaderboardCache holds recently ranked leaderboards. Invalidate drops every cached
// window and scope; it is called after each recorded attempt.
type LeaderboardCache interface {
	Get(ctx context.Context, window domain.LeaderboardWindow, subject string) ([]domain.LeaderboardEntry, bool)
	Set(ctx context.Context, window domain.LeaderboardWindow, subject string, entries []domain.LeaderboardEntry)
	Invalidate(ctx context.Context)
}

// Store is the full persistence collaborator.
type Store interface {
	TopicRepository
	QuestionRepository
	AnswerKeyRepository
	AttemptRepository
	AchievementRepository
	UserDirectory
	QuizStore
}
