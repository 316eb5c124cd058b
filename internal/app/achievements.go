package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/metrics"
)

const (
	AchievementFirstQuiz     = "first_quiz"
	AchievementPerfectScore  = "perfect_score"
	AchievementSpeedDemon    = "speed_demon"
	AchievementQuizVeteran   = "quiz_veteran"
	AchievementSubjectMaster = "subject_master"
	AchievementHighAchiever  = "high_achiever"
)

const (
	speedMaxSeconds     = 120
	speedMinQuestions   = 10
	veteranAttempts     = 10
	masteryAttempts     = 5
	highAverageAttempts = 5
	highAveragePercent  = 90.0
	perfectPercentage   = 100.0
)

// AchievementDef describes one rule's achievement.
type AchievementDef struct {
	Title       string
	Description string
	Icon        string
}

// Achievements maps rule keys to their definitions.
var Achievements = map[string]AchievementDef{
	AchievementFirstQuiz:     {Title: "First Steps", Description: "Complete your first quiz", Icon: "🎯"},
	AchievementPerfectScore:  {Title: "Perfectionist", Description: "Score 100% on a topic", Icon: "💯"},
	AchievementSpeedDemon:    {Title: "Speed Demon", Description: "Finish 10+ questions in under 2 minutes", Icon: "⚡"},
	AchievementQuizVeteran:   {Title: "Quiz Veteran", Description: "Complete 10 quizzes", Icon: "🏅"},
	AchievementSubjectMaster: {Title: "Subject Master", Description: "Complete 5 quizzes in one subject", Icon: "📚"},
	AchievementHighAchiever:  {Title: "High Achiever", Description: "Keep a 90%+ average over 5 or more quizzes", Icon: "🌟"},
}

// candidate is a rule that fired; typ may carry a topic or subject suffix.
type candidate struct {
	rule string
	typ  string
}

// AchievementEvaluator unlocks rule-based milestones after an attempt is recorded.
type AchievementEvaluator struct {
	store  AchievementRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAchievementEvaluator(store AchievementRepository, logger *zap.Logger) *AchievementEvaluator {
	return NewAchievementEvaluatorWithClock(store, logger, time.Now)
}

// NewAchievementEvaluatorWithClock allows deterministic unlock timestamps in tests.
func NewAchievementEvaluatorWithClock(store AchievementRepository, logger *zap.Logger, now func() time.Time) *AchievementEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementEvaluator{store: store, logger: logger, now: now}
}

// Evaluate checks every rule against history (which already contains newAttempt) and
// upserts each candidate. Only achievements created by this call are returned; a
// failed upsert is logged and skipped without affecting the others.
func (e *AchievementEvaluator) Evaluate(ctx context.Context, userID string, newAttempt domain.AttemptRecord, history []domain.AttemptRecord) []domain.Achievement {
	unlocked := make([]domain.Achievement, 0)
	now := e.now()
	for _, c := range checkAchievements(newAttempt, history) {
		def := Achievements[c.rule]
		achievement := domain.Achievement{
			UserID:      userID,
			Type:        c.typ,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			UnlockedAt:  now,
		}
		created, err := e.store.UpsertAchievement(ctx, achievement)
		if err != nil {
			e.logger.Warn("achievement upsert failed",
				zap.String("user_id", userID),
				zap.String("type", c.typ),
				zap.Error(err),
			)
			continue
		}
		if !created {
			continue
		}
		metrics.AchievementsUnlocked.WithLabelValues(c.rule).Inc()
		unlocked = append(unlocked, achievement)
	}
	return unlocked
}

// checkAchievements returns every rule the snapshot satisfies. The caller decides
// which are new.
func checkAchievements(attempt domain.AttemptRecord, history []domain.AttemptRecord) []candidate {
	var earned []candidate

	if len(history) == 1 {
		earned = append(earned, candidate{AchievementFirstQuiz, AchievementFirstQuiz})
	}

	if attempt.Percentage == perfectPercentage {
		earned = append(earned, candidate{AchievementPerfectScore, AchievementPerfectScore + "_" + attempt.TopicID})
	}

	if attempt.TimeSpent < speedMaxSeconds && attempt.TotalQuestions >= speedMinQuestions {
		earned = append(earned, candidate{AchievementSpeedDemon, AchievementSpeedDemon})
	}

	// Exactly ten, so the rule fires once.
	if len(history) == veteranAttempts {
		earned = append(earned, candidate{AchievementQuizVeteran, AchievementQuizVeteran})
	}

	if attempt.SubjectName != "" {
		inSubject := 0
		for _, h := range history {
			if h.SubjectName == attempt.SubjectName {
				inSubject++
			}
		}
		if inSubject == masteryAttempts {
			earned = append(earned, candidate{AchievementSubjectMaster, AchievementSubjectMaster + "_" + attempt.SubjectName})
		}
	}

	if len(history) >= highAverageAttempts {
		sum := 0.0
		for _, h := range history {
			sum += h.Percentage
		}
		if sum/float64(len(history)) >= highAveragePercent {
			earned = append(earned, candidate{AchievementHighAchiever, AchievementHighAchiever})
		}
	}

	return earned
}
