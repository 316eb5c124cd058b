package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-engine/internal/content"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/metrics"
)

// DefaultAttemptDifficulty is recorded when a submission names no difficulty.
const DefaultAttemptDifficulty = "medium"

// Options wires optional collaborators into QuizService.
type Options struct {
	// AnswerKeys overrides the store's answer-key lookup, typically with a cache.
	AnswerKeys       AnswerKeyRepository
	LeaderboardCache LeaderboardCache
	// Rand drives session shuffling; nil seeds from the clock.
	Rand   *rand.Rand
	Logger *zap.Logger
	Now    func() time.Time
}

// QuizService contains the quiz-taking use cases on top of the persistence collaborator.
type QuizService struct {
	topics       TopicRepository
	answerKeys   AnswerKeyRepository
	attempts     AttemptRepository
	boardCache   LeaderboardCache
	quizzes      QuizStore
	sessions     *SessionBuilder
	achievements *AchievementEvaluator
	leaderboard  *LeaderboardAggregator
	logger       *zap.Logger
	now          func() time.Time
}

func NewQuizService(store Store, opts Options) *QuizService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var answerKeys AnswerKeyRepository = store
	if opts.AnswerKeys != nil {
		answerKeys = opts.AnswerKeys
	}
	return &QuizService{
		topics:       store,
		answerKeys:   answerKeys,
		attempts:     store,
		boardCache:   opts.LeaderboardCache,
		quizzes:      store,
		sessions:     NewSessionBuilder(store, store, opts.Rand),
		achievements: NewAchievementEvaluatorWithClock(store, logger.Named("achievements"), now),
		leaderboard:  NewLeaderboardAggregatorWithClock(store, store, opts.LeaderboardCache, now),
		logger:       logger,
		now:          now,
	}
}

// StartSession builds a redacted session for topicID.
func (s *QuizService) StartSession(ctx context.Context, topicID string, opts domain.SessionOptions) (domain.QuizSession, error) {
	return s.sessions.BuildSession(ctx, topicID, opts)
}

// SubmitAttempt scores submission against freshly fetched answer keys, records the
// attempt and evaluates achievements. Achievement problems never fail the submission.
func (s *QuizService) SubmitAttempt(ctx context.Context, userID string, submission domain.Submission) (domain.Result, []domain.Achievement, error) {
	if len(submission.Answers) == 0 {
		return domain.Result{}, nil, domain.ErrEmptySubmission
	}

	topic, err := s.topics.FindTopicByID(ctx, submission.TopicID)
	if err != nil {
		return domain.Result{}, nil, err
	}

	keys, err := s.answerKeys.FindAnswerKeysByQuestionIDs(ctx, questionIDs(submission))
	if err != nil {
		return domain.Result{}, nil, fmt.Errorf("load answer keys: %w", err)
	}

	result, err := Score(submission, keys)
	if err != nil {
		return domain.Result{}, nil, err
	}
	metrics.SubmissionsScored.Inc()
	metrics.SubmissionPercentage.Observe(result.Percentage)

	difficulty := submission.Difficulty
	if difficulty == "" {
		difficulty = DefaultAttemptDifficulty
	}
	attempt := domain.AttemptRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		TopicID:        topic.ID,
		SubjectName:    topic.SubjectName,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		Percentage:     result.Percentage,
		TimeSpent:      submission.TimeSpent,
		Difficulty:     difficulty,
		CompletedAt:    s.now().UTC(),
	}
	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		return domain.Result{}, nil, fmt.Errorf("save attempt: %w", err)
	}
	if s.boardCache != nil {
		s.boardCache.Invalidate(ctx)
	}

	history, err := s.attempts.FindAttemptsByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("skipping achievements: history unavailable",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return result, []domain.Achievement{}, nil
	}
	unlocked := s.achievements.Evaluate(ctx, userID, attempt, history)
	return result, unlocked, nil
}

// Leaderboard ranks users for window, optionally scoped to a subject name.
func (s *QuizService) Leaderboard(ctx context.Context, window domain.LeaderboardWindow, subject string) ([]domain.LeaderboardEntry, error) {
	return s.leaderboard.Aggregate(ctx, window, subject)
}

// ImportQuiz normalizes an authored or imported payload and persists it. Quizzes
// without an id are assigned one.
func (s *QuizService) ImportQuiz(ctx context.Context, raw []byte) (domain.MultilingualQuiz, error) {
	quiz, err := content.NormalizeJSON(raw)
	if err != nil {
		return domain.MultilingualQuiz{}, err
	}
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.MultilingualQuiz{}, fmt.Errorf("save quiz: %w", err)
	}
	s.logger.Info("quiz imported",
		zap.String("quiz_id", quiz.ID),
		zap.Int("questions", len(quiz.Questions)),
		zap.Any("languages", quiz.AvailableLanguages),
	)
	return quiz, nil
}

// GetQuiz loads a stored normalized quiz.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.MultilingualQuiz, error) {
	return s.quizzes.LoadQuiz(ctx, quizID)
}
