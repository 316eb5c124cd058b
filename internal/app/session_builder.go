package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/metrics"
)

// SecondsPerQuestion is the default pacing when no duration is supplied.
const SecondsPerQuestion = 30

// SessionBuilder assembles answer-free quiz sessions from one or more topic banks.
type SessionBuilder struct {
	topics    TopicRepository
	questions QuestionRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSessionBuilder uses rnd for every shuffle. A nil rnd is seeded from the clock.
func NewSessionBuilder(topics TopicRepository, questions QuestionRepository, rnd *rand.Rand) *SessionBuilder {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SessionBuilder{topics: topics, questions: questions, rnd: rnd}
}

// BuildSession selects, shuffles and redacts questions for primaryTopicID, merging
// opts.ExtraTopicIDs into the bank. It returns domain.ErrTopicNotFound when the
// primary topic, or every requested topic, is unknown. Nothing is persisted.
func (b *SessionBuilder) BuildSession(ctx context.Context, primaryTopicID string, opts domain.SessionOptions) (domain.QuizSession, error) {
	if _, err := b.topics.FindTopicByID(ctx, primaryTopicID); err != nil {
		return domain.QuizSession{}, err
	}

	topicIDs := dedupeTopicIDs(primaryTopicID, opts.ExtraTopicIDs)
	topics, err := b.topics.FindTopicsByIDs(ctx, topicIDs)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if len(topics) == 0 {
		return domain.QuizSession{}, domain.ErrTopicNotFound
	}

	resolved := make([]string, 0, len(topics))
	for _, t := range topics {
		resolved = append(resolved, t.ID)
	}

	bank, err := b.questions.FindQuestionsByTopicIDs(ctx, resolved)
	if err != nil {
		return domain.QuizSession{}, err
	}

	b.shuffle(len(bank), func(i, j int) { bank[i], bank[j] = bank[j], bank[i] })
	selected := bank[:opts.QuestionCount.Limit(len(bank))]

	questions := make([]domain.SessionQuestion, 0, len(selected))
	for _, q := range selected {
		questions = append(questions, b.redact(q))
	}

	duration := opts.DurationSeconds
	if duration <= 0 {
		duration = max(1, len(questions)) * SecondsPerQuestion
	}

	session := domain.QuizSession{
		TopicID:         primaryTopicID,
		TopicIDs:        resolved,
		DurationSeconds: duration,
		Questions:       questions,
		QuestionCount:   len(questions),
	}
	describeTopics(&session, topics)

	metrics.SessionsBuilt.Inc()
	return session, nil
}

// redact copies q into the client shape with its options independently shuffled.
func (b *SessionBuilder) redact(q domain.BankQuestion) domain.SessionQuestion {
	options := append([]domain.Option(nil), q.Options...)
	b.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return domain.SessionQuestion{ID: q.ID, Text: q.Text, Options: options}
}

// shuffle is a uniform Fisher-Yates permutation; rand.Rand is not safe for concurrent use.
func (b *SessionBuilder) shuffle(n int, swap func(i, j int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rnd.Shuffle(n, swap)
}

func dedupeTopicIDs(primary string, extra []string) []string {
	ids := []string{primary}
	seen := map[string]struct{}{primary: {}}
	for _, id := range extra {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// describeTopics fills names. The notes reference is only exposed for a single topic.
func describeTopics(session *domain.QuizSession, topics []domain.Topic) {
	if len(topics) == 1 {
		session.TopicName = topics[0].Name
		session.SubjectName = topics[0].SubjectName
		session.NotesURL = topics[0].NotesURL
		return
	}
	names := make([]string, 0, len(topics))
	subjects := make([]string, 0, len(topics))
	seenSubject := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
		if _, ok := seenSubject[t.SubjectName]; !ok && t.SubjectName != "" {
			seenSubject[t.SubjectName] = struct{}{}
			subjects = append(subjects, t.SubjectName)
		}
	}
	session.TopicName = strings.Join(names, ", ")
	session.SubjectName = strings.Join(subjects, ", ")
}
