package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quiz-engine/internal/domain"
)

// Store is an in-memory implementation of app.Store, used for tests and demos.
type Store struct {
	mu           sync.RWMutex
	subjects     map[string]domain.Subject
	subjectIDs   map[string]string
	topics       map[string]domain.Topic
	questions    []domain.Question
	attempts     []domain.AttemptRecord
	achievements map[achievementKey]domain.Achievement
	users        map[string]domain.UserDisplay
	quizzes      map[string]domain.MultilingualQuiz
}

type achievementKey struct {
	userID string
	typ    string
}

func NewStore() *Store {
	return &Store{
		subjects:     make(map[string]domain.Subject),
		subjectIDs:   make(map[string]string),
		topics:       make(map[string]domain.Topic),
		achievements: make(map[achievementKey]domain.Achievement),
		users:        make(map[string]domain.UserDisplay),
		quizzes:      make(map[string]domain.MultilingualQuiz),
	}
}

// AddSubject registers subject. Names are unique, as leaderboards are scoped by name.
func (s *Store) AddSubject(subject domain.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.subjectIDs[subject.Name]; ok && id != subject.ID {
		return fmt.Errorf("%w: subject name %q already used by %s", domain.ErrInvalidInput, subject.Name, id)
	}
	if prev, ok := s.subjects[subject.ID]; ok {
		delete(s.subjectIDs, prev.Name)
	}
	s.subjects[subject.ID] = subject
	s.subjectIDs[subject.Name] = subject.ID
	return nil
}

// AddTopic stores topic; its SubjectName is taken from the registered subject.
func (s *Store) AddTopic(topic domain.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if subject, ok := s.subjects[topic.SubjectID]; ok {
		topic.SubjectName = subject.Name
	}
	s.topics[topic.ID] = topic
}

func (s *Store) AddQuestion(question domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, question)
}

func (s *Store) AddUser(userID string, display domain.UserDisplay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = display
}

// SetAnswerKey replaces the stored correct option of a question.
func (s *Store) SetAnswerKey(questionID, optionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			s.questions[i].CorrectOptionID = optionID
		}
	}
}

func (s *Store) FindTopicByID(_ context.Context, id string) (domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, ok := s.topics[id]
	if !ok {
		return domain.Topic{}, domain.ErrTopicNotFound
	}
	return topic, nil
}

func (s *Store) FindTopicsByIDs(_ context.Context, ids []string) ([]domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := make([]domain.Topic, 0, len(ids))
	for _, id := range ids {
		if topic, ok := s.topics[id]; ok {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

func (s *Store) FindQuestionsByTopicIDs(_ context.Context, topicIDs []string) ([]domain.BankQuestion, error) {
	wanted := make(map[string]struct{}, len(topicIDs))
	for _, id := range topicIDs {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	bank := make([]domain.BankQuestion, 0)
	for _, q := range s.questions {
		if _, ok := wanted[q.TopicID]; ok {
			bank = append(bank, q.Bank())
		}
	}
	return bank, nil
}

func (s *Store) FindAnswerKeysByQuestionIDs(_ context.Context, questionIDs []string) (map[string]string, error) {
	wanted := make(map[string]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make(map[string]string, len(questionIDs))
	for _, q := range s.questions {
		if _, ok := wanted[q.ID]; ok {
			keys[q.ID] = q.CorrectOptionID
		}
	}
	return keys, nil
}

func (s *Store) SaveAttempt(_ context.Context, attempt domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.SubjectName = ""
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *Store) FindAttemptsByUser(_ context.Context, userID string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptRecord, 0)
	for _, attempt := range s.attempts {
		if attempt.UserID == userID {
			out = append(out, s.withSubjectLocked(attempt))
		}
	}
	return out, nil
}

func (s *Store) FindAttemptsInWindow(_ context.Context, since *time.Time, subject string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjectID := ""
	if subject != "" {
		id, ok := s.subjectIDs[subject]
		if !ok {
			return nil, domain.ErrSubjectNotFound
		}
		subjectID = id
	}

	out := make([]domain.AttemptRecord, 0)
	for _, attempt := range s.attempts {
		if since != nil && attempt.CompletedAt.Before(*since) {
			continue
		}
		if subjectID != "" && s.topics[attempt.TopicID].SubjectID != subjectID {
			continue
		}
		out = append(out, s.withSubjectLocked(attempt))
	}
	return out, nil
}

func (s *Store) withSubjectLocked(attempt domain.AttemptRecord) domain.AttemptRecord {
	if topic, ok := s.topics[attempt.TopicID]; ok {
		attempt.SubjectName = topic.SubjectName
	}
	return attempt
}

// UpsertAchievement inserts unless (UserID, Type) already exists.
func (s *Store) UpsertAchievement(_ context.Context, achievement domain.Achievement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := achievementKey{userID: achievement.UserID, typ: achievement.Type}
	if _, ok := s.achievements[key]; ok {
		return false, nil
	}
	s.achievements[key] = achievement
	return true, nil
}

// Achievements lists what userID has unlocked, in no particular order.
func (s *Store) Achievements(userID string) []domain.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Achievement, 0)
	for key, a := range s.achievements {
		if key.userID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) FindUserDisplayInfoByIDs(_ context.Context, userIDs []string) (map[string]domain.UserDisplay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.UserDisplay, len(userIDs))
	for _, id := range userIDs {
		if display, ok := s.users[id]; ok {
			out[id] = display
		}
	}
	return out, nil
}

func (s *Store) SaveQuiz(_ context.Context, quiz domain.MultilingualQuiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.MultilingualQuiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.MultilingualQuiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}
