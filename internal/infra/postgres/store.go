package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-engine/internal/domain"
)

// Store implements app.Store on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const topicColumns = `t.id, t.name, t.subject_id, s.name, COALESCE(t.notes_url, '')`

func (s *Store) FindTopicByID(ctx context.Context, id string) (domain.Topic, error) {
	var topic domain.Topic
	err := s.pool.QueryRow(ctx, `SELECT `+topicColumns+`
		FROM topics t JOIN subjects s ON s.id = t.subject_id
		WHERE t.id = $1`, id).
		Scan(&topic.ID, &topic.Name, &topic.SubjectID, &topic.SubjectName, &topic.NotesURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Topic{}, domain.ErrTopicNotFound
	}
	if err != nil {
		return domain.Topic{}, fmt.Errorf("find topic: %w", err)
	}
	return topic, nil
}

// FindTopicsByIDs preserves the order of ids and skips unknown ones.
func (s *Store) FindTopicsByIDs(ctx context.Context, ids []string) ([]domain.Topic, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+topicColumns+`
		FROM topics t JOIN subjects s ON s.id = t.subject_id
		WHERE t.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find topics: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Topic, len(ids))
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.SubjectID, &topic.SubjectName, &topic.NotesURL); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		byID[topic.ID] = topic
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find topics: %w", err)
	}

	topics := make([]domain.Topic, 0, len(byID))
	for _, id := range ids {
		if topic, ok := byID[id]; ok {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

// FindQuestionsByTopicIDs never selects correct_option_id.
func (s *Store) FindQuestionsByTopicIDs(ctx context.Context, topicIDs []string) ([]domain.BankQuestion, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, topic_id, text, options, COALESCE(difficulty, '')
		FROM questions WHERE topic_id = ANY($1)
		ORDER BY created_at, id`, topicIDs)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	defer rows.Close()

	bank := make([]domain.BankQuestion, 0)
	for rows.Next() {
		var (
			q       domain.BankQuestion
			options []byte
		)
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Text, &options, &q.Difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of %s: %w", q.ID, err)
		}
		bank = append(bank, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	return bank, nil
}

func (s *Store) FindAnswerKeysByQuestionIDs(ctx context.Context, questionIDs []string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, correct_option_id FROM questions WHERE id = ANY($1)`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("find answer keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]string, len(questionIDs))
	for rows.Next() {
		var id, optionID string
		if err := rows.Scan(&id, &optionID); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		keys[id] = optionID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find answer keys: %w", err)
	}
	return keys, nil
}

func (s *Store) SaveAttempt(ctx context.Context, a domain.AttemptRecord) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO quiz_attempts
		(id, user_id, topic_id, score, total_questions, correct_answers, percentage, time_spent, difficulty, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.TopicID, a.Score, a.TotalQuestions, a.CorrectAnswers, a.Percentage, a.TimeSpent, a.Difficulty, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

const attemptSelect = `SELECT a.id, a.user_id, a.topic_id, s.name, a.score, a.total_questions,
		a.correct_answers, a.percentage, a.time_spent, a.difficulty, a.completed_at
	FROM quiz_attempts a
	JOIN topics t ON t.id = a.topic_id
	JOIN subjects s ON s.id = t.subject_id`

func (s *Store) FindAttemptsByUser(ctx context.Context, userID string) ([]domain.AttemptRecord, error) {
	return s.queryAttempts(ctx, attemptSelect+`
		WHERE a.user_id = $1
		ORDER BY a.completed_at, a.id`, userID)
}

func (s *Store) FindAttemptsInWindow(ctx context.Context, since *time.Time, subject string) ([]domain.AttemptRecord, error) {
	subjectID := ""
	if subject != "" {
		err := s.pool.QueryRow(ctx, `SELECT id FROM subjects WHERE name = $1`, subject).Scan(&subjectID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubjectNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find subject: %w", err)
		}
	}
	return s.queryAttempts(ctx, attemptSelect+`
		WHERE ($1::timestamptz IS NULL OR a.completed_at >= $1)
		  AND ($2::text = '' OR t.subject_id = $2)
		ORDER BY a.completed_at, a.id`, since, subjectID)
}

func (s *Store) queryAttempts(ctx context.Context, query string, args ...interface{}) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]domain.AttemptRecord, 0)
	for rows.Next() {
		var a domain.AttemptRecord
		if err := rows.Scan(&a.ID, &a.UserID, &a.TopicID, &a.SubjectName, &a.Score, &a.TotalQuestions,
			&a.CorrectAnswers, &a.Percentage, &a.TimeSpent, &a.Difficulty, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return attempts, nil
}

// UpsertAchievement relies on the (user_id, type) unique constraint; created reports
// whether a row was inserted.
func (s *Store) UpsertAchievement(ctx context.Context, a domain.Achievement) (bool, error) {
	tag, err := s.pool.Exec(ctx, `INSERT INTO user_achievements
		(user_id, type, title, description, icon, unlocked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, type) DO NOTHING`,
		a.UserID, a.Type, a.Title, a.Description, a.Icon, a.UnlockedAt)
	if err != nil {
		return false, fmt.Errorf("upsert achievement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) FindUserDisplayInfoByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserDisplay, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(avatar, '')
		FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.UserDisplay, len(userIDs))
	for rows.Next() {
		var (
			id      string
			display domain.UserDisplay
		)
		if err := rows.Scan(&id, &display.Name, &display.Email, &display.Avatar); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[id] = display
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return out, nil
}

// SaveQuiz stores the normalized document as JSONB, replacing an existing one.
func (s *Store) SaveQuiz(ctx context.Context, quiz domain.MultilingualQuiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO quizzes (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, quiz.ID, string(data))
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.MultilingualQuiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MultilingualQuiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.MultilingualQuiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.MultilingualQuiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.MultilingualQuiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
