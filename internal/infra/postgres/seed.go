package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-engine/internal/domain"
)

// Seeding helpers used by the demo bank and integration tests. Existing rows are
// replaced.

func (s *Store) SaveSubject(ctx context.Context, subject domain.Subject) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO subjects (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, subject.ID, subject.Name)
	if err != nil {
		return fmt.Errorf("save subject: %w", err)
	}
	return nil
}

func (s *Store) SaveTopic(ctx context.Context, topic domain.Topic) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO topics (id, subject_id, name, notes_url) VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (id) DO UPDATE SET subject_id = EXCLUDED.subject_id, name = EXCLUDED.name, notes_url = EXCLUDED.notes_url`,
		topic.ID, topic.SubjectID, topic.Name, topic.NotesURL)
	if err != nil {
		return fmt.Errorf("save topic: %w", err)
	}
	return nil
}

func (s *Store) SaveQuestion(ctx context.Context, q domain.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO questions (id, topic_id, text, options, correct_option_id, explanation, difficulty)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		ON CONFLICT (id) DO UPDATE SET topic_id = EXCLUDED.topic_id, text = EXCLUDED.text, options = EXCLUDED.options,
			correct_option_id = EXCLUDED.correct_option_id, explanation = EXCLUDED.explanation, difficulty = EXCLUDED.difficulty`,
		q.ID, q.TopicID, q.Text, string(options), q.CorrectOptionID, q.Explanation, q.Difficulty)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (s *Store) SaveUser(ctx context.Context, userID string, display domain.UserDisplay) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO users (id, name, email, avatar) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, avatar = EXCLUDED.avatar`,
		userID, display.Name, display.Email, display.Avatar)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
