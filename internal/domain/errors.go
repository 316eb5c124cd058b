package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTopicNotFound is returned when a session is requested for topics that cannot be resolved.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrSubjectNotFound indicates a leaderboard scope names an unknown subject.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrQuizNotFound indicates a stored normalized quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidInput marks a violated caller precondition.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptySubmission is returned when a submission carries no answers.
	ErrEmptySubmission = fmt.Errorf("%w: submission has no answers", ErrInvalidInput)
)
