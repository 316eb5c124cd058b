package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AllQuestions is the question-count sentinel that selects the whole bank.
const AllQuestions = "all"

// QuestionCount is either a positive number of questions or the whole bank.
type QuestionCount struct {
	N   int
	All bool
}

// ParseQuestionCount accepts "all" or a positive integer.
func ParseQuestionCount(raw string) (QuestionCount, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, AllQuestions) {
		return QuestionCount{All: true}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return QuestionCount{}, fmt.Errorf("%w: question count %q", ErrInvalidInput, raw)
	}
	return QuestionCount{N: n}, nil
}

// Limit returns how many of bankSize questions the count selects.
func (c QuestionCount) Limit(bankSize int) int {
	if c.All || c.N > bankSize {
		return bankSize
	}
	if c.N < 0 {
		return 0
	}
	return c.N
}

func (c QuestionCount) String() string {
	if c.All {
		return AllQuestions
	}
	return strconv.Itoa(c.N)
}

func (c QuestionCount) MarshalJSON() ([]byte, error) {
	if c.All {
		return json.Marshal(AllQuestions)
	}
	return json.Marshal(c.N)
}

func (c *QuestionCount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 {
			return fmt.Errorf("%w: question count %d", ErrInvalidInput, n)
		}
		*c = QuestionCount{N: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: question count %s", ErrInvalidInput, string(data))
	}
	parsed, err := ParseQuestionCount(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SessionOptions tunes BuildSession. DurationSeconds <= 0 derives the duration from pacing.
type SessionOptions struct {
	QuestionCount   QuestionCount
	ExtraTopicIDs   []string
	DurationSeconds int
}
