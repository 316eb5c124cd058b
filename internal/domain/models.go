package domain

import "time"

// Subject groups topics.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Topic is a question bank owner. NotesURL is optional.
type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	NotesURL    string `json:"notesUrl,omitempty"`
}

// Option is a selectable answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is the authoring shape, including the answer key.
type Question struct {
	ID              string   `json:"id"`
	TopicID         string   `json:"topicId"`
	Text            string   `json:"text"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
	Explanation     string   `json:"explanation,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
}

// Bank returns the key-free projection of q.
func (q Question) Bank() BankQuestion {
	return BankQuestion{
		ID:         q.ID,
		TopicID:    q.TopicID,
		Text:       q.Text,
		Options:    append([]Option(nil), q.Options...),
		Difficulty: q.Difficulty,
	}
}

// BankQuestion is the storage projection used to build sessions. It never carries the answer key.
type BankQuestion struct {
	ID         string
	TopicID    string
	Text       string
	Options    []Option
	Difficulty string
}

// SessionQuestion is a redacted question as sent to quiz-taking clients.
type SessionQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// QuizSession is the client-safe, unpersisted projection of a question bank.
type QuizSession struct {
	TopicID         string            `json:"topicId"`
	TopicIDs        []string          `json:"topicIds"`
	TopicName       string            `json:"topicName"`
	SubjectName     string            `json:"subjectName"`
	NotesURL        string            `json:"notesUrl,omitempty"`
	DurationSeconds int               `json:"duration"`
	Questions       []SessionQuestion `json:"questions"`
	QuestionCount   int               `json:"questionCount"`
}

// SubmittedAnswer is one client selection.
type SubmittedAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
}

// Submission is a completed attempt as sent by the client.
type Submission struct {
	TopicID    string            `json:"topicId"`
	Answers    []SubmittedAnswer `json:"answers"`
	TimeSpent  int               `json:"timeSpent"`
	Difficulty string            `json:"difficulty,omitempty"`
}

// IncorrectAnswer pairs a wrong selection with the stored key.
type IncorrectAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	CorrectOptionID  string `json:"correctOptionId"`
}

// Result is the scored outcome of a submission.
type Result struct {
	Score          float64           `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
	CorrectAnswers int               `json:"correctAnswers"`
	Incorrect      []IncorrectAnswer `json:"incorrectAnswers"`
	Percentage     float64           `json:"percentage"`
}

// AttemptRecord is an immutable, persisted scored submission.
// SubjectName is the parent subject of TopicID, filled in by the store on read.
type AttemptRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	TopicID        string    `json:"topicId"`
	SubjectName    string    `json:"subjectName,omitempty"`
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Percentage     float64   `json:"percentage"`
	TimeSpent      int       `json:"timeSpent"`
	Difficulty     string    `json:"difficulty"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Achievement is a milestone unlocked once per (UserID, Type).
type Achievement struct {
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// UserDisplay is the profile slice joined into leaderboards.
type UserDisplay struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	UserID            string  `json:"userId"`
	DisplayName       string  `json:"displayName"`
	Email             string  `json:"email,omitempty"`
	Avatar            string  `json:"avatar,omitempty"`
	TotalAttempts     int     `json:"totalAttempts"`
	AveragePercentage float64 `json:"averagePercentage"`
	TotalPoints       float64 `json:"totalPoints"`
	TotalCorrect      int     `json:"totalCorrect"`
	Rank              int     `json:"rank"`
}
