package models

import "time"

// Defaults applied to omitted classification fields.
const (
	DefaultDifficulty   = "medium"
	DefaultQuestionType = "text"
)

// SavedQuestion is a row of the saved_questions table.
type SavedQuestion struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	QuestionText string    `json:"question"`
	Topic        string    `json:"topic"`
	Difficulty   string    `json:"difficulty"`
	QuestionType string    `json:"questionType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// QuestionInput carries the caller-supplied fields of a new question.
type QuestionInput struct {
	QuestionText string
	Topic        string
	Difficulty   string
	QuestionType string
}

// WithDefaults fills empty Difficulty and QuestionType.
func (q QuestionInput) WithDefaults() QuestionInput {
	if q.Difficulty == "" {
		q.Difficulty = DefaultDifficulty
	}
	if q.QuestionType == "" {
		q.QuestionType = DefaultQuestionType
	}
	return q
}
