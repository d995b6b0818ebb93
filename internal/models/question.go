package models

import (
	"time"

	"github.com/SAP-F-2025/quiz-import-service/internal/parser"
	"gorm.io/gorm"
)

const (
	// UnknownAnswer is stored until someone curates the correct option
	UnknownAnswer = parser.UnknownAnswer
	// OptionCount is the number of options every question carries
	OptionCount = parser.OptionCount
	// DefaultSubject is used when an import does not name one
	DefaultSubject = "General"
)

// Question is a stored multiple-choice question. Column order follows the parser output.
type Question struct {
	ID                 uint   `json:"id" gorm:"primaryKey"`
	QuestionText       string `json:"question_text" gorm:"type:text;not null"`
	Option1            string `json:"option_1" gorm:"type:text;not null"`
	Option2            string `json:"option_2" gorm:"type:text;not null"`
	Option3            string `json:"option_3" gorm:"type:text;not null"`
	Option4            string `json:"option_4" gorm:"type:text;not null"`
	CorrectAnswerIndex int    `json:"correct_answer_index" gorm:"not null"`
	Subject            string `json:"subject" gorm:"not null;size:100;index"`

	// Provenance
	CreatedBy   string  `json:"created_by" gorm:"not null;size:255;index"`
	ImportJobID *string `json:"import_job_id,omitempty" gorm:"size:36;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// Options returns the four options in positional order
func (q *Question) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}

// HasAnswer reports whether the correct option has been curated
func (q *Question) HasAnswer() bool {
	return q.CorrectAnswerIndex != UnknownAnswer
}

// NewQuestionFromParsed converts a parser record into a row ready for insertion
func NewQuestionFromParsed(pq parser.ParsedQuestion, createdBy string, jobID string) *Question {
	q := &Question{
		QuestionText:       pq.QuestionText,
		Option1:            pq.Option1,
		Option2:            pq.Option2,
		Option3:            pq.Option3,
		Option4:            pq.Option4,
		CorrectAnswerIndex: pq.CorrectAnswerIndex,
		Subject:            pq.Subject,
		CreatedBy:          createdBy,
	}
	if jobID != "" {
		q.ImportJobID = &jobID
	}
	return q
}
