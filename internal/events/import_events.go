package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of import events
type EventType string

const (
	EventImportCompleted EventType = "import.completed"
	EventImportFailed    EventType = "import.failed"
	EventAnswerUpdated   EventType = "question.answer_updated"
)

const (
	eventSource  = "quiz-import-service"
	eventVersion = "1.0"
)

// ImportEvent is the envelope shared by every published event
type ImportEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type ImportCompletedEvent struct {
	JobID        string    `json:"job_id"`
	UserID       string    `json:"user_id"`
	Subject      string    `json:"subject"`
	Committed    bool      `json:"committed"`
	BlocksFound  int       `json:"blocks_found"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	QuestionIDs  []uint    `json:"question_ids,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

type ImportFailedEvent struct {
	JobID    string    `json:"job_id"`
	UserID   string    `json:"user_id"`
	Subject  string    `json:"subject"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

type AnswerUpdatedEvent struct {
	QuestionID         uint      `json:"question_id"`
	Subject            string    `json:"subject"`
	CorrectAnswerIndex int       `json:"correct_answer_index"`
	UpdatedBy          string    `json:"updated_by"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Event factory functions

func NewImportCompletedEvent(data ImportCompletedEvent) *ImportEvent {
	return newEvent(EventImportCompleted, data)
}

func NewImportFailedEvent(data ImportFailedEvent) *ImportEvent {
	return newEvent(EventImportFailed, data)
}

func NewAnswerUpdatedEvent(data AnswerUpdatedEvent) *ImportEvent {
	return newEvent(EventAnswerUpdated, data)
}

func newEvent(eventType EventType, data interface{}) *ImportEvent {
	return &ImportEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
