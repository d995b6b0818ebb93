package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ImportJobStatus string

const (
	ImportProcessing ImportJobStatus = "processing"
	ImportCompleted  ImportJobStatus = "completed"
	ImportFailed     ImportJobStatus = "failed"
)

type ImportJob struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"` // UUID
	UserID  string `json:"user_id" gorm:"not null;index;size:255"`
	Subject string `json:"subject" gorm:"not null;size:100"`

	// Source info
	FileName     string `json:"file_name" gorm:"size:255"`         // empty for pasted text
	FileType     string `json:"file_type" gorm:"not null;size:20"` // text, txt, pdf
	SourceLength int    `json:"source_length"`                      // characters of extracted text

	// Job status
	Status    ImportJobStatus `json:"status" gorm:"not null;size:20;index"`
	Committed bool            `json:"committed" gorm:"default:false"`

	// Processing info
	BlocksFound  int `json:"blocks_found"`
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`

	// Results
	Diagnostics   datatypes.JSON `json:"diagnostics" gorm:"type:jsonb"` // []ImportDiagnostic
	FailureReason *string        `json:"failure_reason,omitempty" gorm:"type:text"`

	// Timestamps
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportDiagnostic records why one numbered block was skipped
type ImportDiagnostic struct {
	QuestionNumber int    `json:"question_number"`
	Code           string `json:"code"`
	Message        string `json:"message"`
}

// SetDiagnostics stores diagnostics as JSON. A nil slice is stored as an empty array.
func (j *ImportJob) SetDiagnostics(diagnostics []ImportDiagnostic) error {
	if diagnostics == nil {
		diagnostics = []ImportDiagnostic{}
	}
	data, err := json.Marshal(diagnostics)
	if err != nil {
		return err
	}
	j.Diagnostics = datatypes.JSON(data)
	return nil
}

// GetDiagnostics decodes the stored diagnostics
func (j *ImportJob) GetDiagnostics() ([]ImportDiagnostic, error) {
	if len(j.Diagnostics) == 0 {
		return nil, nil
	}
	var diagnostics []ImportDiagnostic
	if err := json.Unmarshal(j.Diagnostics, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

// IsFinished reports whether the job reached a terminal status
func (j *ImportJob) IsFinished() bool {
	return j.Status == ImportCompleted || j.Status == ImportFailed
}
