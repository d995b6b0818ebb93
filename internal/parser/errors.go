package parser

import (
	"errors"
	"fmt"
)

// Diagnostic codes for recoverable, per-block failures.
const (
	CodeMalformedBlock    = "malformed_block"
	CodeEmptyQuestionText = "empty_question_text"
)

var (
	// ErrInvalidEncoding is wrapped by SystemicError when the input is not UTF-8 text.
	ErrInvalidEncoding = errors.New("input is not valid UTF-8 text")
	// ErrUnexpected is wrapped by SystemicError when a stage fails in an unforeseen way.
	ErrUnexpected = errors.New("unexpected parser failure")
)

// BlockError is a per-block rejection. It is reported, never returned from Process.
type BlockError struct {
	QuestionNumber int
	Code           string
	Reason         string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("question %d: %s: %s", e.QuestionNumber, e.Code, e.Reason)
}

// Diagnostic converts the rejection into its reportable form.
func (e *BlockError) Diagnostic() Diagnostic {
	return Diagnostic{
		QuestionNumber: e.QuestionNumber,
		Code:           e.Code,
		Message:        e.Reason,
	}
}

func newMalformedBlock(number int, format string, args ...any) *BlockError {
	return &BlockError{
		QuestionNumber: number,
		Code:           CodeMalformedBlock,
		Reason:         fmt.Sprintf(format, args...),
	}
}

// SystemicError aborts a whole batch. Partial results are discarded.
type SystemicError struct {
	Stage string
	Err   error
}

func (e *SystemicError) Error() string {
	return fmt.Sprintf("parser %s failed: %v", e.Stage, e.Err)
}

func (e *SystemicError) Unwrap() error {
	return e.Err
}

// IsSystemic reports whether err aborted a batch.
func IsSystemic(err error) bool {
	var se *SystemicError
	return errors.As(err, &se)
}
