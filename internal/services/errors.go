package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-import-service/internal/errors"
	"github.com/SAP-F-2025/quiz-import-service/internal/parser"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrForbidden = errors.New("forbidden - insufficient permissions")

	// Question specific errors
	ErrQuestionNotFound = errors.New("question not found")

	// Import specific errors
	ErrImportJobNotFound    = errors.New("import job not found")
	ErrImportAccessDenied   = errors.New("access denied to import job")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrEmptyDocument        = errors.New("document contains no text")
	ErrFileTooLarge         = errors.New("file exceeds the upload limit")
	ErrUnsupportedExportFmt = errors.New("unsupported export format")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// Unwrap lets errors.Is match ErrForbidden
func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return repositories.IsNotFoundError(err) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrImportJobNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrImportAccessDenied)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrUnsupportedExportFmt) ||
		errors.Is(err, ErrEmptyDocument) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsInvalidInput reports a batch the parser refused because its text is not valid UTF-8
func IsInvalidInput(err error) bool {
	return errors.Is(err, parser.ErrInvalidEncoding)
}
