package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned by every repository when a row does not exist
var ErrNotFound = errors.New("record not found")

// IsNotFoundError checks if a repository error means the row is missing
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Repository groups the repositories and runs work inside one transaction
type Repository interface {
	Question() QuestionRepository
	ImportJob() ImportJobRepository

	// WithTransaction runs fn against repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(tx Repository) error) error
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Subject     *string `json:"subject"`
	Unanswered  *bool   `json:"unanswered"`
	ImportJobID *string `json:"import_job_id"`
	CreatedBy   *string `json:"created_by"`
	Search      string  `json:"search"`
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
	SortBy      string  `json:"sort_by"`    // "created_at", "subject", "id"
	SortOrder   string  `json:"sort_order"` // "asc", "desc"
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Normalize clamps paging and sorting to supported values
func (f *QuestionFilters) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case "created_at", "subject", "id":
	default:
		f.SortBy = "id"
	}
	if f.SortOrder != "desc" {
		f.SortOrder = "asc"
	}
}
