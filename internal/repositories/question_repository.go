package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
)

// QuestionRepository interface for question-specific operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, questions []*models.Question) error

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	CountBySubject(ctx context.Context) (map[string]int64, error)

	// Curation
	SetCorrectAnswer(ctx context.Context, id uint, index int) error
}
