package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
)

// ImportJobRepository stores the outcome of every import run
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error)
}
