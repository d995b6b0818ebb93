package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"gorm.io/gorm"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

// Create stores a new job
func (r *ImportJobPostgreSQL) Create(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

// Update saves the job's progress and results
func (r *ImportJobPostgreSQL) Update(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by its UUID
func (r *ImportJobPostgreSQL) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("import job %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return &job, nil
}

// ListByUser returns the user's jobs, newest first
func (r *ImportJobPostgreSQL) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error) {
	if limit <= 0 || limit > repositories.MaxPageSize {
		limit = repositories.DefaultPageSize
	}

	query := r.db.WithContext(ctx).Model(&models.ImportJob{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count import jobs: %w", err)
	}

	var jobs []*models.ImportJob
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list import jobs: %w", err)
	}

	return jobs, total, nil
}
