package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"gorm.io/gorm"
)

type RepositoryPostgreSQL struct {
	db        *gorm.DB
	question  repositories.QuestionRepository
	importJob repositories.ImportJobRepository
}

// NewRepository builds the repository set on top of one gorm handle
func NewRepository(db *gorm.DB) repositories.Repository {
	return &RepositoryPostgreSQL{
		db:        db,
		question:  NewQuestionPostgreSQL(db),
		importJob: NewImportJobPostgreSQL(db),
	}
}

func (r *RepositoryPostgreSQL) Question() repositories.QuestionRepository {
	return r.question
}

func (r *RepositoryPostgreSQL) ImportJob() repositories.ImportJobRepository {
	return r.importJob
}

// WithTransaction runs fn with repositories bound to a gorm transaction
func (r *RepositoryPostgreSQL) WithTransaction(ctx context.Context, fn func(tx repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
