package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"gorm.io/gorm"
)

const createBatchSize = 100

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// ===== BASIC OPERATIONS =====

// Create inserts a single question
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// Update saves every column of the question
func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

// Delete soft-deletes a question
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := q.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// ===== BULK OPERATIONS =====

// CreateBatch inserts questions in chunks; IDs are written back into the slice
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := q.db.WithContext(ctx).CreateInBatches(questions, createBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create %d questions: %w", len(questions), err)
	}
	return nil
}

// ===== QUERY OPERATIONS =====

// List returns one page of questions plus the total matching count
func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.Normalize()

	query := q.applyFilters(q.db.WithContext(ctx).Model(&models.Question{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.Question
	err := query.
		Order(fmt.Sprintf("%s %s", filters.SortBy, filters.SortOrder)).
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&questions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// CountBySubject returns the number of stored questions per subject
func (q *QuestionPostgreSQL) CountBySubject(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Subject string
		Count   int64
	}
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("subject, COUNT(*) AS count").
		Group("subject").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count questions by subject: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Subject] = row.Count
	}
	return counts, nil
}

// ===== CURATION =====

// SetCorrectAnswer updates only the answer column
func (q *QuestionPostgreSQL) SetCorrectAnswer(ctx context.Context, id uint, index int) error {
	result := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Update("correct_answer_index", index)
	if result.Error != nil {
		return fmt.Errorf("failed to set correct answer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (q *QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Unanswered != nil {
		if *filters.Unanswered {
			query = query.Where("correct_answer_index = ?", models.UnknownAnswer)
		} else {
			query = query.Where("correct_answer_index <> ?", models.UnknownAnswer)
		}
	}
	if filters.ImportJobID != nil {
		query = query.Where("import_job_id = ?", *filters.ImportJobID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("question_text ILIKE ?", "%"+escapeLike(filters.Search)+"%")
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes % and _ match literally under ILIKE's default backslash escape.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
