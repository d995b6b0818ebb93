package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-import-service/internal/cache"
	"github.com/SAP-F-2025/quiz-import-service/internal/events"
	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// QuestionService serves stored questions and the correct-answer curation step
type QuestionService interface {
	List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Create(ctx context.Context, input *QuestionInput, userID string) (*models.Question, error)
	Update(ctx context.Context, id uint, input *QuestionInput, userID string) (*models.Question, error)
	Delete(ctx context.Context, id uint, userID string) error
	SetCorrectAnswer(ctx context.Context, id uint, index int, userID string) (*models.Question, error)
	SubjectCounts(ctx context.Context) (map[string]int64, error)
	Export(ctx context.Context, filters repositories.QuestionFilters, format models.ExportFormat) ([]byte, error)
}

// QuestionInput is a question written by hand rather than imported.
// A nil answer means unknown on create and unchanged on update; a blank subject
// means the default on create and unchanged on update.
type QuestionInput struct {
	QuestionText       string `json:"question_text" validate:"nonblank"`
	Option1            string `json:"option_1" validate:"nonblank"`
	Option2            string `json:"option_2" validate:"nonblank"`
	Option3            string `json:"option_3" validate:"nonblank"`
	Option4            string `json:"option_4" validate:"nonblank"`
	CorrectAnswerIndex *int   `json:"correct_answer_index"`
	Subject            string `json:"subject" validate:"subject"`
}

const exportSheet = "Questions"

var exportHeaders = []string{
	"Question", "Option 1", "Option 2", "Option 3", "Option 4", "Correct Answer", "Subject",
}

type questionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
	opts      ImportOptions
}

func NewQuestionService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, opts ImportOptions) QuestionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultSubject == "" {
		opts.DefaultSubject = models.DefaultSubject
	}
	return &questionService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, "question"),
		opts:      opts,
	}
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return s.repo.Question().List(ctx, filters)
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
		}
		return nil, err
	}
	return question, nil
}

// Create stores a question written by hand
func (s *questionService) Create(ctx context.Context, input *QuestionInput, userID string) (question *models.Question, err error) {
	start := time.Now()
	defer func() {
		resourceID := ""
		if question != nil {
			resourceID = strconv.FormatUint(uint64(question.ID), 10)
		}
		s.opLogger.LogOperation(ctx, "create_question", userID, resourceID, "question", time.Since(start), err)
	}()

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	question = &models.Question{
		CorrectAnswerIndex: models.UnknownAnswer,
		Subject:            s.opts.DefaultSubject,
		CreatedBy:          userID,
	}
	applyInput(question, input)

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return question, nil
}

// Update rewrites a question's text and options, and its answer and subject when given
func (s *questionService) Update(ctx context.Context, id uint, input *QuestionInput, userID string) (question *models.Question, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "update_question", userID, strconv.FormatUint(uint64(id), 10), "question", time.Since(start), err)
	}()

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	question, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousAnswer := question.CorrectAnswerIndex
	applyInput(question, input)

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	if question.CorrectAnswerIndex != previousAnswer {
		s.publishAnswerUpdated(ctx, question, userID)
	}
	return question, nil
}

func (s *questionService) validateInput(input *QuestionInput) error {
	if err := s.validator.ValidateStruct(input); err != nil {
		return err
	}
	if input.CorrectAnswerIndex != nil {
		return s.validator.ValidateAnswerIndex(*input.CorrectAnswerIndex)
	}
	return nil
}

// applyInput copies trimmed fields; nil answer and blank subject leave the row's values
func applyInput(question *models.Question, input *QuestionInput) {
	question.QuestionText = strings.TrimSpace(input.QuestionText)
	question.Option1 = strings.TrimSpace(input.Option1)
	question.Option2 = strings.TrimSpace(input.Option2)
	question.Option3 = strings.TrimSpace(input.Option3)
	question.Option4 = strings.TrimSpace(input.Option4)
	if input.CorrectAnswerIndex != nil {
		question.CorrectAnswerIndex = *input.CorrectAnswerIndex
	}
	if subject := strings.TrimSpace(input.Subject); subject != "" {
		question.Subject = subject
	}
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string) (err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "delete_question", userID, strconv.FormatUint(uint64(id), 10), "question", time.Since(start), err)
	}()

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
		}
		return err
	}

	s.invalidate(ctx)
	return nil
}

// SetCorrectAnswer records the curated answer. -1 clears it back to unknown.
func (s *questionService) SetCorrectAnswer(ctx context.Context, id uint, index int, userID string) (question *models.Question, err error) {
	start := time.Now()
	defer func() {
		s.opLogger.LogOperation(ctx, "set_correct_answer", userID, strconv.FormatUint(uint64(id), 10), "question", time.Since(start), err)
	}()

	if err := s.validator.ValidateAnswerIndex(index); err != nil {
		return nil, err
	}

	if err := s.repo.Question().SetCorrectAnswer(ctx, id, index); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
		}
		return nil, err
	}

	question, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publishAnswerUpdated(ctx, question, userID)
	return question, nil
}

func (s *questionService) publishAnswerUpdated(ctx context.Context, question *models.Question, userID string) {
	event := events.NewAnswerUpdatedEvent(events.AnswerUpdatedEvent{
		QuestionID:         question.ID,
		Subject:            question.Subject,
		CorrectAnswerIndex: question.CorrectAnswerIndex,
		UpdatedBy:          userID,
		UpdatedAt:          time.Now(),
	})
	if err := s.publisher.PublishImportEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish answer update", "question_id", question.ID, "error", err)
	}
}

// SubjectCounts returns stored question totals per subject, cache-first
func (s *questionService) SubjectCounts(ctx context.Context) (map[string]int64, error) {
	var counts map[string]int64
	err := s.cache.Get(ctx, cache.SubjectCountsKey, &counts)
	if err == nil {
		return counts, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Subject count cache read failed", "error", err)
	}

	counts, err = s.repo.Question().CountBySubject(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.SubjectCountsKey, counts, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache subject counts", "error", err)
	}
	return counts, nil
}

// ===== EXPORT =====

func (s *questionService) Export(ctx context.Context, filters repositories.QuestionFilters, format models.ExportFormat) ([]byte, error) {
	if format != models.ExportCSV && format != models.ExportXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExportFmt, format)
	}

	questions, err := s.collect(ctx, filters)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exporting questions", "format", format, "count", len(questions))

	if format == models.ExportXLSX {
		return exportXLSX(questions)
	}
	return exportCSV(questions)
}

// collect pages through every question matching filters
func (s *questionService) collect(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	filters.Limit = repositories.MaxPageSize
	filters.Offset = 0

	var all []*models.Question
	for {
		page, total, err := s.repo.Question().List(ctx, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < filters.Limit || int64(len(all)) >= total {
			return all, nil
		}
		filters.Offset += len(page)
	}
}

func exportCSV(questions []*models.Question) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, question := range questions {
		if err := writer.Write(exportRow(question)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func exportXLSX(questions []*models.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name Excel sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}
	for i, question := range questions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(question)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(question *models.Question) []string {
	answer := ""
	if question.HasAnswer() {
		answer = string(rune('A' + question.CorrectAnswerIndex))
	}
	return []string{
		question.QuestionText,
		question.Option1,
		question.Option2,
		question.Option3,
		question.Option4,
		answer,
		question.Subject,
	}
}

func (s *questionService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cache.QuestionsPattern); err != nil {
		s.logger.Warn("Failed to invalidate question cache", "error", err)
	}
}
