package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SAP-F-2025/quiz-import-service/internal/cache"
	"github.com/SAP-F-2025/quiz-import-service/internal/events"
	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/parser"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
	"github.com/google/uuid"
)

// ImportService turns pasted text and uploaded documents into stored questions
type ImportService interface {
	ImportText(ctx context.Context, req *ImportRequest, userID string) (*ImportResult, error)
	ImportFile(ctx context.Context, reader io.Reader, filename, subject string, commit bool, userID string) (*ImportResult, error)

	// Job management
	GetImportJob(ctx context.Context, jobID, userID string) (*models.ImportJob, error)
	ListImportJobs(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error)
}

type ImportRequest struct {
	Text    string `json:"text"`
	Subject string `json:"subject" validate:"subject"`
	Commit  bool   `json:"commit"`
}

type fileImportRequest struct {
	FileName string `json:"file_name" validate:"required"`
	Subject  string `json:"subject" validate:"subject"`
}

type ImportResult struct {
	JobID        string                    `json:"job_id"`
	Status       models.ImportJobStatus    `json:"status"`
	Subject      string                    `json:"subject"`
	Committed    bool                      `json:"committed"`
	BlocksFound  int                       `json:"blocks_found"`
	SuccessCount int                       `json:"success_count"`
	ErrorCount   int                       `json:"error_count"`
	Questions    []parser.ParsedQuestion   `json:"questions"`
	QuestionIDs  []uint                    `json:"question_ids,omitempty"`
	Diagnostics  []models.ImportDiagnostic `json:"diagnostics"`
}

type ImportOptions struct {
	DefaultSubject string
	MaxUploadBytes int64
	CacheTTL       time.Duration
}

type importService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	parser    *parser.Parser
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
	opts      ImportOptions
}

func NewImportService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, opts ImportOptions) ImportService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultSubject == "" {
		opts.DefaultSubject = models.DefaultSubject
	}
	return &importService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		parser:    parser.New(logger),
		validator: validator,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, "import"),
		opts:      opts,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importService) ImportText(ctx context.Context, req *ImportRequest, userID string) (result *ImportResult, err error) {
	start := time.Now()
	defer func() {
		jobID := ""
		if result != nil {
			jobID = result.JobID
		}
		s.opLogger.LogOperation(ctx, "import_text", userID, jobID, "import_job", time.Since(start), err)
	}()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	return s.run(ctx, req.Text, s.subjectOrDefault(req.Subject), req.Commit, userID, "", fileTypeText)
}

func (s *importService) ImportFile(ctx context.Context, reader io.Reader, filename, subject string, commit bool, userID string) (result *ImportResult, err error) {
	start := time.Now()
	defer func() {
		jobID := ""
		if result != nil {
			jobID = result.JobID
		}
		s.opLogger.LogOperation(ctx, "import_file", userID, jobID, "import_job", time.Since(start), err)
	}()

	if err := s.validator.ValidateStruct(&fileImportRequest{FileName: filename, Subject: subject}); err != nil {
		return nil, err
	}

	extractor, fileType, err := ExtractorFor(filename)
	if err != nil {
		return nil, err
	}

	data, err := readLimited(reader, s.opts.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}

	s.logger.Info("Extracted document text", "filename", filename, "file_type", fileType, "bytes", len(data))

	return s.run(ctx, text, s.subjectOrDefault(subject), commit, userID, filename, fileType)
}

// run records a job, parses the text and optionally stores the questions.
// Bad blocks end up in the job diagnostics; only a systemic failure returns an error.
func (s *importService) run(ctx context.Context, text, subject string, commit bool, userID, filename, fileType string) (*ImportResult, error) {
	now := time.Now()
	job := &models.ImportJob{
		ID:           uuid.NewString(),
		UserID:       userID,
		Subject:      subject,
		FileName:     filename,
		FileType:     fileType,
		SourceLength: utf8.RuneCountInString(text),
		Status:       models.ImportProcessing,
		StartedAt:    &now,
	}
	if err := job.SetDiagnostics(nil); err != nil {
		return nil, err
	}
	if err := s.repo.ImportJob().Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record import job: %w", err)
	}

	parsed, err := s.parser.Process(text, subject)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, fmt.Errorf("import %s: %w", job.ID, err)
	}

	diagnostics := make([]models.ImportDiagnostic, 0, len(parsed.Diagnostics))
	for _, d := range parsed.Diagnostics {
		diagnostics = append(diagnostics, models.ImportDiagnostic{
			QuestionNumber: d.QuestionNumber,
			Code:           d.Code,
			Message:        d.Message,
		})
	}
	if err := job.SetDiagnostics(diagnostics); err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	completedAt := time.Now()
	job.Status = models.ImportCompleted
	job.BlocksFound = parsed.BlocksFound
	job.SuccessCount = len(parsed.Questions)
	job.ErrorCount = len(diagnostics)
	job.CompletedAt = &completedAt

	var questionIDs []uint
	if commit && len(parsed.Questions) > 0 {
		questions := make([]*models.Question, 0, len(parsed.Questions))
		for _, pq := range parsed.Questions {
			questions = append(questions, models.NewQuestionFromParsed(pq, userID, job.ID))
		}

		job.Committed = true
		err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			if err := tx.Question().CreateBatch(ctx, questions); err != nil {
				return err
			}
			return tx.ImportJob().Update(ctx, job)
		})
		if err != nil {
			job.Committed = false
			s.failJob(ctx, job, err)
			return nil, fmt.Errorf("failed to store imported questions: %w", err)
		}

		for _, q := range questions {
			questionIDs = append(questionIDs, q.ID)
		}
		s.invalidateQuestions(ctx)
	} else if err := s.repo.ImportJob().Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update import job: %w", err)
	}

	s.cacheJob(ctx, job)
	s.publish(ctx, events.NewImportCompletedEvent(events.ImportCompletedEvent{
		JobID:        job.ID,
		UserID:       userID,
		Subject:      subject,
		Committed:    job.Committed,
		BlocksFound:  job.BlocksFound,
		SuccessCount: job.SuccessCount,
		ErrorCount:   job.ErrorCount,
		QuestionIDs:  questionIDs,
		CompletedAt:  completedAt,
	}))

	s.logger.Info("Import completed",
		"job_id", job.ID,
		"blocks_found", job.BlocksFound,
		"success_count", job.SuccessCount,
		"error_count", job.ErrorCount,
		"committed", job.Committed)

	return &ImportResult{
		JobID:        job.ID,
		Status:       job.Status,
		Subject:      subject,
		Committed:    job.Committed,
		BlocksFound:  job.BlocksFound,
		SuccessCount: job.SuccessCount,
		ErrorCount:   job.ErrorCount,
		Questions:    parsed.Questions,
		QuestionIDs:  questionIDs,
		Diagnostics:  diagnostics,
	}, nil
}

func (s *importService) failJob(ctx context.Context, job *models.ImportJob, cause error) {
	now := time.Now()
	reason := cause.Error()
	job.Status = models.ImportFailed
	job.FailureReason = &reason
	job.CompletedAt = &now

	if err := s.repo.ImportJob().Update(ctx, job); err != nil {
		s.logger.Error("Failed to mark import job failed", "job_id", job.ID, "error", err)
	}
	s.cacheJob(ctx, job)
	s.publish(ctx, events.NewImportFailedEvent(events.ImportFailedEvent{
		JobID:    job.ID,
		UserID:   job.UserID,
		Subject:  job.Subject,
		Reason:   reason,
		FailedAt: now,
	}))

	s.logger.Error("Import failed", "job_id", job.ID, "error", cause)
}

// ===== JOB MANAGEMENT =====

func (s *importService) GetImportJob(ctx context.Context, jobID, userID string) (*models.ImportJob, error) {
	var cached models.ImportJob
	err := s.cache.Get(ctx, cache.ImportJobKey(jobID), &cached)
	switch {
	case err == nil:
		return s.checkOwner(&cached, userID)
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("Import job cache read failed", "job_id", jobID, "error", err)
	}

	job, err := s.repo.ImportJob().GetByID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrImportJobNotFound, jobID)
		}
		return nil, err
	}

	s.cacheJob(ctx, job)
	return s.checkOwner(job, userID)
}

func (s *importService) ListImportJobs(ctx context.Context, userID string, limit, offset int) ([]*models.ImportJob, int64, error) {
	if offset < 0 {
		offset = 0
	}
	return s.repo.ImportJob().ListByUser(ctx, userID, limit, offset)
}

func (s *importService) checkOwner(job *models.ImportJob, userID string) (*models.ImportJob, error) {
	if job.UserID != userID {
		return nil, fmt.Errorf("%w: %w", ErrImportAccessDenied,
			NewPermissionError(userID, job.ID, "import_job", "read", "only the importing user may read the job"))
	}
	return job, nil
}

// ===== HELPERS =====

func (s *importService) subjectOrDefault(subject string) string {
	if subject = strings.TrimSpace(subject); subject != "" {
		return subject
	}
	return s.opts.DefaultSubject
}

// Cache and event failures are logged and never fail the import.

func (s *importService) cacheJob(ctx context.Context, job *models.ImportJob) {
	if err := s.cache.Set(ctx, cache.ImportJobKey(job.ID), job, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache import job", "job_id", job.ID, "error", err)
	}
}

func (s *importService) invalidateQuestions(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cache.QuestionsPattern); err != nil {
		s.logger.Warn("Failed to invalidate question cache", "error", err)
	}
}

func (s *importService) publish(ctx context.Context, event *events.ImportEvent) {
	if err := s.publisher.PublishImportEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish import event", "event_type", event.Type, "error", err)
	}
}
