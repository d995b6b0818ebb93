package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-import-service/internal/cache"
	"github.com/SAP-F-2025/quiz-import-service/internal/events"
	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/parser"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const mixedBatch = `1. What is 2+2?
A. 3
B. 4
C. 5
D. 6
2. Which planet is red?
A. Venus
B. Mars
`

type importFixture struct {
	repo      *MockRepository
	cache     *MockCacheService
	publisher *events.MockEventPublisher
	service   ImportService
}

func newImportFixture(opts ImportOptions) *importFixture {
	repo := NewMockRepository()
	cacheService := &MockCacheService{}
	publisher := events.NewMockEventPublisher(nil)
	return &importFixture{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		service:   NewImportService(repo, cacheService, publisher, nil, validator.New(), opts),
	}
}

func jobWithStatus(status models.ImportJobStatus) interface{} {
	return mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == status
	})
}

func TestImportTextPreviewOnly(t *testing.T) {
	f := newImportFixture(ImportOptions{CacheTTL: time.Minute})
	ctx := context.Background()

	f.repo.importJobs.On("Create", ctx, jobWithStatus(models.ImportProcessing)).Return(nil)
	f.repo.importJobs.On("Update", ctx, jobWithStatus(models.ImportCompleted)).Return(nil)
	f.cache.On("Set", ctx, mock.AnythingOfType("string"), mock.Anything, time.Minute).Return(nil)

	result, err := f.service.ImportText(ctx, &ImportRequest{Text: mixedBatch, Subject: "Science"}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.ImportCompleted, result.Status)
	assert.Equal(t, 2, result.BlocksFound)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.False(t, result.Committed)
	assert.Empty(t, result.QuestionIDs)

	require.Len(t, result.Questions, 1)
	assert.Equal(t, "What is 2+2?", result.Questions[0].QuestionText)
	assert.Equal(t, "Science", result.Questions[0].Subject)
	assert.Equal(t, parser.UnknownAnswer, result.Questions[0].CorrectAnswerIndex)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 2, result.Diagnostics[0].QuestionNumber)
	assert.Equal(t, parser.CodeMalformedBlock, result.Diagnostics[0].Code)

	f.cache.AssertCalled(t, "Set", ctx, cache.ImportJobKey(result.JobID), mock.Anything, time.Minute)
	f.repo.questions.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventImportCompleted, published[0].Type)
}

func TestImportTextCommitsInOneTransaction(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()

	f.repo.importJobs.On("Create", ctx, mock.Anything).Return(nil)
	f.repo.On("WithTransaction", ctx).Return(nil).Once()
	f.repo.questions.On("CreateBatch", ctx, mock.MatchedBy(func(qs []*models.Question) bool {
		return len(qs) == 1 && qs[0].CreatedBy == "admin-1" && qs[0].ImportJobID != nil
	})).Run(func(args mock.Arguments) {
		for i, q := range args.Get(1).([]*models.Question) {
			q.ID = uint(100 + i)
		}
	}).Return(nil)
	f.repo.importJobs.On("Update", ctx, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportCompleted && job.Committed
	})).Return(nil)
	f.cache.On("DeletePattern", ctx, cache.QuestionsPattern).Return(nil)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ImportText(ctx, &ImportRequest{Text: mixedBatch, Commit: true}, "admin-1")
	require.NoError(t, err)

	assert.True(t, result.Committed)
	assert.Equal(t, []uint{100}, result.QuestionIDs)
	assert.Equal(t, models.DefaultSubject, result.Subject)

	f.repo.AssertExpectations(t)
	f.repo.questions.AssertExpectations(t)
	f.cache.AssertExpectations(t)

	event := f.publisher.GetPublishedEvents()[0].Data.(events.ImportCompletedEvent)
	assert.Equal(t, []uint{100}, event.QuestionIDs)
	assert.True(t, event.Committed)
}

func TestImportTextCommitWithNoQuestionsSkipsTransaction(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()

	f.repo.importJobs.On("Create", ctx, mock.Anything).Return(nil)
	f.repo.importJobs.On("Update", ctx, jobWithStatus(models.ImportCompleted)).Return(nil)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ImportText(ctx, &ImportRequest{Text: "Just some notes.", Commit: true}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 0, result.BlocksFound)
	assert.Empty(t, result.Questions)
	assert.Empty(t, result.Diagnostics)
	assert.False(t, result.Committed)
	f.repo.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestImportTextEmptyTextCompletesWithNothing(t *testing.T) {
	for _, text := range []string{"", "  \n\t "} {
		f := newImportFixture(ImportOptions{})
		ctx := context.Background()

		f.repo.importJobs.On("Create", ctx, jobWithStatus(models.ImportProcessing)).Return(nil)
		f.repo.importJobs.On("Update", ctx, jobWithStatus(models.ImportCompleted)).Return(nil)
		f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.ImportText(ctx, &ImportRequest{Text: text, Commit: true}, "admin-1")
		require.NoError(t, err, "text %q", text)

		assert.Equal(t, models.ImportCompleted, result.Status)
		assert.Zero(t, result.BlocksFound)
		assert.Empty(t, result.Questions)
		assert.Empty(t, result.Diagnostics)
		f.repo.AssertNotCalled(t, "WithTransaction", mock.Anything)
	}
}

func TestImportTextWhitespaceSubjectUsesDefault(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()

	f.repo.importJobs.On("Create", ctx, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Subject == models.DefaultSubject
	})).Return(nil)
	f.repo.importJobs.On("Update", ctx, mock.Anything).Return(nil)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ImportText(ctx, &ImportRequest{Text: mixedBatch, Subject: "   "}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultSubject, result.Subject)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, models.DefaultSubject, result.Questions[0].Subject)
	f.repo.importJobs.AssertExpectations(t)
}

func TestImportTextValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *ImportRequest
	}{
		{"subject too long", &ImportRequest{Text: mixedBatch, Subject: strings.Repeat("x", validator.MaxSubjectLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture(ImportOptions{})

			_, err := f.service.ImportText(context.Background(), tt.req, "admin-1")
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			f.repo.importJobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestImportTextInvalidEncodingFailsJob(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()

	f.repo.importJobs.On("Create", ctx, mock.Anything).Return(nil)
	f.repo.importJobs.On("Update", ctx, mock.MatchedBy(func(job *models.ImportJob) bool {
		return job.Status == models.ImportFailed && job.FailureReason != nil && job.CompletedAt != nil
	})).Return(nil)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.ImportText(ctx, &ImportRequest{Text: "1. Bad \xff\xfe\nA. a\nB. b\nC. c\nD. d"}, "admin-1")
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
	assert.True(t, parser.IsSystemic(err))

	f.repo.importJobs.AssertExpectations(t)
	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventImportFailed, published[0].Type)
}

func TestImportTextTransactionFailureFailsJob(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	f.repo.importJobs.On("Create", ctx, mock.Anything).Return(nil)
	f.repo.On("WithTransaction", ctx).Return(nil)
	f.repo.questions.On("CreateBatch", ctx, mock.Anything).Return(dbErr)
	f.repo.importJobs.On("Update", ctx, jobWithStatus(models.ImportFailed)).Return(nil)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.ImportText(ctx, &ImportRequest{Text: mixedBatch, Commit: true}, "admin-1")
	require.ErrorIs(t, err, dbErr)

	f.cache.AssertNotCalled(t, "DeletePattern", mock.Anything, mock.Anything)
	assert.Equal(t, events.EventImportFailed, f.publisher.GetPublishedEvents()[0].Type)
}

func TestImportTextSurvivesCacheFailure(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()

	f.repo.importJobs.On("Create", ctx, mock.Anything).Return(nil)
	f.repo.importJobs.On("Update", ctx, mock.Anything).Return(nil)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	result, err := f.service.ImportText(ctx, &ImportRequest{Text: mixedBatch}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
}

func TestImportFile(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		f := newImportFixture(ImportOptions{MaxUploadBytes: 1 << 10})
		ctx := context.Background()

		f.repo.importJobs.On("Create", ctx, mock.MatchedBy(func(job *models.ImportJob) bool {
			return job.FileName == "week1.TXT" && job.FileType == "txt"
		})).Return(nil)
		f.repo.importJobs.On("Update", ctx, mock.Anything).Return(nil)
		f.cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.ImportFile(ctx, strings.NewReader(mixedBatch), "week1.TXT", "History", false, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "History", result.Subject)
		assert.Equal(t, 1, result.SuccessCount)
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		_, err := f.service.ImportFile(context.Background(), strings.NewReader(mixedBatch), "quiz.docx", "", false, "admin-1")
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
		assert.True(t, IsValidation(err))
	})

	t.Run("too large", func(t *testing.T) {
		f := newImportFixture(ImportOptions{MaxUploadBytes: 16})
		_, err := f.service.ImportFile(context.Background(), bytes.NewReader(make([]byte, 17)), "quiz.txt", "", false, "admin-1")
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("empty document", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		_, err := f.service.ImportFile(context.Background(), strings.NewReader(" \n "), "quiz.txt", "", false, "admin-1")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("missing file name", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		_, err := f.service.ImportFile(context.Background(), strings.NewReader(mixedBatch), "", "", false, "admin-1")
		assert.True(t, IsValidation(err))
	})
}

func TestGetImportJob(t *testing.T) {
	ctx := context.Background()
	stored := &models.ImportJob{ID: "job-1", UserID: "admin-1", Status: models.ImportCompleted}

	t.Run("cache hit", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		f.cache.On("Get", ctx, cache.ImportJobKey("job-1"), mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(2).(*models.ImportJob) = *stored
		}).Return(nil)

		job, err := f.service.GetImportJob(ctx, "job-1", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		f.repo.importJobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss falls back to repository", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		f.cache.On("Get", ctx, mock.Anything, mock.Anything).Return(cache.ErrCacheMiss)
		f.cache.On("Set", ctx, cache.ImportJobKey("job-1"), stored, mock.Anything).Return(nil)
		f.repo.importJobs.On("GetByID", ctx, "job-1").Return(stored, nil)

		job, err := f.service.GetImportJob(ctx, "job-1", "admin-1")
		require.NoError(t, err)
		assert.Same(t, stored, job)
		f.cache.AssertExpectations(t)
	})

	t.Run("other user is denied", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		f.cache.On("Get", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(2).(*models.ImportJob) = *stored
		}).Return(nil)

		_, err := f.service.GetImportJob(ctx, "job-1", "admin-2")
		assert.ErrorIs(t, err, ErrImportAccessDenied)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := newImportFixture(ImportOptions{})
		f.cache.On("Get", ctx, mock.Anything, mock.Anything).Return(cache.ErrCacheMiss)
		f.repo.importJobs.On("GetByID", ctx, "missing").Return(nil, repositories.ErrNotFound)

		_, err := f.service.GetImportJob(ctx, "missing", "admin-1")
		assert.ErrorIs(t, err, ErrImportJobNotFound)
		assert.True(t, IsNotFound(err))
	})
}

func TestListImportJobs(t *testing.T) {
	f := newImportFixture(ImportOptions{})
	ctx := context.Background()
	jobs := []*models.ImportJob{{ID: "job-2"}, {ID: "job-1"}}

	f.repo.importJobs.On("ListByUser", ctx, "admin-1", 10, 0).Return(jobs, int64(2), nil)

	got, total, err := f.service.ListImportJobs(ctx, "admin-1", 10, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, jobs, got)
}
