package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quiz-import-service/internal/cache"
	"github.com/SAP-F-2025/quiz-import-service/internal/events"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
)

// ServiceManager hands the HTTP layer its services
type ServiceManager interface {
	Import() ImportService
	Question() QuestionService
}

type serviceManager struct {
	importService   ImportService
	questionService QuestionService
}

func NewServiceManager(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, opts ImportOptions) ServiceManager {
	return &serviceManager{
		importService:   NewImportService(repo, cacheService, publisher, logger, validator, opts),
		questionService: NewQuestionService(repo, cacheService, publisher, logger, validator, opts),
	}
}

func (m *serviceManager) Import() ImportService {
	return m.importService
}

func (m *serviceManager) Question() QuestionService {
	return m.questionService
}
