package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-import-service/internal/models"
	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-import-service/internal/services"
	"github.com/SAP-F-2025/quiz-import-service/internal/utils"
	"github.com/SAP-F-2025/quiz-import-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

// SetAnswerRequest carries the curated answer; -1 clears it
type SetAnswerRequest struct {
	CorrectAnswerIndex *int `json:"correct_answer_index" validate:"required"`
}

type ExportQuery struct {
	Format string `form:"format" validate:"required,export_format"`
}

func NewQuestionHandler(
	questionService services.QuestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// ListQuestions lists questions with filters
// @Summary List questions
// @Tags questions
// @Produce json
// @Param subject query string false "Subject"
// @Param unanswered query bool false "Only questions without a curated answer"
// @Param import_job_id query string false "Import job"
// @Param search query string false "Text search"
// @Param created_by query string false "Author user ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} SuccessResponse{data=ListResponse}
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters, ok := h.parseQuestionFilters(c)
	if !ok {
		return
	}

	questions, total, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters.Normalize()
	h.RespondWithSuccess(c, http.StatusOK, "Questions retrieved", ListResponse{
		Items:  questions,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse{data=models.Question}
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question retrieved", question)
}

// CreateQuestion stores a question written by hand
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.QuestionInput true "Question text, four options, optional answer and subject"
// @Success 201 {object} SuccessResponse{data=models.Question}
// @Failure 400 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input services.QuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Creating question", "subject", input.Subject)

	question, err := h.questionService.Create(c.Request.Context(), &input, c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Question created", question)
}

// UpdateQuestion rewrites a question's text and options
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param request body services.QuestionInput true "Replacement text and options; answer and subject kept when omitted"
// @Success 200 {object} SuccessResponse{data=models.Question}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.QuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	question, err := h.questionService.Update(c.Request.Context(), id, &input, c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question updated", question)
}

// SetCorrectAnswer records the curated answer for a question
// @Summary Set correct answer
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param request body SetAnswerRequest true "Answer index 0-3, or -1 to clear"
// @Success 200 {object} SuccessResponse{data=models.Question}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id}/answer [put]
func (h *QuestionHandler) SetCorrectAnswer(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Setting correct answer", "question_id", id, "index", *req.CorrectAnswerIndex)

	question, err := h.questionService.SetCorrectAnswer(c.Request.Context(), id, *req.CorrectAnswerIndex, c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Correct answer updated", question)
}

// DeleteQuestion removes a question
// @Summary Delete question
// @Tags questions
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(c.Request.Context(), id, c.GetString(contextUserID)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question deleted", nil)
}

// SubjectCounts returns stored question totals per subject
func (h *QuestionHandler) SubjectCounts(c *gin.Context) {
	counts, err := h.questionService.SubjectCounts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Subject counts retrieved", counts)
}

// ExportQuestions streams matching questions as CSV or XLSX
// @Summary Export questions
// @Tags questions
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param subject query string false "Subject"
// @Router /questions/export [get]
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	query := ExportQuery{Format: strings.ToLower(c.DefaultQuery("format", string(models.ExportCSV)))}
	if err := h.validator.ValidateStruct(&query); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters, ok := h.parseQuestionFilters(c)
	if !ok {
		return
	}

	format := models.ExportFormat(query.Format)
	data, err := h.questionService.Export(c.Request.Context(), filters, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("questions-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) (repositories.QuestionFilters, bool) {
	filters := repositories.QuestionFilters{
		Search:    strings.TrimSpace(c.Query("search")),
		Limit:     parseIntQuery(c, "limit", repositories.DefaultPageSize),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if subject := strings.TrimSpace(c.Query("subject")); subject != "" {
		filters.Subject = &subject
	}
	if jobID := strings.TrimSpace(c.Query("import_job_id")); jobID != "" {
		filters.ImportJobID = &jobID
	}
	if createdBy := strings.TrimSpace(c.Query("created_by")); createdBy != "" {
		filters.CreatedBy = &createdBy
	}
	if raw := c.Query("unanswered"); raw != "" {
		unanswered, err := strconv.ParseBool(raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid unanswered flag", err, err.Error())
			return filters, false
		}
		filters.Unanswered = &unanswered
	}

	return filters, true
}
