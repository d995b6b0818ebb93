package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/quiz-import-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-import-service/internal/services"
	"github.com/SAP-F-2025/quiz-import-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	BaseHandler
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService, logger utils.Logger) *ImportHandler {
	return &ImportHandler{
		BaseHandler:   NewBaseHandler(logger),
		importService: importService,
	}
}

// ImportText parses pasted text
// @Summary Import questions from text
// @Description Parses numbered multiple-choice questions; bad blocks are reported, not fatal
// @Tags imports
// @Accept json
// @Produce json
// @Param request body services.ImportRequest true "Text to parse"
// @Success 200 {object} SuccessResponse{data=services.ImportResult}
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /imports/text [post]
func (h *ImportHandler) ImportText(c *gin.Context) {
	var req services.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Importing questions from text", "subject", req.Subject, "commit", req.Commit, "length", len(req.Text))

	result, err := h.importService.ImportText(c.Request.Context(), &req, c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import completed", result)
}

// ImportFile parses an uploaded .txt or .pdf document
// @Summary Import questions from a file
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Text or PDF document"
// @Param subject formData string false "Subject label"
// @Param commit formData bool false "Store parsed questions"
// @Success 200 {object} SuccessResponse{data=services.ImportResult}
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /imports/file [post]
func (h *ImportHandler) ImportFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err, err.Error())
		return
	}

	commit := false
	if raw := c.PostForm("commit"); raw != "" {
		commit, err = strconv.ParseBool(raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid commit flag", err, err.Error())
			return
		}
	}
	subject := c.PostForm("subject")

	h.LogRequest(c, "Importing questions from file", "filename", fileHeader.Filename, "size", fileHeader.Size, "commit", commit)

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unable to read upload", err)
		return
	}
	defer file.Close()

	result, err := h.importService.ImportFile(c.Request.Context(), file, fileHeader.Filename, subject, commit, c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import completed", result)
}

// GetImportJob returns one job with its diagnostics
// @Summary Get import job
// @Tags imports
// @Produce json
// @Param id path string true "Import job ID"
// @Success 200 {object} SuccessResponse{data=models.ImportJob}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /imports/{id} [get]
func (h *ImportHandler) GetImportJob(c *gin.Context) {
	jobID, ok := h.parseStringIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.importService.GetImportJob(c.Request.Context(), jobID, c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	diagnostics, err := job.GetDiagnostics()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import job retrieved", gin.H{
		"job":         job,
		"diagnostics": diagnostics,
	})
}

// ListImportJobs lists the caller's jobs, newest first
// @Summary List import jobs
// @Tags imports
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} SuccessResponse{data=ListResponse}
// @Router /imports [get]
func (h *ImportHandler) ListImportJobs(c *gin.Context) {
	limit := parseIntQuery(c, "limit", repositories.DefaultPageSize)
	offset := parseIntQuery(c, "offset", 0)

	jobs, total, err := h.importService.ListImportJobs(c.Request.Context(), c.GetString(contextUserID), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import jobs retrieved", ListResponse{
		Items:  jobs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
