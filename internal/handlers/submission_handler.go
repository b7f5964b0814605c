package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService   services.SubmissionService
	importExportService services.ImportExportService
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:         NewBaseHandler(logger),
		submissionService:   submissionService,
		importExportService: importExportService,
	}
}

// SubmitForm records an authenticated submission
// @Summary Submit form
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param submission body services.SubmitFormRequest true "Answers"
// @Success 201 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Form is not published"
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/submit [post]
func (h *SubmissionHandler) SubmitForm(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	var req services.SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting form", "form_id", formID)

	submission, err := h.submissionService.Submit(c.Request.Context(), formID, &req, userID, requestMetadata(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions lists a form's submissions, newest first
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Form ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param guest query bool false "Only guest or only authenticated submissions"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {object} services.SubmissionListResponse
// @Router /forms/{id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters, err := h.parseSubmissionFilters(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid date filter", err)
		return
	}

	submissions, err := h.submissionService.ListByForm(c.Request.Context(), formID, userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), formID, submissionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting submission", "form_id", formID, "submission_id", submissionID)

	if err := h.submissionService.Delete(c.Request.Context(), formID, submissionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubmissionStats returns totals and per-question answer counts
// @Summary Submission statistics
// @Tags submissions
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} services.SubmissionStats
// @Router /forms/{id}/submissions/stats [get]
func (h *SubmissionHandler) GetSubmissionStats(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.submissionService.GetStats(c.Request.Context(), formID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportSubmissions downloads every submission as csv, json or xlsx
// @Summary Export submissions
// @Tags submissions
// @Produce octet-stream
// @Param id path uint true "Form ID"
// @Param format query string false "csv, json or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /forms/{id}/submissions/export [get]
func (h *SubmissionHandler) ExportSubmissions(c *gin.Context) {
	formID := h.parseIDParam(c, "id")
	if formID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	format := services.ExportFormat(c.DefaultQuery("format", string(services.ExportCSV)))
	h.LogRequest(c, "Exporting submissions", "form_id", formID, "format", format)

	result, err := h.importExportService.ExportSubmissions(c.Request.Context(), formID, userID, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *SubmissionHandler) parseSubmissionFilters(c *gin.Context) (repositories.SubmissionFilters, error) {
	filters := repositories.SubmissionFilters{
		IsGuest:   h.parseBoolQuery(c, "guest"),
		Limit:     h.parseIntQuery(c, "limit", 0),
		Offset:    h.parseIntQuery(c, "offset", 0),
		SortOrder: c.Query("sort_order"),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filters, err
		}
		filters.DateTo = &t
	}

	return filters, nil
}
