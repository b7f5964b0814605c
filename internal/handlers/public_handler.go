package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
)

// PublicHandler serves respondents reaching a form through its share link.
// None of its routes require authentication.
type PublicHandler struct {
	BaseHandler
	formService       services.FormService
	submissionService services.SubmissionService
}

func NewPublicHandler(formService services.FormService, submissionService services.SubmissionService, logger utils.Logger) *PublicHandler {
	return &PublicHandler{
		BaseHandler:       NewBaseHandler(logger),
		formService:       formService,
		submissionService: submissionService,
	}
}

// GetPublicForm returns a published form with its initial visibility
// @Summary Get shared form
// @Tags public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} services.PublicFormResponse
// @Failure 403 {object} ErrorResponse "Form is not published"
// @Failure 404 {object} ErrorResponse
// @Router /public/forms/{token} [get]
func (h *PublicHandler) GetPublicForm(c *gin.Context) {
	token, ok := h.shareToken(c)
	if !ok {
		return
	}

	form, err := h.formService.GetPublic(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// EvaluateVisibility re-evaluates visibility as the respondent answers
// @Summary Evaluate shared form visibility
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param answers body services.EvaluateVisibilityRequest true "Current answers"
// @Success 200 {object} services.VisibilityResponse
// @Router /public/forms/{token}/visibility [post]
func (h *PublicHandler) EvaluateVisibility(c *gin.Context) {
	token, ok := h.shareToken(c)
	if !ok {
		return
	}

	var req services.EvaluateVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.formService.EvaluatePublicVisibility(c.Request.Context(), token, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitForm records a guest submission
// @Summary Submit shared form
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param submission body services.PublicSubmitRequest true "Guest details and answers"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Form is not published"
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /public/forms/{token}/submit [post]
func (h *PublicHandler) SubmitForm(c *gin.Context) {
	token, ok := h.shareToken(c)
	if !ok {
		return
	}

	var req services.PublicSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Guest submission", "share_token", token)

	submission, err := h.submissionService.SubmitPublic(c.Request.Context(), token, &req, requestMetadata(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Guests only get an acknowledgement, not the stored record
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Submission received",
		Data: gin.H{
			"id":         submission.ID,
			"created_at": submission.CreatedAt,
		},
	})
}

func (h *PublicHandler) shareToken(c *gin.Context) (string, bool) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" || len(token) > 64 {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Form not found"})
		return "", false
	}
	return token, true
}
