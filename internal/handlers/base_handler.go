package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
)

// BaseHandler carries the helpers shared by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.GetLogger(c, h.logger).Error(msg, args...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	response := ErrorResponse{Message: message}
	if err != nil {
		response.Details = err.Error()
	}
	c.JSON(status, response)
}

// parseIDParam reads a positive numeric path parameter. It writes a 400 and
// returns 0 when the value is not usable.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: c.Param(name),
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}

// parseBoolQuery returns nil when the parameter is absent or not a boolean
func (h *BaseHandler) parseBoolQuery(c *gin.Context, name string) *bool {
	value, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return nil
	}
	return &value
}

// currentUserID returns the authenticated caller, writing a 401 when the
// auth middleware did not set one
func (h *BaseHandler) currentUserID(c *gin.Context) (string, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil || userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID, true
}

// requestMetadata captures client details stored with a submission
func requestMetadata(c *gin.Context) *models.SubmissionMetadata {
	return &models.SubmissionMetadata{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString("request_id"),
	}
}

// contentDisposition builds an attachment header for a download
func contentDisposition(filename string) string {
	filename = strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(filename)
	return `attachment; filename="` + filename + `"`
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrFormNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Form not found",
		})
	case errors.Is(err, services.ErrFormNotPublished):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Form is not published",
		})
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Submission not found",
		})
	case errors.Is(err, services.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Draft not found",
		})
	case errors.Is(err, services.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: "format must be csv, json or xlsx",
		})
	case errors.Is(err, services.ErrDraftStoreDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Draft storage is not available",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
