package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
}

func NewFormHandler(formService services.FormService, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		formService: formService,
	}
}

// CreateForm creates a new form
// @Summary Create form
// @Description Creates a form owned by the caller. Questions without a type are dropped.
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form data"
// @Success 201 {object} services.FormResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating form", "title", req.Title)

	form, err := h.formService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// ListForms lists the caller's forms, newest first
// @Summary List own forms
// @Tags forms
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Param published query bool false "Filter by publish state"
// @Param search query string false "Title search"
// @Success 200 {object} services.FormListResponse
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing forms")

	forms, err := h.formService.List(c.Request.Context(), userID, h.parseFormFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, forms)
}

// ListAllForms lists every form. Admin only.
// @Summary List all forms
// @Tags admin
// @Produce json
// @Success 200 {object} services.FormListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/forms [get]
func (h *FormHandler) ListAllForms(c *gin.Context) {
	h.LogRequest(c, "Listing all forms")

	filters := h.parseFormFilters(c)
	if owner := strings.TrimSpace(c.Query("owner_id")); owner != "" {
		filters.OwnerID = &owner
	}

	forms, err := h.formService.ListAll(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, forms)
}

// GetForm retrieves a form by ID
// @Summary Get form
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} services.FormResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting form", "form_id", id)

	form, err := h.formService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// UpdateForm applies a partial update
// @Summary Update form
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param form body services.UpdateFormRequest true "Fields to change"
// @Success 200 {object} services.FormResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating form", "form_id", id)

	form, err := h.formService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// DeleteForm deletes a form and all of its submissions
// @Summary Delete form
// @Tags forms
// @Param id path uint true "Form ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting form", "form_id", id)

	if err := h.formService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PublishForm opens a form to respondents
// @Summary Publish form
// @Tags forms
// @Param id path uint true "Form ID"
// @Success 200 {object} services.FormResponse
// @Router /forms/{id}/publish [post]
func (h *FormHandler) PublishForm(c *gin.Context) {
	h.setPublished(c, true)
}

// UnpublishForm closes a form to respondents
// @Summary Unpublish form
// @Tags forms
// @Param id path uint true "Form ID"
// @Success 200 {object} services.FormResponse
// @Router /forms/{id}/unpublish [post]
func (h *FormHandler) UnpublishForm(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *FormHandler) setPublished(c *gin.Context, published bool) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Changing publish state", "form_id", id, "is_published", published)

	var (
		form *services.FormResponse
		err  error
	)
	if published {
		form, err = h.formService.Publish(c.Request.Context(), id, userID)
	} else {
		form, err = h.formService.Unpublish(c.Request.Context(), id, userID)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ExportForm downloads the form definition as JSON
// @Summary Export form definition
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} services.FormDefinition
// @Router /forms/{id}/export [get]
func (h *FormHandler) ExportForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	def, err := h.formService.ExportDefinition(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(exportDefinitionFilename(def.Title)))
	c.JSON(http.StatusOK, def)
}

// ImportForm creates a form from an exported definition
// @Summary Import form definition
// @Tags forms
// @Accept json
// @Produce json
// @Param definition body services.FormDefinition true "Exported definition"
// @Success 201 {object} services.FormResponse
// @Failure 400 {object} ErrorResponse
// @Router /forms/import [post]
func (h *FormHandler) ImportForm(c *gin.Context) {
	var def services.FormDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid form definition", err)
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Importing form", "title", def.Title)

	form, err := h.formService.ImportDefinition(c.Request.Context(), &def, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// EvaluateVisibility runs the visibility rules of a stored form
// @Summary Evaluate visibility
// @Tags visibility
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param answers body services.EvaluateVisibilityRequest true "Current answers"
// @Success 200 {object} services.VisibilityResponse
// @Router /forms/{id}/visibility [post]
func (h *FormHandler) EvaluateVisibility(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.EvaluateVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	result, err := h.formService.EvaluateVisibility(c.Request.Context(), id, userID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PreviewVisibility evaluates an unsaved definition, as the editor preview does
// @Summary Preview visibility
// @Tags visibility
// @Accept json
// @Produce json
// @Param request body services.PreviewVisibilityRequest true "Sections and answers"
// @Success 200 {object} services.VisibilityResponse
// @Failure 400 {object} ErrorResponse
// @Router /visibility/preview [post]
func (h *FormHandler) PreviewVisibility(c *gin.Context) {
	var req services.PreviewVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.formService.PreviewVisibility(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *FormHandler) parseFormFilters(c *gin.Context) repositories.FormFilters {
	return repositories.FormFilters{
		IsPublished: h.parseBoolQuery(c, "published"),
		Search:      c.Query("search"),
		Limit:       h.parseIntQuery(c, "limit", 0),
		Offset:      h.parseIntQuery(c, "offset", 0),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}
}

func exportDefinitionFilename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "form"
	}
	return name + ".json"
}
