package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
)

type DraftHandler struct {
	BaseHandler
	draftService services.DraftService
}

func NewDraftHandler(draftService services.DraftService, logger utils.Logger) *DraftHandler {
	return &DraftHandler{
		BaseHandler:  NewBaseHandler(logger),
		draftService: draftService,
	}
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// SaveDraft autosaves the editor state. Incomplete forms are accepted.
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	var req services.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Save(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.draftService.Discard(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
