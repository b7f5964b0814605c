package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/form-service/internal/config"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/services"
	"github.com/SAP-F-2025/form-service/internal/utils"
)

type HandlerManager struct {
	formHandler       *FormHandler
	submissionHandler *SubmissionHandler
	publicHandler     *PublicHandler
	draftHandler      *DraftHandler
	dashboardHandler  *DashboardHandler
	authMiddleware    *CasdoorAuthMiddleware
	publicLimiter     *RateLimiter
	serviceManager    services.ServiceManager
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	cfg *config.Config,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		formHandler:       NewFormHandler(serviceManager.Form(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), serviceManager.ImportExport(), logger),
		publicHandler:     NewPublicHandler(serviceManager.Form(), serviceManager.Submission(), logger),
		draftHandler:      NewDraftHandler(serviceManager.Draft(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:    NewCasdoorAuthMiddleware(cfg.Casdoor, userRepo),
		publicLimiter:     NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		serviceManager:    serviceManager,
		logger:            logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Share-link routes for respondents, no authentication
	public := router.Group("/api/v1/public")
	public.Use(RateLimitMiddleware(hm.publicLimiter))
	{
		public.GET("/forms/:token", hm.publicHandler.GetPublicForm)
		public.POST("/forms/:token/visibility", hm.publicHandler.EvaluateVisibility)
		public.POST("/forms/:token/submit", hm.publicHandler.SubmitForm)
	}

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		forms := v1.Group("/forms")
		{
			forms.POST("", hm.formHandler.CreateForm)
			forms.GET("", hm.formHandler.ListForms)
			forms.POST("/import", hm.formHandler.ImportForm)
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.PUT("/:id", hm.formHandler.UpdateForm)
			forms.DELETE("/:id", hm.formHandler.DeleteForm)

			// Publish gate
			forms.POST("/:id/publish", hm.formHandler.PublishForm)
			forms.POST("/:id/unpublish", hm.formHandler.UnpublishForm)

			forms.GET("/:id/export", hm.formHandler.ExportForm)
			forms.POST("/:id/visibility", hm.formHandler.EvaluateVisibility)

			// Submissions
			forms.POST("/:id/submit", hm.submissionHandler.SubmitForm)
			forms.GET("/:id/submissions", hm.submissionHandler.ListSubmissions)
			forms.GET("/:id/submissions/stats", hm.submissionHandler.GetSubmissionStats)
			forms.GET("/:id/submissions/export", hm.submissionHandler.ExportSubmissions)
			forms.GET("/:id/submissions/:submission_id", hm.submissionHandler.GetSubmission)
			forms.DELETE("/:id/submissions/:submission_id", hm.submissionHandler.DeleteSubmission)
		}

		v1.POST("/visibility/preview", hm.formHandler.PreviewVisibility)

		drafts := v1.Group("/drafts")
		{
			drafts.GET("/me", hm.draftHandler.GetDraft)
			drafts.PUT("/me", hm.draftHandler.SaveDraft)
			drafts.DELETE("/me", hm.draftHandler.DiscardDraft)
		}

		v1.GET("/dashboard", hm.dashboardHandler.GetDashboard)

		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/forms", hm.formHandler.ListAllForms)
		}
	}

	router.GET("/health", hm.healthCheck)
}

// healthCheck pings the database and, when configured, Redis
func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "form-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "form-service",
	})
}
