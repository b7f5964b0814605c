package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/SAP-F-2025/form-service/internal/visibility"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateFormRequest = validator.FormCreateRequest
type UpdateFormRequest = validator.FormUpdateRequest
type FormDefinition = validator.FormDefinition
type SubmitFormRequest = validator.SubmitFormRequest
type PublicSubmitRequest = validator.PublicSubmitRequest
type EvaluateVisibilityRequest = validator.EvaluateVisibilityRequest
type PreviewVisibilityRequest = validator.PreviewVisibilityRequest
type SaveDraftRequest = validator.DraftSaveRequest

type FormResponse struct {
	*models.Form
	QuestionCount   int                `json:"question_count"`
	SubmissionCount *int64             `json:"submission_count,omitempty"`
	Owner           *models.User       `json:"owner,omitempty"`
	CanEdit         bool               `json:"can_edit"`
	Warnings        []visibility.Issue `json:"warnings,omitempty"`
}

type FormListResponse struct {
	Forms  []*FormResponse `json:"forms"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// PublicFormResponse is what respondents see through a share link. It omits
// the owner and the publish state.
type PublicFormResponse struct {
	ID              uint                 `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	BackgroundColor string               `json:"background_color"`
	BackgroundImage *string              `json:"background_image,omitempty"`
	ShareToken      string               `json:"share_token"`
	Sections        []models.Section     `json:"sections"`
	Visibility      models.VisibilityMap `json:"visibility"`
}

type VisibilityResponse struct {
	Visibility models.VisibilityMap `json:"visibility"`
	// Visible question ids in display order
	VisibleQuestions []string `json:"visible_questions"`
	MissingRequired  []string `json:"missing_required"`
}

type SubmissionListResponse struct {
	Submissions []*models.Submission `json:"submissions"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// QuestionStats summarises the answers given to one question
type QuestionStats struct {
	QuestionID string              `json:"question_id"`
	Prompt     string              `json:"question"`
	Type       models.QuestionType `json:"type"`
	Answered   int                 `json:"answered"`
	// Option counts for radio, select and checkbox questions
	Distribution map[string]int `json:"distribution,omitempty"`
}

type SubmissionStats struct {
	*repositories.SubmissionSummary
	Questions []QuestionStats `json:"questions"`
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type DashboardResponse struct {
	TotalForms        int64                               `json:"total_forms"`
	PublishedForms    int64                               `json:"published_forms"`
	TotalSubmissions  int64                               `json:"total_submissions"`
	SubmissionsToday  int64                               `json:"submissions_today"`
	SubmissionTrend   []repositories.SubmissionTrendData  `json:"submission_trend"`
	RecentSubmissions []repositories.RecentSubmissionData `json:"recent_submissions"`
	GeneratedAt       time.Time                           `json:"generated_at"`
}

// ===== SERVICE INTERFACES =====

type FormService interface {
	// Owner CRUD
	Create(ctx context.Context, req *CreateFormRequest, ownerID string) (*FormResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*FormResponse, error)
	List(ctx context.Context, ownerID string, filters repositories.FormFilters) (*FormListResponse, error)
	ListAll(ctx context.Context, filters repositories.FormFilters) (*FormListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateFormRequest, userID string) (*FormResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// Publish gate
	Publish(ctx context.Context, id uint, userID string) (*FormResponse, error)
	Unpublish(ctx context.Context, id uint, userID string) (*FormResponse, error)

	// Definition download/upload
	ExportDefinition(ctx context.Context, id uint, userID string) (*FormDefinition, error)
	ImportDefinition(ctx context.Context, def *FormDefinition, ownerID string) (*FormResponse, error)

	// Public access
	GetPublic(ctx context.Context, token string) (*PublicFormResponse, error)

	// Visibility evaluation
	EvaluateVisibility(ctx context.Context, id uint, userID string, answers models.AnswerMap) (*VisibilityResponse, error)
	EvaluatePublicVisibility(ctx context.Context, token string, answers models.AnswerMap) (*VisibilityResponse, error)
	PreviewVisibility(ctx context.Context, req *PreviewVisibilityRequest) (*VisibilityResponse, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, formID uint, req *SubmitFormRequest, userID string, meta *models.SubmissionMetadata) (*models.Submission, error)
	SubmitPublic(ctx context.Context, token string, req *PublicSubmitRequest, meta *models.SubmissionMetadata) (*models.Submission, error)

	GetByID(ctx context.Context, formID, submissionID uint, userID string) (*models.Submission, error)
	ListByForm(ctx context.Context, formID uint, userID string, filters repositories.SubmissionFilters) (*SubmissionListResponse, error)
	Delete(ctx context.Context, formID, submissionID uint, userID string) error
	GetStats(ctx context.Context, formID uint, userID string) (*SubmissionStats, error)
}

type ImportExportService interface {
	ExportSubmissions(ctx context.Context, formID uint, userID string, format ExportFormat) (*ExportResult, error)
}

type DraftService interface {
	Save(ctx context.Context, ownerID string, req *SaveDraftRequest) (*models.FormDraft, error)
	Get(ctx context.Context, ownerID string) (*models.FormDraft, error)
	Discard(ctx context.Context, ownerID string) error
}

type DashboardService interface {
	GetOwnerDashboard(ctx context.Context, ownerID string) (*DashboardResponse, error)
}

type ServiceManager interface {
	// Core service getters
	Form() FormService
	Submission() SubmissionService
	ImportExport() ImportExportService
	Draft() DraftService
	Dashboard() DashboardService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
