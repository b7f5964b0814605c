package repositories

import (
	"context"

	"github.com/SAP-F-2025/form-service/internal/models"
	"gorm.io/gorm"
)

// FormRepository interface for form operations
type FormRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, form *models.Form) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error)
	GetByShareToken(ctx context.Context, tx *gorm.DB, token string) (*models.Form, error)
	Update(ctx context.Context, tx *gorm.DB, form *models.Form) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Publish gate
	UpdatePublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error

	// List operations
	List(ctx context.Context, tx *gorm.DB, filters FormFilters) ([]*models.Form, int64, error)
}

// SubmissionRepository interface for form submission operations
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	DeleteByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error)

	ListByForm(ctx context.Context, tx *gorm.DB, formID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	CountByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error)
	GetSummary(ctx context.Context, tx *gorm.DB, formID uint) (*SubmissionSummary, error)
}

// DraftRepository stores one autosaved editor draft per owner.
type DraftRepository interface {
	Save(ctx context.Context, draft *models.FormDraft) error
	Get(ctx context.Context, ownerID string) (*models.FormDraft, error)
	Delete(ctx context.Context, ownerID string) error
}
