package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

type FormPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	cacheTTL     time.Duration
	afterCommit  commitHook
}

// newFormPostgreSQL creates the form repository. A non-positive cacheTTL
// falls back to cache.FormCacheConfig.TTL.
func newFormPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, cacheTTL time.Duration, afterCommit commitHook) *FormPostgreSQL {
	if cacheTTL <= 0 {
		cacheTTL = cache.FormCacheConfig.TTL
	}
	return &FormPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		cacheTTL:     cacheTTL,
		afterCommit:  afterCommit,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (f *FormPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}

// Create stores a new form. BeforeCreate assigns the share token.
func (f *FormPostgreSQL) Create(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	if err := f.getDB(tx).WithContext(ctx).Create(form).Error; err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// GetByID retrieves a form by ID with caching
func (f *FormPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var form models.Form

	err := f.cacheManager.Form.CacheOrExecute(ctx, cacheKey, &form, f.cacheTTL, func() (interface{}, error) {
		var dbForm models.Form
		if err := f.getDB(tx).WithContext(ctx).First(&dbForm, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get form: %w", err)
		}
		return &dbForm, nil
	})
	if err != nil {
		return nil, err
	}

	return &form, nil
}

// GetByShareToken retrieves a form by its public share token with caching
func (f *FormPostgreSQL) GetByShareToken(ctx context.Context, tx *gorm.DB, token string) (*models.Form, error) {
	cacheKey := fmt.Sprintf("token:%s", token)
	var form models.Form

	err := f.cacheManager.Public.CacheOrExecute(ctx, cacheKey, &form, cache.PublicFormCacheConfig.TTL, func() (interface{}, error) {
		var dbForm models.Form
		if err := f.getDB(tx).WithContext(ctx).Where("share_token = ?", token).First(&dbForm).Error; err != nil {
			return nil, fmt.Errorf("failed to get form by share token: %w", err)
		}
		return &dbForm, nil
	})
	if err != nil {
		return nil, err
	}

	return &form, nil
}

// Update writes the editable columns of a form and invalidates cache
func (f *FormPostgreSQL) Update(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	result := f.getDB(tx).WithContext(ctx).
		Model(form).
		Select("title", "description", "background_color", "background_image", "sections", "is_published", "updated_at").
		Updates(form)
	if result.Error != nil {
		return fmt.Errorf("failed to update form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update form %d: %w", form.ID, gorm.ErrRecordNotFound)
	}

	f.invalidate(ctx, form.ID, form.ShareToken)
	return nil
}

// UpdatePublished flips the publish flag and invalidates cache
func (f *FormPostgreSQL) UpdatePublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	db := f.getDB(tx)
	shareToken, err := f.shareToken(ctx, db, id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).
		Model(&models.Form{}).
		Where("id = ?", id).
		Update("is_published", published).Error; err != nil {
		return fmt.Errorf("failed to update publish state: %w", err)
	}

	f.invalidate(ctx, id, shareToken)
	return nil
}

// Delete removes a form and invalidates cache
func (f *FormPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := f.getDB(tx)
	shareToken, err := f.shareToken(ctx, db, id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Delete(&models.Form{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}

	f.invalidate(ctx, id, shareToken)
	return nil
}

// List retrieves forms with filters, newest first by default
func (f *FormPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	query := f.helpers.ApplyFormFilters(f.getDB(tx).WithContext(ctx).Model(&models.Form{}), filters)

	// Count total
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	query = f.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var forms []*models.Form
	if err := query.Find(&forms).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}

	return forms, total, nil
}

func (f *FormPostgreSQL) invalidate(ctx context.Context, id uint, shareToken string) {
	f.afterCommit.invalidate(func() {
		cache.InvalidateFormCache(ctx, f.cacheManager, id, shareToken)
	})
}

func (f *FormPostgreSQL) shareToken(ctx context.Context, db *gorm.DB, id uint) (string, error) {
	var form models.Form
	if err := db.WithContext(ctx).Select("id", "share_token").First(&form, id).Error; err != nil {
		return "", fmt.Errorf("failed to get form: %w", err)
	}
	return form.ShareToken, nil
}
