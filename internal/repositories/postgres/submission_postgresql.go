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

type SubmissionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	afterCommit  commitHook
}

func newSubmissionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, afterCommit commitHook) *SubmissionPostgreSQL {
	return &SubmissionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		afterCommit:  afterCommit,
	}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	if err := s.getDB(tx).WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	s.invalidateStats(ctx, submission.FormID)
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.getDB(tx).WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	submission, err := s.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := s.getDB(tx).WithContext(ctx).Delete(&models.Submission{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	s.invalidateStats(ctx, submission.FormID)
	return nil
}

// DeleteByForm removes every submission of a form and returns how many were deleted
func (s *SubmissionPostgreSQL) DeleteByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error) {
	result := s.getDB(tx).WithContext(ctx).
		Where("form_id = ?", formID).
		Delete(&models.Submission{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete form submissions: %w", result.Error)
	}

	s.invalidateStats(ctx, formID)
	return result.RowsAffected, nil
}

// ListByForm lists submissions of a form, newest first unless asked otherwise
func (s *SubmissionPostgreSQL) ListByForm(ctx context.Context, tx *gorm.DB, formID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	query := s.getDB(tx).WithContext(ctx).
		Model(&models.Submission{}).
		Where("form_id = ?", formID)
	query = s.helpers.ApplySubmissionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	query = s.helpers.ApplyPaginationAndSort(query, "created_at", filters.SortOrder, filters.Limit, filters.Offset)

	var submissions []*models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) CountByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error) {
	count, err := s.helpers.CountSubmissions(ctx, s.getDB(tx), formID)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// GetSummary returns submission totals for a form with caching
func (s *SubmissionPostgreSQL) GetSummary(ctx context.Context, tx *gorm.DB, formID uint) (*repositories.SubmissionSummary, error) {
	cacheKey := fmt.Sprintf("form:%d:summary", formID)
	var summary repositories.SubmissionSummary

	err := s.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &summary, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row struct {
			Total int64
			Guest int64
			First *time.Time
			Last  *time.Time
		}
		if err := summaryQuery(s.getDB(tx).WithContext(ctx), formID).Scan(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to get submission summary: %w", err)
		}

		return &repositories.SubmissionSummary{
			FormID:           formID,
			TotalSubmissions: row.Total,
			GuestSubmissions: row.Guest,
			FirstSubmittedAt: row.First,
			LastSubmittedAt:  row.Last,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func (s *SubmissionPostgreSQL) invalidateStats(ctx context.Context, formID uint) {
	s.afterCommit.invalidate(func() {
		cache.InvalidateSubmissionStats(ctx, s.cacheManager, formID)
	})
}

// summaryQuery aggregates the totals of one form in a single row
func summaryQuery(db *gorm.DB, formID uint) *gorm.DB {
	return db.Model(&models.Submission{}).
		Select("COUNT(*) as total, "+
			"COUNT(*) FILTER (WHERE is_guest) as guest, "+
			"MIN(created_at) as first, MAX(created_at) as last").
		Where("form_id = ?", formID)
}
