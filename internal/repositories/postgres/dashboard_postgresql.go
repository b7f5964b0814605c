package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) CountForms(ctx context.Context, tx *gorm.DB, ownerID string, publishedOnly bool) (int64, error) {
	db := r.getDB(tx)
	var count int64

	query := db.WithContext(ctx).
		Model(&models.Form{}).
		Where("owner_id = ?", ownerID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count forms: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) CountSubmissions(ctx context.Context, tx *gorm.DB, ownerID string, since *time.Time) (int64, error) {
	db := r.getDB(tx)
	var count int64

	query := ownerSubmissions(db.WithContext(ctx), ownerID)
	if since != nil {
		query = query.Where("form_submissions.created_at >= ?", *since)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	return count, nil
}

// ===== TRENDS =====

func (r *dashboardRepository) GetSubmissionTrend(ctx context.Context, tx *gorm.DB, ownerID string, days int) ([]repositories.SubmissionTrendData, error) {
	db := r.getDB(tx)
	if days <= 0 {
		days = 7
	}

	results := make([]repositories.SubmissionTrendData, 0, days)
	now := time.Now()

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		var submissions int64
		if err := ownerSubmissions(db.WithContext(ctx), ownerID).
			Where("form_submissions.created_at >= ? AND form_submissions.created_at < ?", startOfDay, endOfDay).
			Count(&submissions).Error; err != nil {
			return nil, fmt.Errorf("failed to count daily submissions: %w", err)
		}

		var guests int64
		if err := ownerSubmissions(db.WithContext(ctx), ownerID).
			Where("form_submissions.created_at >= ? AND form_submissions.created_at < ?", startOfDay, endOfDay).
			Where("form_submissions.is_guest = ?", true).
			Count(&guests).Error; err != nil {
			return nil, fmt.Errorf("failed to count daily guest submissions: %w", err)
		}

		results = append(results, repositories.SubmissionTrendData{
			Period:      startOfDay.Format("Mon"),
			Submissions: submissions,
			Guests:      guests,
			Date:        startOfDay,
		})
	}

	return results, nil
}

// ===== RECENT SUBMISSIONS =====

func (r *dashboardRepository) GetRecentSubmissions(ctx context.Context, tx *gorm.DB, ownerID string, limit int) ([]repositories.RecentSubmissionData, error) {
	db := r.getDB(tx)
	if limit <= 0 {
		limit = 10
	}

	var recent []repositories.RecentSubmissionData
	if err := ownerSubmissions(db.WithContext(ctx), ownerID).
		Select("form_submissions.id, form_submissions.form_id, forms.title as form_title, " +
			"form_submissions.submitted_by, form_submissions.is_guest, form_submissions.created_at").
		Order("form_submissions.created_at DESC").
		Limit(limit).
		Scan(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent submissions: %w", err)
	}

	return recent, nil
}

// ownerSubmissions scopes form_submissions to forms owned by ownerID
func ownerSubmissions(db *gorm.DB, ownerID string) *gorm.DB {
	return db.Table("form_submissions").
		Joins("JOIN forms ON forms.id = form_submissions.form_id").
		Where("forms.owner_id = ?", ownerID)
}
