package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository interface for owner dashboard aggregates
type DashboardRepository interface {
	// Totals
	CountForms(ctx context.Context, tx *gorm.DB, ownerID string, publishedOnly bool) (int64, error)
	CountSubmissions(ctx context.Context, tx *gorm.DB, ownerID string, since *time.Time) (int64, error)

	// Daily submission counts for the last days, oldest first
	GetSubmissionTrend(ctx context.Context, tx *gorm.DB, ownerID string, days int) ([]SubmissionTrendData, error)

	// Latest submissions across the owner's forms
	GetRecentSubmissions(ctx context.Context, tx *gorm.DB, ownerID string, limit int) ([]RecentSubmissionData, error)
}

// Data structures for dashboard responses

type SubmissionTrendData struct {
	Period      string    `json:"period"`
	Submissions int64     `json:"submissions"`
	Guests      int64     `json:"guests"`
	Date        time.Time `json:"date"`
}

type RecentSubmissionData struct {
	ID          uint      `json:"id"`
	FormID      uint      `json:"form_id"`
	FormTitle   string    `json:"form_title"`
	SubmittedBy string    `json:"submitted_by"`
	IsGuest     bool      `json:"is_guest"`
	CreatedAt   time.Time `json:"created_at"`
}
