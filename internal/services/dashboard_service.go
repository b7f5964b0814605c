package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	dashboardTrendDays   = 7
	dashboardRecentLimit = 10
)

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *dashboardService) GetOwnerDashboard(ctx context.Context, ownerID string) (*DashboardResponse, error) {
	dashboard := s.repo.Dashboard()

	totalForms, err := dashboard.CountForms(ctx, s.db, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to count forms: %w", err)
	}

	publishedForms, err := dashboard.CountForms(ctx, s.db, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count published forms: %w", err)
	}

	totalSubmissions, err := dashboard.CountSubmissions(ctx, s.db, ownerID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	submissionsToday, err := dashboard.CountSubmissions(ctx, s.db, ownerID, &startOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's submissions: %w", err)
	}

	trend, err := dashboard.GetSubmissionTrend(ctx, s.db, ownerID, dashboardTrendDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission trend: %w", err)
	}

	recent, err := dashboard.GetRecentSubmissions(ctx, s.db, ownerID, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent submissions: %w", err)
	}
	if recent == nil {
		recent = []repositories.RecentSubmissionData{}
	}

	s.logger.Debug("Dashboard generated", "owner_id", ownerID, "forms", totalForms, "submissions", totalSubmissions)

	return &DashboardResponse{
		TotalForms:        totalForms,
		PublishedForms:    publishedForms,
		TotalSubmissions:  totalSubmissions,
		SubmissionsToday:  submissionsToday,
		SubmissionTrend:   trend,
		RecentSubmissions: recent,
		GeneratedAt:       now,
	}, nil
}
