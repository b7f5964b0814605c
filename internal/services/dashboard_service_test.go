package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/form-service/internal/repositories"
)

func TestDashboardService_GetOwnerDashboard(t *testing.T) {
	repo := newMockRepository()
	repo.dashboard.forms = 5
	repo.dashboard.published = 3
	repo.dashboard.submissions = 42
	repo.dashboard.today = 4
	repo.dashboard.trend = []repositories.SubmissionTrendData{
		{Period: "Mon", Submissions: 4, Guests: 1, Date: time.Now()},
	}

	dashboard, err := NewDashboardService(repo, nil, testLogger()).GetOwnerDashboard(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("GetOwnerDashboard: %v", err)
	}

	if dashboard.TotalForms != 5 || dashboard.PublishedForms != 3 {
		t.Errorf("forms = %d/%d", dashboard.TotalForms, dashboard.PublishedForms)
	}
	if dashboard.TotalSubmissions != 42 || dashboard.SubmissionsToday != 4 {
		t.Errorf("submissions = %d/%d", dashboard.TotalSubmissions, dashboard.SubmissionsToday)
	}
	if len(dashboard.SubmissionTrend) != 1 {
		t.Errorf("trend = %+v", dashboard.SubmissionTrend)
	}
	if dashboard.RecentSubmissions == nil {
		t.Errorf("RecentSubmissions should be an empty slice, not nil")
	}
	if dashboard.GeneratedAt.IsZero() {
		t.Errorf("GeneratedAt not set")
	}
}

func TestDashboardService_RepositoryError(t *testing.T) {
	repo := newMockRepository()
	boom := errors.New("connection reset")
	repo.dashboard.err = boom

	_, err := NewDashboardService(repo, nil, testLogger()).GetOwnerDashboard(context.Background(), "owner-1")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
