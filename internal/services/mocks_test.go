package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
)

// MockRepository is an in-memory Repository for service tests
type MockRepository struct {
	forms       *mockFormRepository
	submissions *mockSubmissionRepository
	users       *mockUserRepository
	dashboard   *mockDashboardRepository
	draft       repositories.DraftRepository
	txCalls     int
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		forms:       &mockFormRepository{forms: make(map[uint]*models.Form)},
		submissions: &mockSubmissionRepository{submissions: make(map[uint]*models.Submission)},
		users:       &mockUserRepository{users: make(map[string]*models.User)},
		dashboard:   &mockDashboardRepository{},
	}
}

func (m *MockRepository) Form() repositories.FormRepository             { return m.forms }
func (m *MockRepository) Submission() repositories.SubmissionRepository { return m.submissions }
func (m *MockRepository) Dashboard() repositories.DashboardRepository   { return m.dashboard }
func (m *MockRepository) Draft() repositories.DraftRepository           { return m.draft }
func (m *MockRepository) User() repositories.UserRepository             { return m.users }
func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	m.txCalls++
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// ===== FORMS =====

type mockFormRepository struct {
	mu     sync.Mutex
	forms  map[uint]*models.Form
	nextID uint
}

func (r *mockFormRepository) Create(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	form.ID = r.nextID
	if form.ShareToken == "" {
		form.ShareToken = fmt.Sprintf("token-%d", form.ID)
	}
	if form.BackgroundColor == "" {
		form.BackgroundColor = models.DefaultBackgroundColor
	}
	form.CreatedAt = time.Now()
	form.UpdatedAt = form.CreatedAt

	stored := *form
	r.forms[form.ID] = &stored
	return nil
}

func (r *mockFormRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("failed to get form: %w", gorm.ErrRecordNotFound)
	}
	copied := *form
	return &copied, nil
}

func (r *mockFormRepository) GetByShareToken(ctx context.Context, tx *gorm.DB, token string) (*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, form := range r.forms {
		if form.ShareToken == token {
			copied := *form
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("failed to get form by share token: %w", gorm.ErrRecordNotFound)
}

func (r *mockFormRepository) Update(ctx context.Context, tx *gorm.DB, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forms[form.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *form
	r.forms[form.ID] = &stored
	return nil
}

func (r *mockFormRepository) UpdatePublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.forms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	form.IsPublished = published
	return nil
}

func (r *mockFormRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.forms, id)
	return nil
}

func (r *mockFormRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Form
	for _, form := range r.forms {
		if filters.OwnerID != nil && form.OwnerID != *filters.OwnerID {
			continue
		}
		if filters.IsPublished != nil && form.IsPublished != *filters.IsPublished {
			continue
		}
		copied := *form
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if filters.Offset < len(matched) {
		matched = matched[filters.Offset:]
	} else {
		matched = nil
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

// ===== SUBMISSIONS =====

type mockSubmissionRepository struct {
	mu          sync.Mutex
	submissions map[uint]*models.Submission
	nextID      uint
}

var submissionEpoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func (r *mockSubmissionRepository) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	submission.ID = r.nextID
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = submissionEpoch.Add(time.Duration(submission.ID) * time.Minute)
	}
	stored := *submission
	r.submissions[submission.ID] = &stored
	return nil
}

func (r *mockSubmissionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	submission, ok := r.submissions[id]
	if !ok {
		return nil, fmt.Errorf("failed to get submission: %w", gorm.ErrRecordNotFound)
	}
	copied := *submission
	return &copied, nil
}

func (r *mockSubmissionRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.submissions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.submissions, id)
	return nil
}

func (r *mockSubmissionRepository) DeleteByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, submission := range r.submissions {
		if submission.FormID == formID {
			delete(r.submissions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *mockSubmissionRepository) ListByForm(ctx context.Context, tx *gorm.DB, formID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Submission
	for _, submission := range r.submissions {
		if submission.FormID != formID {
			continue
		}
		if filters.IsGuest != nil && submission.IsGuest != *filters.IsGuest {
			continue
		}
		copied := *submission
		matched = append(matched, &copied)
	}

	asc := filters.SortOrder == "asc" || filters.SortOrder == "ASC"
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filters.Offset < len(matched) {
		matched = matched[filters.Offset:]
	} else {
		matched = nil
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (r *mockSubmissionRepository) CountByForm(ctx context.Context, tx *gorm.DB, formID uint) (int64, error) {
	_, total, err := r.ListByForm(ctx, tx, formID, repositories.SubmissionFilters{})
	return total, err
}

func (r *mockSubmissionRepository) GetSummary(ctx context.Context, tx *gorm.DB, formID uint) (*repositories.SubmissionSummary, error) {
	submissions, total, _ := r.ListByForm(ctx, tx, formID, repositories.SubmissionFilters{SortOrder: "asc"})

	summary := &repositories.SubmissionSummary{FormID: formID, TotalSubmissions: total}
	for _, submission := range submissions {
		if submission.IsGuest {
			summary.GuestSubmissions++
		}
	}
	if len(submissions) > 0 {
		first := submissions[0].CreatedAt
		last := submissions[len(submissions)-1].CreatedAt
		summary.FirstSubmittedAt = &first
		summary.LastSubmittedAt = &last
	}
	return summary, nil
}

// ===== USERS =====

type mockUserRepository struct {
	users map[string]*models.User
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return user, nil
}

func (r *mockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var users []*models.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// ===== DASHBOARD =====

type mockDashboardRepository struct {
	forms       int64
	published   int64
	submissions int64
	today       int64
	trend       []repositories.SubmissionTrendData
	recent      []repositories.RecentSubmissionData
	err         error
}

func (r *mockDashboardRepository) CountForms(ctx context.Context, tx *gorm.DB, ownerID string, publishedOnly bool) (int64, error) {
	if publishedOnly {
		return r.published, r.err
	}
	return r.forms, r.err
}

func (r *mockDashboardRepository) CountSubmissions(ctx context.Context, tx *gorm.DB, ownerID string, since *time.Time) (int64, error) {
	if since != nil {
		return r.today, r.err
	}
	return r.submissions, r.err
}

func (r *mockDashboardRepository) GetSubmissionTrend(ctx context.Context, tx *gorm.DB, ownerID string, days int) ([]repositories.SubmissionTrendData, error) {
	return r.trend, r.err
}

func (r *mockDashboardRepository) GetRecentSubmissions(ctx context.Context, tx *gorm.DB, ownerID string, limit int) ([]repositories.RecentSubmissionData, error) {
	return r.recent, r.err
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type testEnv struct {
	repo      *MockRepository
	publisher *events.MockEventPublisher
	forms     FormService
	subs      SubmissionService
	exports   ImportExportService
}

func newTestEnv() *testEnv {
	logger := testLogger()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()

	return &testEnv{
		repo:      repo,
		publisher: publisher,
		forms:     NewFormService(repo, nil, logger, v, publisher),
		subs:      NewSubmissionService(repo, nil, logger, v, publisher),
		exports:   NewImportExportService(repo, nil, logger, v),
	}
}

// surveySections is the yes/no follow-up form: Q2 starts hidden and is shown
// when Q1 is answered "Yes".
func surveySections() []models.Section {
	return []models.Section{{
		Title: "Feedback",
		Questions: []models.Question{
			{
				ID: "Q1", Prompt: "Did you enjoy the event?", Type: models.QuestionRadio,
				Options: []string{"Yes", "No"}, Required: true,
				Conditions: []models.Condition{
					{TriggerQuestionID: "Q1", TriggerValue: "Yes", Action: models.ActionShow, TargetQuestionID: "Q2"},
				},
			},
			{ID: "Q2", Prompt: "What did you like most?", Type: models.QuestionText, Required: true, Hidden: true},
			{ID: "Q3", Prompt: "Topics", Type: models.QuestionCheckbox, Options: []string{"Go", "Rust", "Zig"}},
		},
	}}
}

// seedForm stores a survey form owned by ownerID
func (e *testEnv) seedForm(ownerID string, published bool) *models.Form {
	form := &models.Form{
		OwnerID:     ownerID,
		Title:       "Event feedback",
		Sections:    surveySections(),
		IsPublished: published,
	}
	_ = e.repo.forms.Create(context.Background(), nil, form)
	return form
}
