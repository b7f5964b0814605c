package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/visibility"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *formService) createForm(ctx context.Context, form *models.Form) (*FormResponse, error) {
	if err := s.repo.Form().Create(ctx, s.db, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.logger.Info("Form created successfully", "form_id", form.ID, "questions", form.QuestionCount())

	response := buildFormResponse(form, true)
	response.Warnings = visibility.Lint(form)
	return response, nil
}

func (s *formService) getForm(ctx context.Context, id uint) (*models.Form, error) {
	return getFormByID(ctx, s.repo, s.db, id)
}

func getFormByID(ctx context.Context, repo repositories.Repository, db *gorm.DB, id uint) (*models.Form, error) {
	form, err := repo.Form().GetByID(ctx, db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return form, nil
}

func (s *formService) publishFormEvent(ctx context.Context, form *models.Form) {
	eventType := events.FormUnpublished
	if form.IsPublished {
		eventType = events.FormPublished
	}

	s.publishEvent(ctx, events.NewEvent(eventType, events.FormEventData{
		FormID:     form.ID,
		OwnerID:    form.OwnerID,
		Title:      form.Title,
		ShareToken: form.ShareToken,
	}))
}

func (s *formService) publishEvent(ctx context.Context, event *events.Event) {
	publishEvent(ctx, s.publisher, s.logger, event)
}

// publishEvent never fails the caller; the change is already committed
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

// getPublishedForm resolves a share token to a form that accepts respondents
func getPublishedForm(ctx context.Context, repo repositories.Repository, db *gorm.DB, token string) (*models.Form, error) {
	form, err := repo.Form().GetByShareToken(ctx, db, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if !form.IsPublished {
		return nil, ErrFormNotPublished
	}
	return form, nil
}

// checkFormOwnership allows the owner and admins
func checkFormOwnership(ctx context.Context, repo repositories.Repository, form *models.Form, userID, action string) error {
	if userID != "" && form.OwnerID == userID {
		return nil
	}
	if isAdmin(ctx, repo, userID) {
		return nil
	}
	return NewPermissionError(userID, form.ID, "form", action, "not owner or insufficient permissions")
}

func isAdmin(ctx context.Context, repo repositories.Repository, userID string) bool {
	if userID == "" {
		return false
	}
	user, err := repo.User().GetByID(ctx, userID)
	return err == nil && user.IsAdmin()
}

func buildFormResponse(form *models.Form, canEdit bool) *FormResponse {
	return &FormResponse{
		Form:          form,
		QuestionCount: form.QuestionCount(),
		CanEdit:       canEdit,
	}
}

func applyFormUpdates(form *models.Form, req *UpdateFormRequest) {
	if req.Title != nil {
		form.Title = *req.Title
	}
	if req.Description != nil {
		form.Description = *req.Description
	}
	if req.BackgroundColor != nil {
		form.BackgroundColor = *req.BackgroundColor
		if form.BackgroundColor == "" {
			form.BackgroundColor = models.DefaultBackgroundColor
		}
	}
	if req.BackgroundImage != nil {
		if *req.BackgroundImage == "" {
			form.BackgroundImage = nil
		} else {
			image := *req.BackgroundImage
			form.BackgroundImage = &image
		}
	}
	if req.Sections != nil {
		form.Sections = *req.Sections
	}
	if req.IsPublished != nil {
		form.IsPublished = *req.IsPublished
	}
}

// sanitizeSections drops questions that have no type and clears options on
// question types that do not use them. It never returns nil.
func sanitizeSections(sections []models.Section) []models.Section {
	cleaned := make([]models.Section, 0, len(sections))
	for _, section := range sections {
		questions := make([]models.Question, 0, len(section.Questions))
		for _, q := range section.Questions {
			q.Type = models.QuestionType(strings.TrimSpace(string(q.Type)))
			if q.Type == "" {
				continue
			}
			if !q.Type.HasOptions() {
				q.Options = nil
			}
			questions = append(questions, q)
		}
		section.Questions = questions
		cleaned = append(cleaned, section)
	}
	return cleaned
}

func normalizeFormFilters(filters *repositories.FormFilters) {
	if filters.Limit <= 0 {
		filters.Limit = defaultPageSize
	}
	if filters.Limit > maxPageSize {
		filters.Limit = maxPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	filters.Search = strings.TrimSpace(filters.Search)
}

// evaluateVisibility runs the engine and lists the visible and missing
// questions in form order
func evaluateVisibility(form *models.Form, answers models.AnswerMap) *VisibilityResponse {
	vis := visibility.Evaluate(form, answers)

	visible := make([]string, 0, len(vis))
	seen := make(map[string]bool, len(vis))
	for _, section := range form.Sections {
		for _, q := range visibility.Visible(section, vis) {
			if !seen[q.ID] {
				seen[q.ID] = true
				visible = append(visible, q.ID)
			}
		}
	}

	missing := visibility.MissingRequired(form, answers, vis)
	if missing == nil {
		missing = []string{}
	}

	return &VisibilityResponse{
		Visibility:       vis,
		VisibleQuestions: visible,
		MissingRequired:  missing,
	}
}
