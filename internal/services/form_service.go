package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/SAP-F-2025/form-service/internal/visibility"
	"gorm.io/gorm"
)

type formService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewFormService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) FormService {
	return &formService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *formService) Create(ctx context.Context, req *CreateFormRequest, ownerID string) (*FormResponse, error) {
	s.logger.Info("Creating form", "owner_id", ownerID, "title", req.Title)

	// Questions saved without a type are dropped before validation
	req.Sections = sanitizeSections(req.Sections)

	if errors := s.validator.GetBusinessValidator().ValidateFormCreate(req); len(errors) > 0 {
		return nil, errors
	}

	form := &models.Form{
		OwnerID:         ownerID,
		Title:           req.Title,
		Description:     req.Description,
		BackgroundColor: req.BackgroundColor,
		BackgroundImage: req.BackgroundImage,
		Sections:        req.Sections,
	}

	return s.createForm(ctx, form)
}

func (s *formService) GetByID(ctx context.Context, id uint, userID string) (*FormResponse, error) {
	form, err := s.getForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkFormOwnership(ctx, s.repo, form, userID, "read"); err != nil {
		return nil, err
	}

	count, err := s.repo.Submission().CountByForm(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	response := buildFormResponse(form, true)
	response.SubmissionCount = &count
	response.Warnings = visibility.Lint(form)
	return response, nil
}

func (s *formService) List(ctx context.Context, ownerID string, filters repositories.FormFilters) (*FormListResponse, error) {
	filters.OwnerID = &ownerID
	normalizeFormFilters(&filters)

	forms, total, err := s.repo.Form().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	responses := make([]*FormResponse, 0, len(forms))
	for _, form := range forms {
		responses = append(responses, buildFormResponse(form, true))
	}

	return &FormListResponse{
		Forms:  responses,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// ListAll lists every form regardless of owner. Callers must be admins.
func (s *formService) ListAll(ctx context.Context, filters repositories.FormFilters) (*FormListResponse, error) {
	normalizeFormFilters(&filters)

	forms, total, err := s.repo.Form().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	ownerIDs := make([]string, 0, len(forms))
	for _, form := range forms {
		ownerIDs = append(ownerIDs, form.OwnerID)
	}

	owners := make(map[string]*models.User)
	users, err := s.repo.User().GetByIDs(ctx, ownerIDs)
	if err != nil {
		s.logger.Warn("Failed to resolve form owners", "error", err)
	}
	for _, user := range users {
		owners[user.ID] = user
	}

	responses := make([]*FormResponse, 0, len(forms))
	for _, form := range forms {
		response := buildFormResponse(form, true)
		response.Owner = owners[form.OwnerID]
		responses = append(responses, response)
	}

	return &FormListResponse{
		Forms:  responses,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *formService) Update(ctx context.Context, id uint, req *UpdateFormRequest, userID string) (*FormResponse, error) {
	s.logger.Info("Updating form", "form_id", id, "user_id", userID)

	form, err := s.getForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkFormOwnership(ctx, s.repo, form, userID, "update"); err != nil {
		return nil, err
	}

	if req.Sections != nil {
		sections := sanitizeSections(*req.Sections)
		req.Sections = &sections
	}

	if errors := s.validator.GetBusinessValidator().ValidateFormUpdate(req); len(errors) > 0 {
		return nil, errors
	}

	wasPublished := form.IsPublished
	applyFormUpdates(form, req)

	if err := s.repo.Form().Update(ctx, s.db, form); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	if form.IsPublished != wasPublished {
		s.publishFormEvent(ctx, form)
	}

	s.logger.Info("Form updated successfully", "form_id", id)

	response := buildFormResponse(form, true)
	response.Warnings = visibility.Lint(form)
	return response, nil
}

// Delete removes a form together with all of its submissions
func (s *formService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting form", "form_id", id, "user_id", userID)

	form, err := s.getForm(ctx, id)
	if err != nil {
		return err
	}

	if err := checkFormOwnership(ctx, s.repo, form, userID, "delete"); err != nil {
		return err
	}

	var deleted int64
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		deleted, err = txRepo.Submission().DeleteByForm(ctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}

		if err := txRepo.Form().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete form: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.FormDeleted, events.FormEventData{
		FormID:             form.ID,
		OwnerID:            form.OwnerID,
		Title:              form.Title,
		DeletedSubmissions: deleted,
	}))

	s.logger.Info("Form deleted successfully", "form_id", id, "deleted_submissions", deleted)
	return nil
}

// ===== PUBLISH GATE =====

func (s *formService) Publish(ctx context.Context, id uint, userID string) (*FormResponse, error) {
	return s.setPublished(ctx, id, userID, true)
}

func (s *formService) Unpublish(ctx context.Context, id uint, userID string) (*FormResponse, error) {
	return s.setPublished(ctx, id, userID, false)
}

func (s *formService) setPublished(ctx context.Context, id uint, userID string, published bool) (*FormResponse, error) {
	form, err := s.getForm(ctx, id)
	if err != nil {
		return nil, err
	}

	action := "unpublish"
	if published {
		action = "publish"
	}
	if err := checkFormOwnership(ctx, s.repo, form, userID, action); err != nil {
		return nil, err
	}

	if form.IsPublished == published {
		return buildFormResponse(form, true), nil
	}

	if err := s.repo.Form().UpdatePublished(ctx, s.db, id, published); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to %s form: %w", action, err)
	}
	form.IsPublished = published

	s.publishFormEvent(ctx, form)
	s.logger.Info("Form publish state changed", "form_id", id, "is_published", published)

	return buildFormResponse(form, true), nil
}

// ===== DEFINITION DOWNLOAD/UPLOAD =====

func (s *formService) ExportDefinition(ctx context.Context, id uint, userID string) (*FormDefinition, error) {
	form, err := s.getForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkFormOwnership(ctx, s.repo, form, userID, "export"); err != nil {
		return nil, err
	}

	return &FormDefinition{
		Title:           form.Title,
		Description:     form.Description,
		BackgroundColor: form.BackgroundColor,
		BackgroundImage: form.BackgroundImage,
		Sections:        sanitizeSections(form.Sections),
	}, nil
}

func (s *formService) ImportDefinition(ctx context.Context, def *FormDefinition, ownerID string) (*FormResponse, error) {
	s.logger.Info("Importing form definition", "owner_id", ownerID, "title", def.Title)

	def.Sections = sanitizeSections(def.Sections)

	if errors := s.validator.GetBusinessValidator().ValidateFormDefinition(def); len(errors) > 0 {
		return nil, errors
	}

	form := &models.Form{
		OwnerID:         ownerID,
		Title:           def.Title,
		Description:     def.Description,
		BackgroundColor: def.BackgroundColor,
		BackgroundImage: def.BackgroundImage,
		Sections:        def.Sections,
	}

	return s.createForm(ctx, form)
}

// ===== PUBLIC ACCESS =====

func (s *formService) GetPublic(ctx context.Context, token string) (*PublicFormResponse, error) {
	form, err := getPublishedForm(ctx, s.repo, s.db, token)
	if err != nil {
		return nil, err
	}

	return &PublicFormResponse{
		ID:              form.ID,
		Title:           form.Title,
		Description:     form.Description,
		BackgroundColor: form.BackgroundColor,
		BackgroundImage: form.BackgroundImage,
		ShareToken:      form.ShareToken,
		Sections:        form.Sections,
		Visibility:      visibility.Initial(form),
	}, nil
}

// ===== VISIBILITY =====

func (s *formService) EvaluateVisibility(ctx context.Context, id uint, userID string, answers models.AnswerMap) (*VisibilityResponse, error) {
	form, err := s.getForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkFormOwnership(ctx, s.repo, form, userID, "preview"); err != nil {
		return nil, err
	}

	return evaluateVisibility(form, answers), nil
}

func (s *formService) EvaluatePublicVisibility(ctx context.Context, token string, answers models.AnswerMap) (*VisibilityResponse, error) {
	form, err := getPublishedForm(ctx, s.repo, s.db, token)
	if err != nil {
		return nil, err
	}

	return evaluateVisibility(form, answers), nil
}

// PreviewVisibility evaluates a definition that has not been saved yet
func (s *formService) PreviewVisibility(ctx context.Context, req *PreviewVisibilityRequest) (*VisibilityResponse, error) {
	req.Sections = sanitizeSections(req.Sections)

	bv := s.validator.GetBusinessValidator()
	errors := bv.Validate(req)
	errors = append(errors, bv.ValidateSections(req.Sections)...)
	if len(errors) > 0 {
		return nil, errors
	}

	return evaluateVisibility(&models.Form{Sections: req.Sections}, req.Answers), nil
}
