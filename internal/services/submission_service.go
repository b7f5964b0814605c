package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/form-service/internal/events"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/validator"
	"github.com/SAP-F-2025/form-service/internal/visibility"
)

type submissionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) SubmissionService {
	return &submissionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== SUBMIT =====

// Submit records an authenticated user's answers to a published form
func (s *submissionService) Submit(ctx context.Context, formID uint, req *SubmitFormRequest, userID string, meta *models.SubmissionMetadata) (*models.Submission, error) {
	s.logger.Info("Submitting form", "form_id", formID, "user_id", userID)

	form, err := getFormByID(ctx, s.repo, s.db, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished {
		return nil, ErrFormNotPublished
	}

	bv := s.validator.GetBusinessValidator()
	errors := bv.Validate(req)
	errors = append(errors, s.checkAnswers(form, req.Responses)...)
	if len(errors) > 0 {
		return nil, errors
	}

	submission := &models.Submission{
		FormID:      form.ID,
		FormTitle:   form.Title,
		SubmittedBy: s.resolveSubmitter(ctx, req.SubmittedBy, userID),
	}

	return s.store(ctx, form, submission, req.Responses, meta)
}

// SubmitPublic records a guest's answers through a share link
func (s *submissionService) SubmitPublic(ctx context.Context, token string, req *PublicSubmitRequest, meta *models.SubmissionMetadata) (*models.Submission, error) {
	form, err := getPublishedForm(ctx, s.repo, s.db, token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submitting form as guest", "form_id", form.ID)

	req.SubmitterName = strings.TrimSpace(req.SubmitterName)
	req.SubmitterEmail = strings.TrimSpace(req.SubmitterEmail)
	req.SubmitterPhone = strings.TrimSpace(req.SubmitterPhone)

	bv := s.validator.GetBusinessValidator()
	errors := bv.Validate(req)
	errors = append(errors, s.checkAnswers(form, req.Responses)...)
	if len(errors) > 0 {
		return nil, errors
	}

	name := req.SubmitterName
	email := req.SubmitterEmail
	submission := &models.Submission{
		FormID:         form.ID,
		FormTitle:      form.Title,
		SubmittedBy:    name,
		SubmitterName:  &name,
		SubmitterEmail: &email,
		IsGuest:        true,
	}
	if req.SubmitterPhone != "" {
		phone := req.SubmitterPhone
		submission.SubmitterPhone = &phone
	}

	return s.store(ctx, form, submission, req.Responses, meta)
}

// checkAnswers evaluates visibility on the server so hidden questions are
// never required or format-checked
func (s *submissionService) checkAnswers(form *models.Form, answers models.AnswerMap) ValidationErrors {
	vis := visibility.Evaluate(form, answers)
	return s.validator.GetBusinessValidator().ValidateAnswers(form, answers, vis)
}

func (s *submissionService) resolveSubmitter(ctx context.Context, requested, userID string) string {
	if name := strings.TrimSpace(requested); name != "" {
		return name
	}
	if userID != "" {
		user, err := s.repo.User().GetByID(ctx, userID)
		if err != nil {
			s.logger.Warn("Failed to resolve submitter name", "user_id", userID, "error", err)
		} else if user.FullName != "" {
			return user.FullName
		}
	}
	return models.AnonymousSubmitter
}

func (s *submissionService) store(ctx context.Context, form *models.Form, submission *models.Submission, answers models.AnswerMap, meta *models.SubmissionMetadata) (*models.Submission, error) {
	if answers == nil {
		answers = models.AnswerMap{}
	}
	submission.Responses = datatypes.NewJSONType(answers)

	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode submission metadata: %w", err)
		}
		submission.Metadata = datatypes.JSON(raw)
	}

	if err := s.repo.Submission().Create(ctx, s.db, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.SubmissionCreated, events.SubmissionEventData{
		SubmissionID: submission.ID,
		FormID:       form.ID,
		FormOwnerID:  form.OwnerID,
		SubmittedBy:  submission.SubmittedBy,
		IsGuest:      submission.IsGuest,
		AnswerCount:  len(answers),
	}))

	s.logger.Info("Submission created successfully", "submission_id", submission.ID, "form_id", form.ID, "is_guest", submission.IsGuest)
	return submission, nil
}

// ===== OWNER ACCESS =====

func (s *submissionService) GetByID(ctx context.Context, formID, submissionID uint, userID string) (*models.Submission, error) {
	if _, err := s.getOwnedForm(ctx, formID, userID, "read_submission"); err != nil {
		return nil, err
	}
	return s.getSubmission(ctx, formID, submissionID)
}

func (s *submissionService) ListByForm(ctx context.Context, formID uint, userID string, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
	if _, err := s.getOwnedForm(ctx, formID, userID, "list_submissions"); err != nil {
		return nil, err
	}

	if filters.Limit <= 0 {
		filters.Limit = defaultPageSize
	}
	if filters.Limit > maxPageSize {
		filters.Limit = maxPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	submissions, total, err := s.repo.Submission().ListByForm(ctx, s.db, formID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return &SubmissionListResponse{
		Submissions: submissions,
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	}, nil
}

func (s *submissionService) Delete(ctx context.Context, formID, submissionID uint, userID string) error {
	if _, err := s.getOwnedForm(ctx, formID, userID, "delete_submission"); err != nil {
		return err
	}
	if _, err := s.getSubmission(ctx, formID, submissionID); err != nil {
		return err
	}

	if err := s.repo.Submission().Delete(ctx, s.db, submissionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	s.logger.Info("Submission deleted", "submission_id", submissionID, "form_id", formID, "user_id", userID)
	return nil
}

// GetStats combines the stored totals with per-question answer counts
func (s *submissionService) GetStats(ctx context.Context, formID uint, userID string) (*SubmissionStats, error) {
	form, err := s.getOwnedForm(ctx, formID, userID, "view_stats")
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.Submission().GetSummary(ctx, s.db, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission summary: %w", err)
	}

	submissions, _, err := s.repo.Submission().ListByForm(ctx, s.db, formID, repositories.SubmissionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	return &SubmissionStats{
		SubmissionSummary: summary,
		Questions:         buildQuestionStats(form, submissions),
	}, nil
}

func (s *submissionService) getOwnedForm(ctx context.Context, formID uint, userID, action string) (*models.Form, error) {
	form, err := getFormByID(ctx, s.repo, s.db, formID)
	if err != nil {
		return nil, err
	}
	if err := checkFormOwnership(ctx, s.repo, form, userID, action); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *submissionService) getSubmission(ctx context.Context, formID, submissionID uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, s.db, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	// Submissions are only reachable through their own form
	if submission.FormID != formID {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// buildQuestionStats counts non-blank answers per question and, for choice
// questions, how often each option was picked
func buildQuestionStats(form *models.Form, submissions []*models.Submission) []QuestionStats {
	stats := make([]QuestionStats, 0, form.QuestionCount())
	seen := make(map[string]bool)

	for _, q := range orderedQuestions(form) {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true

		entry := QuestionStats{QuestionID: q.ID, Prompt: q.Prompt, Type: q.Type}
		if q.Type.HasOptions() {
			entry.Distribution = make(map[string]int, len(q.Options))
			for _, option := range q.Options {
				entry.Distribution[option] = 0
			}
		}

		for _, submission := range submissions {
			value, ok := submission.Answers()[q.ID]
			if !ok || strings.TrimSpace(value) == "" {
				continue
			}
			entry.Answered++
			if entry.Distribution != nil {
				for _, choice := range splitChoices(q, value) {
					entry.Distribution[choice]++
				}
			}
		}

		stats = append(stats, entry)
	}

	return stats
}

// splitChoices returns the options a stored answer selects. Checkbox answers
// are comma-joined unless the whole value is itself an option.
func splitChoices(q models.Question, value string) []string {
	value = strings.TrimSpace(value)
	if q.Type != models.QuestionCheckbox {
		return []string{value}
	}
	for _, option := range q.Options {
		if option == value {
			return []string{value}
		}
	}

	var choices []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			choices = append(choices, part)
		}
	}
	return choices
}

// orderedQuestions flattens a form's questions in display order
func orderedQuestions(form *models.Form) []models.Question {
	questions := make([]models.Question, 0, form.QuestionCount())
	for _, section := range form.Sections {
		questions = append(questions, section.Questions...)
	}
	return questions
}
