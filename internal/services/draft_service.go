package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"github.com/SAP-F-2025/form-service/internal/repositories/redisstore"
	"github.com/SAP-F-2025/form-service/internal/validator"
)

type draftService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDraftService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) DraftService {
	return &draftService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// Save stores the editor state as-is. Drafts may be incomplete, so only size
// limits are checked; full validation happens when the form is saved.
func (s *draftService) Save(ctx context.Context, ownerID string, req *SaveDraftRequest) (*models.FormDraft, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.EditingFormID != nil {
		form, err := getFormByID(ctx, s.repo, nil, *req.EditingFormID)
		if err != nil {
			return nil, err
		}
		if err := checkFormOwnership(ctx, s.repo, form, ownerID, "edit_draft"); err != nil {
			return nil, err
		}
	}

	sections := req.Sections
	if sections == nil {
		sections = []models.Section{}
	}

	draft := &models.FormDraft{
		OwnerID:         ownerID,
		EditingFormID:   req.EditingFormID,
		Title:           req.Title,
		Description:     req.Description,
		BackgroundColor: req.BackgroundColor,
		BackgroundImage: req.BackgroundImage,
		Sections:        sections,
		SavedAt:         time.Now().UTC(),
	}

	if err := s.repo.Draft().Save(ctx, draft); err != nil {
		return nil, s.mapDraftError(err)
	}

	s.logger.Debug("Draft saved", "owner_id", ownerID, "questions", countDraftQuestions(draft))
	return draft, nil
}

func (s *draftService) Get(ctx context.Context, ownerID string) (*models.FormDraft, error) {
	draft, err := s.repo.Draft().Get(ctx, ownerID)
	if err != nil {
		return nil, s.mapDraftError(err)
	}
	return draft, nil
}

func (s *draftService) Discard(ctx context.Context, ownerID string) error {
	if err := s.repo.Draft().Delete(ctx, ownerID); err != nil {
		return s.mapDraftError(err)
	}
	s.logger.Debug("Draft discarded", "owner_id", ownerID)
	return nil
}

func (s *draftService) mapDraftError(err error) error {
	switch {
	case repositories.IsNotFoundError(err):
		return ErrDraftNotFound
	case errors.Is(err, redisstore.ErrStoreUnavailable):
		return ErrDraftStoreDisabled
	default:
		return fmt.Errorf("draft store error: %w", err)
	}
}

func countDraftQuestions(draft *models.FormDraft) int {
	count := 0
	for _, section := range draft.Sections {
		count += len(section.Questions)
	}
	return count
}
