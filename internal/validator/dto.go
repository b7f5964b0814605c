package validator

import (
	"github.com/SAP-F-2025/form-service/internal/models"
)

// FormCreateRequest represents the request structure for creating forms
type FormCreateRequest struct {
	Title           string           `json:"title" validate:"required,form_title"`
	Description     string           `json:"description" validate:"max=5000"`
	BackgroundColor string           `json:"background_color" validate:"omitempty,max=100"`
	BackgroundImage *string          `json:"background_image" validate:"omitempty,max=1000"`
	Sections        []models.Section `json:"sections" validate:"omitempty,max=50,dive"`
}

// FormUpdateRequest carries a partial update; nil fields are left unchanged.
type FormUpdateRequest struct {
	Title           *string           `json:"title" validate:"omitnil,form_title"`
	Description     *string           `json:"description" validate:"omitempty,max=5000"`
	BackgroundColor *string           `json:"background_color" validate:"omitempty,max=100"`
	BackgroundImage *string           `json:"background_image" validate:"omitempty,max=1000"`
	Sections        *[]models.Section `json:"sections" validate:"omitempty,max=50,dive"`
	IsPublished     *bool             `json:"is_published"`
}

// FormDefinition is the portable JSON document used for form export/import.
type FormDefinition struct {
	Title           string           `json:"title" validate:"required,form_title"`
	Description     string           `json:"description" validate:"max=5000"`
	BackgroundColor string           `json:"background_color" validate:"omitempty,max=100"`
	BackgroundImage *string          `json:"background_image,omitempty" validate:"omitempty,max=1000"`
	Sections        []models.Section `json:"sections" validate:"omitempty,max=50,dive"`
}

// SubmitFormRequest is an authenticated submission.
type SubmitFormRequest struct {
	Responses   models.AnswerMap `json:"responses"`
	SubmittedBy string           `json:"submitted_by" validate:"omitempty,max=255"`
}

// PublicSubmitRequest is a guest submission through a share link.
type PublicSubmitRequest struct {
	SubmitterName  string           `json:"submitter_name" validate:"required,max=100"`
	SubmitterEmail string           `json:"submitter_email" validate:"required,email,max=255"`
	SubmitterPhone string           `json:"submitter_phone" validate:"omitempty,max=50"`
	Responses      models.AnswerMap `json:"responses"`
}

// EvaluateVisibilityRequest asks for the visibility of a stored form.
type EvaluateVisibilityRequest struct {
	Answers models.AnswerMap `json:"answers"`
}

// PreviewVisibilityRequest evaluates an unsaved form definition.
type PreviewVisibilityRequest struct {
	Sections []models.Section `json:"sections" validate:"omitempty,max=50,dive"`
	Answers  models.AnswerMap `json:"answers"`
}

// DraftSaveRequest is the autosaved editor state.
type DraftSaveRequest struct {
	EditingFormID   *uint            `json:"editing_form_id"`
	Title           string           `json:"title" validate:"max=200"`
	Description     string           `json:"description" validate:"max=5000"`
	BackgroundColor string           `json:"background_color" validate:"omitempty,max=100"`
	BackgroundImage *string          `json:"background_image" validate:"omitempty,max=1000"`
	Sections        []models.Section `json:"sections" validate:"omitempty,max=50"`
}
