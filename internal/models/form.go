package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionRadio    QuestionType = "radio"
	QuestionSelect   QuestionType = "select"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionNumber   QuestionType = "number"
	QuestionDate     QuestionType = "date"
	QuestionEmail    QuestionType = "email"
	QuestionTextarea QuestionType = "textarea"
	QuestionFile     QuestionType = "file"
)

// QuestionTypes lists every supported question type in display order.
var QuestionTypes = []QuestionType{
	QuestionText, QuestionRadio, QuestionSelect, QuestionCheckbox, QuestionNumber,
	QuestionDate, QuestionEmail, QuestionTextarea, QuestionFile,
}

func (t QuestionType) IsValid() bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// HasOptions reports whether answers are drawn from the question's option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionRadio || t == QuestionSelect || t == QuestionCheckbox
}

type ConditionAction string

const (
	ActionShow ConditionAction = "show"
	ActionHide ConditionAction = "hide"
)

func (a ConditionAction) IsValid() bool {
	return a == ActionShow || a == ActionHide
}

// Condition is a single visibility rule: when the trigger question's answer
// equals TriggerValue exactly, Action is applied to the target question.
type Condition struct {
	TriggerQuestionID string          `json:"trigger_question_id" validate:"required"`
	TriggerValue      string          `json:"trigger_value"`
	Action            ConditionAction `json:"action" validate:"required,condition_action"`
	TargetQuestionID  string          `json:"target_question_id" validate:"required"`
}

type Question struct {
	ID         string       `json:"id" validate:"required,max=100"`
	Prompt     string       `json:"question" validate:"required,max=2000"`
	Type       QuestionType `json:"type" validate:"required,question_type"`
	Options    []string     `json:"options,omitempty" validate:"omitempty,max=200,dive,max=500"`
	Required   bool         `json:"required"`
	Hidden     bool         `json:"hidden"`
	Conditions []Condition  `json:"conditions,omitempty" validate:"omitempty,max=100,dive"`
}

type Section struct {
	Title     string     `json:"title" validate:"max=200"`
	Questions []Question `json:"questions" validate:"omitempty,dive"`
}

const DefaultBackgroundColor = "bg-gray-300"

type Form struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	OwnerID         string    `json:"owner_id" gorm:"not null;size:255;index"`
	Title           string    `json:"title" gorm:"not null;size:200"`
	Description     string    `json:"description" gorm:"type:text"`
	BackgroundColor string    `json:"background_color" gorm:"size:100;default:bg-gray-300"`
	BackgroundImage *string   `json:"background_image" gorm:"size:1000"`
	Sections        []Section `json:"sections" gorm:"type:jsonb;serializer:json"`
	IsPublished     bool      `json:"is_published" gorm:"default:false;index"`
	ShareToken      string    `json:"share_token" gorm:"uniqueIndex;size:36;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Submissions []Submission `json:"-" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
}

func (Form) TableName() string {
	return "forms"
}

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ShareToken == "" {
		f.ShareToken = uuid.NewString()
	}
	if f.BackgroundColor == "" {
		f.BackgroundColor = DefaultBackgroundColor
	}
	return nil
}

// QuestionCount returns the number of questions across all sections.
func (f *Form) QuestionCount() int {
	count := 0
	for _, section := range f.Sections {
		count += len(section.Questions)
	}
	return count
}

// AnswerMap holds the current answers keyed by question id. Multi-select
// answers are a single comma-joined string.
type AnswerMap map[string]string

// VisibilityMap holds the effective visibility of every question keyed by id.
type VisibilityMap map[string]bool

// FormDraft is the author's in-progress editing state.
type FormDraft struct {
	OwnerID         string    `json:"owner_id"`
	EditingFormID   *uint     `json:"editing_form_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	BackgroundColor string    `json:"background_color"`
	BackgroundImage *string   `json:"background_image,omitempty"`
	Sections        []Section `json:"sections"`
	SavedAt         time.Time `json:"saved_at"`
}
