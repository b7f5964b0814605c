package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/visibility"
)

// DateLayout is the wire format of date answers.
const DateLayout = "2006-01-02"

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateFormCreate validates form creation business rules
func (bv *BusinessValidator) ValidateFormCreate(req *FormCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.ValidateSections(req.Sections)...)

	return errors
}

// ValidateFormUpdate validates a partial form update
func (bv *BusinessValidator) ValidateFormUpdate(req *FormUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.Sections != nil {
		errors = append(errors, bv.ValidateSections(*req.Sections)...)
	}

	return errors
}

// ValidateFormDefinition validates an imported form definition
func (bv *BusinessValidator) ValidateFormDefinition(def *FormDefinition) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(def)...)
	errors = append(errors, bv.ValidateSections(def.Sections)...)

	return errors
}

// ValidateSections checks the structural rules that struct tags cannot
// express: question ids are unique within their section and choice questions
// carry at least one non-blank option. Conditions pointing at unknown
// questions are allowed; see visibility.Lint.
func (bv *BusinessValidator) ValidateSections(sections []models.Section) ValidationErrors {
	var errors ValidationErrors

	for s, section := range sections {
		seen := make(map[string]bool, len(section.Questions))
		for q, question := range section.Questions {
			field := fmt.Sprintf("sections[%d].questions[%d]", s, q)

			if question.ID != "" {
				if seen[question.ID] {
					errors = append(errors, ValidationError{
						Field:   field + ".id",
						Message: "must be unique within its section",
						Value:   question.ID,
						Rule:    "unique_question_id",
					})
				}
				seen[question.ID] = true
			}

			if question.Type.HasOptions() && countOptions(question.Options) == 0 {
				errors = append(errors, ValidationError{
					Field:   field + ".options",
					Message: fmt.Sprintf("%s questions need at least one option", question.Type),
					Rule:    "choice_options",
				})
			}
		}
	}

	return errors
}

// ValidateAnswers checks a submission against the form under the given
// visibility. Answers for questions the form does not have are rejected.
// Hidden questions are skipped entirely; visible ones must satisfy their
// required flag and their type's format.
func (bv *BusinessValidator) ValidateAnswers(form *models.Form, answers models.AnswerMap, vis models.VisibilityMap) ValidationErrors {
	var errors ValidationErrors

	index := visibility.Lookup(form)
	for id := range answers {
		if _, ok := index[id]; !ok {
			errors = append(errors, ValidationError{
				Field:   "responses." + id,
				Message: "does not match any question of this form",
				Rule:    "unknown_question",
			})
		}
	}

	for _, id := range visibility.MissingRequired(form, answers, vis) {
		errors = append(errors, ValidationError{
			Field:   "responses." + id,
			Message: "is required",
			Rule:    "required",
		})
	}

	checked := make(map[string]bool)
	for _, section := range form.Sections {
		for _, question := range section.Questions {
			if !vis[question.ID] || checked[question.ID] {
				continue
			}
			checked[question.ID] = true

			value := strings.TrimSpace(answers[question.ID])
			if value == "" {
				continue
			}
			if msg := bv.checkAnswerFormat(index[question.ID], value); msg != "" {
				errors = append(errors, ValidationError{
					Field:   "responses." + question.ID,
					Message: msg,
					Value:   value,
					Rule:    string(question.Type),
				})
			}
		}
	}

	return errors
}

// checkAnswerFormat returns a message describing why value is not a valid
// answer for q, or "" when it is.
func (bv *BusinessValidator) checkAnswerFormat(q *models.Question, value string) string {
	switch q.Type {
	case models.QuestionEmail:
		if bv.validate.Var(value, "email") != nil {
			return "must be a valid email address"
		}
	case models.QuestionNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "must be a number"
		}
	case models.QuestionDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return "must be a date in YYYY-MM-DD format"
		}
	case models.QuestionRadio, models.QuestionSelect:
		if !containsOption(q.Options, value) {
			return "must be one of the question's options"
		}
	case models.QuestionCheckbox:
		if containsOption(q.Options, value) {
			return ""
		}
		for _, part := range strings.Split(value, ",") {
			if !containsOption(q.Options, strings.TrimSpace(part)) {
				return fmt.Sprintf("%q is not one of the question's options", part)
			}
		}
	}
	return ""
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("condition_action", func(fl validator.FieldLevel) bool {
		return models.ConditionAction(fl.Field().String()).IsValid()
	})

	// Title validation (1-200 characters, not only whitespace)
	bv.validate.RegisterValidation("form_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})
}

func countOptions(options []string) int {
	count := 0
	for _, option := range options {
		if strings.TrimSpace(option) != "" {
			count++
		}
	}
	return count
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
