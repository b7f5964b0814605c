package validator

import (
	"testing"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/visibility"
)

func hasRule(errs ValidationErrors, field, rule string) bool {
	for _, e := range errs {
		if e.Field == field && e.Rule == rule {
			return true
		}
	}
	return false
}

func validSections() []models.Section {
	return []models.Section{{
		Title: "About you",
		Questions: []models.Question{
			{
				ID:      "drives",
				Prompt:  "Do you drive?",
				Type:    models.QuestionRadio,
				Options: []string{"Yes", "No"},
				Conditions: []models.Condition{
					{TriggerQuestionID: "drives", TriggerValue: "Yes", Action: models.ActionShow, TargetQuestionID: "licence"},
				},
			},
			{ID: "licence", Prompt: "Licence number", Type: models.QuestionText, Hidden: true, Required: true},
		},
	}}
}

func TestValidateFormCreate(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name      string
		mutate    func(req *FormCreateRequest)
		wantField string
		wantRule  string
	}{
		{
			name:      "blank title",
			mutate:    func(req *FormCreateRequest) { req.Title = "   " },
			wantField: "Title",
			wantRule:  "form_title",
		},
		{
			name:      "unknown question type",
			mutate:    func(req *FormCreateRequest) { req.Sections[0].Questions[1].Type = "slider" },
			wantField: "Sections[0].Questions[1].Type",
			wantRule:  "question_type",
		},
		{
			name: "unknown condition action",
			mutate: func(req *FormCreateRequest) {
				req.Sections[0].Questions[0].Conditions[0].Action = "toggle"
			},
			wantField: "Sections[0].Questions[0].Conditions[0].Action",
			wantRule:  "condition_action",
		},
		{
			name: "empty condition target",
			mutate: func(req *FormCreateRequest) {
				req.Sections[0].Questions[0].Conditions[0].TargetQuestionID = ""
			},
			wantField: "Sections[0].Questions[0].Conditions[0].TargetQuestionID",
			wantRule:  "required",
		},
		{
			name:      "choice question without options",
			mutate:    func(req *FormCreateRequest) { req.Sections[0].Questions[0].Options = []string{" "} },
			wantField: "sections[0].questions[0].options",
			wantRule:  "choice_options",
		},
		{
			name:      "duplicate id in section",
			mutate:    func(req *FormCreateRequest) { req.Sections[0].Questions[1].ID = "drives" },
			wantField: "sections[0].questions[1].id",
			wantRule:  "unique_question_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &FormCreateRequest{Title: "Driver survey", Sections: validSections()}
			tt.mutate(req)

			errs := bv.ValidateFormCreate(req)
			if !hasRule(errs, tt.wantField, tt.wantRule) {
				t.Errorf("expected %s/%s in %+v", tt.wantField, tt.wantRule, errs)
			}
		})
	}

	t.Run("valid form", func(t *testing.T) {
		req := &FormCreateRequest{Title: "Driver survey", Sections: validSections()}
		if errs := bv.ValidateFormCreate(req); len(errs) != 0 {
			t.Errorf("unexpected errors: %+v", errs)
		}
	})

	t.Run("dangling references are allowed", func(t *testing.T) {
		req := &FormCreateRequest{Title: "Driver survey", Sections: validSections()}
		req.Sections[0].Questions[0].Conditions[0].TargetQuestionID = "Q99"
		if errs := bv.ValidateFormCreate(req); len(errs) != 0 {
			t.Errorf("unexpected errors: %+v", errs)
		}
	})

	t.Run("same id in different sections", func(t *testing.T) {
		sections := validSections()
		sections = append(sections, models.Section{Questions: []models.Question{
			{ID: "drives", Prompt: "Again?", Type: models.QuestionText},
		}})
		req := &FormCreateRequest{Title: "Driver survey", Sections: sections}
		if errs := bv.ValidateFormCreate(req); len(errs) != 0 {
			t.Errorf("unexpected errors: %+v", errs)
		}
	})
}

func TestValidateFormUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	if errs := bv.ValidateFormUpdate(&FormUpdateRequest{}); len(errs) != 0 {
		t.Errorf("empty update should be valid, got %+v", errs)
	}

	empty := ""
	if errs := bv.ValidateFormUpdate(&FormUpdateRequest{Title: &empty}); !hasRule(errs, "Title", "form_title") {
		t.Errorf("explicit empty title must be rejected, got %+v", errs)
	}

	blank := "  "
	if errs := bv.ValidateFormUpdate(&FormUpdateRequest{Title: &blank}); !hasRule(errs, "Title", "form_title") {
		t.Errorf("expected form_title error, got %+v", errs)
	}

	sections := validSections()
	sections[0].Questions[0].Options = nil
	if errs := bv.ValidateFormUpdate(&FormUpdateRequest{Sections: &sections}); !hasRule(errs, "sections[0].questions[0].options", "choice_options") {
		t.Errorf("expected choice_options error, got %+v", errs)
	}
}

func answerForm() *models.Form {
	return &models.Form{
		Title: "Order",
		Sections: []models.Section{{Questions: []models.Question{
			{
				ID: "kind", Prompt: "Kind", Type: models.QuestionSelect, Options: []string{"pickup", "delivery"}, Required: true,
				Conditions: []models.Condition{
					{TriggerQuestionID: "kind", TriggerValue: "delivery", Action: models.ActionShow, TargetQuestionID: "address"},
				},
			},
			{ID: "address", Prompt: "Address", Type: models.QuestionTextarea, Hidden: true, Required: true},
			{ID: "email", Prompt: "Email", Type: models.QuestionEmail},
			{ID: "qty", Prompt: "Quantity", Type: models.QuestionNumber},
			{ID: "when", Prompt: "Date", Type: models.QuestionDate},
			{ID: "extras", Prompt: "Extras", Type: models.QuestionCheckbox, Options: []string{"A", "B", "C"}},
		}}},
	}
}

func TestValidateAnswers(t *testing.T) {
	bv := NewBusinessValidator()
	form := answerForm()

	tests := []struct {
		name      string
		answers   models.AnswerMap
		wantField string
		wantRule  string
	}{
		{"required visible", models.AnswerMap{}, "responses.kind", "required"},
		{"revealed required", models.AnswerMap{"kind": "delivery"}, "responses.address", "required"},
		{"unknown question", models.AnswerMap{"kind": "pickup", "ghost": "boo"}, "responses.ghost", "unknown_question"},
		{"bad option", models.AnswerMap{"kind": "teleport"}, "responses.kind", "select"},
		{"bad email", models.AnswerMap{"kind": "pickup", "email": "not-an-email"}, "responses.email", "email"},
		{"bad number", models.AnswerMap{"kind": "pickup", "qty": "three"}, "responses.qty", "number"},
		{"bad date", models.AnswerMap{"kind": "pickup", "when": "15/10/2026"}, "responses.when", "date"},
		{"bad checkbox part", models.AnswerMap{"kind": "pickup", "extras": "A,Z"}, "responses.extras", "checkbox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vis := visibility.Evaluate(form, tt.answers)
			errs := bv.ValidateAnswers(form, tt.answers, vis)
			if !hasRule(errs, tt.wantField, tt.wantRule) {
				t.Errorf("expected %s/%s in %+v", tt.wantField, tt.wantRule, errs)
			}
		})
	}

	t.Run("hidden required question does not block", func(t *testing.T) {
		answers := models.AnswerMap{"kind": "pickup"}
		if errs := bv.ValidateAnswers(form, answers, visibility.Evaluate(form, answers)); len(errs) != 0 {
			t.Errorf("unexpected errors: %+v", errs)
		}
	})

	t.Run("hidden answers are not format checked", func(t *testing.T) {
		form := answerForm()
		form.Sections[0].Questions[2].Hidden = true
		answers := models.AnswerMap{"kind": "pickup", "email": "garbage"}
		if errs := bv.ValidateAnswers(form, answers, visibility.Evaluate(form, answers)); len(errs) != 0 {
			t.Errorf("unexpected errors: %+v", errs)
		}
	})

	t.Run("complete submission", func(t *testing.T) {
		answers := models.AnswerMap{
			"kind":    "delivery",
			"address": "1 Main St",
			"email":   "jane@example.com",
			"qty":     "2.5",
			"when":    "2026-10-15",
			"extras":  "A,C",
		}
		if errs := bv.ValidateAnswers(form, answers, visibility.Evaluate(form, answers)); len(errs) != 0 {
			t.Errorf("unexpected errors: %+v", errs)
		}
	})
}

func TestValidatorWrapper(t *testing.T) {
	v := New()

	err := v.Validate(&PublicSubmitRequest{SubmitterName: "Jane", SubmitterEmail: "nope"})
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if !hasRule(errs, "SubmitterEmail", "email") {
		t.Errorf("expected email error, got %+v", errs)
	}

	if err := v.Validate(&PublicSubmitRequest{SubmitterName: "Jane", SubmitterEmail: "jane@example.com"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
