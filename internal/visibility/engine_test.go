package visibility

import (
	"reflect"
	"testing"

	"github.com/SAP-F-2025/form-service/internal/models"
)

func newForm(sections ...models.Section) *models.Form {
	return &models.Form{Title: "Test form", Sections: sections}
}

func section(questions ...models.Question) models.Section {
	return models.Section{Title: "Section", Questions: questions}
}

// yesNoForm has Q1 (radio) showing the initially hidden Q2 when answered "Yes".
func yesNoForm() *models.Form {
	return newForm(section(
		models.Question{
			ID:      "Q1",
			Prompt:  "Do you drive?",
			Type:    models.QuestionRadio,
			Options: []string{"Yes", "No"},
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q1", TriggerValue: "Yes", Action: models.ActionShow, TargetQuestionID: "Q2"},
			},
		},
		models.Question{ID: "Q2", Prompt: "Licence number", Type: models.QuestionText, Hidden: true},
	))
}

func TestInitial(t *testing.T) {
	t.Run("nil form", func(t *testing.T) {
		if got := Initial(nil); len(got) != 0 {
			t.Errorf("Initial(nil) = %v, want empty", got)
		}
	})

	t.Run("empty form", func(t *testing.T) {
		if got := Initial(newForm()); len(got) != 0 {
			t.Errorf("Initial(empty) = %v, want empty", got)
		}
	})

	t.Run("baseline is the inverse of hidden", func(t *testing.T) {
		got := Initial(yesNoForm())
		want := models.VisibilityMap{"Q1": true, "Q2": false}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Initial() = %v, want %v", got, want)
		}
	})

	t.Run("duplicate id across sections keeps later declaration", func(t *testing.T) {
		form := newForm(
			section(models.Question{ID: "dup", Type: models.QuestionText, Hidden: true}),
			section(models.Question{ID: "dup", Type: models.QuestionText}),
		)
		if got := Initial(form); !got["dup"] {
			t.Errorf("Initial()[dup] = false, want true")
		}
	})
}

func TestEvaluate_ShowOnMatch(t *testing.T) {
	form := yesNoForm()

	tests := []struct {
		name    string
		answers models.AnswerMap
		wantQ2  bool
	}{
		{"no answers", models.AnswerMap{}, false},
		{"nil answers", nil, false},
		{"matching answer", models.AnswerMap{"Q1": "Yes"}, true},
		{"other answer", models.AnswerMap{"Q1": "No"}, false},
		{"case differs", models.AnswerMap{"Q1": "yes"}, false},
		{"surrounding whitespace", models.AnswerMap{"Q1": " Yes"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vis := Evaluate(form, tt.answers)
			if vis["Q2"] != tt.wantQ2 {
				t.Errorf("Q2 visible = %v, want %v", vis["Q2"], tt.wantQ2)
			}
			if !vis["Q1"] {
				t.Errorf("Q1 should stay visible")
			}
		})
	}
}

func TestEvaluate_LastWriteWins(t *testing.T) {
	form := newForm(section(
		models.Question{
			ID:      "Q1",
			Type:    models.QuestionRadio,
			Options: []string{"Yes", "No"},
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q1", TriggerValue: "Yes", Action: models.ActionShow, TargetQuestionID: "Q2"},
			},
		},
		models.Question{ID: "Q2", Type: models.QuestionText},
		models.Question{
			ID:   "Q3",
			Type: models.QuestionText,
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q1", TriggerValue: "No", Action: models.ActionHide, TargetQuestionID: "Q2"},
			},
		},
	))

	t.Run("only the later condition fires", func(t *testing.T) {
		vis := Evaluate(form, models.AnswerMap{"Q1": "No"})
		if vis["Q2"] {
			t.Errorf("Q2 visible = true, want false")
		}
	})

	t.Run("only the earlier condition fires", func(t *testing.T) {
		vis := Evaluate(form, models.AnswerMap{"Q1": "Yes"})
		if !vis["Q2"] {
			t.Errorf("Q2 visible = false, want true")
		}
	})

	t.Run("both fire and the later one decides", func(t *testing.T) {
		conflicting := newForm(section(
			models.Question{
				ID:   "A",
				Type: models.QuestionText,
				Conditions: []models.Condition{
					{TriggerQuestionID: "A", TriggerValue: "x", Action: models.ActionShow, TargetQuestionID: "X"},
				},
			},
			models.Question{ID: "X", Type: models.QuestionText, Hidden: true},
			models.Question{
				ID:   "B",
				Type: models.QuestionText,
				Conditions: []models.Condition{
					{TriggerQuestionID: "B", TriggerValue: "y", Action: models.ActionHide, TargetQuestionID: "X"},
				},
			},
		))

		vis := Evaluate(conflicting, models.AnswerMap{"A": "x", "B": "y"})
		if vis["X"] {
			t.Errorf("X visible = true, want false (later hide wins)")
		}
	})

	t.Run("order within one condition list", func(t *testing.T) {
		single := newForm(section(
			models.Question{
				ID:   "A",
				Type: models.QuestionText,
				Conditions: []models.Condition{
					{TriggerQuestionID: "A", TriggerValue: "go", Action: models.ActionHide, TargetQuestionID: "X"},
					{TriggerQuestionID: "A", TriggerValue: "go", Action: models.ActionShow, TargetQuestionID: "X"},
				},
			},
			models.Question{ID: "X", Type: models.QuestionText, Hidden: true},
		))

		vis := Evaluate(single, models.AnswerMap{"A": "go"})
		if !vis["X"] {
			t.Errorf("X visible = false, want true (later show wins)")
		}
	})
}

func TestEvaluate_DanglingReferences(t *testing.T) {
	form := yesNoForm()
	form.Sections[0].Questions[0].Conditions = append(form.Sections[0].Questions[0].Conditions,
		models.Condition{TriggerQuestionID: "Q1", TriggerValue: "Yes", Action: models.ActionHide, TargetQuestionID: "Q99"},
		models.Condition{TriggerQuestionID: "Q42", TriggerValue: "Yes", Action: models.ActionHide, TargetQuestionID: "Q1"},
	)

	vis := Evaluate(form, models.AnswerMap{"Q1": "Yes", "Q42": "Yes"})

	want := models.VisibilityMap{"Q1": true, "Q2": true}
	if !reflect.DeepEqual(vis, want) {
		t.Errorf("Evaluate() = %v, want %v", vis, want)
	}
	if _, ok := vis["Q99"]; ok {
		t.Errorf("dangling target must not be added to the map")
	}
}

func TestEvaluate_HiddenTriggerStillApplies(t *testing.T) {
	form := newForm(section(
		models.Question{
			ID:     "Q1",
			Type:   models.QuestionText,
			Hidden: true,
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q1", TriggerValue: "prefilled", Action: models.ActionShow, TargetQuestionID: "Q2"},
			},
		},
		models.Question{ID: "Q2", Type: models.QuestionText, Hidden: true},
	))

	vis := Evaluate(form, models.AnswerMap{"Q1": "prefilled"})
	if vis["Q1"] {
		t.Errorf("Q1 should remain hidden")
	}
	if !vis["Q2"] {
		t.Errorf("Q2 visible = false, want true")
	}
}

func TestEvaluate_CheckboxWholeStringEquality(t *testing.T) {
	form := newForm(section(
		models.Question{
			ID:      "Q4",
			Type:    models.QuestionCheckbox,
			Options: []string{"A", "B"},
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q4", TriggerValue: "A", Action: models.ActionShow, TargetQuestionID: "Q5"},
			},
		},
		models.Question{ID: "Q5", Type: models.QuestionText, Hidden: true},
	))

	if vis := Evaluate(form, models.AnswerMap{"Q4": "A,B"}); vis["Q5"] {
		t.Errorf("condition must not fire for a multi-selection containing the value")
	}
	if vis := Evaluate(form, models.AnswerMap{"Q4": "A"}); !vis["Q5"] {
		t.Errorf("condition must fire when the selection is exactly the value")
	}
}

func TestEvaluate_NoConditionsEqualsBaseline(t *testing.T) {
	form := newForm(section(
		models.Question{ID: "a", Type: models.QuestionText},
		models.Question{ID: "b", Type: models.QuestionText, Hidden: true},
		models.Question{ID: "c", Type: models.QuestionText},
	))

	answerSets := []models.AnswerMap{
		nil,
		{},
		{"a": "1", "b": "2", "c": "3"},
		{"unknown": "value"},
	}

	want := models.VisibilityMap{"a": true, "b": false, "c": true}
	for _, answers := range answerSets {
		got := Evaluate(form, answers)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Evaluate(%v) = %v, want %v", answers, got, want)
		}
		if !reflect.DeepEqual(got, Initial(form)) {
			t.Errorf("Evaluate(%v) differs from Initial()", answers)
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	form := yesNoForm()
	answers := models.AnswerMap{"Q1": "Yes"}

	first := Evaluate(form, answers)
	second := Evaluate(form, answers)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Evaluate not idempotent: %v vs %v", first, second)
	}

	// A previous result never leaks into the next evaluation.
	if vis := Evaluate(form, models.AnswerMap{}); vis["Q2"] {
		t.Errorf("Q2 should revert to its baseline once the trigger is cleared")
	}
	if form.Sections[0].Questions[1].Hidden != true {
		t.Errorf("evaluation must not mutate the form")
	}
}

func TestEvaluate_SelfReference(t *testing.T) {
	form := newForm(section(
		models.Question{
			ID:   "Q1",
			Type: models.QuestionText,
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q1", TriggerValue: "hide me", Action: models.ActionHide, TargetQuestionID: "Q1"},
			},
		},
	))

	if vis := Evaluate(form, models.AnswerMap{"Q1": "hide me"}); vis["Q1"] {
		t.Errorf("self-referencing hide should apply")
	}
}

func TestEvaluate_AcrossSections(t *testing.T) {
	form := newForm(
		section(models.Question{
			ID:   "country",
			Type: models.QuestionSelect,
			Conditions: []models.Condition{
				{TriggerQuestionID: "country", TriggerValue: "Other", Action: models.ActionShow, TargetQuestionID: "country_other"},
			},
			Options: []string{"VN", "Other"},
		}),
		section(models.Question{ID: "country_other", Type: models.QuestionText, Hidden: true}),
	)

	if vis := Evaluate(form, models.AnswerMap{"country": "Other"}); !vis["country_other"] {
		t.Errorf("conditions must reach questions in later sections")
	}
}

func TestMissingRequired(t *testing.T) {
	form := newForm(section(
		models.Question{
			ID:       "Q1",
			Type:     models.QuestionRadio,
			Options:  []string{"Yes", "No"},
			Required: true,
			Conditions: []models.Condition{
				{TriggerQuestionID: "Q1", TriggerValue: "Yes", Action: models.ActionShow, TargetQuestionID: "Q2"},
			},
		},
		models.Question{ID: "Q2", Type: models.QuestionText, Hidden: true, Required: true},
		models.Question{ID: "Q3", Type: models.QuestionText},
	))

	tests := []struct {
		name    string
		answers models.AnswerMap
		want    []string
	}{
		{"nothing answered", models.AnswerMap{}, []string{"Q1"}},
		{"hidden required is skipped", models.AnswerMap{"Q1": "No"}, nil},
		{"revealed required is enforced", models.AnswerMap{"Q1": "Yes"}, []string{"Q2"}},
		{"whitespace is not an answer", models.AnswerMap{"Q1": "Yes", "Q2": "   "}, []string{"Q2"}},
		{"complete", models.AnswerMap{"Q1": "Yes", "Q2": "AB-123"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vis := Evaluate(form, tt.answers)
			got := MissingRequired(form, tt.answers, vis)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingRequired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisible(t *testing.T) {
	form := yesNoForm()
	vis := Evaluate(form, models.AnswerMap{})

	got := Visible(form.Sections[0], vis)
	if len(got) != 1 || got[0].ID != "Q1" {
		t.Errorf("Visible() = %v, want only Q1", got)
	}
}

func TestLint(t *testing.T) {
	form := yesNoForm()
	if issues := Lint(form); len(issues) != 0 {
		t.Fatalf("Lint() = %v, want no issues", issues)
	}

	form.Sections[0].Questions[1].Conditions = []models.Condition{
		{TriggerQuestionID: "missing", TriggerValue: "x", Action: models.ActionShow, TargetQuestionID: "Q1"},
		{TriggerQuestionID: "Q2", TriggerValue: "x", Action: models.ActionShow, TargetQuestionID: "gone"},
	}

	issues := Lint(form)
	if len(issues) != 2 {
		t.Fatalf("Lint() returned %d issues, want 2", len(issues))
	}
	if issues[0].Field != "trigger_question_id" || issues[0].Reference != "missing" {
		t.Errorf("unexpected first issue %+v", issues[0])
	}
	if issues[1].Field != "target_question_id" || issues[1].ConditionIndex != 1 {
		t.Errorf("unexpected second issue %+v", issues[1])
	}
}
