// Package visibility evaluates conditional show/hide rules of a form against
// the answers entered so far. Every function is pure: the same form and
// answers always produce the same result, and nothing is retained between
// calls.
package visibility

import (
	"strings"

	"github.com/SAP-F-2025/form-service/internal/models"
)

// Initial returns the author-declared visibility of every question: visible
// unless the question is marked hidden. A nil form yields an empty map.
//
// Question ids only need to be unique within a section. When two sections
// share an id they share one key, and the later declaration wins.
func Initial(form *models.Form) models.VisibilityMap {
	vis := make(models.VisibilityMap)
	if form == nil {
		return vis
	}
	for _, section := range form.Sections {
		for _, q := range section.Questions {
			vis[q.ID] = !q.Hidden
		}
	}
	return vis
}

// Evaluate recomputes visibility from scratch for the given answers.
//
// Conditions are applied in form order (section, then question, then the
// question's condition list). Conditions on hidden questions still apply.
// A condition fires when its trigger question has an answer that equals
// TriggerValue byte for byte; later conditions overwrite earlier ones for the
// same target. Conditions whose trigger or target is not a question of the
// form are ignored.
func Evaluate(form *models.Form, answers models.AnswerMap) models.VisibilityMap {
	vis := Initial(form)
	if form == nil {
		return vis
	}

	for _, section := range form.Sections {
		for _, q := range section.Questions {
			for _, c := range q.Conditions {
				apply(vis, c, answers)
			}
		}
	}
	return vis
}

func apply(vis models.VisibilityMap, c models.Condition, answers models.AnswerMap) {
	if _, ok := vis[c.TriggerQuestionID]; !ok {
		return
	}
	if _, ok := vis[c.TargetQuestionID]; !ok {
		return
	}

	answer, answered := answers[c.TriggerQuestionID]
	if !answered || answer != c.TriggerValue {
		return
	}

	switch c.Action {
	case models.ActionShow:
		vis[c.TargetQuestionID] = true
	case models.ActionHide:
		vis[c.TargetQuestionID] = false
	}
}

// MissingRequired returns the ids of required questions that are currently
// visible and have no answer, in form order. Hidden questions never count as
// missing, whatever their required flag says.
func MissingRequired(form *models.Form, answers models.AnswerMap, vis models.VisibilityMap) []string {
	if form == nil {
		return nil
	}

	var missing []string
	seen := make(map[string]bool)
	for _, section := range form.Sections {
		for _, q := range section.Questions {
			if !q.Required || !vis[q.ID] || seen[q.ID] {
				continue
			}
			if strings.TrimSpace(answers[q.ID]) == "" {
				missing = append(missing, q.ID)
				seen[q.ID] = true
			}
		}
	}
	return missing
}

// Visible returns the questions of a section that are visible under vis,
// preserving their order.
func Visible(section models.Section, vis models.VisibilityMap) []models.Question {
	questions := make([]models.Question, 0, len(section.Questions))
	for _, q := range section.Questions {
		if vis[q.ID] {
			questions = append(questions, q)
		}
	}
	return questions
}

// Lookup indexes the questions of a form by id. On duplicate ids the later
// declaration wins, matching Initial.
func Lookup(form *models.Form) map[string]*models.Question {
	index := make(map[string]*models.Question)
	if form == nil {
		return index
	}
	for s := range form.Sections {
		for q := range form.Sections[s].Questions {
			question := &form.Sections[s].Questions[q]
			index[question.ID] = question
		}
	}
	return index
}
