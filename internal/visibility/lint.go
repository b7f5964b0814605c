package visibility

import (
	"fmt"

	"github.com/SAP-F-2025/form-service/internal/models"
)

// Issue describes a condition that can never take effect because it points at
// a question the form does not contain.
type Issue struct {
	SectionIndex   int    `json:"section_index"`
	QuestionID     string `json:"question_id"`
	ConditionIndex int    `json:"condition_index"`
	Field          string `json:"field"`
	Reference      string `json:"reference"`
	Message        string `json:"message"`
}

// Lint reports dangling trigger and target references. These are warnings:
// Evaluate skips such conditions, so a form with issues is still usable.
func Lint(form *models.Form) []Issue {
	if form == nil {
		return nil
	}

	index := Lookup(form)
	var issues []Issue
	for s, section := range form.Sections {
		for _, q := range section.Questions {
			for i, c := range q.Conditions {
				if _, ok := index[c.TriggerQuestionID]; !ok {
					issues = append(issues, Issue{
						SectionIndex:   s,
						QuestionID:     q.ID,
						ConditionIndex: i,
						Field:          "trigger_question_id",
						Reference:      c.TriggerQuestionID,
						Message:        fmt.Sprintf("trigger question %q does not exist", c.TriggerQuestionID),
					})
				}
				if _, ok := index[c.TargetQuestionID]; !ok {
					issues = append(issues, Issue{
						SectionIndex:   s,
						QuestionID:     q.ID,
						ConditionIndex: i,
						Field:          "target_question_id",
						Reference:      c.TargetQuestionID,
						Message:        fmt.Sprintf("target question %q does not exist", c.TargetQuestionID),
					})
				}
			}
		}
	}
	return issues
}
