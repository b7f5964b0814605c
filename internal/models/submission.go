package models

import (
	"time"

	"gorm.io/datatypes"
)

const AnonymousSubmitter = "Anonymous"

type Submission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FormID    uint   `json:"form_id" gorm:"not null;index"`
	FormTitle string `json:"form_title" gorm:"size:200"`

	SubmittedBy    string  `json:"submitted_by" gorm:"size:255;default:Anonymous"`
	SubmitterName  *string `json:"submitter_name,omitempty" gorm:"size:100"`
	SubmitterEmail *string `json:"submitter_email,omitempty" gorm:"size:255;index"`
	SubmitterPhone *string `json:"submitter_phone,omitempty" gorm:"size:50"`
	IsGuest        bool    `json:"is_guest" gorm:"default:false"`

	Responses datatypes.JSONType[AnswerMap] `json:"responses" gorm:"not null"`
	// Metadata carries client information captured at submission time.
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "form_submissions"
}

// Answers returns the submitted answers, never nil.
func (s *Submission) Answers() AnswerMap {
	answers := s.Responses.Data()
	if answers == nil {
		return AnswerMap{}
	}
	return answers
}

type SubmissionMetadata struct {
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
