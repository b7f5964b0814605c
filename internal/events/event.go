package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "form-service"
	EventVersion = "1.0"
)

type EventType string

const (
	FormPublished     EventType = "form.published"
	FormUnpublished   EventType = "form.unpublished"
	FormDeleted       EventType = "form.deleted"
	SubmissionCreated EventType = "submission.created"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// FormEventData is the payload of form lifecycle events.
type FormEventData struct {
	FormID     uint   `json:"form_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	ShareToken string `json:"share_token,omitempty"`
	// Set on form.deleted
	DeletedSubmissions int64 `json:"deleted_submissions,omitempty"`
}

// SubmissionEventData is the payload of submission.created.
type SubmissionEventData struct {
	SubmissionID uint   `json:"submission_id"`
	FormID       uint   `json:"form_id"`
	FormOwnerID  string `json:"form_owner_id"`
	SubmittedBy  string `json:"submitted_by"`
	IsGuest      bool   `json:"is_guest"`
	AnswerCount  int    `json:"answer_count"`
}
