package repositories

import (
	"time"
)

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	OwnerID     *string `json:"owner_id"`
	IsPublished *bool   `json:"is_published"`
	Search      string  `json:"search"`
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
	SortBy      string  `json:"sort_by"`    // "created_at", "updated_at", "title"
	SortOrder   string  `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	IsGuest   *bool      `json:"is_guest"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"` // 0 returns every match
	Offset    int        `json:"offset"`
	SortOrder string     `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

// SubmissionSummary holds per-form submission totals.
type SubmissionSummary struct {
	FormID           uint       `json:"form_id"`
	TotalSubmissions int64      `json:"total_submissions"`
	GuestSubmissions int64      `json:"guest_submissions"`
	FirstSubmittedAt *time.Time `json:"first_submitted_at"`
	LastSubmittedAt  *time.Time `json:"last_submitted_at"`
}
