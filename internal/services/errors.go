package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/form-service/internal/validator"
)

// ===== SENTINEL ERRORS =====

var (
	// Form errors
	ErrFormNotFound     = errors.New("form not found")
	ErrFormNotPublished = errors.New("form is not published")

	// Submission errors
	ErrSubmissionNotFound = errors.New("submission not found")

	// Draft errors
	ErrDraftNotFound      = errors.New("draft not found")
	ErrDraftStoreDisabled = errors.New("draft storage is not available")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ValidationErrors is the validation failure type returned by services
type ValidationErrors = validator.ValidationErrors

// ===== TYPED ERRORS =====

// PermissionError reports an action the user may not perform on a resource
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError reports a request that is well-formed but not allowed
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}
