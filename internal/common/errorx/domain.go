package errorx

import (
	"errors"
	"fmt"
)

// DuplicateFields reports which contact fields collided with another lead
type DuplicateFields struct {
	Email bool `json:"email"`
	Phone bool `json:"phone"`
}

// Duplicate returns a DUPLICATE error flagging the colliding fields
func Duplicate(fields DuplicateFields) *APIError {
	return ErrDuplicate.Clone().WithDetail("fields", fields)
}

// LeadConverted returns a LEAD_CONVERTED error for the given lead
func LeadConverted(leadID string) *APIError {
	return ErrLeadConverted.Clone().WithDetail("lead_id", leadID)
}

// EmailPhoneSame returns an EMAIL_PHONE_SAME error
func EmailPhoneSame() *APIError {
	return ErrEmailPhoneSame.Clone()
}

// ValidationError creates a validation error with details
func ValidationError(field string, value any, reason string) *APIError {
	return ErrInvalidInput.Clone().
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason).
		WithSuggestion(fmt.Sprintf("Fix the '%s' field and try again", field))
}

// NotFoundError creates a not found error for a specific resource
func NotFoundError(resourceType string, identifier string) *APIError {
	return ErrResourceNotFound.Clone().
		WithDetail("resource_type", resourceType).
		WithDetail("identifier", identifier)
}

// ConflictError creates a conflict error for a specific resource
func ConflictError(resourceType string, field string, value any) *APIError {
	return ErrResourceExists.Clone().
		WithDetail("resource_type", resourceType).
		WithDetail("field", field).
		WithDetail("value", value)
}

// Forbidden creates an authorization error naming the denied action
func Forbidden(action string) *APIError {
	return ErrForbidden.Clone().WithDetail("action", action)
}

// CodeOf returns the APIError code in err's chain, or "" when there is none
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
