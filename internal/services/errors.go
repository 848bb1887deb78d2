package services

import (
	"errors"
	"fmt"

	apperrors "github.com/ieltsprep/exam-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Test specific errors
	ErrTestNotFound       = errors.New("test not found")
	ErrTestAccessDenied   = errors.New("access denied to test")
	ErrTestNotEditable    = errors.New("test cannot be edited in current status")
	ErrTestInvalidStatus  = errors.New("invalid test status transition")
	ErrTestDuplicateTitle = errors.New("test title already exists for this user")
	ErrTestNotPublished   = errors.New("test is not published")
	ErrTestHasNoQuestions = errors.New("test has no questions")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionInvalidType    = errors.New("invalid question type")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")

	// Session specific errors
	ErrSessionNotFound         = errors.New("test session not found")
	ErrSessionNotActive        = errors.New("test session is not active")
	ErrSessionAlreadyCompleted = errors.New("test session already completed")
	ErrSessionTokenMismatch    = errors.New("session token does not match")

	// Result specific errors
	ErrResultNotFound     = errors.New("test result not found")
	ErrResultAccessDenied = errors.New("access denied to test result")

	// Scoring specific errors
	ErrScoringNotAllowed  = errors.New("scoring not allowed for this question type")
	ErrScoringInvalidBand = errors.New("band score outside allowed range")
	ErrScorerUnavailable  = errors.New("scoring service unavailable")

	// Curriculum specific errors
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseAccessDenied    = errors.New("access denied to course")
	ErrCourseSessionNotFound = errors.New("course session not found")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
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

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrCourseSessionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrTestAccessDenied) ||
		errors.Is(err, ErrResultAccessDenied) ||
		errors.Is(err, ErrCourseAccessDenied) ||
		errors.Is(err, ErrInsufficientPermissions)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTestDuplicateTitle) ||
		errors.Is(err, ErrSessionAlreadyCompleted) ||
		errors.Is(err, ErrSessionTokenMismatch)
}
