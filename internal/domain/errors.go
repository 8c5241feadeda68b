package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that know their HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - match with errors.Is().
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrUnavailable marks an optional backend (blob storage, search index) that is not configured.
	ErrUnavailable = errors.New("service unavailable")
	// ErrUpstream marks a failure of a third-party collaborator such as URL extraction.
	ErrUpstream = errors.New("upstream failure")
)

type (
	// NotFoundError names the missing resource.
	NotFoundError struct {
		ResourceType string
		ResourceID   string
	}

	// ValidationError carries a user-facing message.
	ValidationError struct {
		Message string
	}
)

// NewNotFound builds a NotFoundError for the given resource.
func NewNotFound(resourceType, id string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceID)
}
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Is allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string
	ResourceType string // document, image
	ResourceID   string
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
