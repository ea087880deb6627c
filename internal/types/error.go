package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies a failure for the API error envelope.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindValidation   ErrorKind = "validation"
	KindInternal     ErrorKind = "internal"
)

// PortalError carries the failure taxonomy through the service layer up to
// the HTTP error handler. Kind determines the status code; Type is the
// dotted error scope reported to clients.
type PortalError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Type    string    `json:"type"`
}

func (e *PortalError) Error() string {
	return fmt.Sprintf("%s: %s [type: %s]", e.Kind, e.Message, e.Type)
}

// StatusCode maps the error kind to an HTTP status.
func (e *PortalError) StatusCode() int {
	switch e.Kind {
	case KindUnauthorized:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindValidation:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func Unauthorized(errType, format string, args ...interface{}) *PortalError {
	return &PortalError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...), Type: errType}
}

func NotFound(errType, format string, args ...interface{}) *PortalError {
	return &PortalError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), Type: errType}
}

func Conflict(errType, format string, args ...interface{}) *PortalError {
	return &PortalError{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Type: errType}
}

func Validation(errType, format string, args ...interface{}) *PortalError {
	return &PortalError{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Type: errType}
}

// AsPortalError unwraps err into a *PortalError if it is one.
func AsPortalError(err error) (*PortalError, bool) {
	var pe *PortalError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a PortalError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := AsPortalError(err)
	return ok && pe.Kind == kind
}
