package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"datalens/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. Domain sentinels keep their
// mapped code so the HTTP layer can still classify them.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code, or the code mapped from a
// domain sentinel, or CodeInternalError.
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Code != "" && appErr.Code != CodeInternalError {
		return appErr.Code
	}
	return domainCode(err)
}

func domainCode(err error) string {
	switch {
	case stderrors.Is(err, core.ErrDatasetNotFound):
		return CodeDatasetNotFound
	case core.IsNotFoundError(err):
		return CodeNotFound
	case stderrors.Is(err, core.ErrDatasetUnreadable):
		return CodeDatasetUnreadable
	case stderrors.Is(err, core.ErrUnknownColumn):
		return CodeUnknownColumn
	case stderrors.Is(err, core.ErrAmbiguousTarget):
		return CodeAmbiguousTarget
	case stderrors.Is(err, core.ErrUnsupportedMethod):
		return CodeUnsupportedMethod
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return CodeValidationError
	case stderrors.Is(err, ErrCancelled):
		return CodeCancelled
	}
	return CodeInternalError
}

// HTTPStatus maps an error code to the response status.
func HTTPStatus(code string) int {
	switch code {
	case CodeNotFound, CodeDatasetNotFound:
		return http.StatusNotFound
	case CodeValidationError, CodeInvalidInput, CodeUnknownColumn, CodeAmbiguousTarget,
		CodeUnsupportedMethod, CodeDatasetUnreadable:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	case CodeCancelled:
		return http.StatusRequestTimeout
	case CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrCancelled marks an operation abandoned because its context ended.
var ErrCancelled = stderrors.New("operation cancelled")

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeConflict          = "CONFLICT"
	CodeCancelled         = "CANCELLED"
	CodeDatasetNotFound   = "DATASET_NOT_FOUND"
	CodeDatasetUnreadable = "DATASET_UNREADABLE"
	CodeUnknownColumn     = "UNKNOWN_COLUMN"
	CodeAmbiguousTarget   = "AMBIGUOUS_TARGET"
	CodeUnsupportedMethod = "UNSUPPORTED_METHOD"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
