package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Dataset resolution errors
	ErrDatasetNotFound   = errors.New("dataset not found")
	ErrDatasetUnreadable = errors.New("dataset unreadable")

	// Input errors
	ErrUnknownColumn     = errors.New("unknown column")
	ErrAmbiguousTarget   = errors.New("ambiguous target")
	ErrUnsupportedMethod = errors.New("unsupported method")

	// Configuration errors
	ErrConfigurationNotFound = errors.New("analysis configuration not found")
	ErrInvalidConfiguration  = errors.New("invalid analysis configuration")
	ErrReportNotFound        = errors.New("report not found")
)

// SectionComputationFailed records a single report section that could not be produced.
// It never aborts assembly; the section is omitted and the failure is reported alongside.
type SectionComputationFailed struct {
	Section string
	Cause   error
}

func (e *SectionComputationFailed) Error() string {
	return fmt.Sprintf("section %s failed: %v", e.Section, e.Cause)
}

func (e *SectionComputationFailed) Unwrap() error {
	return e.Cause
}

// Error constructors with context
func NewDatasetNotFoundError(handle string) error {
	return fmt.Errorf("%w: %s", ErrDatasetNotFound, handle)
}

func NewDatasetUnreadableError(handle string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrDatasetUnreadable, handle)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatasetUnreadable, handle, cause)
}

func NewUnknownColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

func NewAmbiguousTargetError(column, reason string) error {
	return fmt.Errorf("%w: %q %s", ErrAmbiguousTarget, column, reason)
}

func NewUnsupportedMethodError(kind, method string) error {
	return fmt.Errorf("%w: %s %q", ErrUnsupportedMethod, kind, method)
}

func NewInvalidConfigurationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, reason)
}

func NewSectionFailure(section string, cause error) *SectionComputationFailed {
	return &SectionComputationFailed{Section: section, Cause: cause}
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrDatasetNotFound) ||
		errors.Is(err, ErrConfigurationNotFound) ||
		errors.Is(err, ErrReportNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrAmbiguousTarget) ||
		errors.Is(err, ErrUnsupportedMethod) ||
		errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrDatasetUnreadable)
}

// AsSectionFailure extracts the failing section, if any.
func AsSectionFailure(err error) (*SectionComputationFailed, bool) {
	var sf *SectionComputationFailed
	if errors.As(err, &sf) {
		return sf, true
	}
	return nil, false
}
