// Package domain defines the shared error taxonomy used by every
// AutoSkill component. Each error carries a stable code so callers
// can branch on failure class without string matching.
package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

// Generic codes (000-099).
const (
	ErrCodeUnknown          ErrorCode = "00001"
	ErrCodeInvalidRequest   ErrorCode = "00002"
	ErrCodeNotFound         ErrorCode = "00004"
	ErrCodeAlreadyExists    ErrorCode = "00005"
	ErrCodeInternalError    ErrorCode = "00008"
	ErrCodeInvalidInput     ErrorCode = "00009"
	ErrCodeValidationFailed ErrorCode = "00010"
)

// Skill registry codes (100-199).
const (
	ErrCodeSkillNotFound      ErrorCode = "00100"
	ErrCodeSkillAlreadyExists ErrorCode = "00101"
	ErrCodeSkillInvalid       ErrorCode = "00102"
	ErrCodeSkillDirMissing    ErrorCode = "00103"
)

// Intent matching codes (200-299).
const (
	ErrCodeMatchFailed    ErrorCode = "00200"
	ErrCodeInvalidPattern ErrorCode = "00201"
)

// Execution codes (300-399).
const (
	ErrCodeExecutionFailed ErrorCode = "00300"
	ErrCodeSafetyBlocked   ErrorCode = "00301"
	ErrCodeExecutorMissing ErrorCode = "00302"
)

// Learning codes (400-499).
const (
	ErrCodeLearningLoadFailed ErrorCode = "00400"
	ErrCodeLearningSaveFailed ErrorCode = "00401"
)

// Project context codes (500-599).
const (
	ErrCodeProjectAnalyzeFailed ErrorCode = "00500"
)

// Config codes (600-699).
const (
	ErrCodeConfigInvalid ErrorCode = "00600"
)

// Error is the unified error type for all AutoSkill domains.
type Error struct {
	Code    ErrorCode
	Domain  string
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// clone copies the error, including its details map, so derived
// errors never mutate package-level sentinels.
func (e *Error) clone() *Error {
	out := &Error{
		Code:    e.Code,
		Domain:  e.Domain,
		Message: e.Message,
		Cause:   e.Cause,
		Details: make(map[string]any, len(e.Details)),
	}
	for k, v := range e.Details {
		out.Details[k] = v
	}
	return out
}

// WithDetails returns a copy of the error with a key/value detail
// attached. The receiver is left unchanged.
func (e *Error) WithDetails(key string, value any) *Error {
	out := e.clone()
	out.Details[key] = value
	return out
}

// WithCause returns a copy of the error with the wrapped cause set.
// The receiver is left unchanged.
func (e *Error) WithCause(err error) *Error {
	out := e.clone()
	out.Cause = err
	return out
}

// Is matches two domain errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a generic error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
}

// NewDomainError creates an error attributed to a domain.
func NewDomainError(dom string, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Domain:  dom,
		Message: message,
		Details: make(map[string]any),
	}
}

// WrapError wraps an existing error with a code and message.
func WrapError(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
		Details: make(map[string]any),
	}
}

// WrapDomainError wraps an existing error, attributed to a domain.
func WrapDomainError(err error, dom string, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Domain:  dom,
		Message: message,
		Cause:   err,
		Details: make(map[string]any),
	}
}

// AsError converts any error to a *Error when possible.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
