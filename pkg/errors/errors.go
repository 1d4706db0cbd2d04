package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrParse:
		return http.StatusBadRequest
	case ErrSlotUnavailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrParse ErrorCode = iota + 1000
	ErrSlotUnavailable
	ErrStorage
)

// Parse reports input that could not be read as a date or time.
func Parse(field, value string, err error) *AppError {
	return &AppError{
		Code:    ErrParse,
		Message: fmt.Sprintf("could not parse %s %q", field, value),
		Err:     err,
	}
}

// SlotUnavailable reports a doctor/start pair with no free slot.
func SlotUnavailable(doctor, start string) *AppError {
	return &AppError{
		Code:    ErrSlotUnavailable,
		Message: fmt.Sprintf("no free slot for %s at %s", doctor, start),
	}
}

// Storage wraps a failed read or write of a flat file.
func Storage(op, path string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: fmt.Sprintf("storage %s %s failed", op, path),
		Err:     err,
	}
}

// HasCode reports whether err wraps an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsParse(err error) bool           { return HasCode(err, ErrParse) }
func IsSlotUnavailable(err error) bool { return HasCode(err, ErrSlotUnavailable) }
func IsStorage(err error) bool         { return HasCode(err, ErrStorage) }

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
