package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code returned to clients.
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken    ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken    ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidPassword ErrorCode = "INVALID_PASSWORD"
	ErrCodeInvalidLogin    ErrorCode = "INVALID_LOGIN"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserExists      ErrorCode = "USER_EXISTS"
	ErrCodeUserInactive    ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidRole     ErrorCode = "INVALID_ROLE"

	// Resource errors
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInvalidStatus      ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeInstrumentNotReady ErrorCode = "INSTRUMENT_UNAVAILABLE"
	ErrCodeBookingConflict    ErrorCode = "BOOKING_CONFLICT"
	ErrCodeAlreadyReviewed    ErrorCode = "ALREADY_REVIEWED"
	ErrCodeAlreadyPaid        ErrorCode = "ALREADY_PAID"
	ErrCodePaymentInProgress  ErrorCode = "PAYMENT_IN_PROGRESS"

	// Quote errors
	ErrCodeInvalidWindow    ErrorCode = "INVALID_WINDOW"
	ErrCodeNoApplicableTier ErrorCode = "NO_APPLICABLE_TIER"
	ErrCodeZeroDuration     ErrorCode = "ZERO_DURATION"

	// Database errors
	ErrCodeDBError     ErrorCode = "DB_ERROR"
	ErrCodeDBNotFound  ErrorCode = "DB_NOT_FOUND"
	ErrCodeDBDuplicate ErrorCode = "DB_DUPLICATE"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeInvalidAmount ErrorCode = "INVALID_AMOUNT"

	// Integration errors
	ErrCodePaymentFailed ErrorCode = "PAYMENT_FAILED"
	ErrCodeUploadFailed  ErrorCode = "UPLOAD_FAILED"
)

// AppError carries a code and a user-facing message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError returns the first AppError in err's chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

func NotFound(what string) *AppError {
	return NewAppError(ErrCodeNotFound, what+" not found", nil)
}

func Forbidden(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, nil)
}

func Validation(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, nil)
}

func DB(err error) *AppError {
	return NewAppError(ErrCodeDBError, "database error", err)
}
