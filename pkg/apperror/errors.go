package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
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

// Is matches another AppError by code so callers can test with errors.Is
// against a freshly constructed sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security & Authentication (SEC) ----

func ErrUnverifiedWebhook() *AppError {
	return New("SEC_001", "Webhook signature could not be verified", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SEC_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Delivery (DLV) ----

// ErrNotFound never names the identifier that was looked up.
func ErrNotFound(entity string) *AppError {
	return New("DLV_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrStorageUnavailable(err error) *AppError {
	return Wrap("DLV_002", "Unable to connect to file storage", http.StatusNotFound, err)
}

func ErrMissingFile(err error) *AppError {
	return Wrap("DLV_003", "System error: cannot find file path", http.StatusInternalServerError, err)
}

func ErrSignedURLFailure(err error) *AppError {
	return Wrap("DLV_004", "System error: cannot generate signed URL", http.StatusInternalServerError, err)
}

// ---- Orders (ORD) ----

func ErrInvalidOrderPayload(err error) *AppError {
	return Wrap("ORD_001", "Invalid order payload", http.StatusBadRequest, err)
}

func ErrVariantNotFound(variantID string) *AppError {
	return New("ORD_002", fmt.Sprintf("reference variant %s not found", variantID), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrNotificationFailure(err error) *AppError {
	return Wrap("SYS_002", "Notification could not be sent", http.StatusBadGateway, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a 400 validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
