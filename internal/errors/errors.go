package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"cardiorisk/domain/core"
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

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
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

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HTTPStatus maps an error code to the status code used by the HTTP layers
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeValidationError, CodeEmptyInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeModelUnavailable, CodeDatasetUnavailable:
		return http.StatusServiceUnavailable
	}
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsValidationError(err), stderrors.Is(err, core.ErrEmptyEnsemble):
		return http.StatusBadRequest
	case stderrors.Is(err, core.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeEmptyInput         = "EMPTY_INPUT"
	CodeModelUnavailable   = "MODEL_UNAVAILABLE"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodePredictionFailed   = "PREDICTION_FAILED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// InvalidRecord rejects a clinical record, keeping the validation error as cause
func InvalidRecord(cause error) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: "invalid clinical record", Cause: cause}
}

// EmptyInput reports an aggregation over no predictions
func EmptyInput(cause error) *AppError {
	return &AppError{Code: CodeEmptyInput, Message: "no predictions to aggregate", Cause: cause}
}

func ModelUnavailable(name string, cause error) *AppError {
	return &AppError{Code: CodeModelUnavailable, Message: fmt.Sprintf("model %s unavailable", name), Cause: cause}
}

func DatasetUnavailable(cause error) *AppError {
	return &AppError{Code: CodeDatasetUnavailable, Message: "dataset unavailable", Cause: cause}
}

func PredictionFailed(model string, cause error) *AppError {
	return &AppError{Code: CodePredictionFailed, Message: fmt.Sprintf("prediction with %s failed", model), Cause: cause}
}
