package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/edgy/edgy/pkg/engine"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/storage"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id"`
}

// Common error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"
)

// Common errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrValidationFailed   = errors.New("validation failed")
	ErrConflict           = errors.New("resource conflict")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("request timeout")
)

// HTTPStatusFromError maps engine, storage and mesh errors to HTTP status
// codes.
func HTTPStatusFromError(err error) int {
	var (
		notFound    *storage.NotFoundError
		duplicate   *storage.DuplicateKeyError
		unavailable *storage.StorageUnavailableError
		element     *mesh.ElementNotFoundError
		document    *mesh.InvalidDocumentError
		invalid     *engine.InvalidRequestError
		busy        *engine.MeshBusyError
		notRunning  *engine.EngineNotRunningError
	)

	switch {
	case errors.As(err, &busy):
		return http.StatusConflict
	case errors.As(err, &notFound), errors.As(err, &element), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &document), errors.As(err, &invalid),
		errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidationFailed):
		return http.StatusBadRequest
	case errors.As(err, &duplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &notRunning), errors.As(err, &unavailable), errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCodeFromStatus returns an error code for the given HTTP status.
func ErrorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusMethodNotAllowed:
		return ErrCodeMethodNotAllowed
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusRequestEntityTooLarge:
		return ErrCodeRequestTooLarge
	case http.StatusTooManyRequests:
		return ErrCodeTooManyRequests
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeGatewayTimeout
	default:
		return ErrCodeInternalServer
	}
}

// HandleError writes the response for err. Internal errors are reported
// without their message.
func HandleError(w http.ResponseWriter, err error, requestID string) {
	status := HTTPStatusFromError(err)
	code := ErrorCodeFromStatus(status)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	Error(w, status, code, message, requestID)
}
