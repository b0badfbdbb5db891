package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when no usable user identity accompanies the request.
	ErrUnauthorized = errors.New("未授权访问")
	// ErrMethodNotAllowed is returned for a known path called with the wrong verb.
	ErrMethodNotAllowed = errors.New("不支持的请求方法")
	// ErrNotFoundOrForbidden is the sentinel behind every NotFoundOrForbiddenError.
	ErrNotFoundOrForbidden = errors.New("未找到记录或无权限")
	// ErrInvalidCredentials is returned when username or password is wrong.
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrUserNotFound is returned by profile lookups.
	ErrUserNotFound = errors.New("用户不存在")
	// ErrInvalidToken is returned when a bearer token cannot be parsed or was revoked.
	ErrInvalidToken = errors.New("无效的令牌")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundOrForbiddenError is returned when an ownership-scoped mutation matches no row.
// A missing record and a record owned by another user produce the same error.
type NotFoundOrForbiddenError struct {
	Action string
}

func (e *NotFoundOrForbiddenError) Error() string {
	return ErrNotFoundOrForbidden.Error() + e.Action
}

func (e *NotFoundOrForbiddenError) Is(target error) bool {
	return target == ErrNotFoundOrForbidden
}

// NotFoundOrForbidden builds the error for the given action, e.g. "修改" or "删除".
func NotFoundOrForbidden(action string) error {
	return &NotFoundOrForbiddenError{Action: action}
}

// PersistenceError wraps a database failure with the user-facing operation name.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s失败: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err, returning nil for a nil err.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// AggregationError reports a failed statistics computation. No partial result accompanies it.
type AggregationError struct {
	Message string
	Err     error
}

func (e *AggregationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. When exposeInternal is false the
// driver text of persistence and aggregation failures is withheld from the client.
func MapErrorToHTTP(err error, exposeInternal bool) *HTTPError {
	var (
		httpErr       *HTTPError
		validationErr *ValidationError
		persistErr    *PersistenceError
		aggErr        *AggregationError
		ownershipErr  *NotFoundOrForbiddenError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrMethodNotAllowed):
		return NewHTTPError(http.StatusMethodNotAllowed, ErrMethodNotAllowed.Error(), "METHOD_NOT_ALLOWED")
	case errors.As(err, &ownershipErr):
		return NewHTTPError(http.StatusBadRequest, ownershipErr.Error(), "NOT_FOUND_OR_FORBIDDEN")
	case errors.Is(err, ErrNotFoundOrForbidden):
		return NewHTTPError(http.StatusBadRequest, ErrNotFoundOrForbidden.Error(), "NOT_FOUND_OR_FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.As(err, &persistErr):
		if exposeInternal {
			return NewHTTPError(http.StatusBadRequest, persistErr.Error(), "PERSISTENCE_ERROR")
		}
		return NewHTTPError(http.StatusBadRequest, persistErr.Op+"失败", "PERSISTENCE_ERROR")
	case errors.As(err, &aggErr):
		if exposeInternal || aggErr.Err == nil {
			return NewHTTPError(http.StatusBadRequest, aggErr.Error(), "AGGREGATION_ERROR")
		}
		return NewHTTPError(http.StatusBadRequest, aggErr.Message, "AGGREGATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
