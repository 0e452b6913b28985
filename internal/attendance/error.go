package attendance

import (
	"errors"
	"fmt"
	"net/http"
)

// Store が返す番兵エラー
var (
	ErrRecordExists   = errors.New("attendance record already exists for learner/session/day")
	ErrRecordNotFound = errors.New("attendance record not found")
)

type Code string

const (
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInvalidSubmission   Code = "INVALID_SUBMISSION"
	CodeDuplicateSubmission Code = "DUPLICATE_SUBMISSION"
	CodeNotFound            Code = "NOT_FOUND"
	CodeStoreUnavailable    Code = "STORE_UNAVAILABLE"
	CodeInternal            Code = "INTERNAL"
)

// APIError: 呼び出し側へ返すエラー。Err は内部原因（レスポンスには出さない）
type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable: STORE_UNAVAILABLE だけ再試行してよい（重複チェックが再度かかるので安全）
func (e *APIError) Retryable() bool { return e.Code == CodeStoreUnavailable }

func ErrUnauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}

func ErrForbidden(msg string) *APIError {
	return &APIError{Code: CodeForbidden, Message: msg}
}

func ErrInvalidSubmission(field, reason string) *APIError {
	return &APIError{Code: CodeInvalidSubmission, Message: reason, Field: field}
}

func ErrDuplicateSubmission(msg string) *APIError {
	return &APIError{Code: CodeDuplicateSubmission, Message: msg, Err: ErrRecordExists}
}

func ErrNotFound(msg string) *APIError {
	return &APIError{Code: CodeNotFound, Message: msg, Err: ErrRecordNotFound}
}

func ErrStoreUnavailable(msg string, cause error) *APIError {
	return &APIError{Code: CodeStoreUnavailable, Message: msg, Err: cause}
}

func ErrInternal(msg string) *APIError {
	return &APIError{Code: CodeInternal, Message: msg}
}

// CodeOf returns the APIError code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

func toHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidSubmission:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateSubmission:
		return http.StatusConflict
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
