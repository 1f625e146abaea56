// Package errors 定义应用层错误码，并把领域错误映射为 AppError。
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/domain/shared"
)

// ErrorCode 错误码
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// CodeConcurrentModification 乐观锁冲突，客户端可重试
	CodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
)

var httpStatus = map[ErrorCode]int{
	CodeBadRequest:             http.StatusBadRequest,
	CodeValidation:             http.StatusBadRequest,
	CodeUnauthorized:           http.StatusUnauthorized,
	CodeForbidden:              http.StatusForbidden,
	CodeNotFound:               http.StatusNotFound,
	CodeConflict:               http.StatusConflict,
	CodeConcurrentModification: http.StatusConflict,
	CodeTooManyRequest:         http.StatusTooManyRequests,
	CodeInternal:               http.StatusInternalServerError,
}

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode 未知错误码一律 500
func (e *AppError) HTTPStatusCode() int {
	return StatusOf(e.Code)
}

func StatusOf(code ErrorCode) int {
	if s, ok := httpStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Unauthorized(message string) *AppError    { return New(CodeUnauthorized, message) }
func Forbidden(message string) *AppError       { return New(CodeForbidden, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }
func Validation(message string) *AppError      { return New(CodeValidation, message) }

// Is 检查是否为特定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

type fielder interface {
	Field() string
}

// FromDomainError 按 shared 分类哨兵映射错误码，不认识具体子域。
// 分页错误先于 ErrInvalidInput 判断，以带出字段名。
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var pageErr *shared.PaginationError
	if errors.As(err, &pageErr) {
		return &AppError{Code: CodeValidation, Message: pageErr.Error(), Field: pageErr.Field, Err: err}
	}

	var code ErrorCode
	switch {
	case errors.Is(err, shared.ErrConcurrentModification):
		code = CodeConcurrentModification
	case errors.Is(err, shared.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, shared.ErrConflict):
		code = CodeConflict
	case errors.Is(err, shared.ErrInvalidInput):
		code = CodeValidation
	case errors.Is(err, shared.ErrUnauthorized):
		code = CodeUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		code = CodeForbidden
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}

	out := &AppError{Code: code, Message: err.Error(), Err: err}
	var domainErr *shared.DomainError
	var f fielder
	if errors.As(err, &domainErr) {
		out.Field = domainErr.Field
	} else if errors.As(err, &f) {
		out.Field = f.Field()
	}
	return out
}
