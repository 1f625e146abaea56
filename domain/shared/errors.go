/*
Package shared - 领域层共享类型与错误定义

错误分类:
1. 哨兵错误(sentinel errors)用于 errors.Is() 判断
2. DomainError 在创建时捕获堆栈，日志打印时再格式化
3. PaginationError 是可恢复的校验错误，调用方通过 errors.As() 取得具体字段
4. 领域错误不包含 HTTP 状态码等传输层概念
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrConcurrentModification 乐观锁版本冲突，属于 ErrConflict，可重试
	ErrConcurrentModification = fmt.Errorf("%w: concurrent modification", ErrConflict)
)

// DomainError 携带业务上下文和发生点堆栈的结构化错误
type DomainError struct {
	// Err 底层哨兵错误
	Err error

	// Entity 发生错误的实体名称（如 "order", "outbox message"）
	Entity string

	Message string

	// Field 校验错误对应的字段名（可选）
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack 按需格式化堆栈
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack skip 通常为 3：Callers, CaptureStack, NewXxxError
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack 过滤 runtime 内部帧，最多返回 10 帧
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

func NewNotFoundError(entity, id string) error {
	msg := entity + " not found"
	if id != "" {
		msg += ": " + id
	}
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: msg,
		stack:   CaptureStack(3),
	}
}

func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewConcurrentModificationError 写入时版本号不匹配
func NewConcurrentModificationError(entity, id string) error {
	return &DomainError{
		Err:     ErrConcurrentModification,
		Entity:  entity,
		Message: entity + " " + id + " was modified by another transaction",
		stack:   CaptureStack(3),
	}
}

func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// PaginationError reports an invalid paging window. It unwraps to ErrInvalidInput.
type PaginationError struct {
	Field string
	Value int
	Min   int
	Max   int // 0 表示无上限
}

func (e *PaginationError) Error() string {
	if e.Max > 0 && e.Value > e.Max {
		return fmt.Sprintf("invalid pagination: %s must be at most %d, got %d", e.Field, e.Max, e.Value)
	}
	return fmt.Sprintf("invalid pagination: %s must be at least %d, got %d", e.Field, e.Min, e.Value)
}

func (e *PaginationError) Unwrap() error {
	return ErrInvalidInput
}

// Stacker 可提供堆栈的错误接口，API 层统一提取
type Stacker interface {
	Stack() []string
}
