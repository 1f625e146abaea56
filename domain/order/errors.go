/*
Package order - 订单领域错误定义

设计原则:

 1. 哨兵错误支持 errors.Is() 判断
 2. 构造函数在创建时捕获堆栈
 3. 每个错误同时解包为订单哨兵和 shared 分类哨兵(ErrNotFound/ErrConflict/ErrInvalidInput)，
    上层按分类映射，无需认识订单包
 4. 不包含 HTTP 状态码等非领域概念
*/
package order

import (
	"errors"
	"fmt"

	"storefront/domain/shared"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrConcurrentModification 乐观锁冲突，调用方应重试
	ErrConcurrentModification = errors.New("order was modified by another transaction, please retry")

	ErrInvalidOrderState           = errors.New("invalid order state transition")
	ErrEmptyOrderItems             = errors.New("order must have at least one item")
	ErrInvalidQuantity             = errors.New("quantity must be positive")
	ErrOrderTotalAmountNotPositive = errors.New("order total amount must be positive")
	ErrCannotModifyNonPendingOrder = errors.New("can only modify pending orders")
	ErrItemNotFound                = errors.New("item not found")
	ErrInvalidOrderInput           = errors.New("invalid order input")
)

// NewOrderNotFoundError 订单未找到（带堆栈）
func NewOrderNotFoundError(orderID string) error {
	return &orderDomainError{
		sentinel: ErrOrderNotFound,
		kind:     shared.ErrNotFound,
		message:  "order not found: " + orderID,
		stack:    shared.CaptureStack(3),
	}
}

func NewConcurrentModificationError(orderID string) error {
	return &orderDomainError{
		sentinel: ErrConcurrentModification,
		kind:     shared.ErrConcurrentModification,
		message:  "order " + orderID + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// NewInvalidOrderStateError current -> target 不是合法的状态转换
func NewInvalidOrderStateError(current, target Status) error {
	return &orderDomainError{
		sentinel: ErrInvalidOrderState,
		kind:     shared.ErrConflict,
		message:  fmt.Sprintf("cannot transition order from %s to %s", current, target),
		stack:    shared.CaptureStack(3),
	}
}

func NewCannotModifyOrderError(orderID string, status Status) error {
	return &orderDomainError{
		sentinel: ErrCannotModifyNonPendingOrder,
		kind:     shared.ErrConflict,
		message:  fmt.Sprintf("order %s is %s, only pending orders can be modified", orderID, status),
		stack:    shared.CaptureStack(3),
	}
}

func NewEmptyOrderItemsError() error {
	return &orderDomainError{
		sentinel: ErrEmptyOrderItems,
		kind:     shared.ErrInvalidInput,
		field:    "items",
		message:  ErrEmptyOrderItems.Error(),
		stack:    shared.CaptureStack(3),
	}
}

func NewItemNotFoundError(orderID, itemID string) error {
	return &orderDomainError{
		sentinel: ErrItemNotFound,
		kind:     shared.ErrNotFound,
		field:    "item_id",
		message:  "item " + itemID + " not found in order " + orderID,
		stack:    shared.CaptureStack(3),
	}
}

// NewValidationError 字段级校验错误
func NewValidationError(field, reason string) error {
	return &orderDomainError{
		sentinel: ErrInvalidOrderInput,
		kind:     shared.ErrInvalidInput,
		field:    field,
		message:  field + ": " + reason,
		stack:    shared.CaptureStack(3),
	}
}

// orderDomainError 实现 error, Unwrap, shared.Stacker
type orderDomainError struct {
	sentinel error
	kind     error
	field    string
	message  string
	stack    []uintptr
}

func (e *orderDomainError) Error() string {
	return e.message
}

func (e *orderDomainError) Unwrap() []error {
	return []error{e.sentinel, e.kind}
}

func (e *orderDomainError) Field() string {
	return e.field
}

func (e *orderDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}
