package shared

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	ErrCurrencyMismatch = errors.New("money currencies differ")
	ErrAmountOverflow   = errors.New("money amount overflow")
)

// Money 值对象 - 以最小货币单位（分）存储金额
type Money struct {
	amount   int64
	currency string
}

func NewMoney(amount int64, currency string) Money {
	return Money{amount: amount, currency: currency}
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }

// Add 金额相加，币种必须一致
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return Money{}, ErrAmountOverflow
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Multiply 乘以数量，带溢出检查
func (m Money) Multiply(quantity int) (Money, error) {
	if quantity == 0 || m.amount == 0 {
		return Money{amount: 0, currency: m.currency}, nil
	}
	q := int64(quantity)
	result := m.amount * q
	if result/q != m.amount {
		return Money{}, ErrAmountOverflow
	}
	return Money{amount: result, currency: m.currency}, nil
}

func (m Money) IsGreaterThan(other Money) bool {
	return m.amount > other.amount
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	ErrInvalidEmail = errors.New("invalid email address")
)

// Email 值对象，创建时统一转小写
type Email struct {
	value string
}

func NewEmail(email string) (Email, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(email) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: email}, nil
}

func (e Email) Value() string  { return e.value }
func (e Email) String() string { return e.value }
