package kernel

import (
	"fmt"
	"unicode"

	"marketorder/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrMoneyIsNotConstructed indicates that a Money value was not initialized through
// NewMoney. Returned when validating a zero-value Money.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("Money must be created via NewMoney")

// Money is a value object representing a monetary amount in a single currency.
// Amounts are held as arbitrary-precision decimals so fee computations never
// accumulate binary floating-point drift.
//
// Money is immutable: arithmetic methods return new values. The zero value is
// invalid and must be constructed through NewMoney.
//
// Example:
//
//	price, err := kernel.NewMoney(decimal.NewFromInt(1000), "USD")
//	if err != nil {
//	    // handle error
//	}
//	fee := price.MulRound(decimal.NewFromFloat(0.15)) // 150.00 USD
type Money struct {
	amount   decimal.Decimal
	currency string

	isConstructed bool
}

// NewMoney creates a Money value. The amount must be positive and the currency
// must be a three-letter uppercase ISO 4217 code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s is not greater than 0", amount))
	}
	if !isCurrencyCode(currency) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("%q is not a three-letter ISO 4217 code", currency))
	}

	return Money{
		amount:        amount,
		currency:      currency,
		isConstructed: true,
	}, nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsUpper(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// IsEqual reports whether two Money values have the same currency and amount.
func (m Money) IsEqual(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// MulRound multiplies the amount by factor and rounds half-up to two decimal
// places, the granularity shared by all supported currencies.
func (m Money) MulRound(factor decimal.Decimal) Money {
	return Money{
		amount:        m.amount.Mul(factor).Round(2),
		currency:      m.currency,
		isConstructed: true,
	}
}

// Sub returns m minus other. Both values must carry the same currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("cannot subtract %s from %s", other.currency, m.currency))
	}

	return Money{
		amount:        m.amount.Sub(other.amount),
		currency:      m.currency,
		isConstructed: true,
	}, nil
}

// String formats the value as "<amount> <currency>", e.g. "850 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount, m.currency)
}

// Validate returns ErrMoneyIsNotConstructed for a zero value, nil otherwise.
func (m Money) Validate() error {
	if !m.isConstructed {
		return ErrMoneyIsNotConstructed
	}
	return nil
}
