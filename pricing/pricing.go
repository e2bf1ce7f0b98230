// Package pricing computes cart and order line prices.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a cart line or order item may hold.
const MaxQuantity = 32767

// MaxAmount is the largest value a decimal(10,2) price column stores.
var MaxAmount = decimal.RequireFromString("99999999.99")

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrInvalidPrice     = errors.New("unit price must not be negative")
	ErrQuantityTooLarge = errors.New("quantity must not exceed 32767")
	ErrAmountTooLarge   = errors.New("amount must not exceed 99999999.99")
)

// CheckQuantity accepts 1..MaxQuantity.
func CheckQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return ErrQuantityTooLarge
	}
	return nil
}

// CheckAmount accepts 0..MaxAmount.
func CheckAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidPrice
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// ComputeLinePrice returns quantity × unitPrice.
func ComputeLinePrice(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if err := CheckQuantity(quantity); err != nil {
		return decimal.Zero, err
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	price := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := CheckAmount(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func Sum(prices []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	return total
}
