package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	minPriceFactor = decimal.RequireFromString("0.7")
	maxPriceFactor = decimal.RequireFromString("1.3")

	// ErrProductCannotBeDeleted is returned when deleting a product that still has stock.
	ErrProductCannotBeDeleted = errors.New("product with stock greater than zero can not be deleted")
)

// PriceRange holds the inclusive bounds for a price change.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// InvalidPriceChangeError is returned when a new price moves more than 30% away from the current one.
type InvalidPriceChangeError struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (e *InvalidPriceChangeError) Error() string {
	return fmt.Sprintf("price can not change by more than 30%% of the current value (%s - %s)",
		e.Min.StringFixed(2), e.Max.StringFixed(2))
}

// ComputeIsActive derives the activation flag from a stock level.
func ComputeIsActive(stock int) bool {
	return stock > 0
}

// CanBeDeleted reports whether a product with the given stock may be removed.
func CanBeDeleted(stock int) bool {
	return stock == 0
}

// IsPriceChangeValid reports whether proposed is within 30% of current, boundaries included.
// The comparison uses unrounded bounds.
func IsPriceChangeValid(current, proposed decimal.Decimal) bool {
	lower := current.Mul(minPriceFactor)
	upper := current.Mul(maxPriceFactor)
	return proposed.GreaterThanOrEqual(lower) && proposed.LessThanOrEqual(upper)
}

// AllowedPriceRange returns the bounds of IsPriceChangeValid rounded to cents.
func AllowedPriceRange(current decimal.Decimal) PriceRange {
	return PriceRange{
		Min: current.Mul(minPriceFactor).Round(2),
		Max: current.Mul(maxPriceFactor).Round(2),
	}
}
