package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MaxNameLength is the maximum number of characters in a product name.
	MaxNameLength = 255
	// MaxStock is the largest stock level the products table can hold.
	MaxStock = math.MaxInt32
)

// MaxPrice is the largest price a NUMERIC(10,2) column can hold.
var MaxPrice = decimal.RequireFromString("99999999.99")

var (
	// ErrInvalidProduct is returned when a product violates one of its field invariants.
	ErrInvalidProduct = errors.New("invalid product")
)

// Product represents a sellable item with its stock level and metadata.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

// NewProduct builds a product with its activation flag derived from stock.
func NewProduct(name, description string, price decimal.Decimal, stock int) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		IsActive:    ComputeIsActive(stock),
	}
}

// InitMeta initializes the product metadata including ID and timestamps.
func (p *Product) InitMeta() {
	p.ID = uuid.New()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// Validate checks the field invariants of the product.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case utf8.RuneCountInString(p.Name) > MaxNameLength:
		return fmt.Errorf("%w: name must not exceed %d characters", ErrInvalidProduct, MaxNameLength)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
	case p.Price.GreaterThan(MaxPrice):
		return fmt.Errorf("%w: price must not be greater than %s", ErrInvalidProduct, MaxPrice.StringFixed(2))
	case !p.Price.Equal(p.Price.Round(2)):
		return fmt.Errorf("%w: price must not have more than 2 decimal places", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case p.Stock > MaxStock:
		return fmt.Errorf("%w: stock must not be greater than %d", ErrInvalidProduct, MaxStock)
	}
	return nil
}

// CanBeDeleted reports whether the product may be removed.
func (p *Product) CanBeDeleted() bool {
	return CanBeDeleted(p.Stock)
}

// IsPriceChangeValid reports whether the product price may change to newPrice.
func (p *Product) IsPriceChangeValid(newPrice decimal.Decimal) bool {
	return IsPriceChangeValid(p.Price, newPrice)
}

// AllowedPriceRange returns the rounded bounds a new price must fall within.
func (p *Product) AllowedPriceRange() PriceRange {
	return AllowedPriceRange(p.Price)
}

// ProductUpdate is a partial update. Nil fields were not supplied by the caller.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

// Apply merges the supplied fields onto p.
// The price rule is checked first so a rejected update leaves p untouched.
func (u ProductUpdate) Apply(p *Product) error {
	if u.Price != nil && !u.Price.Equal(p.Price) && !p.IsPriceChangeValid(*u.Price) {
		r := p.AllowedPriceRange()
		return &InvalidPriceChangeError{Min: r.Min, Max: r.Max}
	}

	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
		p.IsActive = ComputeIsActive(p.Stock)
	}
	return nil
}

// IsEmpty reports whether no field was supplied.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Stock == nil
}
