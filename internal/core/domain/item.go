// internal/core/domain/item.go
package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Item represents a single inventory record
type Item struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

// Storage limits shared by every repository, so a value that validates
// round-trips unchanged whatever the driver.
const (
	MaxPriceScale = 4
	MaxQuantity   = math.MaxInt32
)

// MaxPrice is the exclusive upper bound of a storable price
var MaxPrice = decimal.New(1, 15)

// Validate performs domain validation on the item
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidItem)
	}
	if !i.Price.Equal(i.Price.Truncate(MaxPriceScale)) {
		return fmt.Errorf("%w: price has more than %d decimal places", ErrInvalidItem, MaxPriceScale)
	}
	if i.Price.GreaterThanOrEqual(MaxPrice) {
		return fmt.Errorf("%w: price must be below %s", ErrInvalidItem, MaxPrice)
	}
	if i.QuantityInStock < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidItem)
	}
	if i.QuantityInStock > MaxQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrInvalidItem, MaxQuantity)
	}
	return nil
}

// IsStockAvailable reports whether at least one unit can be sold
func (i Item) IsStockAvailable() bool {
	return i.QuantityInStock > 0
}

// Sold returns a copy of the item with one unit removed from stock.
// Callers must check IsStockAvailable first.
func (i Item) Sold() Item {
	i.QuantityInStock--
	return i
}

// HasGeneratedID reports whether the item already carries a persisted id
func (i Item) HasGeneratedID() bool {
	return i.ID > 0
}

// IsEntryValid returns true when none of the raw entry fields is blank.
// Numeric format is not checked here; see ParseEntry.
func IsEntryValid(name, price, quantity string) bool {
	return strings.TrimSpace(name) != "" &&
		strings.TrimSpace(price) != "" &&
		strings.TrimSpace(quantity) != ""
}

// ParseEntry converts raw entry text into an Item without an id
func ParseEntry(name, price, quantity string) (Item, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return Item{}, fmt.Errorf("%w: price %q: %v", ErrParse, price, err)
	}

	q, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil {
		return Item{}, fmt.Errorf("%w: quantity %q: %v", ErrParse, quantity, err)
	}

	return Item{
		Name:            strings.TrimSpace(name),
		Price:           p,
		QuantityInStock: q,
	}, nil
}

// Equal reports whether both items hold the same field values
func (i Item) Equal(other Item) bool {
	return i.ID == other.ID &&
		i.Name == other.Name &&
		i.Price.Equal(other.Price) &&
		i.QuantityInStock == other.QuantityInStock
}
