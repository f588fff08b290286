// Package cart implements the shopping cart engine: a session-scoped
// document of item lines with derived totals, mutated through add/remove
// and recomputed against live catalog prices.
package cart

import (
	"context"
	"errors"
	"fmt"
)

// Line is one (item, quantity) pair in a cart. Quantity is always >= 1;
// a line that would reach zero is removed instead.
type Line struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Document is the persisted cart state for one session. Lines are unique
// by item id and keep insertion order so the cart displays stably. Totals
// are derived and written only by Recompute; they are amounts in the
// currency's minor unit.
type Document struct {
	Lines            []Line `json:"lines"`
	Total            int64  `json:"total"`
	TaxIncludedTotal int64  `json:"tax_included_total"`
}

// IsEmpty reports whether the document has no lines.
func (d Document) IsEmpty() bool {
	return len(d.Lines) == 0
}

// Quantity returns the quantity for the given item, or 0 when the item
// has no line.
func (d Document) Quantity(itemID string) int {
	for _, l := range d.Lines {
		if l.ItemID == itemID {
			return l.Quantity
		}
	}
	return 0
}

// Validate checks the structural invariants of a document loaded from the
// session store: positive quantities and unique item ids. Documents are
// validated on load, not trusted.
func (d Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Lines))
	for _, l := range d.Lines {
		if l.ItemID == "" {
			return fmt.Errorf("%w: empty item id", ErrInvalidDocument)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: quantity %d for item %q", ErrInvalidDocument, l.Quantity, l.ItemID)
		}
		if _, ok := seen[l.ItemID]; ok {
			return fmt.Errorf("%w: duplicate line for item %q", ErrInvalidDocument, l.ItemID)
		}
		seen[l.ItemID] = struct{}{}
	}
	return nil
}

// clone returns a copy whose line slice does not alias the receiver's.
// Engine operations never mutate their input document.
func (d Document) clone() Document {
	out := d
	out.Lines = make([]Line, len(d.Lines))
	copy(out.Lines, d.Lines)
	return out
}

// Item carries the catalog fields the cart needs: the current price and
// what to display on a line.
type Item struct {
	ID    string
	Name  string
	Price int64
}

// Catalog is the read-only item lookup the engine depends on. found is
// false for an unknown id; a non-nil error means the catalog could not be
// reached and the operation must fail rather than guess.
type Catalog interface {
	Item(ctx context.Context, id string) (item Item, found bool, err error)
}

// LineItemView is one presentation row of the cart. It is rebuilt on every
// recompute and never persisted.
type LineItemView struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
}

// Errors returned by engine operations.
var (
	// ErrInvalidQuantity indicates a non-positive quantity passed to Add.
	ErrInvalidQuantity = errors.New("cart: quantity must be positive")

	// ErrItemNotFound indicates Add referenced an item the catalog does
	// not recognize.
	ErrItemNotFound = errors.New("cart: item not in catalog")

	// ErrLineNotFound indicates Remove targeted an item with no line.
	ErrLineNotFound = errors.New("cart: no line for item")

	// ErrInvalidDocument indicates a persisted document failed validation
	// on load.
	ErrInvalidDocument = errors.New("cart: invalid document")
)
