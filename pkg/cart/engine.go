package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/pkg/logger"
)

// Engine applies cart operations. It holds no cart state of its own; all
// state lives in the Document passed in and returned, so a single Engine
// serves every session concurrently.
type Engine struct {
	catalog Catalog
	log     *logger.Logger
}

// NewEngine constructs an Engine around the given catalog and logger.
func NewEngine(catalog Catalog, log *logger.Logger) *Engine {
	return &Engine{catalog: catalog, log: log}
}

// Add adds quantity of the given item to the document, accumulating onto
// an existing line ("add N more", not "set to N"). The item must exist in
// the catalog at add time. A zero-value document is a valid empty cart, so
// the first add needs no explicit creation step. The input document is not
// modified; the caller persists the returned one.
func (e *Engine) Add(ctx context.Context, doc Document, itemID string, quantity int) (Document, error) {
	if quantity <= 0 {
		return doc, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	_, found, err := e.catalog.Item(ctx, itemID)
	if err != nil {
		return doc, fmt.Errorf("catalog lookup for %q: %w", itemID, err)
	}
	if !found {
		return doc, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}

	out := doc.clone()
	for i := range out.Lines {
		if out.Lines[i].ItemID == itemID {
			out.Lines[i].Quantity += quantity
			return out, nil
		}
	}
	out.Lines = append(out.Lines, Line{ItemID: itemID, Quantity: quantity})
	return out, nil
}

// Remove deletes the whole line for the given item. Removing an item that
// has no line is an error, so callers can tell a stale UI from a valid
// request. The input document is not modified.
func (e *Engine) Remove(ctx context.Context, doc Document, itemID string) (Document, error) {
	out := doc.clone()
	for i := range out.Lines {
		if out.Lines[i].ItemID == itemID {
			out.Lines = append(out.Lines[:i], out.Lines[i+1:]...)
			return out, nil
		}
	}
	return doc, fmt.Errorf("%w: %q", ErrLineNotFound, itemID)
}

// Recompute derives the totals and the presentation view from the current
// lines and live catalog prices. It is the only writer of Total and
// TaxIncludedTotal. Lines whose item has vanished from the catalog are
// pruned rather than failing the whole cart. taxRate is a ratio (0.10
// means 10%); the tax-included total truncates toward zero, it never
// rounds up.
func (e *Engine) Recompute(ctx context.Context, doc Document, taxRate float64) (Document, []LineItemView, error) {
	out := doc.clone()
	kept := out.Lines[:0]
	views := make([]LineItemView, 0, len(out.Lines))
	var total int64

	for _, l := range out.Lines {
		item, found, err := e.catalog.Item(ctx, l.ItemID)
		if err != nil {
			return doc, nil, fmt.Errorf("catalog lookup for %q: %w", l.ItemID, err)
		}
		if !found {
			e.log.Debug(ctx, "pruning stale cart line", "item_id", l.ItemID, "quantity", l.Quantity)
			continue
		}
		subtotal := item.Price * int64(l.Quantity)
		total += subtotal
		kept = append(kept, l)
		views = append(views, LineItemView{
			ItemID:   l.ItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: l.Quantity,
			Subtotal: subtotal,
		})
	}

	out.Lines = kept
	out.Total = total
	out.TaxIncludedTotal = taxIncluded(total, taxRate)
	return out, views, nil
}

// taxIncluded computes trunc(total * (1 + rate)) in decimal arithmetic.
// Integer truncation is deliberate: 999 at 10% is 1098, not 1099.
func taxIncluded(total int64, rate float64) int64 {
	factor := decimal.NewFromFloat(rate).Add(decimal.NewFromInt(1))
	return decimal.NewFromInt(total).Mul(factor).IntPart()
}
