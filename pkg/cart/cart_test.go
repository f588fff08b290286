package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"storefront/pkg/logger"
)

type fakeCatalog struct {
	items map[string]Item
	err   error
}

func (f *fakeCatalog) Item(ctx context.Context, id string) (Item, bool, error) {
	if f.err != nil {
		return Item{}, false, f.err
	}
	it, ok := f.items[id]
	return it, ok, nil
}

func newTestEngine(items map[string]Item) (*Engine, *fakeCatalog) {
	cat := &fakeCatalog{items: items}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewEngine(cat, log), cat
}

func twoItemCatalog() map[string]Item {
	return map[string]Item{
		"item-1": {ID: "item-1", Name: "Carrot", Price: 500},
		"item-2": {ID: "item-2", Name: "Potato", Price: 1000},
	}
}

func TestAddAccumulates(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, err := e.Add(ctx, Document{}, "item-1", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	doc, err = e.Add(ctx, doc, "item-1", 3)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(doc.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(doc.Lines))
	}
	if got := doc.Quantity("item-1"); got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestAddInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	for _, qty := range []int{0, -1, -100} {
		if _, err := e.Add(ctx, Document{}, "item-1", qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestAddUnknownItem(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, err := e.Add(ctx, Document{}, "nope", 1)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if !doc.IsEmpty() {
		t.Fatal("cart should be unmodified after a failed add")
	}
}

func TestAddCatalogUnavailable(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(twoItemCatalog())
	cat.err = errors.New("connection refused")

	_, err := e.Add(ctx, Document{}, "item-1", 1)
	if err == nil || errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected a transport error, got %v", err)
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	orig, err := e.Add(ctx, Document{}, "item-1", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := e.Add(ctx, orig, "item-1", 3); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if got := orig.Quantity("item-1"); got != 2 {
		t.Fatalf("input document mutated: quantity %d", got)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 2)
	doc, _ = e.Add(ctx, doc, "item-2", 1)

	doc, err := e.Remove(ctx, doc, "item-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if doc.Quantity("item-1") != 0 {
		t.Fatal("line for item-1 should be gone")
	}
	if doc.Quantity("item-2") != 1 {
		t.Fatal("line for item-2 should survive")
	}
}

func TestRemoveLastLineEmptiesCart(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 1)
	doc, err := e.Remove(ctx, doc, "item-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !doc.IsEmpty() {
		t.Fatal("expected empty cart")
	}
}

func TestRemoveMissingLine(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 1)
	if _, err := e.Remove(ctx, doc, "item-2"); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestRecomputeScenario(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 2)
	doc, _ = e.Add(ctx, doc, "item-2", 1)

	doc, views, err := e.Recompute(ctx, doc, 0.10)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].ItemID != "item-1" || views[0].Quantity != 2 || views[0].Subtotal != 1000 {
		t.Fatalf("unexpected first view: %+v", views[0])
	}
	if views[1].ItemID != "item-2" || views[1].Quantity != 1 || views[1].Subtotal != 1000 {
		t.Fatalf("unexpected second view: %+v", views[1])
	}
	if doc.Total != 2000 || doc.TaxIncludedTotal != 2200 {
		t.Fatalf("unexpected totals: %d / %d", doc.Total, doc.TaxIncludedTotal)
	}

	doc, _ = e.Remove(ctx, doc, "item-1")
	doc, views, err = e.Recompute(ctx, doc, 0.10)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if len(views) != 1 || views[0].ItemID != "item-2" {
		t.Fatalf("unexpected views after remove: %+v", views)
	}
	if doc.Total != 1000 || doc.TaxIncludedTotal != 1100 {
		t.Fatalf("unexpected totals after remove: %d / %d", doc.Total, doc.TaxIncludedTotal)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 2)
	first, firstViews, err := e.Recompute(ctx, doc, 0.10)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	second, secondViews, err := e.Recompute(ctx, first, 0.10)
	if err != nil {
		t.Fatalf("recompute again: %v", err)
	}
	if first.Total != second.Total || first.TaxIncludedTotal != second.TaxIncludedTotal {
		t.Fatalf("totals changed: %+v vs %+v", first, second)
	}
	if len(firstViews) != len(secondViews) || firstViews[0] != secondViews[0] {
		t.Fatalf("views changed: %+v vs %+v", firstViews, secondViews)
	}
}

func TestRecomputeTaxTruncation(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(map[string]Item{
		"odd": {ID: "odd", Name: "Odd", Price: 999},
	})

	doc, _ := e.Add(ctx, Document{}, "odd", 1)
	doc, _, err := e.Recompute(ctx, doc, 0.10)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if doc.Total != 999 {
		t.Fatalf("expected total 999, got %d", doc.Total)
	}
	// 999 * 1.10 = 1098.9 truncates to 1098, never 1099.
	if doc.TaxIncludedTotal != 1098 {
		t.Fatalf("expected tax-included 1098, got %d", doc.TaxIncludedTotal)
	}
}

func TestRecomputePrunesStaleLines(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 2)
	doc, _ = e.Add(ctx, doc, "item-2", 1)

	delete(cat.items, "item-1")

	doc, views, err := e.Recompute(ctx, doc, 0.10)
	if err != nil {
		t.Fatalf("recompute must not fail on a stale line: %v", err)
	}
	if len(views) != 1 || views[0].ItemID != "item-2" {
		t.Fatalf("expected only item-2 to survive, got %+v", views)
	}
	if doc.Quantity("item-1") != 0 {
		t.Fatal("stale line should be pruned from the document")
	}
	if doc.Total != 1000 || doc.TaxIncludedTotal != 1100 {
		t.Fatalf("totals must exclude the pruned line: %d / %d", doc.Total, doc.TaxIncludedTotal)
	}
}

func TestRecomputeEmptyCart(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc, views, err := e.Recompute(ctx, Document{}, 0.10)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(views) != 0 || doc.Total != 0 || doc.TaxIncludedTotal != 0 {
		t.Fatalf("expected zeroed empty cart, got %+v %+v", doc, views)
	}
}

func TestRecomputeCatalogUnavailable(t *testing.T) {
	ctx := context.Background()
	e, cat := newTestEngine(twoItemCatalog())

	doc, _ := e.Add(ctx, Document{}, "item-1", 2)
	cat.err = errors.New("connection refused")

	if _, _, err := e.Recompute(ctx, doc, 0.10); err == nil {
		t.Fatal("expected error when the catalog is unreachable")
	}
	if doc.Quantity("item-1") != 2 {
		t.Fatal("document must be unchanged on failure")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		ok   bool
	}{
		{"empty", Document{}, true},
		{"valid", Document{Lines: []Line{{ItemID: "a", Quantity: 1}, {ItemID: "b", Quantity: 3}}}, true},
		{"zero quantity", Document{Lines: []Line{{ItemID: "a", Quantity: 0}}}, false},
		{"negative quantity", Document{Lines: []Line{{ItemID: "a", Quantity: -2}}}, false},
		{"duplicate line", Document{Lines: []Line{{ItemID: "a", Quantity: 1}, {ItemID: "a", Quantity: 2}}}, false},
		{"empty id", Document{Lines: []Line{{ItemID: "", Quantity: 1}}}, false},
	}
	for _, tt := range tests {
		err := tt.doc.Validate()
		if tt.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", tt.name, err)
		}
	}
}

func TestNonNegativeInvariant(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(twoItemCatalog())

	doc := Document{}
	var err error
	for i := 0; i < 10; i++ {
		if doc, err = e.Add(ctx, doc, "item-1", 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	doc, _ = e.Remove(ctx, doc, "item-1")
	doc, _ = e.Add(ctx, doc, "item-2", 3)
	doc, _, err = e.Recompute(ctx, doc, 0.10)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	for _, l := range doc.Lines {
		if l.Quantity < 1 {
			t.Fatalf("line with quantity %d", l.Quantity)
		}
	}
	if doc.Total < 0 || doc.TaxIncludedTotal < 0 {
		t.Fatalf("negative totals: %d / %d", doc.Total, doc.TaxIncludedTotal)
	}
}
