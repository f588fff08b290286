package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/otel"
	"storefront/pkg/session"
)

// catalogAdapter narrows the catalog repository to the read-only lookup
// the cart engine depends on. A missing item is (zero, false, nil); only
// an unreachable catalog is an error.
type catalogAdapter struct {
	repo catalog.Repository
}

func (a catalogAdapter) Item(ctx context.Context, id string) (cart.Item, bool, error) {
	it, err := a.repo.GetItem(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return cart.Item{}, false, nil
	}
	if err != nil {
		return cart.Item{}, false, err
	}
	return cart.Item{ID: it.ID, Name: it.Name, Price: it.Price}, true, nil
}

// cartResponse is the rendered cart: priced lines plus totals.
type cartResponse struct {
	Lines            []cart.LineItemView `json:"lines"`
	Total            int64               `json:"total"`
	TaxIncludedTotal int64               `json:"tax_included_total"`
}

// addCartRequest is the body of POST /cart/add.
type addCartRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// viewCartHandler renders the cart, recomputing totals against current
// prices first.
// @Summary View cart
// @Produce json
// @Success 200 {object} cartResponse
// @Router /cart [get]
func viewCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "viewCartHandler")
	defer span.End()

	respondCart(ctx, w, cartSessionID(r), func(doc cart.Document) (cart.Document, error) {
		return doc, nil
	})
}

// addToCartHandler adds quantity of an item to the cart.
// @Summary Add to cart
// @Accept json
// @Produce json
// @Param line body addCartRequest true "Item and quantity"
// @Success 200 {object} cartResponse
// @Router /cart/add [post]
func addToCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addToCartHandler")
	defer span.End()

	var req addCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondCart(ctx, w, cartSessionID(r), func(doc cart.Document) (cart.Document, error) {
		return engine.Add(ctx, doc, req.ItemID, req.Quantity)
	})
}

// removeFromCartHandler removes an item's line from the cart.
// @Summary Remove from cart
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} cartResponse
// @Router /cart/remove/{id} [post]
func removeFromCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeFromCartHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	respondCart(ctx, w, cartSessionID(r), func(doc cart.Document) (cart.Document, error) {
		return engine.Remove(ctx, doc, id)
	})
}

// respondCart applies mutate and a recompute as one atomic cart update,
// then renders the result. Recompute runs after every mutation and on
// every view, so stored totals never drift from live prices.
func respondCart(ctx context.Context, w http.ResponseWriter, sid string, mutate func(cart.Document) (cart.Document, error)) {
	var views []cart.LineItemView
	doc, err := carts.Update(ctx, sid, func(doc cart.Document) (cart.Document, error) {
		doc, err := mutate(doc)
		if err != nil {
			return doc, err
		}
		doc, views, err = engine.Recompute(ctx, doc, cfg.TaxRate())
		return doc, err
	})
	if err != nil {
		status := cartErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error(ctx, "cart update", "session_id", sid, "error", err)
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cartResponse{
		Lines:            views,
		Total:            doc.Total,
		TaxIncludedTotal: doc.TaxIncludedTotal,
	})
}

// cartErrorStatus maps engine and store errors onto HTTP statuses. User
// mistakes are 4xx; dependency trouble stays 5xx and retryable.
func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
