package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/pkg/checkout"
	"storefront/pkg/otel"
)

// payCheckoutHandler opens a payment session for the current cart.
// @Summary Checkout
// @Produce json
// @Success 200 {object} checkout.Session
// @Router /pay/checkout [post]
func payCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "payCheckoutHandler")
	defer span.End()

	sess, err := checkouts.Checkout(ctx, cartSessionID(r), cfg.TaxRate())
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error(ctx, "checkout", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess)
}

// paySuccessHandler finalizes a paid checkout and clears the cart.
// @Summary Payment success callback
// @Produce json
// @Success 200
// @Router /pay/success [get]
func paySuccessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "paySuccessHandler")
	defer span.End()

	if err := checkouts.Complete(ctx, cartSessionID(r)); err != nil {
		log.Error(ctx, "complete checkout", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// payCancelHandler acknowledges a cancelled payment. The cart is kept so
// the customer can try again.
// @Summary Payment cancel callback
// @Produce json
// @Success 200
// @Router /pay/cancel [get]
func payCancelHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "payCancelHandler")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
}
