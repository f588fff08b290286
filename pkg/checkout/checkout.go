// Package checkout hands a recomputed cart to a payment gateway. The
// gateway itself is an opaque downstream; this package only owns the
// handoff and the post-payment cart cleanup.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/pkg/cart"
	"storefront/pkg/logger"
	"storefront/pkg/session"
)

// Request is what the gateway needs to open a payment: the priced lines
// and totals of the cart being paid for.
type Request struct {
	SessionID        string              `json:"session_id"`
	Lines            []cart.LineItemView `json:"lines"`
	Total            int64               `json:"total"`
	TaxIncludedTotal int64               `json:"tax_included_total"`
}

// Session is the gateway's handle on an opened payment.
type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway opens a payment session downstream. Implementations must honor
// ctx cancellation and surface transient failures as errors.
type Gateway interface {
	CreateCheckout(ctx context.Context, req Request) (Session, error)
}

// ErrEmptyCart indicates checkout was requested for a session whose cart
// has no lines (or whose lines all pruned away).
var ErrEmptyCart = errors.New("checkout: cart is empty")

// Service drives a checkout: recompute against live prices, refuse empty
// carts, forward to the gateway.
type Service struct {
	engine  *cart.Engine
	store   session.Store
	gateway Gateway
	log     *logger.Logger
}

// NewService constructs a checkout service.
func NewService(engine *cart.Engine, store session.Store, gateway Gateway, log *logger.Logger) *Service {
	return &Service{engine: engine, store: store, gateway: gateway, log: log}
}

// Checkout recomputes the session's cart against current prices, persists
// the recomputed document, and opens a payment session for the result.
// The cart is kept until Complete so a cancelled payment loses nothing.
func (s *Service) Checkout(ctx context.Context, sessionID string, taxRate float64) (Session, error) {
	var views []cart.LineItemView
	doc, err := s.store.Update(ctx, sessionID, func(doc cart.Document) (cart.Document, error) {
		var err error
		doc, views, err = s.engine.Recompute(ctx, doc, taxRate)
		return doc, err
	})
	if err != nil {
		return Session{}, fmt.Errorf("recompute cart: %w", err)
	}
	if doc.IsEmpty() {
		return Session{}, ErrEmptyCart
	}

	sess, err := s.gateway.CreateCheckout(ctx, Request{
		SessionID:        sessionID,
		Lines:            views,
		Total:            doc.Total,
		TaxIncludedTotal: doc.TaxIncludedTotal,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create checkout: %w", err)
	}
	s.log.Info(ctx, "checkout opened", "session_id", sessionID, "checkout_id", sess.ID, "total", doc.TaxIncludedTotal)
	return sess, nil
}

// Complete clears the cart after a successful payment.
func (s *Service) Complete(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.log.Info(ctx, "checkout completed", "session_id", sessionID)
	return nil
}

// StubGateway fabricates payment sessions locally. Real payment
// processing is out of scope; this keeps the boundary exercised.
type StubGateway struct {
	log *logger.Logger
}

// NewStubGateway constructs a stub gateway.
func NewStubGateway(log *logger.Logger) *StubGateway {
	return &StubGateway{log: log}
}

// CreateCheckout returns a fabricated payment session pointing at the
// local success page.
func (g *StubGateway) CreateCheckout(ctx context.Context, req Request) (Session, error) {
	id := uuid.NewString()
	g.log.Info(ctx, "stub payment session", "checkout_id", id, "lines", len(req.Lines), "amount", req.TaxIncludedTotal)
	return Session{ID: id, RedirectURL: "/pay/success/"}, nil
}
