// Package session defines the per-session cart document store. One
// document lives under each session id for the lifetime of the session;
// expiry is the store's concern, not the cart engine's.
package session

import (
	"context"
	"errors"

	"storefront/pkg/cart"
)

// Store persists one cart document per session.
//
// Update is the only safe way to mutate a cart: it runs the load-mutate-save
// cycle atomically for the session, so two concurrent "add one" requests
// land as two increments instead of one overwriting the other.
type Store interface {
	// Load returns the document for the session. found is false when the
	// session has no cart yet; the zero Document is then a valid empty cart.
	Load(ctx context.Context, sessionID string) (doc cart.Document, found bool, err error)

	// Save writes the document unconditionally.
	Save(ctx context.Context, sessionID string, doc cart.Document) error

	// Update loads the current document, applies fn, and persists the
	// result, guaranteeing no concurrent Update for the same session is
	// silently lost. An error from fn aborts the update and is returned
	// unchanged.
	Update(ctx context.Context, sessionID string, fn func(cart.Document) (cart.Document, error)) (cart.Document, error)

	// Delete discards the session's cart, if any.
	Delete(ctx context.Context, sessionID string) error
}

// ErrConflict indicates an optimistic Update lost the race too many times
// in a row. Callers may retry the whole request.
var ErrConflict = errors.New("session: concurrent update conflict")
