// Package redis implements the session store on Redis. Documents are JSON
// values under a prefixed key with the session's TTL. Update runs the
// load-mutate-save cycle inside WATCH/MULTI, retrying on contention, so
// concurrent mutations for one session never lose increments.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/pkg/cart"
	"storefront/pkg/session"
)

// maxRetries bounds the optimistic CAS loop before giving up with
// session.ErrConflict.
const maxRetries = 5

// Store provides a Redis-backed implementation of session.Store.
type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// New creates a store using the given client. Keys are written under
// "cart:" and expire after ttl, tying the cart's lifetime to the session.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, keyPrefix: "cart:", ttl: ttl}
}

// Load fetches and validates the session's document. A missing key means
// the session has no cart yet, which is not an error.
func (s *Store) Load(ctx context.Context, sessionID string) (cart.Document, bool, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Document{}, false, nil
	}
	if err != nil {
		return cart.Document{}, false, fmt.Errorf("load cart: %w", err)
	}
	doc, err := decode(raw)
	if err != nil {
		return cart.Document{}, false, err
	}
	return doc, true, nil
}

// Save writes the document unconditionally, refreshing the TTL.
func (s *Store) Save(ctx context.Context, sessionID string, doc cart.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Update applies fn as a compare-and-swap: the key is WATCHed, fn runs on
// the loaded document, and the write commits only if no other client
// touched the key in between. Contention retries up to maxRetries, then
// fails with session.ErrConflict.
func (s *Store) Update(ctx context.Context, sessionID string, fn func(cart.Document) (cart.Document, error)) (cart.Document, error) {
	key := s.key(sessionID)
	var updated cart.Document

	txn := func(tx *redis.Tx) error {
		var doc cart.Document
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// No cart yet; start from empty.
		case err != nil:
			return fmt.Errorf("load cart: %w", err)
		default:
			if doc, err = decode(raw); err != nil {
				return err
			}
		}

		if doc, err = fn(doc); err != nil {
			return err
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = doc
		return nil
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return cart.Document{}, err
		}
		return updated, nil
	}
	return cart.Document{}, session.ErrConflict
}

// Delete discards the session's cart.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *Store) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func decode(raw []byte) (cart.Document, error) {
	var doc cart.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return cart.Document{}, fmt.Errorf("decode cart: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return cart.Document{}, err
	}
	return doc, nil
}
