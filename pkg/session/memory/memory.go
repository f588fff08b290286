// Package memory implements an in-memory session store. Update is
// serialized per session id with a keyed mutex, which is the whole
// consistency story for a single-process deployment.
package memory

import (
	"context"
	"sync"

	"storefront/pkg/cart"
)

// Store provides an in-memory implementation of session.Store.
type Store struct {
	mu    sync.Mutex
	docs  map[string]cart.Document
	locks map[string]*sync.Mutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docs:  make(map[string]cart.Document),
		locks: make(map[string]*sync.Mutex),
	}
}

// Load returns the stored document for the session.
func (s *Store) Load(ctx context.Context, sessionID string) (cart.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[sessionID]
	if !ok {
		return cart.Document{}, false, nil
	}
	return doc, true, nil
}

// Save writes the document unconditionally.
func (s *Store) Save(ctx context.Context, sessionID string, doc cart.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[sessionID] = doc
	return nil
}

// Update applies fn under the session's mutex so concurrent updates for
// the same session cannot lose increments.
func (s *Store) Update(ctx context.Context, sessionID string, fn func(cart.Document) (cart.Document, error)) (cart.Document, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	doc, _, err := s.Load(ctx, sessionID)
	if err != nil {
		return cart.Document{}, err
	}
	doc, err = fn(doc)
	if err != nil {
		return cart.Document{}, err
	}
	if err := s.Save(ctx, sessionID, doc); err != nil {
		return cart.Document{}, err
	}
	return doc, nil
}

// Delete discards the session's cart.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, sessionID)
	return nil
}

func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
