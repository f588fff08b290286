// Package memory implements an in-memory catalog repository, used by tests
// and local runs that have no database.
package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/catalog"
)

// Repository provides an in-memory implementation of catalog.Repository.
type Repository struct {
	mu         sync.RWMutex
	items      map[string]catalog.Item
	categories map[string]catalog.Category
	tags       map[string]catalog.Tag
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{
		items:      make(map[string]catalog.Item),
		categories: make(map[string]catalog.Category),
		tags:       make(map[string]catalog.Tag),
	}
}

// CreateItem stores the item.
func (r *Repository) CreateItem(ctx context.Context, it catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
	return nil
}

// GetItem retrieves an item by ID.
func (r *Repository) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return it, nil
}

// ListItems returns all items sorted by name.
func (r *Repository) ListItems(ctx context.Context) ([]catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListItemsByCategory returns all items in the given category sorted by name.
func (r *Repository) ListItemsByCategory(ctx context.Context, categoryID string) ([]catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []catalog.Item
	for _, it := range r.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateItem replaces an existing item.
func (r *Repository) UpdateItem(ctx context.Context, it catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID]; !ok {
		return catalog.ErrNotFound
	}
	r.items[it.ID] = it
	return nil
}

// DeleteItem removes an item by ID.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// CreateCategory stores the category.
func (r *Repository) CreateCategory(ctx context.Context, c catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
	return nil
}

// ListCategories returns all categories sorted by name.
func (r *Repository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteCategory removes a category by ID.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

// CreateTag stores the tag.
func (r *Repository) CreateTag(ctx context.Context, t catalog.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[t.ID] = t
	return nil
}

// ListTags returns all tags sorted by name.
func (r *Repository) ListTags(ctx context.Context) ([]catalog.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteTag removes a tag by ID.
func (r *Repository) DeleteTag(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.tags, id)
	return nil
}
