// Package catalog defines the purchasable item model and the repository
// behavior for persisting it.
package catalog

import (
	"context"
	"errors"
)

// Item represents a purchasable item. Price is an integer amount of the
// currency's minor unit (e.g. cents), never a float.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	CategoryID  string   `json:"category_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Category groups items for browsing.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form label attached to items.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Repository defines behavior for persisting the catalog.
type Repository interface {
	CreateItem(ctx context.Context, it Item) error
	GetItem(ctx context.Context, id string) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListItemsByCategory(ctx context.Context, categoryID string) ([]Item, error)
	UpdateItem(ctx context.Context, it Item) error
	DeleteItem(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c Category) error
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateTag(ctx context.Context, t Tag) error
	ListTags(ctx context.Context) ([]Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// ErrNotFound indicates the requested catalog record does not exist.
var ErrNotFound = errors.New("catalog: not found")
