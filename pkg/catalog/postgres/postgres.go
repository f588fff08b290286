// Package postgres implements the catalog repository on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"storefront/pkg/catalog"
)

// Repository persists the catalog in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the catalog tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (id TEXT PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS tags (id TEXT PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL,
			category_id TEXT REFERENCES categories(id))`,
		`CREATE TABLE IF NOT EXISTS item_tags (
			item_id TEXT REFERENCES items(id) ON DELETE CASCADE,
			tag_id TEXT REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (item_id, tag_id))`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// CreateItem inserts a new item and its tag links.
func (r *Repository) CreateItem(ctx context.Context, it catalog.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO items (id,name,description,price,category_id) VALUES ($1,$2,$3,$4,NULLIF($5,''))",
		it.ID, it.Name, it.Description, it.Price, it.CategoryID)
	if err != nil {
		return err
	}
	for _, tag := range it.Tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_tags (item_id,tag_id) VALUES ($1,$2)", it.ID, tag); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetItem retrieves an item by ID.
func (r *Repository) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	var it catalog.Item
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name,description,price,COALESCE(category_id,'') FROM items WHERE id=$1", id).
		Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Item{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Item{}, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(array_agg(tag_id) FILTER (WHERE tag_id IS NOT NULL), '{}') FROM item_tags WHERE item_id=$1", id).
		Scan(pq.Array(&it.Tags))
	return it, err
}

// ListItems fetches all items.
func (r *Repository) ListItems(ctx context.Context) ([]catalog.Item, error) {
	return r.queryItems(ctx, "SELECT id,name,description,price,COALESCE(category_id,'') FROM items ORDER BY name")
}

// ListItemsByCategory fetches all items in the given category.
func (r *Repository) ListItemsByCategory(ctx context.Context, categoryID string) ([]catalog.Item, error) {
	return r.queryItems(ctx,
		"SELECT id,name,description,price,COALESCE(category_id,'') FROM items WHERE category_id=$1 ORDER BY name",
		categoryID)
}

func (r *Repository) queryItems(ctx context.Context, query string, args ...any) ([]catalog.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.CategoryID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateItem updates an existing item and replaces its tag links.
func (r *Repository) UpdateItem(ctx context.Context, it catalog.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE items SET name=$2, description=$3, price=$4, category_id=NULLIF($5,'') WHERE id=$1",
		it.ID, it.Name, it.Description, it.Price, it.CategoryID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_tags WHERE item_id=$1", it.ID); err != nil {
		return err
	}
	for _, tag := range it.Tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_tags (item_id,tag_id) VALUES ($1,$2)", it.ID, tag); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteItem removes an item by ID.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id=$1", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, c catalog.Category) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO categories (id,name) VALUES ($1,$2)", c.ID, c.Name)
	return err
}

// ListCategories fetches all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// DeleteCategory removes a category by ID.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id=$1", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// CreateTag inserts a new tag.
func (r *Repository) CreateTag(ctx context.Context, t catalog.Tag) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO tags (id,name) VALUES ($1,$2)", t.ID, t.Name)
	return err
}

// ListTags fetches all tags.
func (r *Repository) ListTags(ctx context.Context) ([]catalog.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,name FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []catalog.Tag
	for rows.Next() {
		var t catalog.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag by ID.
func (r *Repository) DeleteTag(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id=$1", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
