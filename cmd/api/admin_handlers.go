package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"storefront/pkg/catalog"
	"storefront/pkg/otel"
)

// createItemHandler creates a catalog item.
// @Summary Create item
// @Accept json
// @Produce json
// @Param item body catalog.Item true "Item"
// @Success 201 {object} catalog.Item
// @Security ApiKeyAuth
// @Router /admin/items [post]
func createItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createItemHandler")
	defer span.End()

	var it catalog.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if it.Name == "" || it.Price < 0 {
		http.Error(w, "name required and price must be non-negative", http.StatusBadRequest)
		return
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if err := repo.CreateItem(ctx, it); err != nil {
		log.Error(ctx, "create item", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(it)
}

// updateItemHandler updates an existing catalog item.
// @Summary Update item
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body catalog.Item true "Item"
// @Success 200 {object} catalog.Item
// @Security ApiKeyAuth
// @Router /admin/items/{id} [put]
func updateItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateItemHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	var it catalog.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	it.ID = id
	if err := repo.UpdateItem(ctx, it); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "update item", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(it)
}

// deleteItemHandler removes a catalog item. Carts holding the item keep
// their line until their next recompute prunes it.
// @Summary Delete item
// @Param id path string true "Item ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /admin/items/{id} [delete]
func deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteItemHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "delete item", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createCategoryHandler creates a category.
// @Summary Create category
// @Accept json
// @Produce json
// @Param category body catalog.Category true "Category"
// @Success 201 {object} catalog.Category
// @Security ApiKeyAuth
// @Router /admin/categories [post]
func createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createCategoryHandler")
	defer span.End()

	var c catalog.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := repo.CreateCategory(ctx, c); err != nil {
		log.Error(ctx, "create category", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// deleteCategoryHandler removes a category.
// @Summary Delete category
// @Param id path string true "Category ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /admin/categories/{id} [delete]
func deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteCategoryHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "delete category", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listTagsHandler lists all tags.
// @Summary List tags
// @Produce json
// @Success 200 {array} catalog.Tag
// @Security ApiKeyAuth
// @Router /admin/tags [get]
func listTagsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listTagsHandler")
	defer span.End()

	tags, err := repo.ListTags(ctx)
	if err != nil {
		log.Error(ctx, "list tags", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tags)
}

// createTagHandler creates a tag.
// @Summary Create tag
// @Accept json
// @Produce json
// @Param tag body catalog.Tag true "Tag"
// @Success 201 {object} catalog.Tag
// @Security ApiKeyAuth
// @Router /admin/tags [post]
func createTagHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createTagHandler")
	defer span.End()

	var t catalog.Tag
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := repo.CreateTag(ctx, t); err != nil {
		log.Error(ctx, "create tag", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

// deleteTagHandler removes a tag.
// @Summary Delete tag
// @Param id path string true "Tag ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /admin/tags/{id} [delete]
func deleteTagHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteTagHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := repo.DeleteTag(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "delete tag", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
