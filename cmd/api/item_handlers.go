package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/catalog"
	"storefront/pkg/otel"
)

// listItemsHandler lists catalog items, optionally filtered by category.
// @Summary List items
// @Produce json
// @Param category query string false "Category ID"
// @Success 200 {array} catalog.Item
// @Router /items [get]
func listItemsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listItemsHandler")
	defer span.End()

	var items []catalog.Item
	var err error
	if categoryID := r.URL.Query().Get("category"); categoryID != "" {
		items, err = repo.ListItemsByCategory(ctx, categoryID)
	} else {
		items, err = repo.ListItems(ctx)
	}
	if err != nil {
		log.Error(ctx, "list items", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// getItemHandler retrieves a single item by ID.
// @Summary Get item
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} catalog.Item
// @Router /items/{id} [get]
func getItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getItemHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	it, err := repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get item", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(it)
}

// listCategoriesHandler lists all categories.
// @Summary List categories
// @Produce json
// @Success 200 {array} catalog.Category
// @Router /categories [get]
func listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listCategoriesHandler")
	defer span.End()

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		log.Error(ctx, "list categories", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cats)
}
