// Package taxonomy serves the read-only reference data behind the
// listing form: categories, their subcategories, amenities, and the
// static currency list.
package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/currency"
	"github.com/openstay/marketplace/backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Store defines the reference-data reads the handlers use.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSubcategories(ctx context.Context, categoryID int64) ([]models.Subcategory, error)
	ListAmenities(ctx context.Context) ([]models.Amenity, error)
}

// Cache is the read cache for reference data.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Handler struct {
	store Store
	cache Cache
}

func NewHandler(store Store, cache Cache) *Handler {
	return &Handler{store: store, cache: cache}
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	const key = "taxonomy:categories"
	var cached []models.Category
	if ok, _ := h.cache.Get(r.Context(), key, &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	if err := h.cache.Set(r.Context(), key, cats); err != nil {
		log.Warn().Err(err).Msg("category cache set failed")
	}
	writeJSON(w, http.StatusOK, cats)
}

// Subcategories lists the subcategories of one category; the listing
// form fetches this when a category is selected.
func (h *Handler) Subcategories(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be an integer"})
		return
	}

	key := fmt.Sprintf("taxonomy:subcategories:%d", id)
	var cached []models.Subcategory
	if ok, _ := h.cache.Get(r.Context(), key, &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	subs, err := h.store.ListSubcategories(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	if err := h.cache.Set(r.Context(), key, subs); err != nil {
		log.Warn().Err(err).Msg("subcategory cache set failed")
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) Amenities(w http.ResponseWriter, r *http.Request) {
	const key = "taxonomy:amenities"
	var cached []models.Amenity
	if ok, _ := h.cache.Get(r.Context(), key, &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ams, err := h.store.ListAmenities(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	if err := h.cache.Set(r.Context(), key, ams); err != nil {
		log.Warn().Err(err).Msg("amenity cache set failed")
	}
	writeJSON(w, http.StatusOK, ams)
}

// Currencies filters the static currency list by name or code.
func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currency.Search(r.URL.Query().Get("q")))
}
