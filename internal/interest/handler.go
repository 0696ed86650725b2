// Package interest serves the onboarding interest selector: a fixed
// taxonomy grouped by category, and a per-user selection saved by full
// replacement.
package interest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Store defines the interest persistence the handlers use.
type Store interface {
	ListInterestCategories(ctx context.Context) ([]models.InterestCategory, error)
	ListInterests(ctx context.Context) ([]models.Interest, error)
	GetUserInterests(ctx context.Context, userID string) ([]int64, error)
	ReplaceUserInterests(ctx context.Context, userID string, interestIDs []int64) error
}

// Cache is the read cache for the static taxonomy.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// CategoryGroup is one interest category with its interests.
type CategoryGroup struct {
	models.InterestCategory
	Interests []models.Interest `json:"interests"`
}

// ReplaceRequest is the JSON body for PUT /api/my/interests.
type ReplaceRequest struct {
	InterestIDs []int64 `json:"interest_ids"`
}

type Handler struct {
	store Store
	cache Cache
}

func NewHandler(store Store, cache Cache) *Handler {
	return &Handler{store: store, cache: cache}
}

// Taxonomy returns every interest grouped by category, cache-aside.
func (h *Handler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	const key = "interests:taxonomy"
	var cached []CategoryGroup
	if ok, _ := h.cache.Get(r.Context(), key, &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	categories, err := h.store.ListInterestCategories(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	interests, err := h.store.ListInterests(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}

	byCategory := map[int64][]models.Interest{}
	for _, i := range interests {
		byCategory[i.CategoryID] = append(byCategory[i.CategoryID], i)
	}
	groups := make([]CategoryGroup, 0, len(categories))
	for _, c := range categories {
		items := byCategory[c.ID]
		if items == nil {
			items = []models.Interest{}
		}
		groups = append(groups, CategoryGroup{InterestCategory: c, Interests: items})
	}

	if err := h.cache.Set(r.Context(), key, groups); err != nil {
		log.Warn().Err(err).Msg("interest taxonomy cache set failed")
	}
	writeJSON(w, http.StatusOK, groups)
}

// Mine returns the caller's selected interest ids.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	ids, err := h.store.GetUserInterests(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"interest_ids": ids})
}

// Replace swaps the caller's whole selection for the submitted set.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Selection is a set; collapse duplicates before persisting.
	set := map[int64]struct{}{}
	for _, id := range req.InterestIDs {
		set[id] = struct{}{}
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := h.store.ReplaceUserInterests(r.Context(), userID, ids); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("interest replacement failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save interests"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interest_ids": ids})
}
