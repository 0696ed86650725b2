package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/models"
	"github.com/openstay/marketplace/backend/internal/store"
)

// PageSize is the feed page length; a response shorter than this tells
// the pager the backend is exhausted.
const PageSize = 10

const maxUploadBytes = 64 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ReadStore covers the read and delete paths the handlers use.
type ReadStore interface {
	ListListings(ctx context.Context, limit, offset int) ([]models.Listing, error)
	ListListingsByUser(ctx context.Context, userID string) ([]models.Listing, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	ListListingAmenities(ctx context.Context, id string) ([]models.Amenity, error)
	DeleteListing(ctx context.Context, id, userID string) (*models.Listing, error)
}

// Cache is the read cache for listing detail.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Del(ctx context.Context, key string) error
}

// ImageRemover cleans up stored objects when a listing is deleted.
type ImageRemover interface {
	RemoveByURL(ctx context.Context, url string) error
}

// Detail is a listing plus its linked amenities.
type Detail struct {
	models.Listing
	Amenities []models.Amenity `json:"amenities"`
}

// Handler holds the listing HTTP handlers.
type Handler struct {
	svc    *Service
	reads  ReadStore
	cache  Cache
	images ImageRemover
}

func NewHandler(svc *Service, reads ReadStore, cache Cache, images ImageRemover) *Handler {
	return &Handler{svc: svc, reads: reads, cache: cache, images: images}
}

func detailKey(id string) string { return "listing:" + id }

// List serves one feed page: records [(page-1)*PageSize, page*PageSize)
// ordered by creation time descending.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if ps := r.URL.Query().Get("page"); ps != "" {
		n, err := strconv.Atoi(ps)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a positive integer"})
			return
		}
		page = n
	}
	size := PageSize
	if ss := r.URL.Query().Get("page_size"); ss != "" {
		n, err := strconv.Atoi(ss)
		if err != nil || n < 1 || n > 50 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page_size must be between 1 and 50"})
			return
		}
		size = n
	}

	items, err := h.reads.ListListings(r.Context(), size, (page-1)*size)
	if err != nil {
		log.Error().Err(err).Int("page", page).Msg("list listings failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get serves a single listing with its amenities, cache-aside.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var cached Detail
	if ok, _ := h.cache.Get(r.Context(), detailKey(id), &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	l, err := h.reads.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	amenities, err := h.reads.ListListingAmenities(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}

	detail := Detail{Listing: *l, Amenities: amenities}
	if err := h.cache.Set(r.Context(), detailKey(id), detail); err != nil {
		log.Warn().Err(err).Str("listing_id", id).Msg("detail cache set failed")
	}
	writeJSON(w, http.StatusOK, detail)
}

// Mine returns the authenticated user's listings, newest first.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	items, err := h.reads.ListListingsByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create accepts a multipart submission and runs the pipeline.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	form, err := formFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	featured, err := fileUpload(r, "featured_image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "featured_image could not be read"})
		return
	}
	additional, err := fileUploads(r, "images")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "images could not be read"})
		return
	}

	created, err := h.svc.Create(r.Context(), userID, form, featured, additional)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, created)
	case errors.Is(err, ErrLinkAmenities):
		// The listing exists; report the partial failure without
		// unwinding it.
		writeJSON(w, http.StatusCreated, map[string]any{
			"listing": created,
			"warning": "listing created but amenities could not be linked",
		})
	default:
		var ve ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": ve,
			})
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("create listing failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create listing"})
	}
}

// Delete removes an owned listing, its cache entry, and its stored
// image objects (best-effort).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	id := chi.URLParam(r, "id")

	deleted, err := h.reads.DeleteListing(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "delete failed"})
		return
	}

	if err := h.cache.Del(r.Context(), detailKey(id)); err != nil {
		log.Warn().Err(err).Str("listing_id", id).Msg("detail cache evict failed")
	}
	for _, meta := range append([]models.ImageMetadata{deleted.FeaturedImage}, deleted.Images...) {
		if meta.URL == "" {
			continue
		}
		if err := h.images.RemoveByURL(r.Context(), meta.URL); err != nil {
			log.Warn().Err(err).Str("url", meta.URL).Msg("listing image not removed")
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ---- multipart helpers ----

func formFromRequest(r *http.Request) (*Form, error) {
	f := &Form{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Currency:    r.FormValue("currency"),
		Address:     r.FormValue("address"),
		City:        r.FormValue("city"),
		State:       r.FormValue("state"),
		Country:     r.FormValue("country"),
		PostalCode:  r.FormValue("postal_code"),
		Rules:       r.FormValue("rules"),
	}

	catID, err := optionalID(r.FormValue("category_id"))
	if err != nil {
		return nil, fmt.Errorf("category_id must be an integer")
	}
	f.SetCategory(catID)

	subID, err := optionalID(r.FormValue("subcategory_id"))
	if err != nil {
		return nil, fmt.Errorf("subcategory_id must be an integer")
	}
	f.SetSubcategory(subID)

	for _, raw := range r.MultipartForm.Value["amenity_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("amenity_ids must be integers")
		}
		f.AmenityIDs = append(f.AmenityIDs, id)
	}
	return f, nil
}

func optionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func readUpload(fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Filename: fh.Filename, Data: data}, nil
}

func fileUpload(r *http.Request, field string) (Upload, error) {
	fhs := r.MultipartForm.File[field]
	if len(fhs) == 0 {
		return Upload{}, nil
	}
	return readUpload(fhs[0])
}

func fileUploads(r *http.Request, field string) ([]Upload, error) {
	fhs := r.MultipartForm.File[field]
	out := make([]Upload, 0, len(fhs))
	for _, fh := range fhs {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}
