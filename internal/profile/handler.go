package profile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/models"
	"github.com/openstay/marketplace/backend/internal/store"
)

const maxPictureBytes = 16 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Store defines the profile persistence the handlers use.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

// ImageStore holds profile pictures.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}

// Geocoder resolves partial address text into structured candidates.
type Geocoder interface {
	Autocomplete(ctx context.Context, text string, limit int) ([]models.Address, error)
}

// Handler holds profile and onboarding HTTP handlers.
type Handler struct {
	profiles Store
	images   ImageStore
	geocoder Geocoder
}

func NewHandler(profiles Store, images ImageStore, geocoder Geocoder) *Handler {
	return &Handler{profiles: profiles, images: images, geocoder: geocoder}
}

// Get returns the caller's profile. A missing profile is a distinct
// not-found, not a generic failure: the client routes to onboarding.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	p, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Upsert creates or updates the caller's profile in one call.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req models.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs := Validate(&req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": errs})
		return
	}

	// Keep an already-set picture when the form doesn't carry one. A
	// missing profile legitimately has none; any other read failure
	// aborts, otherwise a transient error would wipe the picture.
	picture := ""
	existing, err := h.profiles.GetProfile(r.Context(), userID)
	switch {
	case err == nil:
		picture = existing.ProfilePicture
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Error().Err(err).Str("user_id", userID).Msg("profile read failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}

	saved, err := h.profiles.UpsertProfile(r.Context(), &models.Profile{
		UserID:         userID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		Username:       req.Username,
		About:          req.About,
		ProfilePicture: picture,
		Location:       req.Location,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("profile upsert failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save profile"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// UploadPicture stores a new profile picture and commits it to the
// profile immediately: upload, resolve the public URL, upsert.
func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	fhs := r.MultipartForm.File["picture"]
	if len(fhs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "picture file is required"})
		return
	}
	f, err := fhs[0].Open()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "picture could not be read"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "picture could not be read"})
		return
	}

	existing, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database error"})
		return
	}

	ext := strings.ToLower(path.Ext(fhs[0].Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := userID + "-" + uuid.New().String() + ext
	contentType := fhs[0].Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.images.Upload(r.Context(), key, data, contentType); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("picture upload failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	existing.ProfilePicture = h.images.PublicURL(key)
	saved, err := h.profiles.UpsertProfile(r.Context(), existing)
	if err != nil {
		// Uploaded but not committed; the orphaned object is accepted.
		log.Error().Err(err).Str("user_id", userID).Msg("picture commit failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save profile"})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Autocomplete proxies the address autocomplete used during onboarding.
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	limit := 5
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if n, err := strconv.Atoi(ls); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}

	addrs, err := h.geocoder.Autocomplete(r.Context(), text, limit)
	if err != nil {
		log.Warn().Err(err).Msg("geocoder autocomplete failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "address lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}
