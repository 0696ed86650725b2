package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	// Formats the upload pipeline accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/openstay/marketplace/backend/internal/models"
	"github.com/openstay/marketplace/backend/internal/store"
)

// Store is the relational persistence the submission pipeline needs.
type Store interface {
	InsertListing(ctx context.Context, l *models.Listing) (*models.Listing, error)
	LinkAmenities(ctx context.Context, listingID string, amenityIDs []int64) error
	GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error)
}

// ImageStore is the object storage side of the pipeline.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
	Remove(ctx context.Context, key string) error
}

// ValidationError carries per-field messages; it never reaches a store.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid fields: %v", fields)
}

// ErrLinkAmenities wraps a failure in the amenity linking stage. The
// listing row already exists at that point and is not unwound; callers
// report the partial result instead of discarding it.
var ErrLinkAmenities = errors.New("amenity linking failed")

// Upload is one raw file handed to the pipeline.
type Upload struct {
	Filename string
	Data     []byte
}

// Service runs the listing submission pipeline: validate, upload the
// featured image, upload the gallery through a bounded worker pool,
// insert the row, then link amenities.
type Service struct {
	store   Store
	images  ImageStore
	workers int
}

func NewService(st Store, images ImageStore, uploadWorkers int) *Service {
	if uploadWorkers <= 0 {
		uploadWorkers = 4
	}
	return &Service{store: st, images: images, workers: uploadWorkers}
}

// Create runs the full pipeline for one submission. On a failed insert
// the already-uploaded objects are removed best-effort; a failed
// amenity link returns the created listing together with
// ErrLinkAmenities so the caller can surface the partial success.
func (s *Service) Create(ctx context.Context, userID string, form *Form, featured Upload, additional []Upload) (*models.Listing, error) {
	errs := form.Validate()
	if len(featured.Data) == 0 {
		errs["featured_image"] = "a featured image is required"
	}
	if len(errs) > 0 {
		return nil, ValidationError(errs)
	}

	// A subcategory must belong to the chosen category; the form state
	// clears stale choices client-side but the boundary re-checks.
	if form.SubcategoryID != nil {
		sc, err := s.store.GetSubcategory(ctx, *form.SubcategoryID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ValidationError{"subcategory_id": "unknown subcategory"}
			}
			return nil, err
		}
		if form.CategoryID == nil || sc.CategoryID != *form.CategoryID {
			return nil, ValidationError{"subcategory_id": "subcategory does not belong to the selected category"}
		}
	}

	// Featured image first; its URL must exist before anything persists.
	featuredMeta, featuredKey, err := s.uploadOne(ctx, featured)
	if err != nil {
		return nil, fmt.Errorf("upload featured image: %w", err)
	}
	keys := []string{featuredKey}

	// Gallery uploads run concurrently but capped, so a submission with
	// many large files cannot exhaust sockets or memory.
	gallery := make([]models.ImageMetadata, len(additional))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	galleryKeys := make([]string, len(additional))
	for i, up := range additional {
		g.Go(func() error {
			meta, key, err := s.uploadOne(gctx, up)
			if err != nil {
				return fmt.Errorf("upload image %q: %w", up.Filename, err)
			}
			gallery[i] = meta
			galleryKeys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.removeUploaded(ctx, append(keys, galleryKeys...))
		return nil, err
	}
	keys = append(keys, galleryKeys...)

	created, err := s.store.InsertListing(ctx, &models.Listing{
		UserID:        userID,
		Title:         form.Title,
		Description:   form.Description,
		CategoryID:    form.CategoryID,
		SubcategoryID: form.SubcategoryID,
		Price:         form.Price,
		Currency:      form.Currency,
		FeaturedImage: featuredMeta,
		Images:        gallery,
		Address:       form.Address,
		City:          form.City,
		State:         form.State,
		Country:       form.Country,
		PostalCode:    form.PostalCode,
		Rules:         form.Rules,
	})
	if err != nil {
		s.removeUploaded(ctx, keys)
		return nil, err
	}

	if len(form.AmenityIDs) > 0 {
		if err := s.store.LinkAmenities(ctx, created.ID, form.AmenityIDs); err != nil {
			log.Error().Err(err).Str("listing_id", created.ID).Msg("amenity linking failed")
			return created, fmt.Errorf("%w: %v", ErrLinkAmenities, err)
		}
	}

	return created, nil
}

// uploadOne stores a single file and returns its metadata with the
// public URL resolved after the bytes are durable.
func (s *Service) uploadOne(ctx context.Context, up Upload) (models.ImageMetadata, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return models.ImageMetadata{}, "", fmt.Errorf("decode image: %w", err)
	}

	key := uuid.New().String() + "." + format
	if err := s.images.Upload(ctx, key, up.Data, "image/"+format); err != nil {
		return models.ImageMetadata{}, "", err
	}

	return models.ImageMetadata{
		URL:    s.images.PublicURL(key),
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   int64(len(up.Data)),
		Format: format,
	}, key, nil
}

// removeUploaded is the compensating action for a failed insert:
// best-effort, failures are only logged, so at worst an orphaned object
// remains in the bucket.
func (s *Service) removeUploaded(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.images.Remove(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("orphaned upload not removed")
		}
	}
}
