package listing_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/openstay/marketplace/backend/internal/listing"
	"github.com/openstay/marketplace/backend/internal/models"
	"github.com/openstay/marketplace/backend/internal/store"
)

type fakeStore struct {
	insertErr error
	linkErr   error

	inserted      *models.Listing
	linkedListing string
	linkedIDs     []int64

	subcategories map[int64]*models.Subcategory
}

func (f *fakeStore) InsertListing(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	created := *l
	created.ID = uuid.New().String()
	f.inserted = &created
	return &created, nil
}

func (f *fakeStore) LinkAmenities(ctx context.Context, listingID string, amenityIDs []int64) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.linkedListing = listingID
	f.linkedIDs = amenityIDs
	return nil
}

func (f *fakeStore) GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error) {
	sc, ok := f.subcategories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return sc, nil
}

type fakeImages struct {
	mu        sync.Mutex
	uploadErr error

	uploads map[string][]byte
	removed []string
}

func newFakeImages() *fakeImages {
	return &fakeImages{uploads: map[string][]byte{}}
}

func (f *fakeImages) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeImages) PublicURL(key string) string {
	return "http://minio.local/listing-img/" + key
}

func (f *fakeImages) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func validForm() *listing.Form {
	return &listing.Form{
		Title:       "Sunny Room",
		Description: "Bright room near the park",
		Price:       "50",
	}
}

func TestCreateMinimalListing(t *testing.T) {
	st := &fakeStore{}
	imgs := newFakeImages()
	svc := listing.NewService(st, imgs, 2)

	featured := listing.Upload{Filename: "room.png", Data: pngBytes(t, 640, 480)}
	created, err := svc.Create(context.Background(), "user-1", validForm(), featured, nil)
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == "" {
		t.Error("created listing has no id")
	}
	if created.UserID != "user-1" {
		t.Errorf("UserID = %q", created.UserID)
	}
	if created.Price != "50" || created.Currency != "USD" {
		t.Errorf("price/currency = %q/%q, want 50/USD", created.Price, created.Currency)
	}
	if len(created.Images) != 0 {
		t.Errorf("gallery = %d images, want 0", len(created.Images))
	}

	fm := created.FeaturedImage
	if fm.Width != 640 || fm.Height != 480 || fm.Format != "png" {
		t.Errorf("featured metadata = %+v", fm)
	}
	if fm.Size != int64(len(featured.Data)) {
		t.Errorf("Size = %d, want %d", fm.Size, len(featured.Data))
	}
	if !strings.HasPrefix(fm.URL, "http://minio.local/listing-img/") {
		t.Errorf("URL = %q, not a resolved public URL", fm.URL)
	}

	// No amenities selected: the linking stage must not run.
	if st.linkedListing != "" {
		t.Error("LinkAmenities called for an empty selection")
	}
	if len(imgs.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(imgs.uploads))
	}
}

func TestCreateWithGalleryAndAmenities(t *testing.T) {
	st := &fakeStore{}
	imgs := newFakeImages()
	svc := listing.NewService(st, imgs, 2)

	form := validForm()
	form.AmenityIDs = []int64{1, 3}
	gallery := []listing.Upload{
		{Filename: "a.png", Data: pngBytes(t, 100, 100)},
		{Filename: "b.png", Data: pngBytes(t, 200, 150)},
		{Filename: "c.png", Data: pngBytes(t, 300, 200)},
	}

	created, err := svc.Create(context.Background(), "user-1", form,
		listing.Upload{Filename: "f.png", Data: pngBytes(t, 640, 480)}, gallery)
	if err != nil {
		t.Fatal(err)
	}

	if len(created.Images) != 3 {
		t.Fatalf("gallery = %d images, want 3", len(created.Images))
	}
	// Result order matches submission order regardless of upload order.
	wantDims := [][2]int{{100, 100}, {200, 150}, {300, 200}}
	for i, m := range created.Images {
		if m.Width != wantDims[i][0] || m.Height != wantDims[i][1] {
			t.Errorf("images[%d] = %dx%d, want %dx%d", i, m.Width, m.Height, wantDims[i][0], wantDims[i][1])
		}
	}

	if st.linkedListing != created.ID {
		t.Errorf("linked listing = %q, want %q", st.linkedListing, created.ID)
	}
	if len(st.linkedIDs) != 2 {
		t.Errorf("linked amenity ids = %v", st.linkedIDs)
	}
	if len(imgs.uploads) != 4 {
		t.Errorf("uploads = %d, want 4", len(imgs.uploads))
	}
}

func TestCreateMissingFeaturedImage(t *testing.T) {
	svc := listing.NewService(&fakeStore{}, newFakeImages(), 2)

	_, err := svc.Create(context.Background(), "user-1", validForm(), listing.Upload{}, nil)
	var verr listing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr["featured_image"] == "" {
		t.Errorf("fields = %v, missing featured_image", verr)
	}
}

func TestCreateValidationFailureUploadsNothing(t *testing.T) {
	imgs := newFakeImages()
	svc := listing.NewService(&fakeStore{}, imgs, 2)

	form := validForm()
	form.Title = ""
	_, err := svc.Create(context.Background(), "user-1", form,
		listing.Upload{Filename: "f.png", Data: pngBytes(t, 10, 10)}, nil)

	var verr listing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(imgs.uploads) != 0 {
		t.Error("uploads happened despite validation failure")
	}
}

func TestCreateSubcategoryMustMatchCategory(t *testing.T) {
	st := &fakeStore{subcategories: map[int64]*models.Subcategory{
		10: {ID: 10, CategoryID: 2, Name: "House"},
	}}
	svc := listing.NewService(st, newFakeImages(), 2)

	form := validForm()
	cat, sub := int64(1), int64(10)
	form.CategoryID = &cat
	form.SubcategoryID = &sub

	_, err := svc.Create(context.Background(), "user-1", form,
		listing.Upload{Filename: "f.png", Data: pngBytes(t, 10, 10)}, nil)
	var verr listing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr["subcategory_id"] == "" {
		t.Errorf("fields = %v, missing subcategory_id", verr)
	}
}

func TestCreateRejectsNonImageUpload(t *testing.T) {
	imgs := newFakeImages()
	svc := listing.NewService(&fakeStore{}, imgs, 2)

	_, err := svc.Create(context.Background(), "user-1", validForm(),
		listing.Upload{Filename: "notes.txt", Data: []byte("not an image")}, nil)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if len(imgs.uploads) != 0 {
		t.Error("undisplayable file was uploaded")
	}
}

func TestCreateInsertFailureRemovesUploads(t *testing.T) {
	st := &fakeStore{insertErr: errors.New("insert failed")}
	imgs := newFakeImages()
	svc := listing.NewService(st, imgs, 2)

	gallery := []listing.Upload{
		{Filename: "a.png", Data: pngBytes(t, 10, 10)},
		{Filename: "b.png", Data: pngBytes(t, 10, 10)},
	}
	_, err := svc.Create(context.Background(), "user-1", validForm(),
		listing.Upload{Filename: "f.png", Data: pngBytes(t, 10, 10)}, gallery)
	if err == nil {
		t.Fatal("expected insert error")
	}

	// Every uploaded object gets a compensating delete.
	if len(imgs.removed) != 3 {
		t.Fatalf("removed %d objects, want 3: %v", len(imgs.removed), imgs.removed)
	}
	removed := map[string]bool{}
	for _, k := range imgs.removed {
		removed[k] = true
	}
	for k := range imgs.uploads {
		if !removed[k] {
			t.Errorf("uploaded key %q was not removed", k)
		}
	}
}

func TestCreateLinkFailureKeepsListing(t *testing.T) {
	st := &fakeStore{linkErr: errors.New("link failed")}
	imgs := newFakeImages()
	svc := listing.NewService(st, imgs, 2)

	form := validForm()
	form.AmenityIDs = []int64{1}

	created, err := svc.Create(context.Background(), "user-1", form,
		listing.Upload{Filename: "f.png", Data: pngBytes(t, 10, 10)}, nil)
	if !errors.Is(err, listing.ErrLinkAmenities) {
		t.Fatalf("err = %v, want ErrLinkAmenities", err)
	}
	if created == nil || created.ID == "" {
		t.Fatal("listing must survive a failed amenity link")
	}
	// The row is not unwound and no objects are deleted.
	if len(imgs.removed) != 0 {
		t.Errorf("removed = %v, want none", imgs.removed)
	}
}
