package profile_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openstay/marketplace/backend/internal/models"
	"github.com/openstay/marketplace/backend/internal/profile"
	"github.com/openstay/marketplace/backend/internal/store"
)

type fakeProfiles struct {
	profiles  map[string]*models.Profile
	getErr    error
	upsertErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]*models.Profile{}}
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	cp := *p
	f.profiles[p.UserID] = &cp
	return &cp, nil
}

type fakePictures struct {
	uploaded map[string][]byte
}

func newFakePictures() *fakePictures { return &fakePictures{uploaded: map[string][]byte{}} }

func (f *fakePictures) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.uploaded[key] = data
	return nil
}

func (f *fakePictures) PublicURL(key string) string {
	return "http://minio.local/profile-img/" + key
}

type fakeGeocoder struct {
	addrs []models.Address
	err   error
	text  string
	limit int
}

func (f *fakeGeocoder) Autocomplete(ctx context.Context, text string, limit int) ([]models.Address, error) {
	f.text, f.limit = text, limit
	return f.addrs, f.err
}

func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", userID))
}

const validBody = `{
	"first_name": "Ada",
	"last_name": "Lovelace",
	"phone_number": "+4915112345678",
	"location": {"formatted_address": "Unter den Linden 1, Berlin", "country": "Germany", "city": "Berlin"}
}`

func TestGetMissingProfileIs404(t *testing.T) {
	h := profile.NewHandler(newFakeProfiles(), newFakePictures(), &fakeGeocoder{})

	rec := httptest.NewRecorder()
	h.Get(rec, authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "user-1"))

	// The client routes to onboarding on exactly this status.
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpsertCreatesProfile(t *testing.T) {
	profiles := newFakeProfiles()
	h := profile.NewHandler(profiles, newFakePictures(), &fakeGeocoder{})

	rec := httptest.NewRecorder()
	h.Upsert(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(validBody)), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	saved := profiles.profiles["user-1"]
	if saved == nil {
		t.Fatal("profile not persisted")
	}
	if saved.FirstName != "Ada" || saved.Location.City != "Berlin" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestUpsertPreservesExistingPicture(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &models.Profile{
		UserID:         "user-1",
		ProfilePicture: "http://minio.local/profile-img/old.png",
	}
	h := profile.NewHandler(profiles, newFakePictures(), &fakeGeocoder{})

	rec := httptest.NewRecorder()
	h.Upsert(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(validBody)), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := profiles.profiles["user-1"].ProfilePicture; got != "http://minio.local/profile-img/old.png" {
		t.Errorf("ProfilePicture = %q, picture lost on upsert", got)
	}
}

func TestUpsertAbortsWhenExistingReadFails(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &models.Profile{
		UserID:         "user-1",
		ProfilePicture: "http://minio.local/profile-img/old.png",
	}
	profiles.getErr = errors.New("connection reset")
	h := profile.NewHandler(profiles, newFakePictures(), &fakeGeocoder{})

	rec := httptest.NewRecorder()
	h.Upsert(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(validBody)), "user-1"))

	// A transient read failure must not reach the upsert and blank the
	// stored picture.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := profiles.profiles["user-1"].ProfilePicture; got != "http://minio.local/profile-img/old.png" {
		t.Errorf("ProfilePicture = %q, picture lost on failed read", got)
	}
}

func TestUpsertValidationFailure(t *testing.T) {
	h := profile.NewHandler(newFakeProfiles(), newFakePictures(), &fakeGeocoder{})

	rec := httptest.NewRecorder()
	h.Upsert(rec, authed(httptest.NewRequest(http.MethodPut, "/api/profile",
		strings.NewReader(`{"first_name":"A"}`)), "user-1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"first_name", "last_name", "phone_number", "location"} {
		if resp.Fields[field] == "" {
			t.Errorf("missing error for %q: %v", field, resp.Fields)
		}
	}
}

func TestUploadPictureCommitsURL(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-1"] = &models.Profile{UserID: "user-1", FirstName: "Ada"}
	pictures := newFakePictures()
	h := profile.NewHandler(profiles, pictures, &fakeGeocoder{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("picture", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req := authed(httptest.NewRequest(http.MethodPost, "/api/profile/picture", &body), "user-1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadPicture(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if len(pictures.uploaded) != 1 {
		t.Fatalf("uploads = %d, want 1", len(pictures.uploaded))
	}
	saved := profiles.profiles["user-1"]
	if !strings.HasPrefix(saved.ProfilePicture, "http://minio.local/profile-img/user-1-") {
		t.Errorf("ProfilePicture = %q", saved.ProfilePicture)
	}
	if !strings.HasSuffix(saved.ProfilePicture, ".png") {
		t.Errorf("ProfilePicture = %q, extension lost", saved.ProfilePicture)
	}
	if saved.FirstName != "Ada" {
		t.Error("other fields lost while committing the picture")
	}
}

func TestUploadPictureWithoutProfile(t *testing.T) {
	h := profile.NewHandler(newFakeProfiles(), newFakePictures(), &fakeGeocoder{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("picture", "me.png")
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req := authed(httptest.NewRequest(http.MethodPost, "/api/profile/picture", &body), "user-1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadPicture(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAutocomplete(t *testing.T) {
	geo := &fakeGeocoder{addrs: []models.Address{
		{FormattedAddress: "Berlin, Germany", Country: "Germany", City: "Berlin"},
	}}
	h := profile.NewHandler(newFakeProfiles(), newFakePictures(), geo)

	rec := httptest.NewRecorder()
	h.Autocomplete(rec, authed(httptest.NewRequest(http.MethodGet, "/api/geocode?q=ber&limit=3", nil), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if geo.text != "ber" || geo.limit != 3 {
		t.Errorf("geocoder called with %q/%d", geo.text, geo.limit)
	}
	var got []models.Address
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].City != "Berlin" {
		t.Errorf("got = %v", got)
	}
}

func TestAutocompleteRequiresQuery(t *testing.T) {
	h := profile.NewHandler(newFakeProfiles(), newFakePictures(), &fakeGeocoder{})

	rec := httptest.NewRecorder()
	h.Autocomplete(rec, authed(httptest.NewRequest(http.MethodGet, "/api/geocode", nil), "user-1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAutocompleteUpstreamFailure(t *testing.T) {
	geo := &fakeGeocoder{err: errors.New("quota exceeded")}
	h := profile.NewHandler(newFakeProfiles(), newFakePictures(), geo)

	rec := httptest.NewRecorder()
	h.Autocomplete(rec, authed(httptest.NewRequest(http.MethodGet, "/api/geocode?q=ber", nil), "user-1"))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
