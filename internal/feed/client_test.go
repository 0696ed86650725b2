package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/openstay/marketplace/backend/internal/feed"
	"github.com/openstay/marketplace/backend/internal/models"
)

func TestClientFetchesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		if page != 2 || size != 10 {
			t.Errorf("page/page_size = %d/%d, want 2/10", page, size)
		}
		json.NewEncoder(w).Encode(listings("k", "l", "m"))
	}))
	defer srv.Close()

	c := feed.NewClient(srv.URL)
	got, err := c.Page(context.Background(), 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != "k" {
		t.Errorf("got = %v", got)
	}
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := feed.NewClient(srv.URL)
	if _, err := c.Page(context.Background(), 1, 10); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestClientAsPagerSource(t *testing.T) {
	pages := map[string][]models.Listing{
		"1": listings("a", "b", "c"),
		"2": listings("d"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pages[r.URL.Query().Get("page")])
	}))
	defer srv.Close()

	p := feed.NewPager(feed.NewClient(srv.URL), 3)
	for i := 0; i < 2; i++ {
		if _, err := p.Trigger(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(p.Items()) != 4 {
		t.Errorf("items = %d, want 4", len(p.Items()))
	}
	if p.HasMore() {
		t.Error("short second page must exhaust the feed")
	}
}
