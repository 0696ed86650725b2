package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openstay/marketplace/backend/internal/models"
)

// Client fetches feed pages from the listings API; it satisfies Source
// so a Pager can sit directly on top of it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Page calls GET /api/listings for one page of the feed.
func (c *Client) Page(ctx context.Context, page, size int) ([]models.Listing, error) {
	url := fmt.Sprintf("%s/api/listings?page=%d&page_size=%d", c.baseURL, page, size)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed page %d: status %d: %s", page, resp.StatusCode, string(body))
	}

	var out []models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("feed page %d: decode: %w", page, err)
	}
	return out, nil
}
