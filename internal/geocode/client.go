// Package geocode wraps the forward-geocoding autocomplete service the
// onboarding form uses. The service is an opaque collaborator; this
// client only maps its feature payload onto the structured address the
// profile stores.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/openstay/marketplace/backend/internal/models"
	"github.com/openstay/marketplace/backend/internal/observability"
)

type Client struct {
	base string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client with client-side rate limiting; rps guards the
// upstream quota regardless of how fast users type.
func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("geocoder API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		hc:   &http.Client{Timeout: 10 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type featureProps struct {
	Formatted string `json:"formatted"`
	Country   string `json:"country"`
	City      string `json:"city"`
	County    string `json:"county"`
	State     string `json:"state"`
}

type autocompleteResponse struct {
	Features []struct {
		Properties featureProps `json:"properties"`
	} `json:"features"`
}

// Autocomplete returns up to limit structured address candidates for a
// partial text input.
func (c *Client) Autocomplete(ctx context.Context, text string, limit int) ([]models.Address, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("apiKey", c.key)
	endpoint := c.base + "/v1/geocode/autocomplete"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("geocoder", "autocomplete", 0, time.Since(start))
		return nil, fmt.Errorf("geocoder: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("geocoder", "autocomplete", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoder: status %d: %s", resp.StatusCode, string(body))
	}

	var payload autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("geocoder: decode: %w", err)
	}

	out := make([]models.Address, 0, len(payload.Features))
	for _, f := range payload.Features {
		p := f.Properties
		city := p.City
		if city == "" {
			city = p.County
		}
		out = append(out, models.Address{
			FormattedAddress: p.Formatted,
			Country:          p.Country,
			City:             city,
			State:            p.State,
		})
	}
	return out, nil
}
