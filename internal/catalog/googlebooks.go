// Package catalog pulls book feeds from the Google Books volumes API,
// filters them into display-ready lists and caches the results.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Volume is the slice of the Google Books volume payload we care about.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Categories    []string   `json:"categories"`
	Description   string     `json:"description"`
	PageCount     int        `json:"pageCount"`
	AverageRating float64    `json:"averageRating"`
	RatingsCount  int        `json:"ratingsCount"`
	ImageLinks    ImageLinks `json:"imageLinks"`
}

type ImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// Thumbnail prefers the larger image, like the original UI did.
func (v VolumeInfo) Thumbnail() string {
	if v.ImageLinks.Thumbnail != "" {
		return v.ImageLinks.Thumbnail
	}
	return v.ImageLinks.SmallThumbnail
}

// Source fetches raw volumes for a free-text query. The HTTP client and the
// local mirror both satisfy it; tests plug in fakes.
type Source interface {
	Fetch(ctx context.Context, query string, maxResults int) ([]Volume, error)
}

// Client talks to a Google-Books-shaped volumes endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Fetch(ctx context.Context, query string, maxResults int) ([]Volume, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", fmt.Sprintf("%d", maxResults))
	q.Set("orderBy", "relevance")
	q.Set("printType", "books")
	q.Set("langRestrict", "en")

	reqURL := c.BaseURL + "/volumes?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volumes: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("volumes api: unexpected status %d", res.StatusCode)
	}

	var body struct {
		Items []Volume `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode volumes: %w", err)
	}
	return body.Items, nil
}
