package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Client talks to the Flickr search API and the static image hosts. It
// is safe for concurrent use. Search responses are cached briefly so a
// populate retried right after a failure does not hit the API twice.
type Client struct {
	APIKey        string
	BaseURL       string // e.g. https://www.flickr.com/services/rest
	StaticBaseURL string // e.g. https://live.staticflickr.com
	HTTPClient    *http.Client

	searchCache *gocache.Cache
}

func NewClient(apiKey, baseURL, staticBaseURL string, cacheTTL time.Duration) *Client {
	return &Client{
		APIKey:        apiKey,
		BaseURL:       baseURL,
		StaticBaseURL: staticBaseURL,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		searchCache:   gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// PhotoSourceURL builds the downloadable image URL for a descriptor.
// Pure string construction, no network call.
func (c *Client) PhotoSourceURL(server, id, secret string) string {
	return fmt.Sprintf("%s/%s/%s_%s.jpg", c.StaticBaseURL, server, id, secret)
}

// Search runs flickr.photos.search for the given coordinate and page.
// A response with Total == 0 is returned as a successful, empty result;
// an API-level error body decodes to *APIError; transport failures come
// back wrapped.
func (c *Client) Search(ctx context.Context, lat, lon float64, page, perPage int) (*SearchResult, error) {
	cacheKey := fmt.Sprintf("%f:%f:%d:%d", lat, lon, page, perPage)
	if cached, found := c.searchCache.Get(cacheKey); found {
		result := cached.(SearchResult)
		return &result, nil
	}

	params := url.Values{}
	params.Set("method", "flickr.photos.search")
	params.Set("api_key", c.APIKey)
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	reqURL := c.BaseURL + "/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flickr search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Photos.Photos != nil {
		c.searchCache.SetDefault(cacheKey, envelope.Photos)
		return &envelope.Photos, nil
	}

	// not a result envelope; try the structured error body
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return nil, &apiErr
	}

	return nil, fmt.Errorf("flickr search returned unexpected payload (HTTP %d)", resp.StatusCode)
}

// DownloadImage fetches the raw bytes behind an image URL.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building image request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download for %s returned HTTP %d", imageURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image bytes: %w", err)
	}
	return data, nil
}
