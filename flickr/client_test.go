package flickr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient("test-key", baseURL, "https://live.staticflickr.com", time.Minute)
}

func TestPhotoSourceURL(t *testing.T) {
	c := newTestClient("http://unused")
	url := c.PhotoSourceURL("1234", "1", "abcd")
	assert.Equal(t, "https://live.staticflickr.com/1234/1_abcd.jpg", url)
}

func searchResultBody(t *testing.T, total int, photos []PhotoDescriptor) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"photos": map[string]interface{}{
			"page":    1,
			"pages":   3,
			"perpage": 15,
			"total":   total,
			"photo":   photos,
		},
	})
	require.NoError(t, err)
	return body
}

func TestSearchSuccess(t *testing.T) {
	descriptors := make([]PhotoDescriptor, 15)
	for i := range descriptors {
		descriptors[i] = PhotoDescriptor{ID: "1", Server: "1234", Secret: "abcd"}
	}

	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"method":   q.Get("method"),
			"api_key":  q.Get("api_key"),
			"lat":      q.Get("lat"),
			"lon":      q.Get("lon"),
			"per_page": q.Get("per_page"),
			"page":     q.Get("page"),
			"format":   q.Get("format"),
		}
		w.Write(searchResultBody(t, 15, descriptors))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.Search(context.Background(), 52.52, 13.405, 1, 15)
	require.NoError(t, err)

	assert.Equal(t, 15, result.Total)
	assert.Len(t, result.Photos, 15)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, "flickr.photos.search", gotQuery["method"])
	assert.Equal(t, "test-key", gotQuery["api_key"])
	assert.Equal(t, "52.52", gotQuery["lat"])
	assert.Equal(t, "13.405", gotQuery["lon"])
	assert.Equal(t, "15", gotQuery["per_page"])
	assert.Equal(t, "1", gotQuery["page"])
	assert.Equal(t, "json", gotQuery["format"])
}

func TestSearchZeroResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(searchResultBody(t, 0, []PhotoDescriptor{}))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.Search(context.Background(), 0, 0, 1, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Photos)
}

func TestSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code": 100, "status_message": "Invalid API Key"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Search(context.Background(), 52.52, 13.405, 1, 15)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 100, apiErr.StatusCode)
	assert.Equal(t, "Invalid API Key", apiErr.Message)
}

func TestSearchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	c := newTestClient(server.URL)
	_, err := c.Search(context.Background(), 52.52, 13.405, 1, 15)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures must not decode as API errors")
}

func TestSearchResponseCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write(searchResultBody(t, 1, []PhotoDescriptor{{ID: "1", Server: "1234", Secret: "abcd"}}))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Search(context.Background(), 52.52, 13.405, 1, 15)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), 52.52, 13.405, 1, 15)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second identical search should be served from cache")

	// a different page is a different cache key
	_, err = c.Search(context.Background(), 52.52, 13.405, 2, 15)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDownloadImage(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	c := newTestClient("http://unused")
	data, err := c.DownloadImage(context.Background(), server.URL+"/1234/1_abcd.jpg")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDownloadImageHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient("http://unused")
	_, err := c.DownloadImage(context.Background(), server.URL+"/missing.jpg")
	require.Error(t, err)
}
