package flickr

import "fmt"

// APIError is a structured error payload returned by the remote API in
// place of a search result.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"status_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flickr API error %d: %s", e.StatusCode, e.Message)
}
