package vision

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-successful answer from an inference backend.
type APIError struct {
	Engine     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Engine, e.StatusCode, e.Message)
}

// IsRateLimited reports whether err carries an HTTP 429 from the backend.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
