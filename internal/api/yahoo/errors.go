package yahoo

import (
	"errors"
	"fmt"
)

// ErrAuth is returned when bearer credentials are missing or were rejected
// and could not be refreshed. It is never retried.
var ErrAuth = errors.New("missing or invalid access token")

// UpstreamError is a non-2xx response that survived the retry policy.
type UpstreamError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: unexpected status code: %d: %s", e.Path, e.StatusCode, e.Body)
}

// DataShapeError reports a required field missing from a decoded response.
type DataShapeError struct {
	Path  string
	Field string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("upstream %s: missing required field %q", e.Path, e.Field)
}

func abbreviate(body []byte) string {
	const max = 256
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
