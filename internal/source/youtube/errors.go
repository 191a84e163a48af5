package youtube

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// isRetryable treats 429s, 5xx responses and transport failures as transient.
// Other API errors (bad key, unknown channel, quota exhausted) are permanent.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	return true
}
