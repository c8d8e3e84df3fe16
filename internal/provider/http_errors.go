package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"alttext/internal/errors"
)

// wrapRequestError classifies transport-level failures from http.Client.Do.
// Context cancellation passes through untouched so callers can distinguish a
// cancelled batch from a flaky network.
func wrapRequestError(err error) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.Canceled) {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTransientError(err, "request timed out")
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewTransientError(err, "network timeout")
	}

	// Remaining transport errors (refused connections, resets, DNS) are
	// worth a retry.
	return errors.NewTransientError(err, "network error: "+err.Error())
}

// mapHTTPError converts a non-2xx provider response into the retry taxonomy:
// 429 and 408/5xx are transient, everything else in 4xx is permanent.
func mapHTTPError(statusCode int, body []byte, headers http.Header) error {
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(statusCode)
	}
	baseErr := fmt.Errorf("provider returned status %d: %s", statusCode, message)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &errors.PermanentError{
			Err:        baseErr,
			StatusCode: statusCode,
			Message:    "authentication failed, check the configured credentials",
		}
	case statusCode == http.StatusTooManyRequests:
		return &errors.TransientError{
			Err:        baseErr,
			StatusCode: statusCode,
			RetryAfter: parseRetryAfter(headers),
			Message:    "provider rate limit reached",
		}
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return &errors.TransientError{
			Err:        baseErr,
			StatusCode: statusCode,
			Message:    "provider timed out",
		}
	case statusCode >= 500:
		return &errors.TransientError{
			Err:        baseErr,
			StatusCode: statusCode,
			Message:    "provider server error",
		}
	case statusCode >= 400:
		return &errors.PermanentError{
			Err:        baseErr,
			StatusCode: statusCode,
			Message:    "provider rejected the request",
		}
	default:
		// Unexpected non-error status reaching the error path; treat as
		// transient so an odd proxy response does not fail a whole language.
		return &errors.TransientError{Err: baseErr, StatusCode: statusCode}
	}
}

// parseRetryAfter extracts a wait hint in seconds from the Retry-After
// header. HTTP-date form is converted to a delta; unparseable values yield 0.
func parseRetryAfter(headers http.Header) int {
	if headers == nil {
		return 0
	}
	value := strings.TrimSpace(headers.Get("Retry-After"))
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return seconds
	}

	if at, err := http.ParseTime(value); err == nil {
		delta := time.Until(at)
		if delta > 0 {
			return int(delta.Seconds())
		}
	}

	return 0
}
