package provider

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"alttext/internal/errors"
)

func TestWrapRequestErrorContextCanceled(t *testing.T) {
	t.Parallel()

	err := wrapRequestError(context.Canceled)
	require.Equal(t, context.Canceled, err)
}

func TestWrapRequestErrorDeadlineExceeded(t *testing.T) {
	t.Parallel()

	err := wrapRequestError(context.DeadlineExceeded)
	var transientErr *errors.TransientError
	require.ErrorAs(t, err, &transientErr)
}

func TestWrapRequestErrorNetTimeout(t *testing.T) {
	t.Parallel()

	err := wrapRequestError(&net.DNSError{IsTimeout: true})
	var transientErr *errors.TransientError
	require.ErrorAs(t, err, &transientErr)
}

func TestWrapRequestErrorGenericTransport(t *testing.T) {
	t.Parallel()

	err := wrapRequestError(net.ErrClosed)
	var transientErr *errors.TransientError
	require.ErrorAs(t, err, &transientErr)
}

func TestMapHTTPErrorUnauthorized(t *testing.T) {
	t.Parallel()

	err := mapHTTPError(401, []byte("unauthorized"), nil)
	var permanentErr *errors.PermanentError
	require.ErrorAs(t, err, &permanentErr)
	require.Equal(t, 401, permanentErr.StatusCode)
	require.True(t, errors.IsAuth(err))
}

func TestMapHTTPErrorForbidden(t *testing.T) {
	t.Parallel()

	err := mapHTTPError(403, []byte("forbidden"), nil)
	require.True(t, errors.IsAuth(err))
}

func TestMapHTTPErrorRateLimit(t *testing.T) {
	t.Parallel()

	headers := http.Header{}
	headers.Set("Retry-After", "30")
	err := mapHTTPError(429, []byte("rate limited"), headers)

	var transientErr *errors.TransientError
	require.ErrorAs(t, err, &transientErr)
	require.Equal(t, 429, transientErr.StatusCode)
	require.Equal(t, 30, transientErr.RetryAfter)
	require.True(t, errors.IsRateLimit(err))
}

func TestMapHTTPErrorTimeouts(t *testing.T) {
	t.Parallel()

	for _, status := range []int{408, 504} {
		err := mapHTTPError(status, nil, nil)
		var transientErr *errors.TransientError
		require.ErrorAs(t, err, &transientErr, "status %d", status)
	}
}

func TestMapHTTPErrorServerError(t *testing.T) {
	t.Parallel()

	err := mapHTTPError(500, []byte("internal server error"), nil)
	var transientErr *errors.TransientError
	require.ErrorAs(t, err, &transientErr)
}

func TestMapHTTPErrorClientError(t *testing.T) {
	t.Parallel()

	err := mapHTTPError(400, []byte("bad request"), nil)
	var permanentErr *errors.PermanentError
	require.ErrorAs(t, err, &permanentErr)
	require.False(t, errors.IsAuth(err))
}

func TestMapHTTPErrorEmptyBodyUsesStatusText(t *testing.T) {
	t.Parallel()

	err := mapHTTPError(500, nil, nil)
	var transientErr *errors.TransientError
	require.ErrorAs(t, err, &transientErr)
	require.NotNil(t, transientErr.Err)
	require.Contains(t, transientErr.Err.Error(), "Internal Server Error")
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, parseRetryAfter(nil))

	headers := http.Header{}
	require.Equal(t, 0, parseRetryAfter(headers))

	headers.Set("Retry-After", "42")
	require.Equal(t, 42, parseRetryAfter(headers))

	headers.Set("Retry-After", "-5")
	require.Equal(t, 0, parseRetryAfter(headers))

	headers.Set("Retry-After", "not-a-number")
	require.Equal(t, 0, parseRetryAfter(headers))
}

func TestMapHTTPErrorWrappedCauseSurvives(t *testing.T) {
	t.Parallel()

	err := mapHTTPError(503, []byte("maintenance"), nil)
	require.Contains(t, stderrors.Unwrap(err).Error(), "maintenance")
}
