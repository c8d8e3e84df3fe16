package provider

import (
	"context"

	"alttext/internal/config"
	"alttext/internal/errors"
	"alttext/internal/logging"
	"alttext/internal/metrics"
)

// retryClient wraps a provider adapter with bounded exponential backoff.
// Transient errors (throttling, 5xx, network) are retried; auth and other
// permanent errors surface immediately.
type retryClient struct {
	underlying  Client
	kind        config.ProviderKind
	retryConfig errors.RetryConfig
	logger      logging.Logger
}

var _ Client = (*retryClient)(nil)

// WrapWithRetry decorates client with retry logic.
func WrapWithRetry(client Client, kind config.ProviderKind, retryConfig errors.RetryConfig) Client {
	return &retryClient{
		underlying:  client,
		kind:        kind,
		retryConfig: retryConfig,
		logger:      logging.NewComponentLogger("provider-retry"),
	}
}

func (c *retryClient) DescribeImage(ctx context.Context, req ImageRequest) (*RawResponse, error) {
	return c.call(ctx, func(ctx context.Context) (*RawResponse, error) {
		return c.underlying.DescribeImage(ctx, req)
	})
}

func (c *retryClient) CompleteText(ctx context.Context, req TextRequest) (*RawResponse, error) {
	return c.call(ctx, func(ctx context.Context) (*RawResponse, error) {
		return c.underlying.CompleteText(ctx, req)
	})
}

func (c *retryClient) Model() string {
	return c.underlying.Model()
}

func (c *retryClient) call(ctx context.Context, fn func(ctx context.Context) (*RawResponse, error)) (*RawResponse, error) {
	attempt := 0
	resp, err := errors.RetryWithResult(ctx, c.retryConfig, func(ctx context.Context) (*RawResponse, error) {
		if attempt > 0 {
			metrics.ProviderRetries.WithLabelValues(string(c.kind)).Inc()
		}
		attempt++
		return fn(ctx)
	}, c.logger)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ProviderRequests.WithLabelValues(string(c.kind), c.underlying.Model(), outcome).Inc()

	return resp, err
}
