package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"alttext/internal/config"
	"alttext/internal/errors"
	"alttext/internal/logging"
)

// gatewayClient talks to an enterprise LLM gateway that speaks the same chat
// completions shape as the cloud API but authenticates every call with a
// bearer token from the credential provider. Token refresh and the OAuth2
// flow behind it are external concerns.
type gatewayClient struct {
	core chatCore
}

var _ Client = (*gatewayClient)(nil)

// NewGatewayClient constructs the gateway provider adapter.
func NewGatewayClient(model string, cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway provider: missing base URL")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("gateway provider: missing credential provider")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	credentials := cfg.Credentials
	return &gatewayClient{core: chatCore{
		model:      model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		headers:    cfg.Headers,
		logger:     logging.NewComponentLogger("gateway-client"),
		authorize: func(ctx context.Context, req *http.Request) error {
			token, err := credentials.Token(ctx)
			if err != nil {
				return errors.NewPermanentError(err, "gateway credential acquisition failed")
			}
			req.Header.Set("Authorization", "Bearer "+token)
			return nil
		},
	}}, nil
}

func (c *gatewayClient) DescribeImage(ctx context.Context, req ImageRequest) (*RawResponse, error) {
	return c.core.describeImage(ctx, req)
}

func (c *gatewayClient) CompleteText(ctx context.Context, req TextRequest) (*RawResponse, error) {
	return c.core.completeText(ctx, req)
}

func (c *gatewayClient) Model() string {
	return c.core.model
}
