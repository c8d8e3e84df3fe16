package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"alttext/internal/config"
	"alttext/internal/logging"
)

// cloudClient talks to an OpenAI-compatible cloud API with a static API key.
type cloudClient struct {
	core chatCore
}

var _ Client = (*cloudClient)(nil)

// NewCloudClient constructs the cloud provider adapter.
func NewCloudClient(model string, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cloud provider: missing API key")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultCloudBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	apiKey := cfg.APIKey
	return &cloudClient{core: chatCore{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		headers:    cfg.Headers,
		logger:     logging.NewComponentLogger("cloud-client"),
		authorize: func(_ context.Context, req *http.Request) error {
			req.Header.Set("Authorization", "Bearer "+apiKey)
			return nil
		},
	}}, nil
}

func (c *cloudClient) DescribeImage(ctx context.Context, req ImageRequest) (*RawResponse, error) {
	return c.core.describeImage(ctx, req)
}

func (c *cloudClient) CompleteText(ctx context.Context, req TextRequest) (*RawResponse, error) {
	return c.core.completeText(ctx, req)
}

func (c *cloudClient) Model() string {
	return c.core.model
}
