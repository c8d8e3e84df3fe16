// Package provider implements the uniform adapter surface over the supported
// vision/text providers: an OpenAI-style cloud API, an enterprise gateway
// behind bearer-token auth, and a locally hosted Ollama-style server.
package provider

import (
	"context"
	"time"
)

// ImageRequest is a vision call: an image plus a text prompt.
type ImageRequest struct {
	Image    []byte
	MIMEType string
	Prompt   string
}

// TextRequest is a text-only call used by the processing and translation
// stages.
type TextRequest struct {
	Prompt string
}

// TokenUsage reports provider-side token accounting when available.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// RawResponse carries the provider-native text output. Parsing into the
// structured stage schema happens downstream so the raw text survives parse
// failures.
type RawResponse struct {
	Text  string
	Model string
	Usage TokenUsage
}

// Client is the capability surface every provider adapter implements.
// Adapters are stateless apart from cached credentials and safe for
// concurrent use.
type Client interface {
	DescribeImage(ctx context.Context, req ImageRequest) (*RawResponse, error)
	CompleteText(ctx context.Context, req TextRequest) (*RawResponse, error)
	Model() string
}

// Config carries the per-client connection settings resolved from the
// endpoint configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	Headers     map[string]string
	Credentials CredentialProvider
}
