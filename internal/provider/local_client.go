package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"alttext/internal/config"
	"alttext/internal/logging"
	jsonx "alttext/internal/shared/json"
)

// localClient talks to a locally hosted Ollama-style model server. No auth;
// images travel as inline base64 in the message payload.
type localClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

var _ Client = (*localClient)(nil)

// NewLocalClient constructs the local-server provider adapter.
func NewLocalClient(model string, cfg Config) (Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultLocalBaseURL
	}
	if !strings.HasSuffix(baseURL, "/api") {
		baseURL += "/api"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &localClient{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger("local-client"),
	}, nil
}

type localMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type localRequest struct {
	Model    string         `json:"model"`
	Messages []localMessage `json:"messages"`
	Stream   bool           `json:"stream"`
}

type localResponse struct {
	Model           string       `json:"model"`
	Message         localMessage `json:"message"`
	Done            bool         `json:"done"`
	PromptEvalCount int          `json:"prompt_eval_count"`
	EvalCount       int          `json:"eval_count"`
	Error           string       `json:"error"`
}

func (c *localClient) DescribeImage(ctx context.Context, req ImageRequest) (*RawResponse, error) {
	return c.doChat(ctx, localMessage{
		Role:    "user",
		Content: req.Prompt,
		Images:  []string{base64.StdEncoding.EncodeToString(req.Image)},
	})
}

func (c *localClient) CompleteText(ctx context.Context, req TextRequest) (*RawResponse, error) {
	return c.doChat(ctx, localMessage{Role: "user", Content: req.Prompt})
}

func (c *localClient) Model() string {
	return c.model
}

func (c *localClient) doChat(ctx context.Context, msg localMessage) (*RawResponse, error) {
	body, err := jsonx.Marshal(localRequest{
		Model:    c.model,
		Messages: []localMessage{msg},
		Stream:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("POST %s model=%s", endpoint, c.model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapRequestError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapHTTPError(resp.StatusCode, respBody, resp.Header)
	}

	var parsed localResponse
	if err := jsonx.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("local server error: %s", parsed.Error)
	}

	return &RawResponse{
		Text:  strings.TrimSpace(parsed.Message.Content),
		Model: parsed.Model,
		Usage: TokenUsage{
			PromptTokens:     parsed.PromptEvalCount,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
		},
	}, nil
}
