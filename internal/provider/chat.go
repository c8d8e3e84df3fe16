package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonx "alttext/internal/shared/json"
	"alttext/internal/logging"
)

// chatCore implements the OpenAI-style chat completions wire shape shared by
// the cloud and gateway adapters. The two differ only in default base URL and
// how the Authorization header is produced.
type chatCore struct {
	model      string
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	logger     logging.Logger
	authorize  func(ctx context.Context, req *http.Request) error
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatTextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatImagePart struct {
	Type     string       `json:"type"`
	ImageURL chatImageURL `json:"image_url"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// dataURI encodes image bytes as an inline data URI for an image_url part.
func dataURI(mimeType string, image []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func (c *chatCore) completeText(ctx context.Context, req TextRequest) (*RawResponse, error) {
	return c.doChat(ctx, []chatMessage{
		{Role: "user", Content: req.Prompt},
	})
}

func (c *chatCore) describeImage(ctx context.Context, req ImageRequest) (*RawResponse, error) {
	return c.doChat(ctx, []chatMessage{
		{Role: "user", Content: []any{
			chatTextPart{Type: "text", Text: req.Prompt},
			chatImagePart{Type: "image_url", ImageURL: chatImageURL{URL: dataURI(req.MIMEType, req.Image)}},
		}},
	})
}

func (c *chatCore) doChat(ctx context.Context, messages []chatMessage) (*RawResponse, error) {
	body, err := jsonx.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	if c.authorize != nil {
		if err := c.authorize(ctx, httpReq); err != nil {
			return nil, err
		}
	}

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

	c.logger.Debug("status=%d bytes=%d", resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapHTTPError(resp.StatusCode, respBody, resp.Header)
	}

	var parsed chatResponse
	if err := jsonx.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	return &RawResponse{
		Text:  strings.TrimSpace(parsed.Choices[0].Message.Content),
		Model: parsed.Model,
		Usage: TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}
