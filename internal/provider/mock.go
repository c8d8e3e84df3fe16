package provider

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedClient is a test double that replays queued responses in order.
// Vision and text calls share one queue so a scripted pipeline reads top to
// bottom like the stage trace it produces.
type ScriptedClient struct {
	model string

	mu        sync.Mutex
	responses []scriptedResponse
	describes int
	completes int
	prompts   []string
}

type scriptedResponse struct {
	text string
	err  error
}

var _ Client = (*ScriptedClient)(nil)

// NewScriptedClient creates an empty scripted client. With no queued
// responses every call fails, which keeps accidental use loud.
func NewScriptedClient(model string) *ScriptedClient {
	return &ScriptedClient{model: model}
}

// Queue appends a successful response.
func (c *ScriptedClient) Queue(text string) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, scriptedResponse{text: text})
	return c
}

// QueueError appends a failing response.
func (c *ScriptedClient) QueueError(err error) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, scriptedResponse{err: err})
	return c
}

func (c *ScriptedClient) DescribeImage(ctx context.Context, req ImageRequest) (*RawResponse, error) {
	c.mu.Lock()
	c.describes++
	c.prompts = append(c.prompts, req.Prompt)
	c.mu.Unlock()
	return c.next(ctx)
}

func (c *ScriptedClient) CompleteText(ctx context.Context, req TextRequest) (*RawResponse, error) {
	c.mu.Lock()
	c.completes++
	c.prompts = append(c.prompts, req.Prompt)
	c.mu.Unlock()
	return c.next(ctx)
}

func (c *ScriptedClient) Model() string {
	return c.model
}

// DescribeCalls reports how many vision calls were made.
func (c *ScriptedClient) DescribeCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.describes
}

// CompleteCalls reports how many text-only calls were made.
func (c *ScriptedClient) CompleteCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completes
}

// Prompts returns the prompts seen so far, in call order.
func (c *ScriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

func (c *ScriptedClient) next(ctx context.Context) (*RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.responses) == 0 {
		return nil, fmt.Errorf("scripted client: no response queued")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]

	if resp.err != nil {
		return nil, resp.err
	}
	return &RawResponse{Text: resp.text, Model: c.model}, nil
}
