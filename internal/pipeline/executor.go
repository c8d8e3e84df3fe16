package pipeline

import (
	"context"
	"time"

	"alttext/internal/config"
	"alttext/internal/logging"
	"alttext/internal/metrics"
	"alttext/internal/provider"
)

// ClientSource resolves a provider spec to a ready client. Satisfied by
// provider.Factory; tests substitute scripted clients.
type ClientSource interface {
	ClientFor(spec config.ProviderSpec) (provider.Client, error)
}

// Pacer throttles outbound provider calls. Satisfied by rate.Limiter.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Expect declares which parsed fields a stage must produce to count as OK.
// On classifying stages (ImageType set) a decorative answer waives the
// remaining fields, since a decorative image legitimately has no description
// or alt text.
type Expect struct {
	ImageType   bool
	Description bool
	AltText     bool
}

// StageRequest is one stage execution order: which stage, against which
// provider, with what prompt, and what the answer must contain.
type StageRequest struct {
	Stage    config.StageName
	Spec     config.ProviderSpec
	Prompt   string
	Language string

	// Image and MIMEType are set for vision calls; text-only stages leave
	// them empty.
	Image    []byte
	MIMEType string

	Expect Expect
}

// Executor runs single stages against providers and normalizes every outcome
// into a StageResult. Provider retries happen inside the client; the executor
// never retries parse failures.
type Executor struct {
	clients ClientSource
	pacer   Pacer
	logger  logging.Logger
}

// NewExecutor creates a stage executor. pacer may be nil to disable call
// spacing.
func NewExecutor(clients ClientSource, pacer Pacer, logger logging.Logger) *Executor {
	return &Executor{clients: clients, pacer: pacer, logger: logging.OrNop(logger)}
}

// Run executes one stage. Every path returns a StageResult; errors are
// folded into the result rather than returned, so callers always get a trace
// entry.
func (e *Executor) Run(ctx context.Context, req StageRequest) StageResult {
	result := StageResult{Stage: req.Stage, Language: req.Language, Model: req.Spec.Model}

	if e.pacer != nil {
		if err := e.pacer.Wait(ctx); err != nil {
			return e.finish(result, StatusProviderError, err.Error())
		}
	}

	client, err := e.clients.ClientFor(req.Spec)
	if err != nil {
		return e.finish(result, StatusProviderError, err.Error())
	}

	start := time.Now()
	var resp *provider.RawResponse
	if len(req.Image) > 0 {
		resp, err = client.DescribeImage(ctx, provider.ImageRequest{
			Image:    req.Image,
			MIMEType: req.MIMEType,
			Prompt:   req.Prompt,
		})
	} else {
		resp, err = client.CompleteText(ctx, provider.TextRequest{Prompt: req.Prompt})
	}
	result.Duration = time.Since(start)

	if err != nil {
		e.logger.Warn("stage %s (%s) provider call failed: %v", req.Stage, req.Spec.Kind, err)
		return e.finish(result, StatusProviderError, err.Error())
	}

	result.Raw = resp.Text
	outcome := ParseStageOutput(resp.Text)
	if !outcome.OK {
		e.logger.Warn("stage %s returned unparseable output (%d bytes)", req.Stage, len(resp.Text))
		return e.finish(result, StatusParseError, "output did not match the stage schema")
	}
	if missing := missingField(outcome.Parsed, req.Expect); missing != "" {
		return e.finish(result, StatusParseError, "output is missing "+missing)
	}

	parsed := outcome.Parsed
	result.Parsed = &parsed
	return e.finish(result, StatusOK, "")
}

func (e *Executor) finish(result StageResult, status StageStatus, errMsg string) StageResult {
	result.Status = status
	result.Error = errMsg
	metrics.StageResults.WithLabelValues(string(result.Stage), string(status)).Inc()
	metrics.StageDuration.WithLabelValues(string(result.Stage)).Observe(result.Duration.Seconds())
	return result
}

func missingField(parsed Parsed, expect Expect) string {
	if expect.ImageType && parsed.ImageType == "" {
		return "image_type"
	}
	// The waiver only applies to stages that classify. A text-only stage
	// claiming "decorative" without alt text is a schema miss, not a
	// legitimate decorative answer.
	if expect.ImageType && parsed.ImageType == TypeDecorative {
		return ""
	}
	if expect.Description && parsed.Description == "" {
		return "image_description"
	}
	if expect.AltText && parsed.AltText == nil {
		return "alt_text"
	}
	return ""
}
