// Package batch iterates image tasks through the generation pipeline,
// isolating per-image failures and pacing provider traffic.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"alttext/internal/config"
	"alttext/internal/logging"
	"alttext/internal/metrics"
	"alttext/internal/pipeline"
	"alttext/internal/prompt"
)

// Generator produces one result per image task. Satisfied by
// pipeline.Orchestrator.
type Generator interface {
	Generate(ctx context.Context, task pipeline.ImageTask) pipeline.GenerationResult
}

// Runner drives a set of image tasks through the pipeline. One image's
// failure never stops the batch; only systemic configuration problems abort
// before any image runs.
type Runner struct {
	cfg       *config.Config
	generator Generator
	logger    logging.Logger
}

// NewRunner wires a runner around an assembled generator.
func NewRunner(cfg *config.Config, generator Generator, logger logging.Logger) *Runner {
	return &Runner{cfg: cfg, generator: generator, logger: logging.OrNop(logger)}
}

// Assemble builds the full pipeline stack from configuration: pacer,
// executor, orchestrator, runner. clients is usually a provider.Factory.
func Assemble(cfg *config.Config, clients pipeline.ClientSource, logger logging.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	library, err := prompt.LoadLibrary()
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	var pacer pipeline.Pacer
	if cfg.RequestDelay > 0 {
		pacer = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}

	executor := pipeline.NewExecutor(clients, pacer, logger)
	orchestrator := pipeline.NewOrchestrator(cfg, executor, library, logger)
	return NewRunner(cfg, orchestrator, logger), nil
}

// Run processes every task and returns one result per input task, in input
// order. Per-image failures land in that image's result; the returned error
// is reserved for systemic problems and cancellation. On cancellation the
// current image finishes, no new image starts, and tasks that never ran get
// a result recording that.
func (r *Runner) Run(ctx context.Context, tasks []pipeline.ImageTask) ([]pipeline.GenerationResult, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	results := make([]pipeline.GenerationResult, len(tasks))

	if r.cfg.Workers > 1 {
		return results, r.runParallel(ctx, tasks, results)
	}
	return results, r.runSequential(ctx, tasks, results)
}

func (r *Runner) runSequential(ctx context.Context, tasks []pipeline.ImageTask, results []pipeline.GenerationResult) error {
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			r.skipFrom(tasks, results, i, err)
			return err
		}
		results[i] = r.runOne(ctx, task)
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, tasks []pipeline.ImageTask, results []pipeline.GenerationResult) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Workers)

	for i, task := range tasks {
		if err := groupCtx.Err(); err != nil {
			r.skipFrom(tasks, results, i, err)
			break
		}
		group.Go(func() error {
			results[i] = r.runOne(groupCtx, task)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, task pipeline.ImageTask) pipeline.GenerationResult {
	result := r.generator.Generate(ctx, task)

	outcome := metrics.OutcomeOK
	if result.Failed() {
		outcome = metrics.OutcomeError
		r.logger.Warn("image %s failed for every language: %v", result.ImageID, result.Errors)
	}
	metrics.BatchImages.WithLabelValues(outcome).Inc()
	return result
}

// skipFrom records a terminal result for tasks that never started.
func (r *Runner) skipFrom(tasks []pipeline.ImageTask, results []pipeline.GenerationResult, from int, cause error) {
	for i := from; i < len(tasks); i++ {
		results[i] = pipeline.GenerationResult{
			ImageID: tasks[i].ID,
			Errors:  []string{fmt.Sprintf("not started: %v", cause)},
		}
		metrics.BatchImages.WithLabelValues(metrics.OutcomeError).Inc()
	}
}
