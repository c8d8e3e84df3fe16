package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"alttext/internal/config"
	"alttext/internal/logging"
	"alttext/internal/prompt"
)

// Orchestrator drives one image through the configured stage sequence for
// every requested language. Per image and language the state machine is
// PENDING, VISION, PROCESSING, optionally TRANSLATION, then DONE, with
// FAILED reachable from any stage.
type Orchestrator struct {
	cfg      *config.Config
	executor *Executor
	library  *prompt.Library
	logger   logging.Logger
}

// NewOrchestrator wires the orchestrator. cfg and library must be non-nil
// and are treated as immutable.
func NewOrchestrator(cfg *config.Config, executor *Executor, library *prompt.Library, logger logging.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, executor: executor, library: library, logger: logging.OrNop(logger)}
}

// Generate produces alt text for one task in every requested language.
// Failures never escape as errors; each language either lands in
// PerLanguage or is explained in Errors, and every provider interaction is
// appended to StageTrace in execution order.
func (o *Orchestrator) Generate(ctx context.Context, task ImageTask) GenerationResult {
	result := GenerationResult{
		ImageID:     task.ID,
		PerLanguage: make(map[string]LanguageResult),
	}
	if result.ImageID == "" {
		result.ImageID = uuid.NewString()
	}

	plan := PlanLanguages(task.Languages, o.cfg.TranslationMode)
	if len(plan.Steps) == 0 {
		result.Errors = append(result.Errors, "no target languages requested")
		return result
	}

	if !o.cfg.TwoStepProcessing {
		o.runSingleStep(ctx, task, plan, &result)
		return result
	}

	if o.cfg.TranslationMode == config.TranslationFast {
		o.runFast(ctx, task, plan, &result)
	} else {
		o.runAccurate(ctx, task, plan, &result)
	}
	return result
}

// runSingleStep handles two_step_processing == false: one combined
// vision+processing call per language, never a translation stage.
func (o *Orchestrator) runSingleStep(ctx context.Context, task ImageTask, plan ExecutionPlan, result *GenerationResult) {
	for _, step := range plan.Steps {
		vars := map[string]string{
			prompt.VarLanguage:      LanguageName(step.Language),
			prompt.VarContext:       task.Context,
			prompt.VarImageTypeHint: task.TypeHint,
		}
		text, err := prompt.Build(config.StageVision, o.library.SingleStep(), vars)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("language %s: %v", step.Language, err))
			continue
		}

		stage := o.executor.Run(ctx, StageRequest{
			Stage:    config.StageVision,
			Spec:     o.cfg.StageSpec(config.StageVision),
			Prompt:   text,
			Language: step.Language,
			Image:    task.Image,
			MIMEType: task.MIMEType,
			Expect:   Expect{ImageType: true, AltText: true},
		})
		result.StageTrace = append(result.StageTrace, stage)

		if !stage.OK() {
			result.Errors = append(result.Errors, languageFailure(step.Language, stage))
			continue
		}
		if stage.Parsed.ImageType == TypeDecorative {
			o.markAllDecorative(plan, stage.Parsed.Reasoning, result)
			return
		}
		result.PerLanguage[step.Language] = LanguageResult{
			AltText:   derefAlt(stage.Parsed),
			ImageType: stage.Parsed.ImageType,
			Reasoning: stage.Parsed.Reasoning,
		}
	}
}

// runFast handles fast translation mode: one shared vision stage, one
// processing stage for the reference language, then a translation stage per
// remaining language consuming the reference alt text.
func (o *Orchestrator) runFast(ctx context.Context, task ImageTask, plan ExecutionPlan, result *GenerationResult) {
	vision := o.runVision(ctx, task, "", result)
	if !vision.OK() {
		for _, step := range plan.Steps {
			result.Errors = append(result.Errors, languageFailure(step.Language, vision))
		}
		return
	}
	if vision.Parsed.ImageType == TypeDecorative {
		o.markAllDecorative(plan, vision.Parsed.Reasoning, result)
		return
	}

	processing := o.runProcessing(ctx, task, plan.Reference, vision.Parsed, result)
	if !processing.OK() {
		// Translations consume the reference alt text, so there is nothing
		// left to do for the remaining languages either.
		for _, step := range plan.Steps {
			result.Errors = append(result.Errors, languageFailure(step.Language, processing))
		}
		return
	}

	reference := LanguageResult{
		AltText:   derefAlt(processing.Parsed),
		ImageType: vision.Parsed.ImageType,
		Reasoning: processing.Parsed.Reasoning,
	}
	result.PerLanguage[plan.Reference] = reference

	for _, step := range plan.Steps {
		if !step.Translate {
			continue
		}
		o.runTranslation(ctx, step.Language, reference, result)
	}
}

// runAccurate handles accurate translation mode: a full, independent
// pipeline run per language.
func (o *Orchestrator) runAccurate(ctx context.Context, task ImageTask, plan ExecutionPlan, result *GenerationResult) {
	for _, step := range plan.Steps {
		vision := o.runVision(ctx, task, step.Language, result)
		if !vision.OK() {
			result.Errors = append(result.Errors, languageFailure(step.Language, vision))
			continue
		}
		if vision.Parsed.ImageType == TypeDecorative {
			o.markAllDecorative(plan, vision.Parsed.Reasoning, result)
			return
		}

		processing := o.runProcessing(ctx, task, step.Language, vision.Parsed, result)
		if !processing.OK() {
			result.Errors = append(result.Errors, languageFailure(step.Language, processing))
			continue
		}
		result.PerLanguage[step.Language] = LanguageResult{
			AltText:   derefAlt(processing.Parsed),
			ImageType: vision.Parsed.ImageType,
			Reasoning: processing.Parsed.Reasoning,
		}
	}
}

func (o *Orchestrator) runVision(ctx context.Context, task ImageTask, language string, result *GenerationResult) StageResult {
	vars := map[string]string{
		prompt.VarContext:       task.Context,
		prompt.VarImageTypeHint: task.TypeHint,
	}
	text, err := prompt.Build(config.StageVision, o.library.Stage(config.StageVision), vars)
	if err != nil {
		stage := StageResult{Stage: config.StageVision, Language: language, Status: StatusProviderError, Error: err.Error()}
		result.StageTrace = append(result.StageTrace, stage)
		return stage
	}

	stage := o.executor.Run(ctx, StageRequest{
		Stage:    config.StageVision,
		Spec:     o.cfg.StageSpec(config.StageVision),
		Prompt:   text,
		Language: language,
		Image:    task.Image,
		MIMEType: task.MIMEType,
		Expect:   Expect{ImageType: true, Description: true},
	})
	result.StageTrace = append(result.StageTrace, stage)
	return stage
}

func (o *Orchestrator) runProcessing(ctx context.Context, task ImageTask, language string, vision *Parsed, result *GenerationResult) StageResult {
	template := o.library.Stage(config.StageProcessing)
	if o.cfg.GEOBoost {
		template = template + "\n\n" + o.library.GEOBoost()
	}
	vars := map[string]string{
		prompt.VarLanguage:      LanguageName(language),
		prompt.VarContext:       task.Context,
		prompt.VarDescription:   vision.Description,
		prompt.VarImageTypeHint: string(vision.ImageType),
	}
	text, err := prompt.Build(config.StageProcessing, template, vars)
	if err != nil {
		stage := StageResult{Stage: config.StageProcessing, Language: language, Status: StatusProviderError, Error: err.Error()}
		result.StageTrace = append(result.StageTrace, stage)
		return stage
	}

	stage := o.executor.Run(ctx, StageRequest{
		Stage:    config.StageProcessing,
		Spec:     o.cfg.StageSpec(config.StageProcessing),
		Prompt:   text,
		Language: language,
		Expect:   Expect{AltText: true},
	})
	result.StageTrace = append(result.StageTrace, stage)
	return stage
}

// runTranslation translates the reference result into one language. A parse
// failure falls back to the untranslated reference alt text so the language
// still reaches DONE; a provider failure marks the language FAILED.
func (o *Orchestrator) runTranslation(ctx context.Context, language string, reference LanguageResult, result *GenerationResult) {
	vars := map[string]string{
		prompt.VarTargetLanguage: LanguageName(language),
		prompt.VarAltText:        reference.AltText,
	}
	text, err := prompt.Build(config.StageTranslation, o.library.Stage(config.StageTranslation), vars)
	if err != nil {
		result.StageTrace = append(result.StageTrace, StageResult{Stage: config.StageTranslation, Language: language, Status: StatusProviderError, Error: err.Error()})
		result.Errors = append(result.Errors, fmt.Sprintf("language %s: %v", language, err))
		return
	}

	stage := o.executor.Run(ctx, StageRequest{
		Stage:    config.StageTranslation,
		Spec:     o.cfg.StageSpec(config.StageTranslation),
		Prompt:   text,
		Language: language,
		Expect:   Expect{AltText: true},
	})
	result.StageTrace = append(result.StageTrace, stage)

	switch stage.Status {
	case StatusOK:
		result.PerLanguage[language] = LanguageResult{
			AltText:    derefAlt(stage.Parsed),
			ImageType:  reference.ImageType,
			Translated: true,
		}
	case StatusParseError:
		// The reference alt text is still valid in the source language, so
		// ship it untranslated rather than failing the language outright.
		o.logger.Warn("translation to %s unparseable, falling back to reference alt text", language)
		result.PerLanguage[language] = LanguageResult{
			AltText:   reference.AltText,
			ImageType: reference.ImageType,
		}
		result.Errors = append(result.Errors, fmt.Sprintf("language %s: translation output unparseable, reference alt text used", language))
	default:
		result.Errors = append(result.Errors, languageFailure(language, stage))
	}
}

// markAllDecorative resolves every planned language to an explicit empty
// alt text. Any partial per-language results are replaced; a decorative
// classification applies to the image, not to one language.
func (o *Orchestrator) markAllDecorative(plan ExecutionPlan, reasoning string, result *GenerationResult) {
	result.PerLanguage = make(map[string]LanguageResult, len(plan.Steps))
	for _, step := range plan.Steps {
		result.PerLanguage[step.Language] = LanguageResult{
			AltText:   "",
			ImageType: TypeDecorative,
			Reasoning: reasoning,
		}
	}
}

func languageFailure(language string, stage StageResult) string {
	detail := stage.Error
	if detail == "" {
		detail = string(stage.Status)
	}
	return fmt.Sprintf("language %s: %s stage failed: %s", language, stage.Stage, detail)
}

func derefAlt(parsed *Parsed) string {
	if parsed == nil || parsed.AltText == nil {
		return ""
	}
	return *parsed.AltText
}
