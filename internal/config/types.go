package config

import (
	"fmt"
	"time"
)

// TranslationMode selects the multilingual strategy for a batch.
type TranslationMode string

const (
	// TranslationFast runs the full pipeline once and translates the result
	// into every remaining language.
	TranslationFast TranslationMode = "fast"
	// TranslationAccurate runs the full pipeline independently per language.
	TranslationAccurate TranslationMode = "accurate"
)

// ProviderKind identifies one of the supported provider adapter variants.
type ProviderKind string

const (
	ProviderCloud   ProviderKind = "cloud"
	ProviderGateway ProviderKind = "gateway"
	ProviderLocal   ProviderKind = "local"
	ProviderMock    ProviderKind = "mock"
)

// StageName identifies one pipeline stage.
type StageName string

const (
	StageVision      StageName = "vision"
	StageProcessing  StageName = "processing"
	StageTranslation StageName = "translation"
)

const (
	DefaultCloudBaseURL = "https://api.openai.com/v1"
	DefaultLocalBaseURL = "http://localhost:11434/api"
	DefaultVisionModel  = "gpt-4o-mini"
	DefaultTextModel    = "gpt-4o-mini"
	DefaultTimeout      = 120 * time.Second
	DefaultDelay        = 1 * time.Second
	DefaultMaxRetries   = 3
)

// ProviderSpec selects the provider and model for one pipeline stage.
// Loaded from configuration once; never mutated at runtime.
type ProviderSpec struct {
	Kind           ProviderKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Model          string       `json:"model" yaml:"model" mapstructure:"model"`
	CredentialsRef string       `json:"credentials_ref" yaml:"credentials_ref" mapstructure:"credentials_ref"`
}

// Endpoint holds the reachable address and credential reference for one
// provider kind.
type Endpoint struct {
	BaseURL      string            `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	APIKey       string            `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	Timeout      time.Duration     `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	ExtraHeaders map[string]string `json:"extra_headers" yaml:"extra_headers" mapstructure:"extra_headers"`
}

// Retry bounds the retry/backoff loop around provider calls.
type Retry struct {
	// MaxAttempts counts retries after the first call, so 3 allows up to
	// 4 provider calls total.
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay    time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

// Config is the immutable pipeline configuration threaded from the batch
// runner down to every component. There is no process-wide singleton; callers
// construct one (usually via Load) and pass it along explicitly.
type Config struct {
	TwoStepProcessing bool            `json:"two_step_processing" yaml:"two_step_processing" mapstructure:"two_step_processing"`
	TranslationMode   TranslationMode `json:"translation_mode" yaml:"translation_mode" mapstructure:"translation_mode"`
	GEOBoost          bool            `json:"geo_boost" yaml:"geo_boost" mapstructure:"geo_boost"`

	// Per-stage provider/model selection.
	Stages map[StageName]ProviderSpec `json:"stages" yaml:"stages" mapstructure:"stages"`

	// Per-provider endpoints.
	Endpoints map[ProviderKind]Endpoint `json:"endpoints" yaml:"endpoints" mapstructure:"endpoints"`

	// Delay inserted between provider-call bursts.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// Number of image pipelines allowed to run concurrently. Zero or one
	// means sequential processing.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	Retry Retry `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// StageSpec returns the provider spec configured for a stage. Stages without
// an explicit entry inherit the vision stage's provider so a single-provider
// configuration stays a three-line file.
func (c *Config) StageSpec(stage StageName) ProviderSpec {
	if spec, ok := c.Stages[stage]; ok && spec.Kind != "" {
		return spec
	}
	if spec, ok := c.Stages[StageVision]; ok {
		return spec
	}
	return ProviderSpec{Kind: ProviderCloud, Model: DefaultVisionModel}
}

// Endpoint returns the endpoint configured for a provider kind.
func (c *Config) Endpoint(kind ProviderKind) Endpoint {
	if ep, ok := c.Endpoints[kind]; ok {
		return ep
	}
	return Endpoint{}
}

// Validate reports systemic configuration problems that make any progress
// impossible. Per-image or per-stage failures are handled downstream.
func (c *Config) Validate() error {
	switch c.TranslationMode {
	case TranslationFast, TranslationAccurate:
	case "":
		return fmt.Errorf("config: translation_mode is required")
	default:
		return fmt.Errorf("config: unknown translation_mode %q", c.TranslationMode)
	}

	for stage, spec := range c.Stages {
		switch stage {
		case StageVision, StageProcessing, StageTranslation:
		default:
			return fmt.Errorf("config: unknown stage %q", stage)
		}
		switch spec.Kind {
		case ProviderCloud, ProviderGateway, ProviderLocal, ProviderMock, "":
		default:
			return fmt.Errorf("config: stage %s: unknown provider kind %q", stage, spec.Kind)
		}
	}

	if _, ok := c.Stages[StageVision]; !ok {
		return fmt.Errorf("config: stages.vision is required")
	}

	if c.RequestDelay < 0 {
		return fmt.Errorf("config: request_delay must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative")
	}

	return nil
}
