package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store exposes raw configuration lookups. It models the external layered
// config store; Load is the viper-backed implementation used in-process.
type Store interface {
	Get(key string) any
	GetNested(path string) any
}

type viperStore struct {
	v *viper.Viper
}

func (s *viperStore) Get(key string) any {
	return s.v.Get(key)
}

func (s *viperStore) GetNested(path string) any {
	return s.v.Get(strings.ToLower(path))
}

// Load reads configuration from the given file (YAML or JSON, by extension),
// applies defaults and ALTTEXT_* environment overrides, and returns the
// immutable Config plus the backing Store. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, Store, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ALTTEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}

	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, &viperStore{v: v}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("two_step_processing", true)
	v.SetDefault("translation_mode", string(TranslationFast))
	v.SetDefault("geo_boost", false)
	v.SetDefault("request_delay", DefaultDelay)
	v.SetDefault("workers", 0)
	v.SetDefault("retry.max_attempts", DefaultMaxRetries)
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("retry.max_delay", "30s")
	v.SetDefault("stages.vision.kind", string(ProviderCloud))
	v.SetDefault("stages.vision.model", DefaultVisionModel)
	v.SetDefault("endpoints.cloud.base_url", DefaultCloudBaseURL)
	v.SetDefault("endpoints.local.base_url", DefaultLocalBaseURL)
}

// normalize fills derived defaults that viper cannot express declaratively.
func normalize(cfg *Config) {
	if cfg.Stages == nil {
		cfg.Stages = map[StageName]ProviderSpec{}
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = map[ProviderKind]Endpoint{}
	}

	// Processing and translation default to the vision provider when left
	// unset so single-provider setups need one stage entry only.
	vision := cfg.Stages[StageVision]
	for _, stage := range []StageName{StageProcessing, StageTranslation} {
		if spec, ok := cfg.Stages[stage]; !ok || spec.Kind == "" {
			inherited := vision
			if ok && spec.Model != "" {
				inherited.Model = spec.Model
			}
			cfg.Stages[stage] = inherited
		}
	}

	for kind, ep := range cfg.Endpoints {
		if ep.Timeout <= 0 {
			ep.Timeout = DefaultTimeout
			cfg.Endpoints[kind] = ep
		}
	}
}
