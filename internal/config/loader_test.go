package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, store, err := Load("")
	require.NoError(t, err)

	require.True(t, cfg.TwoStepProcessing)
	require.Equal(t, TranslationFast, cfg.TranslationMode)
	require.False(t, cfg.GEOBoost)
	require.Equal(t, DefaultDelay, cfg.RequestDelay)
	require.Equal(t, DefaultMaxRetries, cfg.Retry.MaxAttempts)

	vision := cfg.StageSpec(StageVision)
	require.Equal(t, ProviderCloud, vision.Kind)
	require.Equal(t, DefaultVisionModel, vision.Model)

	require.Equal(t, DefaultCloudBaseURL, store.GetNested("endpoints.cloud.base_url"))
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeConfig(t, "alttext.yaml", `
two_step_processing: true
translation_mode: accurate
geo_boost: true
request_delay: 250ms
workers: 4
retry:
  max_attempts: 5
  base_delay: 2s
  max_delay: 10s
stages:
  vision:
    kind: cloud
    model: gpt-4o
  processing:
    kind: gateway
    model: enterprise-gpt
    credentials_ref: gateway-oauth
  translation:
    kind: local
    model: llama3
endpoints:
  cloud:
    base_url: https://api.example.com/v1
    api_key: sk-test
  gateway:
    base_url: https://gateway.corp.example/v1
  local:
    base_url: http://127.0.0.1:11434/api
`)

	cfg, _, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, TranslationAccurate, cfg.TranslationMode)
	require.True(t, cfg.GEOBoost)
	require.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 5, cfg.Retry.MaxAttempts)

	require.Equal(t, ProviderGateway, cfg.StageSpec(StageProcessing).Kind)
	require.Equal(t, "gateway-oauth", cfg.StageSpec(StageProcessing).CredentialsRef)
	require.Equal(t, ProviderLocal, cfg.StageSpec(StageTranslation).Kind)
	require.Equal(t, "llama3", cfg.StageSpec(StageTranslation).Model)

	require.Equal(t, "sk-test", cfg.Endpoint(ProviderCloud).APIKey)
	require.Equal(t, "https://gateway.corp.example/v1", cfg.Endpoint(ProviderGateway).BaseURL)
	// Endpoints without an explicit timeout get the default.
	require.Equal(t, DefaultTimeout, cfg.Endpoint(ProviderGateway).Timeout)
}

func TestLoadStageInheritance(t *testing.T) {
	path := writeConfig(t, "alttext.yaml", `
stages:
  vision:
    kind: local
    model: llava
`)

	cfg, _, err := Load(path)
	require.NoError(t, err)

	// Unconfigured stages inherit the vision provider.
	require.Equal(t, ProviderLocal, cfg.StageSpec(StageProcessing).Kind)
	require.Equal(t, "llava", cfg.StageSpec(StageProcessing).Model)
	require.Equal(t, ProviderLocal, cfg.StageSpec(StageTranslation).Kind)
}

func TestLoadRejectsUnknownTranslationMode(t *testing.T) {
	path := writeConfig(t, "alttext.yaml", "translation_mode: turbo\n")

	_, _, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "translation_mode")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			TranslationMode: TranslationFast,
			Stages: map[StageName]ProviderSpec{
				StageVision: {Kind: ProviderCloud, Model: "gpt-4o"},
			},
		}
	}

	require.NoError(t, base().Validate())

	missingVision := base()
	delete(missingVision.Stages, StageVision)
	require.Error(t, missingVision.Validate())

	badKind := base()
	badKind.Stages[StageVision] = ProviderSpec{Kind: "carrier-pigeon"}
	require.Error(t, badKind.Validate())

	badStage := base()
	badStage.Stages["render"] = ProviderSpec{Kind: ProviderCloud}
	require.Error(t, badStage.Validate())

	negativeDelay := base()
	negativeDelay.RequestDelay = -time.Second
	require.Error(t, negativeDelay.Validate())
}
