package provider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"alttext/internal/config"
)

func factoryConfig() *config.Config {
	return &config.Config{
		TranslationMode: config.TranslationFast,
		Stages: map[config.StageName]config.ProviderSpec{
			config.StageVision: {Kind: config.ProviderCloud, Model: "gpt-4o"},
		},
		Endpoints: map[config.ProviderKind]config.Endpoint{
			config.ProviderCloud:   {BaseURL: "https://api.example.com/v1", APIKey: "sk-test"},
			config.ProviderGateway: {BaseURL: "https://gateway.corp.example/v1"},
			config.ProviderLocal:   {BaseURL: "http://127.0.0.1:11434/api"},
		},
	}
}

func TestFactoryBuildsEachKind(t *testing.T) {
	t.Parallel()

	factory := NewFactory(factoryConfig())
	factory.RegisterCredentials("gateway-oauth", StaticToken("tok"))

	specs := []config.ProviderSpec{
		{Kind: config.ProviderCloud, Model: "gpt-4o"},
		{Kind: config.ProviderGateway, Model: "enterprise-gpt", CredentialsRef: "gateway-oauth"},
		{Kind: config.ProviderLocal, Model: "llama3"},
		{Kind: config.ProviderMock, Model: "scripted"},
	}

	for _, spec := range specs {
		client, err := factory.ClientFor(spec)
		require.NoError(t, err, "kind %s", spec.Kind)
		require.Equal(t, spec.Model, client.Model())
	}
}

func TestFactoryCachesClients(t *testing.T) {
	t.Parallel()

	factory := NewFactory(factoryConfig())

	spec := config.ProviderSpec{Kind: config.ProviderCloud, Model: "gpt-4o"}
	first, err := factory.ClientFor(spec)
	require.NoError(t, err)

	second, err := factory.ClientFor(spec)
	require.NoError(t, err)
	require.Same(t, first, second)

	other, err := factory.ClientFor(config.ProviderSpec{Kind: config.ProviderCloud, Model: "gpt-4o-mini"})
	require.NoError(t, err)
	require.NotSame(t, first, other)
}

func TestFactoryRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	factory := NewFactory(factoryConfig())
	_, err := factory.ClientFor(config.ProviderSpec{Kind: "smoke-signals", Model: "m"})
	require.Error(t, err)
}

func TestFactoryGatewayNeedsRegisteredCredentials(t *testing.T) {
	t.Parallel()

	factory := NewFactory(factoryConfig())
	_, err := factory.ClientFor(config.ProviderSpec{
		Kind:           config.ProviderGateway,
		Model:          "enterprise-gpt",
		CredentialsRef: "unregistered",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "credential provider")
}

func TestFactoryWrapsWithRetryByDefault(t *testing.T) {
	t.Parallel()

	factory := NewFactory(factoryConfig())
	client, err := factory.ClientFor(config.ProviderSpec{Kind: config.ProviderCloud, Model: "gpt-4o"})
	require.NoError(t, err)
	_, isRetry := client.(*retryClient)
	require.True(t, isRetry)

	factory.DisableRetry()
	client, err = factory.ClientFor(config.ProviderSpec{Kind: config.ProviderCloud, Model: "gpt-4o"})
	require.NoError(t, err)
	_, isRetry = client.(*retryClient)
	require.False(t, isRetry)
}
