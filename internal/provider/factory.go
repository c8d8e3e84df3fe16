package provider

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"alttext/internal/config"
	"alttext/internal/errors"
)

const defaultClientCacheSize = 32

// Factory builds and caches provider adapters. Clients are selected once at
// configuration-load time (by kind and model), not re-dispatched per call.
type Factory struct {
	cfg *config.Config

	mu          sync.RWMutex
	cache       *lru.Cache[string, Client]
	credentials map[string]CredentialProvider
	enableRetry bool
	retryConfig errors.RetryConfig
}

// NewFactory creates a factory bound to an immutable pipeline configuration.
func NewFactory(cfg *config.Config) *Factory {
	cache, _ := lru.New[string, Client](defaultClientCacheSize)

	retryConfig := errors.DefaultRetryConfig()
	if cfg.Retry.MaxAttempts > 0 {
		retryConfig.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.BaseDelay > 0 {
		retryConfig.BaseDelay = cfg.Retry.BaseDelay
	}
	if cfg.Retry.MaxDelay > 0 {
		retryConfig.MaxDelay = cfg.Retry.MaxDelay
	}

	return &Factory{
		cfg:         cfg,
		cache:       cache,
		credentials: make(map[string]CredentialProvider),
		enableRetry: true,
		retryConfig: retryConfig,
	}
}

// RegisterCredentials installs the credential provider referenced by a
// ProviderSpec's credentials_ref. The gateway adapter requires one.
func (f *Factory) RegisterCredentials(ref string, provider CredentialProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials[ref] = provider
}

// DisableRetry turns off the retry decorator for clients created afterwards.
// Tests use this to observe raw adapter behavior.
func (f *Factory) DisableRetry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enableRetry = false
	f.cache.Purge()
}

// ClientFor returns the adapter for one stage's provider spec, creating and
// caching it on first use.
func (f *Factory) ClientFor(spec config.ProviderSpec) (Client, error) {
	cacheKey := fmt.Sprintf("%s:%s:%s", spec.Kind, spec.Model, spec.CredentialsRef)

	f.mu.RLock()
	if client, ok := f.cache.Get(cacheKey); ok {
		f.mu.RUnlock()
		return client, nil
	}
	enableRetry := f.enableRetry
	retryConfig := f.retryConfig
	f.mu.RUnlock()

	clientCfg, err := f.clientConfig(spec)
	if err != nil {
		return nil, err
	}

	var client Client
	switch spec.Kind {
	case config.ProviderCloud:
		client, err = NewCloudClient(spec.Model, clientCfg)
	case config.ProviderGateway:
		client, err = NewGatewayClient(spec.Model, clientCfg)
	case config.ProviderLocal:
		client, err = NewLocalClient(spec.Model, clientCfg)
	case config.ProviderMock:
		client = NewScriptedClient(spec.Model)
	default:
		return nil, fmt.Errorf("unknown provider kind: %q", spec.Kind)
	}
	if err != nil {
		return nil, err
	}

	if enableRetry {
		client = WrapWithRetry(client, spec.Kind, retryConfig)
	}

	f.mu.Lock()
	f.cache.Add(cacheKey, client)
	f.mu.Unlock()

	return client, nil
}

func (f *Factory) clientConfig(spec config.ProviderSpec) (Config, error) {
	endpoint := f.cfg.Endpoint(spec.Kind)

	clientCfg := Config{
		BaseURL: endpoint.BaseURL,
		APIKey:  endpoint.APIKey,
		Timeout: endpoint.Timeout,
		Headers: endpoint.ExtraHeaders,
	}

	if spec.Kind == config.ProviderGateway {
		f.mu.RLock()
		credentials, ok := f.credentials[spec.CredentialsRef]
		f.mu.RUnlock()
		if !ok {
			return Config{}, fmt.Errorf("no credential provider registered for %q", spec.CredentialsRef)
		}
		clientCfg.Credentials = credentials
	}

	return clientCfg, nil
}
