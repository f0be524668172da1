// Package registry owns the live provider instances. All map mutation goes
// through one mutex; CreateProvider holds the single switch over engine
// types, so backend construction logic lives in exactly one place.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/baidu"
	tlgemini "github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/gemini"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/googlecloud"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/local"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/openai"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/selfhosted"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

type Registry struct {
	mu        sync.RWMutex
	providers map[domain.EngineType]ports.TranslationProvider
	creds     ports.CredentialStore
	prompts   ports.PromptRenderer
}

func New(creds ports.CredentialStore, prompts ports.PromptRenderer) *Registry {
	r := &Registry{
		providers: make(map[domain.EngineType]ports.TranslationProvider),
		creds:     creds,
		prompts:   prompts,
	}
	// Engines needing no external configuration are registered eagerly;
	// everything else waits for first use.
	r.Register(local.New(""))
	r.Register(openai.New(domain.EngineOllama, domain.ProviderConfig{Engine: domain.EngineOllama}, "", prompts))
	return r
}

func (r *Registry) Register(p ports.TranslationProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

func (r *Registry) Unregister(engine domain.EngineType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, engine)
}

func (r *Registry) Provider(engine domain.EngineType) (ports.TranslationProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[engine]
	return p, ok
}

func (r *Registry) RegisteredEngines() []domain.EngineType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.EngineType, 0, len(r.providers))
	for _, e := range domain.Engines() {
		if _, ok := r.providers[e]; ok {
			out = append(out, e)
		}
	}
	return out
}

// AvailableEngines asks every registered provider whether it is usable now.
func (r *Registry) AvailableEngines() []domain.EngineType {
	r.mu.RLock()
	snapshot := make(map[domain.EngineType]ports.TranslationProvider, len(r.providers))
	for e, p := range r.providers {
		snapshot[e] = p
	}
	r.mu.RUnlock()
	out := make([]domain.EngineType, 0, len(snapshot))
	for _, e := range domain.Engines() {
		if p, ok := snapshot[e]; ok && p.IsAvailable() {
			out = append(out, e)
		}
	}
	return out
}

// IsEngineConfigured checks credential presence without constructing a
// provider or dialing anything.
func (r *Registry) IsEngineConfigured(engine domain.EngineType) bool {
	if !engine.RequiresCredentials() {
		return true
	}
	return r.creds.Has(engine)
}

// CreateProvider is the idempotent factory: an already registered instance
// wins over the supplied config.
func (r *Registry) CreateProvider(engine domain.EngineType, cfg domain.ProviderConfig) (ports.TranslationProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[engine]; ok {
		return p, nil
	}
	p, err := r.build(engine, cfg)
	if err != nil {
		return nil, err
	}
	r.providers[engine] = p
	return p, nil
}

func (r *Registry) build(engine domain.EngineType, cfg domain.ProviderConfig) (ports.TranslationProvider, error) {
	creds, err := r.resolveCredentials(engine)
	if err != nil {
		return nil, err
	}
	switch engine {
	case domain.EngineLocal:
		return local.New(cfg.Model), nil
	case domain.EngineSelfHosted:
		return selfhosted.New(cfg, creds.APIKey), nil
	case domain.EngineBaidu:
		return baidu.New(cfg, creds.AppID, creds.APIKey), nil
	case domain.EngineGoogle:
		return googlecloud.New(cfg, creds.APIKey, false), nil
	case domain.EngineGemini:
		return tlgemini.New(cfg, creds.APIKey, r.prompts), nil
	case domain.EngineOpenAI, domain.EngineOllama, domain.EngineCustom:
		return openai.New(engine, cfg, creds.APIKey, r.prompts), nil
	}
	return nil, errors.New("unknown engine type: " + string(engine))
}

// Missing credentials surface as invalid configuration at the point of first
// use, not at startup.
func (r *Registry) resolveCredentials(engine domain.EngineType) (domain.StoredCredentials, error) {
	if !engine.RequiresCredentials() {
		// Self-hosted may still carry an optional shared secret.
		if creds, err := r.creds.Get(engine); err == nil && creds != nil {
			return *creds, nil
		}
		return domain.StoredCredentials{}, nil
	}
	creds, err := r.creds.Get(engine)
	if err != nil {
		return domain.StoredCredentials{}, &domain.InvalidConfigError{Reason: "credential store: " + err.Error()}
	}
	if creds == nil {
		return domain.StoredCredentials{}, &domain.InvalidConfigError{Reason: "no credentials stored for " + string(engine)}
	}
	return *creds, nil
}

// HealthCheck probes every registered provider, keyed by engine type.
func (r *Registry) HealthCheck(ctx context.Context) map[domain.EngineType]bool {
	r.mu.RLock()
	snapshot := make(map[domain.EngineType]ports.TranslationProvider, len(r.providers))
	for e, p := range r.providers {
		snapshot[e] = p
	}
	r.mu.RUnlock()
	out := make(map[domain.EngineType]bool, len(snapshot))
	for e, p := range snapshot {
		out[e] = p.CheckConnection(ctx)
	}
	return out
}
