package ports

import (
	"context"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

// CredentialStore keeps provider secrets at rest in encrypted form.
// Decrypted material is read per request and not cached by callers.
type CredentialStore interface {
	Has(engine domain.EngineType) bool
	Get(engine domain.EngineType) (*domain.StoredCredentials, error)
	Put(engine domain.EngineType, creds domain.StoredCredentials) error
	Delete(engine domain.EngineType) error
}

// TranslationCache memoizes per-segment translations keyed by source text,
// language pair, engine and model. Nil entry with nil error means a miss.
type TranslationCache interface {
	Get(ctx context.Context, src, srcLang, tgtLang string, engine domain.EngineType, model string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
}

// SettingsStore persists provider configs and loose app settings.
type SettingsStore interface {
	GetProviderConfig(ctx context.Context, engine domain.EngineType) (*domain.ProviderConfig, error)
	PutProviderConfig(ctx context.Context, cfg *domain.ProviderConfig) error
	ListProviderConfigs(ctx context.Context) ([]*domain.ProviderConfig, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
