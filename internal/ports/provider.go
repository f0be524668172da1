package ports

import (
	"context"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

// TranslationProvider is one translation backend. Implementations live in
// internal/adapters/translate and are constructed by the registry.
type TranslationProvider interface {
	// ID returns the engine type tag this provider was built for.
	ID() domain.EngineType
	// Name is the human-readable backend name.
	Name() string
	// IsAvailable reports whether the backend is usable right now
	// (credentials present, binary installed, and so on). It never dials.
	IsAvailable() bool
	// Translate translates a single string. from may be empty for
	// auto-detection. Blank text fails with domain.ErrEmptyInput.
	Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error)
	// TranslateBatch translates texts preserving order. It returns exactly
	// len(texts) results or an error, never a short or reordered list.
	TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error)
	// CheckConnection performs a minimal live probe and reports the outcome
	// without raising.
	CheckConnection(ctx context.Context) bool
}
