// Package translator orchestrates batched translation over a provider chain:
// cache first, then the preferred engine, then one retry against the fallback
// engine when configured. No blind retry against the same endpoint.
package translator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

// ProviderSource is the registry view the orchestrator needs.
type ProviderSource interface {
	Provider(engine domain.EngineType) (ports.TranslationProvider, bool)
	CreateProvider(engine domain.EngineType, cfg domain.ProviderConfig) (ports.TranslationProvider, error)
}

type Deps struct {
	Providers ProviderSource
	Settings  ports.SettingsStore
	Cache     ports.TranslationCache
	Logger    *slog.Logger
}

type Service struct{ d Deps }

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{d: d}
}

type Args struct {
	Segments    []domain.TextSegment
	TargetLang  string
	SourceLang  string
	Preferred   domain.EngineType
	Fallback    domain.EngineType
	BypassCache bool
}

// Translate returns one BilingualSegment per input segment, same order. A
// shorter or reordered provider reply is a defect and fails loudly instead of
// zipping partially.
func (s *Service) Translate(ctx context.Context, a Args) ([]domain.BilingualSegment, error) {
	if len(a.Segments) == 0 {
		return nil, domain.ErrEmptyInput
	}
	out, err := s.translateWith(ctx, a.Preferred, a)
	if err == nil {
		return out, nil
	}
	if a.Fallback == "" || a.Fallback == a.Preferred {
		return nil, err
	}
	s.d.Logger.Warn("preferred engine failed, trying fallback",
		"preferred", a.Preferred, "fallback", a.Fallback, "error", err)
	out, ferr := s.translateWith(ctx, a.Fallback, a)
	if ferr != nil {
		// The preferred engine's failure is the one worth reporting.
		return nil, err
	}
	return out, nil
}

func (s *Service) translateWith(ctx context.Context, engine domain.EngineType, a Args) ([]domain.BilingualSegment, error) {
	provider, err := s.resolve(ctx, engine)
	if err != nil {
		return nil, err
	}
	model := s.modelFor(ctx, engine)

	results := make([]domain.BilingualSegment, len(a.Segments))
	missIdx := make([]int, 0, len(a.Segments))
	missTexts := make([]string, 0, len(a.Segments))
	for i, seg := range a.Segments {
		if !a.BypassCache && s.d.Cache != nil {
			if entry, _ := s.d.Cache.Get(ctx, seg.Text, a.SourceLang, a.TargetLang, engine, model); entry != nil {
				results[i] = domain.BilingualSegment{
					Segment:    seg,
					Translated: entry.Translated,
					SourceLang: a.SourceLang,
					TargetLang: a.TargetLang,
				}
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, seg.Text)
	}

	if len(missTexts) > 0 {
		translated, err := provider.TranslateBatch(ctx, missTexts, a.SourceLang, a.TargetLang)
		if err != nil {
			return nil, err
		}
		if len(translated) != len(missTexts) {
			return nil, &domain.TranslationError{
				Reason: fmt.Sprintf("%s returned %d results for %d inputs", provider.Name(), len(translated), len(missTexts)),
			}
		}
		for j, idx := range missIdx {
			results[idx] = domain.BilingualSegment{
				Segment:    a.Segments[idx],
				Translated: translated[j].TranslatedText,
				SourceLang: a.SourceLang,
				TargetLang: a.TargetLang,
			}
			if s.d.Cache != nil {
				_ = s.d.Cache.Put(ctx, &domain.CacheEntry{
					SourceText: a.Segments[idx].Text,
					SrcLang:    a.SourceLang,
					TgtLang:    a.TargetLang,
					Engine:     engine,
					Model:      model,
					Translated: translated[j].TranslatedText,
				})
			}
		}
	}
	return results, nil
}

// resolve returns the live provider for engine, creating it lazily from the
// persisted config on first use.
func (s *Service) resolve(ctx context.Context, engine domain.EngineType) (ports.TranslationProvider, error) {
	if p, ok := s.d.Providers.Provider(engine); ok {
		return p, nil
	}
	cfg := domain.ProviderConfig{Engine: engine}
	if s.d.Settings != nil {
		if stored, err := s.d.Settings.GetProviderConfig(ctx, engine); err == nil && stored != nil {
			cfg = *stored
		}
	}
	return s.d.Providers.CreateProvider(engine, cfg)
}

func (s *Service) modelFor(ctx context.Context, engine domain.EngineType) string {
	if s.d.Settings == nil {
		return ""
	}
	cfg, err := s.d.Settings.GetProviderConfig(ctx, engine)
	if err != nil || cfg == nil {
		return ""
	}
	return cfg.Model
}
