package translator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/usecase/translator"
)

type fakeProvider struct {
	id    domain.EngineType
	batch func(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error)
	calls int
}

func (f *fakeProvider) ID() domain.EngineType { return f.id }
func (f *fakeProvider) Name() string          { return string(f.id) }
func (f *fakeProvider) IsAvailable() bool     { return true }

func (f *fakeProvider) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	res, err := f.TranslateBatch(ctx, []string{text}, from, to)
	if err != nil {
		return domain.TranslationResult{}, err
	}
	return res[0], nil
}

func (f *fakeProvider) TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	f.calls++
	return f.batch(ctx, texts, from, to)
}

func (f *fakeProvider) CheckConnection(context.Context) bool { return true }

type fakeSource struct {
	providers map[domain.EngineType]ports.TranslationProvider
	// created records engines passed through CreateProvider.
	created []domain.EngineType
}

func (f *fakeSource) Provider(engine domain.EngineType) (ports.TranslationProvider, bool) {
	p, ok := f.providers[engine]
	return p, ok
}

func (f *fakeSource) CreateProvider(engine domain.EngineType, cfg domain.ProviderConfig) (ports.TranslationProvider, error) {
	f.created = append(f.created, engine)
	if p, ok := f.providers[engine]; ok {
		return p, nil
	}
	return nil, &domain.InvalidConfigError{Reason: "no credentials stored for " + string(engine)}
}

type memCache struct {
	entries map[string]*domain.CacheEntry
	puts    int
}

func cacheKey(src, srcLang, tgtLang string, engine domain.EngineType, model string) string {
	return src + "|" + srcLang + "|" + tgtLang + "|" + string(engine) + "|" + model
}

func (m *memCache) Get(ctx context.Context, src, srcLang, tgtLang string, engine domain.EngineType, model string) (*domain.CacheEntry, error) {
	return m.entries[cacheKey(src, srcLang, tgtLang, engine, model)], nil
}

func (m *memCache) Put(ctx context.Context, e *domain.CacheEntry) error {
	m.puts++
	m.entries[cacheKey(e.SourceText, e.SrcLang, e.TgtLang, e.Engine, e.Model)] = e
	return nil
}

func echoUpper(prefix string) func(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	return func(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
		out := make([]domain.TranslationResult, len(texts))
		for i, t := range texts {
			out[i] = domain.TranslationResult{SourceText: t, TranslatedText: prefix + t, SourceLang: from, TargetLang: to}
		}
		return out, nil
	}
}

func segments(texts ...string) []domain.TextSegment {
	out := make([]domain.TextSegment, len(texts))
	for i, t := range texts {
		out[i] = domain.TextSegment{ID: "seg-" + t, Text: t, Box: domain.BoundingBox{X2: 1, Y2: 1}, Confidence: 1}
	}
	return out
}

func TestTranslateOrderPreserved(t *testing.T) {
	p := &fakeProvider{id: domain.EngineGoogle, batch: echoUpper("de:")}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{domain.EngineGoogle: p}}
	svc := translator.New(translator.Deps{Providers: src})

	out, err := svc.Translate(context.Background(), translator.Args{
		Segments:   segments("one", "two", "three"),
		TargetLang: "de",
		Preferred:  domain.EngineGoogle,
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, want, out[i].Segment.Text)
		assert.Equal(t, "de:"+want, out[i].Translated)
	}
}

func TestTranslateFallbackOnFailure(t *testing.T) {
	bad := &fakeProvider{id: domain.EngineOpenAI, batch: func(context.Context, []string, string, string) ([]domain.TranslationResult, error) {
		return nil, &domain.ConnectionError{Reason: "refused"}
	}}
	good := &fakeProvider{id: domain.EngineLocal, batch: echoUpper("es:")}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{
		domain.EngineOpenAI: bad,
		domain.EngineLocal:  good,
	}}
	svc := translator.New(translator.Deps{Providers: src})

	out, err := svc.Translate(context.Background(), translator.Args{
		Segments:   segments("hello"),
		TargetLang: "es",
		Preferred:  domain.EngineOpenAI,
		Fallback:   domain.EngineLocal,
	})
	require.NoError(t, err)
	assert.Equal(t, "es:hello", out[0].Translated)
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, 1, good.calls)
}

func TestTranslateBothFailReportsPreferredError(t *testing.T) {
	bad := func(context.Context, []string, string, string) ([]domain.TranslationResult, error) {
		return nil, &domain.RateLimitError{}
	}
	worse := func(context.Context, []string, string, string) ([]domain.TranslationResult, error) {
		return nil, &domain.ConnectionError{Reason: "down"}
	}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{
		domain.EngineOpenAI: &fakeProvider{id: domain.EngineOpenAI, batch: bad},
		domain.EngineLocal:  &fakeProvider{id: domain.EngineLocal, batch: worse},
	}}
	svc := translator.New(translator.Deps{Providers: src})

	_, err := svc.Translate(context.Background(), translator.Args{
		Segments:  segments("hello"),
		Preferred: domain.EngineOpenAI,
		Fallback:  domain.EngineLocal,
	})
	var rlErr *domain.RateLimitError
	assert.ErrorAs(t, err, &rlErr, "the preferred engine's failure is the one reported")
}

func TestTranslateNoFallbackWhenSameEngine(t *testing.T) {
	bad := &fakeProvider{id: domain.EngineOpenAI, batch: func(context.Context, []string, string, string) ([]domain.TranslationResult, error) {
		return nil, &domain.ConnectionError{Reason: "refused"}
	}}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{domain.EngineOpenAI: bad}}
	svc := translator.New(translator.Deps{Providers: src})

	_, err := svc.Translate(context.Background(), translator.Args{
		Segments:  segments("hello"),
		Preferred: domain.EngineOpenAI,
		Fallback:  domain.EngineOpenAI,
	})
	require.Error(t, err)
	assert.Equal(t, 1, bad.calls, "same engine is not retried")
}

func TestTranslateLengthMismatchFailsLoudly(t *testing.T) {
	short := &fakeProvider{id: domain.EngineGoogle, batch: func(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
		return []domain.TranslationResult{{TranslatedText: "only one"}}, nil
	}}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{domain.EngineGoogle: short}}
	svc := translator.New(translator.Deps{Providers: src})

	_, err := svc.Translate(context.Background(), translator.Args{
		Segments:  segments("one", "two"),
		Preferred: domain.EngineGoogle,
	})
	var trErr *domain.TranslationError
	require.ErrorAs(t, err, &trErr)
	assert.Contains(t, trErr.Reason, "1 results for 2 inputs")
}

func TestTranslateCacheHitSkipsProvider(t *testing.T) {
	p := &fakeProvider{id: domain.EngineGoogle, batch: echoUpper("de:")}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{domain.EngineGoogle: p}}
	cache := &memCache{entries: map[string]*domain.CacheEntry{}}
	svc := translator.New(translator.Deps{Providers: src, Cache: cache})

	args := translator.Args{Segments: segments("hello", "world"), TargetLang: "de", Preferred: domain.EngineGoogle}

	_, err := svc.Translate(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 2, cache.puts, "misses are written back")

	out, err := svc.Translate(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls, "second run is served entirely from cache")
	assert.Equal(t, "de:hello", out[0].Translated)
}

func TestTranslateBypassCache(t *testing.T) {
	p := &fakeProvider{id: domain.EngineGoogle, batch: echoUpper("de:")}
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{domain.EngineGoogle: p}}
	cache := &memCache{entries: map[string]*domain.CacheEntry{}}
	svc := translator.New(translator.Deps{Providers: src, Cache: cache})

	args := translator.Args{Segments: segments("hello"), TargetLang: "de", Preferred: domain.EngineGoogle, BypassCache: true}
	_, err := svc.Translate(context.Background(), args)
	require.NoError(t, err)
	_, err = svc.Translate(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestTranslateLazyCreation(t *testing.T) {
	src := &fakeSource{providers: map[domain.EngineType]ports.TranslationProvider{}}
	svc := translator.New(translator.Deps{Providers: src})

	// Not registered: the service asks the source to create it, and the
	// source has no credentials for it.
	_, err := svc.Translate(context.Background(), translator.Args{
		Segments:  segments("hello"),
		Preferred: domain.EngineBaidu,
	})
	var cfgErr *domain.InvalidConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []domain.EngineType{domain.EngineBaidu}, src.created)
}

func TestTranslateEmptyInput(t *testing.T) {
	svc := translator.New(translator.Deps{Providers: &fakeSource{}})
	_, err := svc.Translate(context.Background(), translator.Args{})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}
