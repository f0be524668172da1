package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/db/sqlite"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

func openTestDB(t *testing.T) *sqlite.Repo {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewRepo(db)
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sqlite.Init(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not reapply migrations.
	db, err = sqlite.Init(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestCacheRepo(t *testing.T) {
	repo := openTestDB(t)
	cache := sqlite.NewCacheRepo(repo.DB)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "Hello", "en", "de", domain.EngineGoogle, "")
	require.NoError(t, err)
	assert.Nil(t, miss, "miss is nil entry, nil error")

	require.NoError(t, cache.Put(ctx, &domain.CacheEntry{
		SourceText: "Hello", SrcLang: "en", TgtLang: "de",
		Engine: domain.EngineGoogle, Translated: "Hallo",
	}))

	hit, err := cache.Get(ctx, "Hello", "en", "de", domain.EngineGoogle, "")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Hallo", hit.Translated)
	assert.False(t, hit.CreatedAt.IsZero())

	// Same key through a different engine is a different entry.
	other, err := cache.Get(ctx, "Hello", "en", "de", domain.EngineBaidu, "")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestCacheRepoUpsert(t *testing.T) {
	repo := openTestDB(t)
	cache := sqlite.NewCacheRepo(repo.DB)
	ctx := context.Background()

	entry := &domain.CacheEntry{
		SourceText: "Hello", SrcLang: "en", TgtLang: "de",
		Engine: domain.EngineOpenAI, Model: "gpt-4o-mini", Translated: "Hallo",
	}
	require.NoError(t, cache.Put(ctx, entry))
	entry.Translated = "Hallo!"
	require.NoError(t, cache.Put(ctx, entry))

	hit, err := cache.Get(ctx, "Hello", "en", "de", domain.EngineOpenAI, "gpt-4o-mini")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Hallo!", hit.Translated)

	var n int
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(*) FROM cache`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSettingsKV(t *testing.T) {
	repo := openTestDB(t)
	settings := sqlite.NewSettingsRepo(repo.DB)
	ctx := context.Background()

	v, err := settings.GetSetting(ctx, "target_lang")
	require.NoError(t, err)
	assert.Empty(t, v, "unset keys read as empty")

	require.NoError(t, settings.SetSetting(ctx, "target_lang", "de"))
	require.NoError(t, settings.SetSetting(ctx, "target_lang", "ja"))

	v, err = settings.GetSetting(ctx, "target_lang")
	require.NoError(t, err)
	assert.Equal(t, "ja", v)
}

func TestProviderConfigRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	settings := sqlite.NewSettingsRepo(repo.DB)
	ctx := context.Background()

	missing, err := settings.GetProviderConfig(ctx, domain.EngineOpenAI)
	require.NoError(t, err)
	assert.Nil(t, missing)

	cfg := &domain.ProviderConfig{
		Engine:      domain.EngineOpenAI,
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		Timeout:     45 * time.Second,
		Temperature: 0.3,
		MaxTokens:   2048,
	}
	require.NoError(t, settings.PutProviderConfig(ctx, cfg))

	got, err := settings.GetProviderConfig(ctx, domain.EngineOpenAI)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cfg.Model, got.Model)
	assert.Equal(t, 45*time.Second, got.Timeout)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	assert.Equal(t, 2048, got.MaxTokens)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestProviderConfigUpsertAndList(t *testing.T) {
	repo := openTestDB(t)
	settings := sqlite.NewSettingsRepo(repo.DB)
	ctx := context.Background()

	require.NoError(t, settings.PutProviderConfig(ctx, &domain.ProviderConfig{Engine: domain.EngineOllama, Model: "llama3"}))
	require.NoError(t, settings.PutProviderConfig(ctx, &domain.ProviderConfig{Engine: domain.EngineOllama, Model: "qwen2"}))
	require.NoError(t, settings.PutProviderConfig(ctx, &domain.ProviderConfig{Engine: domain.EngineBaidu}))

	configs, err := settings.ListProviderConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	// Ordered by engine name.
	assert.Equal(t, domain.EngineBaidu, configs[0].Engine)
	assert.Equal(t, domain.EngineOllama, configs[1].Engine)
	assert.Equal(t, "qwen2", configs[1].Model)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := sqlite.WithTx(ctx, repo.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO settings(key, value) VALUES('k', 'v')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&n))
	assert.Zero(t, n, "the insert was rolled back")

	require.NoError(t, sqlite.WithTx(ctx, repo.DB, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO settings(key, value) VALUES('k', 'v')`)
		return err
	}))
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&n))
	assert.Equal(t, 1, n)
}
