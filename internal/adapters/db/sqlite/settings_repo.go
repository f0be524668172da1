package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

// SettingsRepo stores per-engine provider configs and loose key/value
// settings (selected engines, target language, overlay mode).
type SettingsRepo struct{ *Repo }

var _ ports.SettingsStore = (*SettingsRepo)(nil)

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{NewRepo(db)} }

func (r *SettingsRepo) GetSetting(ctx context.Context, key string) (string, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (r *SettingsRepo) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO settings(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (r *SettingsRepo) GetProviderConfig(ctx context.Context, engine domain.EngineType) (*domain.ProviderConfig, error) {
	q := r.SQ.Select(
		"engine", "base_url", "model", "timeout_seconds", "temperature", "max_tokens",
		"prompt_template", "created_at", "updated_at",
	).From("provider_configs").Where(sq.Eq{"engine": string(engine)})
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	cfg, err := scanProviderConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *SettingsRepo) PutProviderConfig(ctx context.Context, cfg *domain.ProviderConfig) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Insert("provider_configs").
		Columns("engine", "base_url", "model", "timeout_seconds", "temperature", "max_tokens", "prompt_template", "created_at", "updated_at").
		Values(
			string(cfg.Engine), cfg.BaseURL, cfg.Model, int(cfg.Timeout/time.Second),
			cfg.Temperature, cfg.MaxTokens, cfg.PromptTemplate, now, now,
		).
		Suffix(`ON CONFLICT(engine) DO UPDATE SET
            base_url=excluded.base_url, model=excluded.model,
            timeout_seconds=excluded.timeout_seconds, temperature=excluded.temperature,
            max_tokens=excluded.max_tokens, prompt_template=excluded.prompt_template,
            updated_at=excluded.updated_at`)
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *SettingsRepo) ListProviderConfigs(ctx context.Context) ([]*domain.ProviderConfig, error) {
	q := r.SQ.Select(
		"engine", "base_url", "model", "timeout_seconds", "temperature", "max_tokens",
		"prompt_template", "created_at", "updated_at",
	).From("provider_configs").OrderBy("engine")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProviderConfig
	for rows.Next() {
		cfg, err := scanProviderConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProviderConfig(row scanner) (*domain.ProviderConfig, error) {
	var cfg domain.ProviderConfig
	var engine, created, updated string
	var timeoutSecs int
	if err := row.Scan(
		&engine, &cfg.BaseURL, &cfg.Model, &timeoutSecs, &cfg.Temperature,
		&cfg.MaxTokens, &cfg.PromptTemplate, &created, &updated,
	); err != nil {
		return nil, err
	}
	cfg.Engine = domain.EngineType(engine)
	cfg.Timeout = time.Duration(timeoutSecs) * time.Second
	cfg.CreatedAt, _ = time.Parse(time.RFC3339, created)
	cfg.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &cfg, nil
}
