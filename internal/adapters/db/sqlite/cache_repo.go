package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

// CacheRepo memoizes translations keyed by source text, language pair,
// engine and model.
type CacheRepo struct{ *Repo }

var _ ports.TranslationCache = (*CacheRepo)(nil)

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

func (r *CacheRepo) Get(ctx context.Context, src, srcLang, tgtLang string, engine domain.EngineType, model string) (*domain.CacheEntry, error) {
	q := r.SQ.Select(
		"id", "source_text", "src_lang", "tgt_lang", "engine", "model", "translated", "created_at",
	).
		From("cache").
		Where(sq.Eq{
			"source_text": src,
			"src_lang":    srcLang,
			"tgt_lang":    tgtLang,
			"engine":      string(engine),
			"model":       model,
		}).
		Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var e domain.CacheEntry
	var created string
	if err := row.Scan(
		&e.ID, &e.SourceText, &e.SrcLang, &e.TgtLang, &e.Engine, &e.Model, &e.Translated, &created,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &e, nil
}

func (r *CacheRepo) Put(ctx context.Context, entry *domain.CacheEntry) error {
	q := r.SQ.
		Insert("cache").
		Columns("source_text", "src_lang", "tgt_lang", "engine", "model", "translated", "created_at").
		Values(
			entry.SourceText,
			entry.SrcLang,
			entry.TgtLang,
			string(entry.Engine),
			entry.Model,
			entry.Translated,
			time.Now().UTC().Format(time.RFC3339),
		).
		Suffix("ON CONFLICT(source_text, src_lang, tgt_lang, engine, model) DO UPDATE SET translated=excluded.translated")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
