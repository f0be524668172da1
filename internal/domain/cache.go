package domain

import "time"

// CacheEntry is one memoized translation.
type CacheEntry struct {
	ID         int64      `json:"id"`
	SourceText string     `json:"source_text"`
	SrcLang    string     `json:"src_lang"`
	TgtLang    string     `json:"tgt_lang"`
	Engine     EngineType `json:"engine"`
	Model      string     `json:"model"`
	Translated string     `json:"translated"`
	CreatedAt  time.Time  `json:"created_at"`
}
