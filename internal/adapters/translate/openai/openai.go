// Package openai implements the chat-completion provider family: OpenAI
// itself, OpenAI-compatible custom endpoints, and a keyless local Ollama.
// None of these have a native batch endpoint, so batches are join/split
// translated in one prompt and degrade to sequential calls on a marker
// count mismatch.
package openai

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/batching"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const (
	defaultOpenAIBase = "https://api.openai.com/v1"
	defaultOllamaBase = "http://localhost:11434/v1"
	defaultModel      = "gpt-4o-mini"
)

type Client struct {
	engine  domain.EngineType
	cfg     domain.ProviderConfig
	apiKey  string
	prompts ports.PromptRenderer
	http    *resty.Client
}

var _ ports.TranslationProvider = (*Client)(nil)

func New(engine domain.EngineType, cfg domain.ProviderConfig, apiKey string, prompts ports.PromptRenderer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return &Client{
		engine:  engine,
		cfg:     cfg,
		apiKey:  apiKey,
		prompts: prompts,
		http:    resty.New().SetTimeout(timeout),
	}
}

func (c *Client) ID() domain.EngineType { return c.engine }

func (c *Client) Name() string {
	switch c.engine {
	case domain.EngineOllama:
		return "Ollama"
	case domain.EngineCustom:
		return "Custom OpenAI-compatible"
	}
	return "OpenAI"
}

func (c *Client) IsAvailable() bool {
	switch c.engine {
	case domain.EngineOllama:
		return true
	case domain.EngineCustom:
		// Key is optional for self-run compatible servers.
		return c.cfg.BaseURL != ""
	}
	return c.apiKey != ""
}

func (c *Client) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.TranslationResult{}, domain.ErrEmptyInput
	}
	prompt, err := c.prompts.Render("translate_single", c.cfg.PromptTemplate, ports.PromptData{
		SrcLang: from, TgtLang: to, Text: text,
	})
	if err != nil {
		return domain.TranslationResult{}, err
	}
	out, err := c.chat(ctx, prompt)
	if err != nil {
		return domain.TranslationResult{}, err
	}
	return domain.TranslationResult{
		SourceText:     text,
		TranslatedText: out,
		SourceLang:     from,
		TargetLang:     to,
	}, nil
}

func (c *Client) TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if len(texts) == 1 {
		res, err := c.Translate(ctx, texts[0], from, to)
		if err != nil {
			return nil, err
		}
		return []domain.TranslationResult{res}, nil
	}
	prompt, err := c.prompts.Render("translate_joined", "", ports.PromptData{
		SrcLang: from,
		TgtLang: to,
		Text:    batching.Join(texts),
		Count:   len(texts),
		Delim:   batching.Delimiter,
	})
	if err != nil {
		return nil, err
	}
	joined, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}
	parts := batching.Split(joined)
	if len(parts) != len(texts) {
		// The model mangled the marker. Recover per item; never drop segments.
		return c.sequential(ctx, texts, from, to)
	}
	out := make([]domain.TranslationResult, len(texts))
	for i, p := range parts {
		out[i] = domain.TranslationResult{
			SourceText:     texts[i],
			TranslatedText: p,
			SourceLang:     from,
			TargetLang:     to,
		}
	}
	return out, nil
}

func (c *Client) sequential(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	out := make([]domain.TranslationResult, 0, len(texts))
	for _, t := range texts {
		res, err := c.Translate(ctx, t, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (c *Client) CheckConnection(ctx context.Context) bool {
	_, err := c.Translate(ctx, "Hello", "", "en")
	return err == nil
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/")
	}
	if c.engine == domain.EngineOllama {
		return defaultOllamaBase
	}
	return defaultOpenAIBase
}

func (c *Client) model() string {
	if c.cfg.Model != "" {
		return c.cfg.Model
	}
	return defaultModel
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	if c.engine == domain.EngineCustom && c.cfg.BaseURL == "" {
		return "", &domain.InvalidConfigError{Reason: "custom endpoint has no base URL"}
	}
	body := map[string]any{
		"model": c.model(),
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.cfg.Temperature,
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}
	rr, err := req.Post(c.baseURL() + "/chat/completions")
	if err != nil {
		return "", &domain.ConnectionError{Reason: err.Error(), Err: err}
	}
	if rr.IsError() {
		switch rr.StatusCode() {
		case 401, 403:
			return "", &domain.InvalidConfigError{Reason: c.Name() + " rejected the API key"}
		case 429:
			return "", &domain.RateLimitError{RetryAfter: retryAfter(rr)}
		}
		return "", &domain.TranslationError{Reason: rr.Status() + ": " + abbreviate(rr.String(), 300)}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.TranslationError{Reason: "no choices returned"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func retryAfter(rr *resty.Response) time.Duration {
	if s := rr.Header().Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
