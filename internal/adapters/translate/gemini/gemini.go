// Package gemini is the generative provider backed by the Gemini API. Like
// the chat-completion family it has no batch endpoint, so it reuses the
// join/split scheme with sequential degradation.
package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/batching"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const defaultModel = "gemini-2.5-flash"

type Client struct {
	cfg     domain.ProviderConfig
	apiKey  string
	prompts ports.PromptRenderer

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ ports.TranslationProvider = (*Client)(nil)

func New(cfg domain.ProviderConfig, apiKey string, prompts ports.PromptRenderer) *Client {
	return &Client{cfg: cfg, apiKey: apiKey, prompts: prompts}
}

func (c *Client) ID() domain.EngineType { return domain.EngineGemini }
func (c *Client) Name() string          { return "Gemini" }

func (c *Client) IsAvailable() bool { return c.apiKey != "" }

func (c *Client) model() string {
	if c.cfg.Model != "" {
		return c.cfg.Model
	}
	return defaultModel
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	c.once.Do(func() {
		c.client, c.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if c.initErr != nil {
		return "", &domain.InvalidConfigError{Reason: "create gemini client: " + c.initErr.Error()}
	}
	temp := float32(c.cfg.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if c.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model(), genai.Text(prompt), config)
	if err != nil {
		return "", mapError(err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", &domain.TranslationError{Reason: "empty model response"}
	}
	return out, nil
}

func (c *Client) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.TranslationResult{}, domain.ErrEmptyInput
	}
	if !c.IsAvailable() {
		return domain.TranslationResult{}, &domain.InvalidConfigError{Reason: "Gemini API key missing"}
	}
	prompt, err := c.prompts.Render("translate_single", c.cfg.PromptTemplate, ports.PromptData{
		SrcLang: from, TgtLang: to, Text: text,
	})
	if err != nil {
		return domain.TranslationResult{}, err
	}
	out, err := c.generate(ctx, prompt)
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
	joined, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	parts := batching.Split(joined)
	if len(parts) != len(texts) {
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

func (c *Client) CheckConnection(ctx context.Context) bool {
	_, err := c.Translate(ctx, "Hello", "", "en")
	return err == nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &domain.InvalidConfigError{Reason: "Gemini rejected the API key"}
		case 429:
			return &domain.RateLimitError{}
		}
		return &domain.TranslationError{Reason: apiErr.Message, Err: err}
	}
	return &domain.ConnectionError{Reason: err.Error(), Err: err}
}
