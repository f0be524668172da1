// Package selfhosted talks to a user-run translation server exposing
// POST /translate {"text","source_lang","target_lang"} -> {"translation"}.
// The server has no native batch endpoint; batches run sequentially.
package selfhosted

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const defaultBase = "http://localhost:5000"

type Client struct {
	cfg    domain.ProviderConfig
	secret string
	http   *resty.Client
}

var _ ports.TranslationProvider = (*Client)(nil)

// New builds the client. secret is an optional shared token sent as a bearer
// header when present.
func New(cfg domain.ProviderConfig, secret string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return &Client{cfg: cfg, secret: secret, http: resty.New().SetTimeout(timeout)}
}

func (c *Client) ID() domain.EngineType { return domain.EngineSelfHosted }
func (c *Client) Name() string          { return "Self-hosted server" }

func (c *Client) IsAvailable() bool { return true }

func (c *Client) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.TranslationResult{}, domain.ErrEmptyInput
	}
	body := map[string]string{
		"text":        text,
		"source_lang": from,
		"target_lang": to,
	}
	var resp struct {
		Translation string `json:"translation"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp)
	if c.secret != "" {
		req.SetHeader("Authorization", "Bearer "+c.secret)
	}
	rr, err := req.Post(c.baseURL() + "/translate")
	if err != nil {
		return domain.TranslationResult{}, &domain.ConnectionError{Reason: err.Error(), Err: err}
	}
	if rr.IsError() {
		switch rr.StatusCode() {
		case 401, 403:
			return domain.TranslationResult{}, &domain.InvalidConfigError{Reason: "server rejected the shared secret"}
		case 429:
			return domain.TranslationResult{}, &domain.RateLimitError{}
		}
		return domain.TranslationResult{}, &domain.TranslationError{Reason: rr.Status()}
	}
	return domain.TranslationResult{
		SourceText:     text,
		TranslatedText: strings.TrimSpace(resp.Translation),
		SourceLang:     from,
		TargetLang:     to,
	}, nil
}

func (c *Client) TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyInput
	}
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
	return defaultBase
}
