// Package googlecloud implements the Cloud Translation v2 REST API. It is the
// one backend with a native batch call: every q in the request yields one
// translation in the response, and the count is asserted rather than trusted.
package googlecloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const defaultBase = "https://translation.googleapis.com"

type Client struct {
	cfg    domain.ProviderConfig
	apiKey string
	// bearer switches auth from the key query parameter to an OAuth header.
	bearer bool
	http   *resty.Client
}

var _ ports.TranslationProvider = (*Client)(nil)

func New(cfg domain.ProviderConfig, apiKey string, bearer bool) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return &Client{cfg: cfg, apiKey: apiKey, bearer: bearer, http: resty.New().SetTimeout(timeout)}
}

func (c *Client) ID() domain.EngineType { return domain.EngineGoogle }
func (c *Client) Name() string          { return "Google Translate" }

func (c *Client) IsAvailable() bool { return c.apiKey != "" }

func (c *Client) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.TranslationResult{}, domain.ErrEmptyInput
	}
	res, err := c.TranslateBatch(ctx, []string{text}, from, to)
	if err != nil {
		return domain.TranslationResult{}, err
	}
	return res[0], nil
}

func (c *Client) TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if !c.IsAvailable() {
		return nil, &domain.InvalidConfigError{Reason: "Google Translate API key missing"}
	}
	body := map[string]any{
		"q":      texts,
		"target": to,
		"format": "text",
	}
	if from != "" {
		body["source"] = from
	}
	var resp struct {
		Data struct {
			Translations []struct {
				TranslatedText         string `json:"translatedText"`
				DetectedSourceLanguage string `json:"detectedSourceLanguage"`
			} `json:"translations"`
		} `json:"data"`
	}
	req := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp)
	if c.bearer {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	} else {
		req.SetQueryParam("key", c.apiKey)
	}
	rr, err := req.Post(c.baseURL() + "/language/translate/v2")
	if err != nil {
		return nil, &domain.ConnectionError{Reason: err.Error(), Err: err}
	}
	if rr.IsError() {
		switch rr.StatusCode() {
		case 401, 403:
			return nil, &domain.InvalidConfigError{Reason: "Google Translate rejected the API key"}
		case 429:
			return nil, &domain.RateLimitError{}
		}
		return nil, &domain.TranslationError{Reason: rr.Status()}
	}
	got := resp.Data.Translations
	if len(got) != len(texts) {
		return nil, &domain.TranslationError{
			Reason: fmt.Sprintf("expected %d translations, got %d", len(texts), len(got)),
		}
	}
	out := make([]domain.TranslationResult, len(texts))
	for i, tr := range got {
		src := from
		if src == "" {
			src = tr.DetectedSourceLanguage
		}
		out[i] = domain.TranslationResult{
			SourceText:     texts[i],
			TranslatedText: tr.TranslatedText,
			SourceLang:     src,
			TargetLang:     to,
		}
	}
	return out, nil
}

func (c *Client) CheckConnection(ctx context.Context) bool {
	_, err := c.Translate(ctx, "Hello", "en", "zh")
	return err == nil
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/")
	}
	return defaultBase
}
