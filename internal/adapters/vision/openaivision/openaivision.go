// Package openaivision drives any OpenAI-compatible vision model through
// chat/completions with a base64 image_url content part.
package openaivision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const (
	defaultBase  = "https://api.openai.com/v1"
	defaultModel = "gpt-4o-mini"
)

type Backend struct {
	baseURL string
	model   string
	apiKey  string
	http    *resty.Client
}

var _ ports.VisionBackend = (*Backend)(nil)

func New(baseURL, model, apiKey string) *Backend {
	if baseURL == "" {
		baseURL = defaultBase
	}
	if model == "" {
		model = defaultModel
	}
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    resty.New().SetTimeout(domain.DefaultTimeout),
	}
}

func (b *Backend) Name() string { return "OpenAI-compatible vision" }

func (b *Backend) Describe(ctx context.Context, imageData []byte, prompt string) (string, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageData)
	body := map[string]any{
		"model": b.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
		"temperature": 0.0,
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	req := b.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp)
	if b.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+b.apiKey)
	}
	rr, err := req.Post(b.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	if rr.IsError() {
		return "", fmt.Errorf("vision request failed: %s", rr.Status())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision request returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
