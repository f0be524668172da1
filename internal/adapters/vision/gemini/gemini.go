// Package gemini sends a captured image plus the extraction prompt to the
// Gemini API and returns the raw model reply.
package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const defaultModel = "gemini-2.5-flash"

type Backend struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ ports.VisionBackend = (*Backend)(nil)

func New(apiKey, model string) *Backend {
	if model == "" {
		model = defaultModel
	}
	return &Backend{apiKey: apiKey, model: model}
}

func (b *Backend) Name() string { return "Gemini vision" }

func (b *Backend) Describe(ctx context.Context, imageData []byte, prompt string) (string, error) {
	b.once.Do(func() {
		b.client, b.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  b.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if b.initErr != nil {
		return "", fmt.Errorf("create gemini client: %w", b.initErr)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imageData, "image/png"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini vision request failed: %w", err)
	}
	return resp.Text(), nil
}
