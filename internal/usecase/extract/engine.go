// Package extract implements the text extraction engine: one vision request,
// one parse, no side effects.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

// AnalysisError wraps anything that went wrong while extracting text.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string { return "analysis failed: " + e.Reason }
func (e *AnalysisError) Unwrap() error { return e.Err }

type Engine struct {
	backend ports.VisionBackend
	prompts ports.PromptRenderer
	// promptOverride replaces the built-in extraction prompt when set.
	promptOverride string
}

var _ ports.TextExtractor = (*Engine)(nil)

func New(backend ports.VisionBackend, prompts ports.PromptRenderer, promptOverride string) *Engine {
	return &Engine{backend: backend, prompts: prompts, promptOverride: promptOverride}
}

// Analyze sends the image to the vision backend and parses the reply into
// ordered segments. Empty-text segments are dropped and every box is clamped
// to [0,1]; a box with no area left after clamping is dropped too. Zero valid
// segments is an empty result, not an error.
func (e *Engine) Analyze(ctx context.Context, imageData []byte) (*domain.ScreenAnalysisResult, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, &AnalysisError{Reason: "undecodable image", Err: err}
	}
	prompt, err := e.prompts.Render("extract_segments", e.promptOverride, ports.PromptData{})
	if err != nil {
		return nil, &AnalysisError{Reason: "bad extraction prompt", Err: err}
	}
	raw, err := e.backend.Describe(ctx, imageData, prompt)
	if err != nil {
		return nil, &AnalysisError{Reason: e.backend.Name() + ": " + err.Error(), Err: err}
	}
	segments, err := parseSegments(raw)
	if err != nil {
		return nil, &AnalysisError{Reason: err.Error(), Err: err}
	}
	return &domain.ScreenAnalysisResult{
		Segments: segments,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

type wireSegment struct {
	Text       string    `json:"text"`
	BBox       []float64 `json:"bbox"`
	Confidence float64   `json:"confidence"`
}

type wireResponse struct {
	Segments []wireSegment `json:"segments"`
}

// parseSegments tolerates the usual model noise around the JSON body: fenced
// code blocks and leading or trailing commentary.
func parseSegments(raw string) ([]domain.TextSegment, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	var resp wireResponse
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		// Locate an embedded object within surrounding prose.
		i := strings.Index(s, "{")
		j := strings.LastIndex(s, "}")
		if i < 0 || j <= i {
			return nil, fmt.Errorf("no JSON object in response: %s", abbreviate(s, 200))
		}
		if err := json.Unmarshal([]byte(s[i:j+1]), &resp); err != nil {
			return nil, fmt.Errorf("parse segments JSON: %w", err)
		}
	}
	out := make([]domain.TextSegment, 0, len(resp.Segments))
	for _, ws := range resp.Segments {
		text := strings.TrimSpace(ws.Text)
		if text == "" || len(ws.BBox) != 4 {
			continue
		}
		box := domain.BoundingBox{X1: ws.BBox[0], Y1: ws.BBox[1], X2: ws.BBox[2], Y2: ws.BBox[3]}.Clamp()
		if box.Empty() {
			continue
		}
		conf := ws.Confidence
		if conf <= 0 || conf > 1 {
			conf = 1
		}
		out = append(out, domain.TextSegment{
			ID:         fmt.Sprintf("seg-%d", len(out)),
			Text:       text,
			Box:        box,
			Confidence: conf,
		})
	}
	return out, nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
