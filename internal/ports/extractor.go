package ports

import (
	"context"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

// VisionBackend accepts an encoded image plus an instructional prompt and
// returns the model's raw text reply. Parsing is the caller's problem so one
// parser serves every backend.
type VisionBackend interface {
	Name() string
	Describe(ctx context.Context, imageData []byte, prompt string) (string, error)
}

// TextExtractor turns a captured image into positioned text segments.
type TextExtractor interface {
	Analyze(ctx context.Context, imageData []byte) (*domain.ScreenAnalysisResult, error)
}
