// Package tesseract is the offline extraction backend. It runs local OCR and
// emits the same {"segments":[...]} JSON the vision prompt asks cloud models
// for, so the extraction engine parses every backend the same way.
package tesseract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

type Backend struct {
	languages []string
}

var _ ports.VisionBackend = (*Backend)(nil)

func New(languages ...string) *Backend {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Backend{languages: languages}
}

func (b *Backend) Name() string { return "Tesseract OCR" }

type segment struct {
	Text       string     `json:"text"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
}

func (b *Backend) Describe(ctx context.Context, imageData []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(b.languages...); err != nil {
		return "", fmt.Errorf("set ocr languages: %w", err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return "", fmt.Errorf("ocr bounding boxes: %w", err)
	}
	w := float64(cfg.Width)
	h := float64(cfg.Height)
	segs := make([]segment, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		segs = append(segs, segment{
			Text: text,
			BBox: [4]float64{
				float64(box.Box.Min.X) / w,
				float64(box.Box.Min.Y) / h,
				float64(box.Box.Max.X) / w,
				float64(box.Box.Max.Y) / h,
			},
			Confidence: box.Confidence / 100,
		})
	}
	payload, err := json.Marshal(map[string]any{"segments": segs})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
