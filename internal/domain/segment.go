// Package domain holds the entities shared by every layer: text segments
// with normalized bounding boxes, translation results, provider and flow
// types. No imports from other internal packages.
package domain

import "image"

// BoundingBox is a segment's location in normalized coordinates: fractions
// of image width and height in [0,1], top-left origin.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Clamp squeezes every coordinate into [0,1] and normalizes inverted
// corners so X1 <= X2 and Y1 <= Y2.
func (b BoundingBox) Clamp() BoundingBox {
	x1 := clamp01(b.X1)
	y1 := clamp01(b.Y1)
	x2 := clamp01(b.X2)
	y2 := clamp01(b.Y2)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Empty reports whether the box has no area.
func (b BoundingBox) Empty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// ToPixels maps the normalized box onto an image of the given dimensions.
func (b BoundingBox) ToPixels(width, height int) image.Rectangle {
	return image.Rect(
		int(b.X1*float64(width)),
		int(b.Y1*float64(height)),
		int(b.X2*float64(width)),
		int(b.Y2*float64(height)),
	)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TextSegment is one piece of text located on the captured image.
type TextSegment struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// ScreenAnalysisResult is the extraction output: segments in reading order
// plus the pixel dimensions of the analyzed image.
type ScreenAnalysisResult struct {
	Segments []TextSegment `json:"segments"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
}

// TranslationResult pairs one source string with its translation.
type TranslationResult struct {
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
}

// BilingualSegment is a located segment together with its translation,
// ready for overlay rendering.
type BilingualSegment struct {
	Segment    TextSegment `json:"segment"`
	Translated string      `json:"translated"`
	SourceLang string      `json:"source_lang"`
	TargetLang string      `json:"target_lang"`
}
