package ports

import (
	"image"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

// OverlayMode selects how translated text is composed onto the capture.
type OverlayMode string

const (
	// OverlayBelow draws the translation under the original box, left-aligned
	// to it, growing down and right as needed.
	OverlayBelow OverlayMode = "below"
	// OverlayReplace masks the original box region and draws the translation
	// in its place.
	OverlayReplace OverlayMode = "replace"
)

// OverlayStyle configures a render pass.
type OverlayStyle struct {
	Mode    OverlayMode
	Padding int
}

// OverlayRenderer composes a bilingual image. Pure: no I/O, no state.
type OverlayRenderer interface {
	Render(img image.Image, segments []domain.BilingualSegment, style OverlayStyle) (image.Image, error)
}
