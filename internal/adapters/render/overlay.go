// Package render composes bilingual overlays. Pure raster work: normalized
// boxes become pixel rects, translated text is rasterised with a backing
// plate picked for contrast against the underlying region.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const (
	lineHeight = 16
	ascent     = 11
	minBoxW    = 40
)

type Overlay struct {
	face font.Face
}

var _ ports.OverlayRenderer = (*Overlay)(nil)

func New() *Overlay {
	return &Overlay{face: basicfont.Face7x13}
}

func (o *Overlay) Render(img image.Image, segments []domain.BilingualSegment, style ports.OverlayStyle) (image.Image, error) {
	if img == nil {
		return nil, errors.New("nil source image")
	}
	if len(segments) == 0 {
		return nil, errors.New("no segments to render")
	}
	pad := style.Padding
	if pad <= 0 {
		pad = 4
	}
	canvas := imaging.Clone(img)
	w := canvas.Bounds().Dx()
	h := canvas.Bounds().Dy()
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Translated)
		if text == "" {
			continue
		}
		rect := seg.Segment.Box.ToPixels(w, h)
		if rect.Dx() <= 0 || rect.Dy() <= 0 {
			continue
		}
		switch style.Mode {
		case ports.OverlayReplace:
			o.drawReplace(canvas, rect, text, pad)
		default:
			o.drawBelow(canvas, rect, text, pad)
		}
	}
	return canvas, nil
}

// drawBelow places the translation under the original box, left-aligned to
// it, growing downward and rightward as the text needs. The plate is shifted
// back inside the canvas when it would overflow an edge.
func (o *Overlay) drawBelow(canvas *image.NRGBA, rect image.Rectangle, text string, pad int) {
	boxW := rect.Dx()
	if boxW < minBoxW {
		boxW = minBoxW
	}
	lines := o.wrap(text, boxW)
	plateW := o.widest(lines) + 2*pad
	plateH := len(lines)*lineHeight + 2*pad

	x := rect.Min.X
	y := rect.Max.Y + 2
	bounds := canvas.Bounds()
	if x+plateW > bounds.Max.X {
		x = bounds.Max.X - plateW
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if y+plateH > bounds.Max.Y {
		y = rect.Min.Y - plateH - 2
	}
	if y < bounds.Min.Y {
		y = bounds.Min.Y
	}
	plate := image.Rect(x, y, x+plateW, y+plateH).Intersect(bounds)
	bg, fg := o.contrast(canvas, plate)
	fill(canvas, plate, bg)
	o.drawLines(canvas, lines, x+pad, y+pad, fg)
}

// drawReplace masks the original region with a blur plus a translucent plate
// and draws the translation in its place, clipped to the box.
func (o *Overlay) drawReplace(canvas *image.NRGBA, rect image.Rectangle, text string, pad int) {
	rect = rect.Intersect(canvas.Bounds())
	if rect.Empty() {
		return
	}
	region := imaging.Crop(canvas, rect)
	blurred := imaging.Blur(region, 5)
	draw.Draw(canvas, rect, blurred, image.Point{}, draw.Src)

	bg, fg := o.contrast(canvas, rect)
	scrim := color.NRGBA{bg.R, bg.G, bg.B, 200}
	drawOver(canvas, rect, scrim)

	lines := o.wrap(text, rect.Dx()-2*pad)
	maxLines := (rect.Dy() - 2*pad) / lineHeight
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	o.drawLines(canvas, lines, rect.Min.X+pad, rect.Min.Y+pad, fg)
}

func (o *Overlay) drawLines(canvas *image.NRGBA, lines []string, x, y int, fg color.NRGBA) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(fg),
		Face: o.face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(x, y+i*lineHeight+ascent)
		d.DrawString(line)
	}
}

// wrap breaks text into lines no wider than maxWidth pixels, breaking long
// words when a single word exceeds the line.
func (o *Overlay) wrap(text string, maxWidth int) []string {
	if maxWidth < minBoxW {
		maxWidth = minBoxW
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := ""
		for _, word := range words {
			cand := word
			if cur != "" {
				cand = cur + " " + word
			}
			if o.measure(cand) <= maxWidth {
				cur = cand
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			for o.measure(word) > maxWidth {
				cut := o.fit(word, maxWidth)
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			cur = word
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	if len(lines) == 0 {
		lines = []string{text}
	}
	return lines
}

func (o *Overlay) measure(s string) int {
	return font.MeasureString(o.face, s).Ceil()
}

// fit returns the byte offset of the widest prefix of word that still fits.
// Prefixes are measured whole runes at a time so the cut never truncates a
// multibyte character.
func (o *Overlay) fit(word string, maxWidth int) int {
	for i, r := range word {
		if i > 0 && o.measure(word[:i+utf8.RuneLen(r)]) > maxWidth {
			return i
		}
	}
	return len(word)
}

func (o *Overlay) widest(lines []string) int {
	max := 0
	for _, l := range lines {
		if w := o.measure(l); w > max {
			max = w
		}
	}
	return max
}

// contrast samples the region's mean luminance and picks a plate/text pair
// that stays legible whatever the source image looks like.
func (o *Overlay) contrast(canvas *image.NRGBA, rect image.Rectangle) (bg, fg color.NRGBA) {
	rect = rect.Intersect(canvas.Bounds())
	var sum float64
	var n int
	for y := rect.Min.Y; y < rect.Max.Y; y += 4 {
		for x := rect.Min.X; x < rect.Max.X; x += 4 {
			c := canvas.NRGBAAt(x, y)
			col, _ := colorful.MakeColor(color.NRGBA{c.R, c.G, c.B, 255})
			l, _, _ := col.Lab()
			sum += l
			n++
		}
	}
	lum := 0.5
	if n > 0 {
		lum = sum / float64(n)
	}
	if lum > 0.5 {
		// Bright region: dark plate, light text.
		return color.NRGBA{20, 20, 20, 255}, color.NRGBA{245, 245, 245, 255}
	}
	return color.NRGBA{240, 240, 240, 255}, color.NRGBA{15, 15, 15, 255}
}

func fill(canvas *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	draw.Draw(canvas, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawOver(canvas *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	draw.Draw(canvas, rect, image.NewUniform(c), image.Point{}, draw.Over)
}
