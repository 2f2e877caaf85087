package fixtures

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DefaultJPEGQuality is the encoder quality used for placeholders.
const DefaultJPEGQuality = 85

const (
	gradientFraction = 0.3
	borderWidth      = 3
	borderLift       = 40
	lineSpacing      = 16
	backdropPadX     = 40
	backdropPadY     = 30
	backdropRadius   = 12
	backdropAlpha    = 140
)

// Renderer writes a placeholder image for spec to path, creating parent
// directories as needed. Identical inputs produce identical files.
type Renderer interface {
	Render(path string, spec ImageSpec) error
}

// PlaceholderRenderer draws a labelled gradient card and encodes it as JPEG.
type PlaceholderRenderer struct {
	Fonts   FontSet
	Quality int
}

// NewPlaceholderRenderer returns a renderer using fonts. A quality outside
// 1..100 uses DefaultJPEGQuality.
func NewPlaceholderRenderer(fonts FontSet, quality int) *PlaceholderRenderer {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if fonts.Large == nil || fonts.Medium == nil || fonts.Small == nil {
		fonts = BasicFontSet()
	}
	return &PlaceholderRenderer{Fonts: fonts, Quality: quality}
}

// Render implements Renderer.
func (r *PlaceholderRenderer) Render(path string, spec ImageSpec) error {
	if spec.Size.Width <= 0 || spec.Size.Height <= 0 {
		return fmt.Errorf("render %s: invalid size %dx%d", path, spec.Size.Width, spec.Size.Height)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}
	if err := imaging.Save(r.Draw(spec), path, imaging.JPEGQuality(r.Quality)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

type captionLine struct {
	text   string
	face   font.Face
	width  int
	height int
	ascent int
}

// Draw renders the placeholder in memory.
func (r *PlaceholderRenderer) Draw(spec ImageSpec) *image.NRGBA {
	w, h := spec.Size.Width, spec.Size.Height
	bg, accent := spec.Palette.Background, spec.Palette.Accent

	canvas := imaging.New(w, h, bg)

	gradientHeight := int(float64(h) * gradientFraction)
	for y := 0; y < gradientHeight; y++ {
		factor := float64(y) / float64(gradientHeight)
		fill(canvas, image.Rect(0, y, w, y+1), mix(bg, accent, factor))
	}

	border := lighten(bg, borderLift)
	fill(canvas, image.Rect(0, 0, w, borderWidth), border)
	fill(canvas, image.Rect(0, h-borderWidth, w, h), border)
	fill(canvas, image.Rect(0, 0, borderWidth, h), border)
	fill(canvas, image.Rect(w-borderWidth, 0, w, h), border)

	lines := []captionLine{
		measure(strings.ToUpper(spec.Collection), r.Fonts.Large),
		measure(spec.Gallery, r.Fonts.Medium),
		measure(spec.DisplayName(), r.Fonts.Small),
	}
	textHeight := lineSpacing * (len(lines) - 1)
	textWidth := 0
	for _, l := range lines {
		textHeight += l.height
		textWidth = max(textWidth, l.width)
	}

	rectW := textWidth + backdropPadX*2
	rectH := textHeight + backdropPadY*2
	rectX := (w - rectW) / 2
	rectY := (h - rectH) / 2
	backdrop := roundedRect(rectW, rectH, backdropRadius, color.NRGBA{A: backdropAlpha})
	canvas = imaging.Overlay(canvas, backdrop, image.Pt(rectX, rectY), 1.0)

	white := image.NewUniform(color.White)
	y := rectY + backdropPadY
	for _, l := range lines {
		d := &font.Drawer{
			Dst:  canvas,
			Src:  white,
			Face: l.face,
			Dot:  fixed.P((w-l.width)/2, y+l.ascent),
		}
		d.DrawString(l.text)
		y += l.height + lineSpacing
	}

	return canvas
}

func measure(text string, face font.Face) captionLine {
	m := face.Metrics()
	return captionLine{
		text:   text,
		face:   face,
		width:  font.MeasureString(face, text).Ceil(),
		height: (m.Ascent + m.Descent).Ceil(),
		ascent: m.Ascent.Ceil(),
	}
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// mix interpolates linearly from a to b. Channels are truncated, not rounded.
func mix(a, b color.NRGBA, factor float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*factor)
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

func lighten(c color.NRGBA, by int) color.NRGBA {
	up := func(v uint8) uint8 {
		return uint8(min(int(v)+by, 255))
	}
	return color.NRGBA{R: up(c.R), G: up(c.G), B: up(c.B), A: 255}
}

// roundedRect returns a w x h image filled with c inside a rectangle whose
// corners are rounded with radius, transparent outside it.
func roundedRect(w, h, radius int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	r := float64(radius)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			cx, cy := float64(px)+0.5, float64(py)+0.5
			dx := max(r-cx, cx-(float64(w)-r), 0)
			dy := max(r-cy, cy-(float64(h)-r), 0)
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(px, py, c)
			}
		}
	}
	return img
}
