package fixtures

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallSpec() ImageSpec {
	return ImageSpec{
		Collection: "raw-collective",
		Gallery:    "street-fashion",
		Filename:   "kai-denim-alley.jpg",
		Size:       Size{Name: "test", Width: 320, Height: 200},
		Palette:    Palette{Background: rgb(40, 44, 52), Accent: rgb(80, 88, 100)},
		Models:     []string{"kai"},
	}
}

func TestPlaceholderDrawLayout(t *testing.T) {
	r := NewPlaceholderRenderer(BasicFontSet(), 0)
	spec := smallSpec()
	img := r.Draw(spec)

	require.Equal(t, image.Rect(0, 0, 320, 200), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 80, G: 84, B: 92, A: 255}, img.NRGBAAt(0, 0), "border is the background lightened by 40")
	assert.Equal(t, rgb(60, 66, 76), img.NRGBAAt(10, 30), "halfway down the gradient")
	assert.Greater(t, img.NRGBAAt(10, 50).R, img.NRGBAAt(10, 5).R, "gradient moves towards the accent")
	assert.Equal(t, spec.Palette.Background, img.NRGBAAt(10, 150), "below the gradient the background shows")

	centre := img.NRGBAAt(75, 100)
	assert.Less(t, centre.R, spec.Palette.Background.R, "backdrop darkens the centre band")
}

func TestPlaceholderRenderWritesJPEG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw-collective", "street-fashion", "kai-denim-alley.jpg")
	r := NewPlaceholderRenderer(LoadFonts(nil), DefaultJPEGQuality)

	require.NoError(t, r.Render(path, smallSpec()))

	decoded, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 320, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestPlaceholderRenderIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	r := NewPlaceholderRenderer(BasicFontSet(), DefaultJPEGQuality)
	a, b := filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")

	require.NoError(t, r.Render(a, smallSpec()))
	require.NoError(t, r.Render(b, smallSpec()))

	first, err := os.ReadFile(a)
	require.NoError(t, err)
	second, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestPlaceholderRenderRejectsEmptySize(t *testing.T) {
	r := NewPlaceholderRenderer(BasicFontSet(), DefaultJPEGQuality)
	spec := smallSpec()
	spec.Size = Size{}
	assert.Error(t, r.Render(filepath.Join(t.TempDir(), "x.jpg"), spec))
}

func TestLoadFontsFallsBack(t *testing.T) {
	set := LoadFonts([]string{filepath.Join(t.TempDir(), "missing.ttf")})
	assert.Equal(t, "goregular", set.Source)
	require.NotNil(t, set.Large)
	assert.Greater(t, set.Large.Metrics().Height, set.Small.Metrics().Height)

	junk := filepath.Join(t.TempDir(), "junk.ttf")
	require.NoError(t, os.WriteFile(junk, []byte("not a font"), 0o644))
	assert.Equal(t, "goregular", LoadFonts([]string{junk}).Source)
}

func TestMixAndLighten(t *testing.T) {
	a, b := rgb(0, 100, 200), rgb(100, 200, 255)
	assert.Equal(t, a, mix(a, b, 0))
	assert.Equal(t, rgb(50, 150, 227), mix(a, b, 0.5))
	assert.Equal(t, rgb(40, 140, 240), lighten(a, 40))
	assert.Equal(t, rgb(255, 255, 255), lighten(rgb(250, 230, 216), 40))
}
