package fixtures

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Caption sizes in points for the collection, gallery and filename lines.
const (
	largeFontSize  = 56
	mediumFontSize = 40
	smallFontSize  = 30
)

// DefaultFontPaths are tried in order before falling back to the embedded Go
// font.
var DefaultFontPaths = []string{
	"/System/Library/Fonts/Helvetica.ttc",
	"/System/Library/Fonts/SFNSText.ttf",
	"/System/Library/Fonts/Geneva.ttf",
}

// FontSet holds the three caption faces and where they came from.
type FontSet struct {
	Large  font.Face
	Medium font.Face
	Small  font.Face
	Source string
}

// LoadFonts returns faces from the first path that parses, then the embedded
// Go Regular font, then the fixed 7x13 bitmap face. It never fails.
func LoadFonts(paths []string) FontSet {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if set, err := fontSetFromBytes(data, p); err == nil {
			return set
		}
	}
	if set, err := fontSetFromBytes(goregular.TTF, "goregular"); err == nil {
		return set
	}
	return BasicFontSet()
}

// BasicFontSet uses basicfont.Face7x13 for every line.
func BasicFontSet() FontSet {
	return FontSet{
		Large:  basicfont.Face7x13,
		Medium: basicfont.Face7x13,
		Small:  basicfont.Face7x13,
		Source: "basicfont",
	}
}

func fontSetFromBytes(data []byte, source string) (FontSet, error) {
	f, err := parseFont(data)
	if err != nil {
		return FontSet{}, fmt.Errorf("parse font %s: %w", source, err)
	}

	faces := make([]font.Face, 0, 3)
	for _, size := range []float64{largeFontSize, mediumFontSize, smallFontSize} {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return FontSet{}, fmt.Errorf("create %vpt face from %s: %w", size, source, err)
		}
		faces = append(faces, face)
	}
	return FontSet{Large: faces[0], Medium: faces[1], Small: faces[2], Source: source}, nil
}

// parseFont accepts single fonts and font collections, taking the first font
// of a collection.
func parseFont(data []byte) (*opentype.Font, error) {
	if f, err := opentype.Parse(data); err == nil {
		return f, nil
	}
	col, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if col.NumFonts() == 0 {
		return nil, fmt.Errorf("empty font collection")
	}
	return col.Font(0)
}
