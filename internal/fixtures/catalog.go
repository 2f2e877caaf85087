// Package fixtures generates placeholder gallery images together with a
// matching catalog database for development and UI testing.
package fixtures

import (
	"fmt"
	"image/color"
	"path"
	"strings"
)

// Size is a named output resolution.
type Size struct {
	Name   string
	Width  int
	Height int
}

// Sizes lists the resolutions used by the default catalog.
var Sizes = map[string]Size{
	"landscape_large": {Name: "landscape_large", Width: 1920, Height: 1280},
	"landscape_small": {Name: "landscape_small", Width: 1600, Height: 1067},
	"portrait_large":  {Name: "portrait_large", Width: 1280, Height: 1920},
	"portrait_small":  {Name: "portrait_small", Width: 1067, Height: 1600},
}

// Palette holds the two colours a collection's placeholders are drawn with.
type Palette struct {
	Background color.NRGBA
	Accent     color.NRGBA
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// ImageDef is one image of a gallery. Size is a key of Sizes.
type ImageDef struct {
	Filename string
	Size     string
	Models   []string
}

// Gallery is a named shoot within a collection.
type Gallery struct {
	Name   string
	Images []ImageDef
}

// Collection groups the galleries of one studio.
type Collection struct {
	Name      string
	Palette   Palette
	Galleries []Gallery
}

// Catalog is an ordered list of collections.
type Catalog []Collection

// ImageSpec is everything needed to render and catalogue one image.
type ImageSpec struct {
	Collection string
	Gallery    string
	Filename   string
	Size       Size
	Palette    Palette
	Models     []string
}

// RelPath returns the image path relative to the galleries root.
func (s ImageSpec) RelPath() string {
	return path.Join(s.Collection, s.Gallery, s.Filename)
}

// DisplayName turns the filename into the caption drawn on the image.
func (s ImageSpec) DisplayName() string {
	return strings.ReplaceAll(strings.TrimSuffix(s.Filename, ".jpg"), "-", " ")
}

// Images flattens the catalog in definition order. It fails on an unknown
// size key.
func (c Catalog) Images() ([]ImageSpec, error) {
	var specs []ImageSpec
	for _, col := range c {
		for _, gal := range col.Galleries {
			for _, img := range gal.Images {
				size, ok := Sizes[img.Size]
				if !ok {
					return nil, fmt.Errorf("image %s/%s/%s: unknown size %q", col.Name, gal.Name, img.Filename, img.Size)
				}
				specs = append(specs, ImageSpec{
					Collection: col.Name,
					Gallery:    gal.Name,
					Filename:   img.Filename,
					Size:       size,
					Palette:    col.Palette,
					Models:     img.Models,
				})
			}
		}
	}
	return specs, nil
}

// GalleryCount returns the number of galleries across all collections.
func (c Catalog) GalleryCount() int {
	n := 0
	for _, col := range c {
		n += len(col.Galleries)
	}
	return n
}

func img(filename, size string, models ...string) ImageDef {
	return ImageDef{Filename: filename, Size: size, Models: models}
}

// DefaultCatalog returns the sample studios: four collections of three
// galleries each.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:    "lumiere-studio",
			Palette: Palette{Background: rgb(62, 48, 42), Accent: rgb(120, 90, 70)},
			Galleries: []Gallery{
				{Name: "summer-editorial", Images: []ImageDef{
					img("emma-white-dress.jpg", "portrait_large", "emma"),
					img("emma-garden-bench.jpg", "landscape_large", "emma"),
					img("sofia-sunhat.jpg", "portrait_small", "sofia"),
					img("sofia-floral-close.jpg", "portrait_large", "sofia"),
					img("emma-sofia-duo.jpg", "landscape_small", "emma", "sofia"),
				}},
				{Name: "bridal-collection", Images: []ImageDef{
					img("clara-veil-portrait.jpg", "portrait_large", "clara"),
					img("clara-bouquet-hold.jpg", "portrait_small", "clara"),
					img("clara-window-light.jpg", "landscape_large", "clara"),
					img("lena-lace-detail.jpg", "portrait_large", "lena"),
					img("lena-mirror-shot.jpg", "landscape_small", "lena"),
				}},
				{Name: "corporate-headshots", Images: []ImageDef{
					img("james-grey-suit.jpg", "portrait_large", "james"),
					img("anna-blazer.jpg", "portrait_small", "anna"),
					img("marcus-casual.jpg", "portrait_large", "marcus"),
					img("anna-standing.jpg", "landscape_large", "anna"),
				}},
			},
		},
		{
			Name:    "raw-collective",
			Palette: Palette{Background: rgb(40, 44, 52), Accent: rgb(80, 88, 100)},
			Galleries: []Gallery{
				{Name: "street-fashion", Images: []ImageDef{
					img("kai-denim-alley.jpg", "portrait_large", "kai"),
					img("kai-graffiti-wall.jpg", "landscape_large", "kai"),
					img("zara-leather-jacket.jpg", "portrait_small", "zara"),
					img("zara-rooftop-pose.jpg", "landscape_small", "zara"),
					img("kai-zara-crosswalk.jpg", "landscape_large", "kai", "zara"),
				}},
				{Name: "grunge-series", Images: []ImageDef{
					img("milo-warehouse.jpg", "landscape_large", "milo"),
					img("milo-chain-link.jpg", "portrait_large", "milo"),
					img("nina-smoke.jpg", "portrait_small", "nina"),
					img("nina-fire-escape.jpg", "portrait_large", "nina"),
				}},
				{Name: "tattoo-portraits", Images: []ImageDef{
					img("diego-arm-detail.jpg", "landscape_small", "diego"),
					img("diego-half-sleeve.jpg", "portrait_large", "diego"),
					img("suki-back-piece.jpg", "portrait_large", "suki"),
					img("suki-close-up.jpg", "portrait_small", "suki"),
					img("diego-suki-duo.jpg", "landscape_large", "diego", "suki"),
				}},
			},
		},
		{
			Name:    "golden-hour-photo",
			Palette: Palette{Background: rgb(110, 75, 38), Accent: rgb(180, 130, 60)},
			Galleries: []Gallery{
				{Name: "sunset-session", Images: []ImageDef{
					img("olivia-beach-glow.jpg", "landscape_large", "olivia"),
					img("olivia-silhouette.jpg", "portrait_large", "olivia"),
					img("noah-cliff-edge.jpg", "landscape_small", "noah"),
					img("noah-golden-profile.jpg", "portrait_small", "noah"),
				}},
				{Name: "wildflower-shoot", Images: []ImageDef{
					img("ava-meadow-twirl.jpg", "landscape_large", "ava"),
					img("ava-poppy-close.jpg", "portrait_large", "ava"),
					img("lily-daisy-crown.jpg", "portrait_small", "lily"),
					img("lily-tall-grass.jpg", "landscape_small", "lily"),
					img("ava-lily-laughing.jpg", "landscape_large", "ava", "lily"),
				}},
				{Name: "beach-portraits", Images: []ImageDef{
					img("ethan-surf-board.jpg", "landscape_large", "ethan"),
					img("ethan-wet-hair.jpg", "portrait_large", "ethan"),
					img("maya-sand-dunes.jpg", "portrait_small", "maya"),
					img("maya-wave-splash.jpg", "landscape_small", "maya"),
				}},
			},
		},
		{
			Name:    "noir-atelier",
			Palette: Palette{Background: rgb(25, 25, 30), Accent: rgb(55, 55, 65)},
			Galleries: []Gallery{
				{Name: "film-noir", Images: []ImageDef{
					img("vincent-fedora.jpg", "portrait_large", "vincent"),
					img("vincent-shadow-play.jpg", "landscape_large", "vincent"),
					img("iris-cigarette-holder.jpg", "portrait_small", "iris"),
					img("iris-venetian-blind.jpg", "landscape_small", "iris"),
					img("vincent-iris-standoff.jpg", "landscape_large", "vincent", "iris"),
				}},
				{Name: "smoke-and-shadows", Images: []ImageDef{
					img("raven-haze.jpg", "portrait_large", "raven"),
					img("raven-backlit.jpg", "landscape_large", "raven"),
					img("raven-mirror-fog.jpg", "portrait_small", "raven"),
					img("ash-spotlight.jpg", "portrait_large", "ash"),
				}},
				{Name: "monochrome-series", Images: []ImageDef{
					img("elena-high-contrast.jpg", "portrait_large", "elena"),
					img("elena-fabric-drape.jpg", "landscape_small", "elena"),
					img("leo-stark-profile.jpg", "portrait_small", "leo"),
					img("leo-hands-close.jpg", "landscape_large", "leo"),
					img("elena-leo-symmetry.jpg", "landscape_large", "elena", "leo"),
				}},
			},
		},
	}
}
