package text

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/benoitkugler/linebox/logger"
)

// default family used when no requested family is available
const fallbackFamily = "go"

type faceVariant struct {
	bold, slanted bool
}

// FontConfiguration holds the font files available to the
// layout, and caches the faces built from them.
//
// It is not safe for concurrent use.
type FontConfiguration struct {
	families map[string]map[faceVariant]*opentype.Font
	fonts    map[string]*Font

	// DPI used to convert sizes, 72 so that sizes are in pixels.
	DPI float64
}

// NewFontConfiguration returns a configuration with the Go fonts
// registered under "go", "sans-serif", "serif" and "monospace".
func NewFontConfiguration() *FontConfiguration {
	fc := &FontConfiguration{
		families: make(map[string]map[faceVariant]*opentype.Font),
		fonts:    make(map[string]*Font),
		DPI:      72,
	}
	builtins := []struct {
		data    []byte
		variant faceVariant
		mono    bool
	}{
		{goregular.TTF, faceVariant{}, false},
		{gobold.TTF, faceVariant{bold: true}, false},
		{goitalic.TTF, faceVariant{slanted: true}, false},
		{gobolditalic.TTF, faceVariant{bold: true, slanted: true}, false},
		{gomono.TTF, faceVariant{}, true},
		{gomonobold.TTF, faceVariant{bold: true}, true},
	}
	for _, b := range builtins {
		f, err := opentype.Parse(b.data)
		if err != nil { // embedded fonts are valid
			panic(err)
		}
		if b.mono {
			fc.register("monospace", b.variant, f)
			continue
		}
		for _, family := range [...]string{fallbackFamily, "sans-serif", "serif"} {
			fc.register(family, b.variant, f)
		}
	}
	return fc
}

func (fc *FontConfiguration) register(family string, v faceVariant, f *opentype.Font) {
	family = strings.ToLower(family)
	m := fc.families[family]
	if m == nil {
		m = make(map[faceVariant]*opentype.Font)
		fc.families[family] = m
	}
	m[v] = f
}

// AddFontFace parses an OpenType or TrueType file and registers it
// for the given family and style.
func (fc *FontConfiguration) AddFontFace(family string, style FontStyle, weight uint16, content []byte) error {
	f, err := opentype.Parse(content)
	if err != nil {
		return fmt.Errorf("invalid font file for family %s: %s", family, err)
	}
	fc.register(family, faceVariant{bold: weight >= 600, slanted: style != FSyNormal}, f)
	return nil
}

// resolve returns the best registered font for [fd],
// falling back on the default family.
func (fc *FontConfiguration) resolve(fd FontDescription) *opentype.Font {
	v := faceVariant{bold: fd.IsBold(), slanted: fd.isSlanted()}
	families := append(fd.Family[:len(fd.Family):len(fd.Family)], fallbackFamily)
	for i, family := range families {
		variants := fc.families[strings.ToLower(family)]
		if variants == nil {
			continue
		}
		if i == len(families)-1 && len(fd.Family) != 0 {
			logger.WarningLogger.Printf("no font face for %v, using %s", fd.Family, fallbackFamily)
		}
		for _, candidate := range [...]faceVariant{v, {bold: v.bold}, {slanted: v.slanted}, {}} {
			if f := variants[candidate]; f != nil {
				return f
			}
		}
	}
	return nil
}

// Font returns the font described by [fd], building and caching
// the face on first use.
func (fc *FontConfiguration) Font(fd FontDescription) (*Font, error) {
	key := fmt.Sprintf("%s:%g", fd.key(), fd.Size)
	if f := fc.fonts[key]; f != nil {
		return f, nil
	}
	of := fc.resolve(fd)
	if of == nil {
		return nil, fmt.Errorf("no font available for %v", fd.Family)
	}
	face, err := opentype.NewFace(of, &opentype.FaceOptions{Size: float64(fd.Size), DPI: fc.DPI, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("creating face for %v: %s", fd.Family, err)
	}
	f := NewFont(face, fd.Size)
	fc.fonts[key] = f
	return f, nil
}
