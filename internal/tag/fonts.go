package tag

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/sfnt"
)

// DejaVu Sans Condensed, as shipped with fpdf. Covers Latin, Greek and
// Cyrillic scripts.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

type fontFace struct {
	data []byte

	once   sync.Once
	parsed *sfnt.Font
	err    error
}

// fontFaces maps lower-case family names to their embedded styles.
var fontFaces = map[string]map[string]*fontFace{
	"dejavu": {
		"":  {data: dejaVuRegular},
		"B": {data: dejaVuBold},
	},
}

func lookupFace(family, style string) (*fontFace, bool) {
	styles, ok := fontFaces[strings.ToLower(family)]
	if !ok {
		return nil, false
	}
	face, ok := styles[strings.ToUpper(style)]
	return face, ok
}

// registerFonts makes every embedded face available to the document.
func registerFonts(pdf *fpdf.Fpdf) {
	for family, styles := range fontFaces {
		for style, face := range styles {
			pdf.AddUTF8FontFromBytes(family, style, face.data)
		}
	}
}

// missingRunes lists the characters of text the face has no glyph for.
func (f *fontFace) missingRunes(text string) ([]rune, error) {
	f.once.Do(func() {
		f.parsed, f.err = sfnt.Parse(f.data)
	})
	if f.err != nil {
		return nil, fmt.Errorf("error reading embedded font: %w", f.err)
	}

	var buf sfnt.Buffer
	var missing []rune
	seen := make(map[rune]bool)
	for _, r := range text {
		if seen[r] {
			continue
		}
		seen[r] = true
		idx, err := f.parsed.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("error reading embedded font: %w", err)
		}
		if idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing, nil
}
