package tag

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrMalformedTemplate = errors.New("template malformed")
)

// Template is the static layout descriptor of a tag. Dimensions are in
// millimetres.
type Template struct {
	Name          string  `yaml:"name"`
	PageWidth     float64 `yaml:"page_width"`
	PageHeight    float64 `yaml:"page_height"`
	FontFamily    string  `yaml:"font_family"`
	FontStyle     string  `yaml:"font_style"`
	Border        bool    `yaml:"border"`
	Title         string  `yaml:"title"`
	TitleFontSize float64 `yaml:"title_font_size"`
}

// DefaultTemplate is a 100x60mm landscape badge with a thin border.
func DefaultTemplate() *Template {
	return &Template{
		Name:          "default",
		PageWidth:     100,
		PageHeight:    60,
		FontFamily:    "DejaVu",
		FontStyle:     "B",
		Border:        true,
		TitleFontSize: 10,
	}
}

// LoadTemplate reads a YAML template file. Missing keys fall back to
// DefaultTemplate values.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading template file: %w", err)
	}
	return ParseTemplate(data)
}

func ParseTemplate(data []byte) (*Template, error) {
	tpl := DefaultTemplate()
	if err := yaml.Unmarshal(data, tpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (t *Template) Validate() error {
	if t.PageWidth <= 0 || t.PageHeight <= 0 {
		return fmt.Errorf("%w: page size %gx%g", ErrMalformedTemplate, t.PageWidth, t.PageHeight)
	}
	if _, ok := fontFaces[strings.ToLower(t.FontFamily)]; !ok {
		return fmt.Errorf("%w: unsupported font family %q", ErrMalformedTemplate, t.FontFamily)
	}
	if _, ok := lookupFace(t.FontFamily, t.FontStyle); !ok {
		return fmt.Errorf("%w: unsupported font style %q", ErrMalformedTemplate, t.FontStyle)
	}
	if t.Title != "" && t.TitleFontSize <= 0 {
		return fmt.Errorf("%w: title font size must be positive", ErrMalformedTemplate)
	}
	return nil
}
