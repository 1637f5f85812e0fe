package tag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	fontStep    = 0.5
	mmPerPoint  = 25.4 / 72
	borderInset = 1.5
)

var (
	ErrUnsupportedText = errors.New("text contains characters the tag font cannot print")
	ErrTextOverflow    = errors.New("text does not fit on the tag")
)

// Generator turns a template and its field inputs into a binary document.
type Generator interface {
	Generate(ctx context.Context, tpl *Template, inputs []FieldInput) ([]byte, error)
}

// PDFGenerator renders tags as single-page PDF documents.
type PDFGenerator struct {
	Creator  string
	Compress bool
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{Creator: "checkinbot", Compress: true}
}

func (g *PDFGenerator) Generate(ctx context.Context, tpl *Template, inputs []FieldInput) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: no template", ErrMalformedTemplate)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, errors.New("no field inputs")
	}
	for _, in := range inputs {
		if err := checkField(tpl, in); err != nil {
			return nil, err
		}
	}

	pdf := newDocument(tpl)
	pdf.SetCompression(g.Compress)
	pdf.SetCreator(g.Creator, true)
	pdf.SetTitle(tpl.Name, true)
	pdf.AddPage()

	if tpl.Border {
		pdf.Rect(borderInset, borderInset, tpl.PageWidth-2*borderInset, tpl.PageHeight-2*borderInset, "D")
	}
	if tpl.Title != "" {
		if err := checkPrintable(tpl.FontFamily, "", tpl.Title); err != nil {
			return nil, fmt.Errorf("template title: %w", err)
		}
		pdf.SetFont(tpl.FontFamily, "", tpl.TitleFontSize)
		pdf.SetXY(0, 2*borderInset)
		pdf.CellFormat(tpl.PageWidth, tpl.TitleFontSize*mmPerPoint*1.5, tpl.Title, "", 0, "CM", false, 0, "")
	}

	style := strings.ToUpper(tpl.FontStyle)
	for _, in := range inputs {
		size, err := fitField(pdf, tpl, in)
		if err != nil {
			return nil, err
		}
		pdf.SetFont(tpl.FontFamily, style, size)
		pdf.SetXY(in.X, in.Y)
		pdf.CellFormat(in.Width, in.Height, in.Content, "", 0, in.Align.cellAlign(), false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("error rendering tag: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing tag: %w", err)
	}
	return buf.Bytes(), nil
}

// CheckFits reports whether a field can be printed on the template: every
// character has a glyph and the text fits the field at some allowed size.
func CheckFits(tpl *Template, in FieldInput) error {
	if tpl == nil {
		return fmt.Errorf("%w: no template", ErrMalformedTemplate)
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	if err := checkField(tpl, in); err != nil {
		return err
	}
	_, err := fitField(newDocument(tpl), tpl, in)
	return err
}

func newDocument(tpl *Template) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: tpl.PageWidth, Ht: tpl.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	registerFonts(pdf)
	return pdf
}

// fitField picks the font size for a field, measuring with the document's
// font metrics.
func fitField(pdf *fpdf.Fpdf, tpl *Template, in FieldInput) (float64, error) {
	style := strings.ToUpper(tpl.FontStyle)
	if err := checkPrintable(tpl.FontFamily, style, in.Content); err != nil {
		return 0, fmt.Errorf("field %q: %w", in.Slot, err)
	}
	return FitFontSize(in, func(size float64) float64 {
		pdf.SetFont(tpl.FontFamily, style, size)
		return pdf.GetStringWidth(in.Content)
	})
}

func checkPrintable(family, style, text string) error {
	face, ok := lookupFace(family, style)
	if !ok {
		return fmt.Errorf("%w: no font %s %s", ErrMalformedTemplate, family, style)
	}
	missing, err := face.missingRunes(text)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %q", ErrUnsupportedText, string(missing))
	}
	return nil
}

// FitFontSize returns the font size used for a field. Fixed fields keep
// their base size. Shrink-to-fit fields step down from the base size until
// the measured text width and the line height fit the field, stopping at
// MinFontSize. Text that still overflows is an ErrTextOverflow.
func FitFontSize(in FieldInput, measure func(size float64) float64) (float64, error) {
	size := in.FontSize
	if in.Policy == FontShrinkToFit {
		for size > in.MinFontSize && !fits(in, size, measure(size)) {
			size -= fontStep
		}
		if size < in.MinFontSize {
			size = in.MinFontSize
		}
	}
	if width := measure(size); !fits(in, size, width) {
		return 0, fmt.Errorf("%w: field %q needs %.1fmm at %gpt, has %gmm", ErrTextOverflow, in.Slot, width, size, in.Width)
	}
	return size, nil
}

func fits(in FieldInput, size, width float64) bool {
	return width <= in.Width && size*mmPerPoint <= in.Height
}

func checkField(tpl *Template, in FieldInput) error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("field %q has no area", in.Slot)
	}
	if in.X < 0 || in.Y < 0 || in.X+in.Width > tpl.PageWidth || in.Y+in.Height > tpl.PageHeight {
		return fmt.Errorf("field %q lies outside the %gx%g page", in.Slot, tpl.PageWidth, tpl.PageHeight)
	}
	if in.FontSize <= 0 {
		return fmt.Errorf("field %q has no font size", in.Slot)
	}
	if in.Policy == FontShrinkToFit && (in.MinFontSize <= 0 || in.MinFontSize > in.FontSize) {
		return fmt.Errorf("field %q has an invalid minimum font size", in.Slot)
	}
	return nil
}
