package tag

import (
	"errors"
	"strings"
)

var ErrInvalidName = errors.New("invalid or empty name provided")

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// cellAlign maps to the fpdf alignment string, vertically centred.
func (a Alignment) cellAlign() string {
	switch a {
	case AlignLeft:
		return "LM"
	case AlignRight:
		return "RM"
	default:
		return "CM"
	}
}

type FontPolicy int

const (
	FontFixed FontPolicy = iota
	FontShrinkToFit
)

// FieldInput binds one value to one slot of the template for a single
// generation call. Positions and sizes are in millimetres, font sizes in
// points.
type FieldInput struct {
	Slot        string
	Content     string
	X           float64
	Y           float64
	Width       float64
	Height      float64
	Align       Alignment
	FontSize    float64
	MinFontSize float64
	Policy      FontPolicy
}

// Layout of the name slot on the default badge.
const (
	NameSlot        = "name"
	nameX           = 10
	nameY           = 20
	nameWidth       = 80
	nameHeight      = 20
	nameFontSize    = 28
	nameMinFontSize = 8
)

// NewNameField builds the single text input of a tag from an attendee's
// display name. The result depends only on name.
func NewNameField(name string) (FieldInput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldInput{}, ErrInvalidName
	}
	return FieldInput{
		Slot:        NameSlot,
		Content:     name,
		X:           nameX,
		Y:           nameY,
		Width:       nameWidth,
		Height:      nameHeight,
		Align:       AlignCenter,
		FontSize:    nameFontSize,
		MinFontSize: nameMinFontSize,
		Policy:      FontShrinkToFit,
	}, nil
}
