package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenderClass is the closed categorical attribute carried by catalog items.
type GenderClass string

const (
	GenderUnknown GenderClass = ""
	GenderMan     GenderClass = "MAN"
	GenderWoman   GenderClass = "WOM"
	GenderBoy     GenderClass = "BOY"
	GenderGirl    GenderClass = "GIR"
)

// GenderClasses lists the valid non-empty GenderClass values.
var GenderClasses = []GenderClass{GenderMan, GenderWoman, GenderBoy, GenderGirl}

// ParseGenderClass converts a raw column value into a GenderClass.
// Surrounding whitespace is ignored and matching is case-insensitive.
func ParseGenderClass(s string) (GenderClass, error) {
	g := GenderClass(strings.ToUpper(strings.TrimSpace(s)))
	if g == GenderUnknown {
		return g, nil
	}
	for _, valid := range GenderClasses {
		if g == valid {
			return g, nil
		}
	}
	return GenderUnknown, fmt.Errorf("%w: %q", ErrInvalidGender, s)
}

// ColorVector is an RGB triple describing a dominant color.
// Components are R, G, B in that order, each in [0,255].
type ColorVector struct {
	R, G, B int
}

// RGB builds a ColorVector and validates its range.
func RGB(r, g, b int) (ColorVector, error) {
	c := ColorVector{R: r, G: g, B: b}
	if err := c.Validate(); err != nil {
		return ColorVector{}, err
	}
	return c, nil
}

// Validate reports ErrInvalidColor when any component is outside [0,255].
func (c ColorVector) Validate() error {
	for i, v := range c.Components() {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: component %c=%d outside [0,255]", ErrInvalidColor, "RGB"[i], v)
		}
	}
	return nil
}

// Components returns the triple as an array.
func (c ColorVector) Components() [3]int {
	return [3]int{c.R, c.G, c.B}
}

// String renders the persisted form: three base-10 integers separated by commas.
func (c ColorVector) String() string {
	return strconv.Itoa(c.R) + "," + strconv.Itoa(c.G) + "," + strconv.Itoa(c.B)
}

// ParseColorVector parses "r,g,b", "r g b" or "[r, g, b]".
func ParseColorVector(s string) (ColorVector, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ',' || r == ' ' || r == '[' || r == ']' || r == '\t' || r == ';'
	})
	if len(fields) != 3 {
		return ColorVector{}, fmt.Errorf("%w: %q", ErrMalformedColor, s)
	}
	var parts [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return ColorVector{}, fmt.Errorf("%w: %q", ErrMalformedColor, s)
		}
		parts[i] = v
	}
	return RGB(parts[0], parts[1], parts[2])
}

// LabColor is a CIE L*a*b* value produced by colour-space conversion.
// It is never persisted.
type LabColor struct {
	L, A, B float64
}

// CatalogItem is a product in the catalog.
// Color is nil until the item has been annotated; a nil Color is distinct
// from any color value, black included.
type CatalogItem struct {
	ID          string      `validate:"required,max=20"`
	Title       string      `validate:"required,max=100"`
	Gender      GenderClass `validate:"omitempty,oneof=MAN WOM BOY GIR"`
	Composition string      `validate:"max=20"`
	Sleeve      string      `validate:"max=20"`
	Photo       string      `validate:"max=150"`
	URL         string      `validate:"max=200"`
	Color       *ColorVector
	UpdatedAt   time.Time // When the record was last written to the store
}

// HasColor reports whether the item carries a dominant color.
func (i *CatalogItem) HasColor() bool {
	return i != nil && i.Color != nil
}

// WithColor returns a copy of the item carrying c.
func (i *CatalogItem) WithColor(c ColorVector) *CatalogItem {
	cp := *i
	cp.Color = &c
	return &cp
}

// Clone returns a deep copy of the item.
func (i *CatalogItem) Clone() *CatalogItem {
	cp := *i
	if i.Color != nil {
		c := *i.Color
		cp.Color = &c
	}
	return &cp
}
