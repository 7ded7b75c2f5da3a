package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"
)

// Alignment positions text horizontally within the span it is written in
type Alignment int

const (
	Left Alignment = iota
	Center
	Right
)

// ParseAlignment converts "left", "center" or "right" into an Alignment
func ParseAlignment(s string) (Alignment, error) {

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "":
		return Left, nil
	case "center", "centre":
		return Center, nil
	case "right":
		return Right, nil
	}

	return Left, fmt.Errorf("unknown alignment %q, use left, center or right", s)
}

// Padding is the space kept between text and the edges of its label
type Padding struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Font is a Hershey font used for labels and captions drawn by OpenCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	Pad       Padding
	Alignment Alignment
}

// DefaultFont returns the label font, black text aligned to the left edge
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		Pad:       Padding{Left: 4, Right: 4, Top: 4, Bottom: 6},
		Alignment: Left,
	}
}

// TextSize measures text written in the font
func (f Font) TextSize(text string) image.Point {
	return gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
}

// alignX returns the x coordinate text of the given width starts at when
// aligned between left and right.  Half the line thickness of a surrounding
// box is allowed for at the edges
func (f Font) alignX(left, right, textWidth, lineThickness int) int {

	switch f.Alignment {
	case Center:
		return (left+right)/2 - textWidth/2
	case Right:
		return right - textWidth - f.Pad.Right + lineThickness/2
	default:
		return left + f.Pad.Left - lineThickness/2
	}
}
