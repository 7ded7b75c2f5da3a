package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
)

// labelRect calculates the filled box a label is written on above the
// bounding box and the position of the text within it
func labelRect(box tracker.BoundingBox, textSize image.Point, font Font,
	lineThickness int) (image.Rectangle, image.Point) {

	x := font.alignX(box.TLX(), box.BRX(), textSize.X, lineThickness)
	top := box.TLY()

	labelPosition := image.Pt(x, top-font.Pad.Bottom)

	bRect := image.Rect(x-font.Pad.Left,
		top-textSize.Y-font.Pad.Top-font.Pad.Bottom,
		x+textSize.X+font.Pad.Right, top)

	return bRect, labelPosition
}

// LabelledBox renders a bounding box with a text label above it
func LabelledBox(img *gocv.Mat, box tracker.BoundingBox, text string,
	clr color.RGBA, font Font, lineThickness int) {

	gocv.Rectangle(img, box.Rectangle(), clr, lineThickness)

	if text == "" {
		return
	}

	textSize := font.TextSize(text)
	bRect, labelPosition := labelRect(box, textSize, font, lineThickness)

	// draw box text gets written on
	gocv.Rectangle(img, bRect, clr, -1)

	// Draw the label over box
	gocv.PutTextWithParams(img, text, labelPosition,
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
