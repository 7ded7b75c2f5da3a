package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
)

// Overlay draws the debug annotations shown while tracking and while waiting
// for the human to select the object again
type Overlay struct {
	Font          Font
	TrailStyle    TrailStyle
	LineThickness int
	// CaptionAlignment places the status caption along the top of the frame
	CaptionAlignment Alignment
	// TTF is an optional TrueType font used for the status caption
	TTF *TTF
}

// NewOverlay returns an Overlay with default styling
func NewOverlay() *Overlay {
	return &Overlay{
		Font:          DefaultFont(),
		TrailStyle:    DefaultTrailStyle(),
		LineThickness: 2,
	}
}

// Tracked draws the tracked box and its recent path
func (o *Overlay) Tracked(img *gocv.Mat, box tracker.BoundingBox, trail *tracker.Trail) {

	if trail != nil {
		Trail(img, trail, o.TrailStyle)
	}

	LabelledBox(img, box, "", Green, o.Font, o.LineThickness)
}

// Predicted draws the estimated location of a lost object as a hint for
// selecting it again
func (o *Overlay) Predicted(img *gocv.Mat, box tracker.BoundingBox) {
	LabelledBox(img, box, "predicted", Orange, o.Font, 1)
}

// Caption writes a status line along the top of the image
func (o *Overlay) Caption(img *gocv.Mat, frame, total int, state string) error {

	text := fmt.Sprintf("Frame: %d/%d  %s", frame, total, state)

	f := o.Font
	f.Alignment = o.CaptionAlignment

	if o.TTF != nil {
		x := f.alignX(0, img.Cols(), o.TTF.Width(text), 0)
		return o.TTF.PutText(img, text, image.Pt(x, 20), White)
	}

	x := f.alignX(0, img.Cols(), f.TextSize(text).X, 0)

	gocv.PutTextWithParams(img, text, image.Pt(x, 14), f.Face,
		f.Scale, White, f.Thickness, f.LineType, false)

	return nil
}
