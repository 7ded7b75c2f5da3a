package render

import (
	"image/color"

	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	LineColor     color.RGBA
	LineThickness int
	CircleColor   color.RGBA
	CircleRadius  int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineColor:     Yellow,
		LineThickness: 1,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail draws the path of the tracked object on the source image
func Trail(img *gocv.Mat, trail *tracker.Trail, style TrailStyle) {

	points := trail.Points()

	if len(points) < 2 {
		return
	}

	for i := 1; i < len(points); i++ {
		// draw line segment of trail
		gocv.Line(img, points[i-1], points[i], style.LineColor, style.LineThickness)
	}

	// draw center point circle on current box
	gocv.Circle(img, points[len(points)-1], style.CircleRadius, style.CircleColor, -1)
}
