package rgbdtrack

import (
	"fmt"

	"github.com/swdee/go-rgbdtrack/tracker"
	"gonum.org/v1/gonum/spatial/r3"
)

// ObjectPosition is where the object was found in a successfully tracked
// frame
type ObjectPosition struct {
	// Frame is the 1-based number of the frame in the video
	Frame int
	// Box is the tracked region in colour frame pixels
	Box tracker.BoundingBox
	// Point is the centre of the object in camera coordinates (metres), only
	// set when HasPoint is true
	Point    r3.Vec
	HasPoint bool
}

// String returns a single line description of the position
func (p ObjectPosition) String() string {

	s := fmt.Sprintf("frame %d: x=%d y=%d w=%d h=%d",
		p.Frame, p.Box.X, p.Box.Y, p.Box.Width, p.Box.Height)

	if p.HasPoint {
		s += fmt.Sprintf(" point=(%.3f, %.3f, %.3f)", p.Point.X, p.Point.Y, p.Point.Z)
	}

	return s
}

// ObjectPositions is the ordered sequence of positions produced by a session
type ObjectPositions []ObjectPosition

// Frames returns the frame numbers the object was tracked in
func (o ObjectPositions) Frames() []int {

	frames := make([]int, len(o))

	for i, p := range o {
		frames[i] = p.Frame
	}

	return frames
}
