package tracker

import (
	"image"
)

// Trail keeps a bounded history of the tracked object's box centers used for
// drawing its recent path
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size   int
	points []image.Point
}

// NewTrail returns a new trail history instance.  Size specifies the maximum
// length of the trail to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size: size,
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.points = nil
}

// Add the center point of a tracked box to the history
func (t *Trail) Add(box BoundingBox) {

	t.points = append(t.points, box.Center())

	// check if history is exceeded and drop oldest point
	if len(t.points) > t.size {
		t.points = t.points[len(t.points)-t.size:]
	}
}

// Points returns the point history, oldest first
func (t *Trail) Points() []image.Point {
	return t.points
}
