package tracker

import (
	"image"
)

// BoundingBox represents a rectangle in colour frame pixel coordinates with
// the (x, y) top left corner and its width and height.  The zero value is the
// empty box used to signal that no region was selected
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewBoundingBox creates a new BoundingBox with given coordinates
func NewBoundingBox(x, y, width, height int) BoundingBox {
	return BoundingBox{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// BoxFromRectangle converts an image.Rectangle as returned by gocv into a
// BoundingBox
func BoxFromRectangle(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return NewBoundingBox(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// Empty returns true if the box is the all zero "no selection" value
func (b BoundingBox) Empty() bool {
	return b == BoundingBox{}
}

// Valid returns true if the box has a positive area
func (b BoundingBox) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// TLX returns the top-left x coordinate of the box
func (b BoundingBox) TLX() int {
	return b.X
}

// TLY returns the top-left y coordinate of the box
func (b BoundingBox) TLY() int {
	return b.Y
}

// BRX returns the bottom-right x coordinate of the box
func (b BoundingBox) BRX() int {
	return b.X + b.Width
}

// BRY returns the bottom-right y coordinate of the box
func (b BoundingBox) BRY() int {
	return b.Y + b.Height
}

// Center returns the center point of the box
func (b BoundingBox) Center() image.Point {
	return image.Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

// Rectangle converts the box to an image.Rectangle for use with gocv
func (b BoundingBox) Rectangle() image.Rectangle {
	return image.Rect(b.TLX(), b.TLY(), b.BRX(), b.BRY())
}

// Clamp restricts the box to lie within a frame of the given dimensions.  A
// box entirely outside the frame becomes empty
func (b BoundingBox) Clamp(width, height int) BoundingBox {
	r := b.Rectangle().Intersect(image.Rect(0, 0, width, height))

	if r.Empty() {
		return BoundingBox{}
	}

	return BoxFromRectangle(r)
}

// CalcIoU calculates the Intersection over Union (IoU) with another box
func (b BoundingBox) CalcIoU(other BoundingBox) float32 {

	inter := b.Rectangle().Intersect(other.Rectangle())

	if inter.Empty() {
		return 0
	}

	ia := inter.Dx() * inter.Dy()
	ua := b.Width*b.Height + other.Width*other.Height - ia

	if ua <= 0 {
		return 0
	}

	return float32(ia) / float32(ua)
}
