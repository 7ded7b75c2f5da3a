package display

import (
	"image"
	"image/color"
	"math"

	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
)

// Scaler letterboxes frames that are larger than the display area and maps
// regions selected on the scaled frame back to source frame coordinates
type Scaler struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewScaler returns a scaler fitting a source frame into the destination
// display size whilst maintaining image aspect
func NewScaler(srcWidth, srcHeight, destWidth, destHeight int) *Scaler {
	s := &Scaler{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	// precalculate scaling dimensions
	s.preCalc()

	return s
}

// Close frees memory allocated during resize process
func (s *Scaler) Close() error {
	return s.tempMat.Close()
}

// preCalc the scaling factors for source and destination Mats
func (s *Scaler) preCalc() {

	s.resizeW = s.destWidth
	s.resizeH = s.destHeight

	scaleW := float32(s.destWidth) / float32(s.srcWidth)
	scaleH := float32(s.destHeight) / float32(s.srcHeight)
	s.scale = scaleH

	if scaleW < scaleH {
		s.scale = scaleW
		s.resizeH = int(float32(s.srcHeight) * s.scale)
	} else {
		s.resizeW = int(float32(s.srcWidth) * s.scale)
	}

	s.yPad = (s.destHeight - s.resizeH) / 2 // padding height / 2
	s.xPad = (s.destWidth - s.resizeW) / 2  // padding width / 2
}

// LetterBoxResize resizes the source frame to the display size whilst
// maintaining image aspect.  Color is that used for letter box padding
func (s *Scaler) LetterBoxResize(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	gocv.Resize(src, &s.tempMat, image.Pt(s.resizeW, s.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(s.tempMat, dest, s.yPad, s.destHeight-s.resizeH-s.yPad,
		s.xPad, s.destWidth-s.resizeW-s.xPad, gocv.BorderConstant, color)
}

// ToSource maps a box drawn on the letterboxed display frame back to source
// frame pixel coordinates, clipped to the source frame
func (s *Scaler) ToSource(box tracker.BoundingBox) tracker.BoundingBox {

	if box.Empty() {
		return box
	}

	sc := float64(s.scale)

	x0 := int(math.Round(float64(box.TLX()-s.xPad) / sc))
	y0 := int(math.Round(float64(box.TLY()-s.yPad) / sc))
	x1 := int(math.Round(float64(box.BRX()-s.xPad) / sc))
	y1 := int(math.Round(float64(box.BRY()-s.yPad) / sc))

	return tracker.NewBoundingBox(x0, y0, x1-x0, y1-y0).Clamp(s.srcWidth, s.srcHeight)
}

// ToDisplay maps a source frame box onto the letterboxed display frame
func (s *Scaler) ToDisplay(box tracker.BoundingBox) tracker.BoundingBox {

	sc := float64(s.scale)

	x0 := int(math.Round(float64(box.TLX())*sc)) + s.xPad
	y0 := int(math.Round(float64(box.TLY())*sc)) + s.yPad
	x1 := int(math.Round(float64(box.BRX())*sc)) + s.xPad
	y1 := int(math.Round(float64(box.BRY())*sc)) + s.yPad

	return tracker.NewBoundingBox(x0, y0, x1-x0, y1-y0)
}

// ScaleFactor returns the scale factor used in letterbox resize
func (s *Scaler) ScaleFactor() float32 {
	return s.scale
}

// XPad returns the x padding used in letterbox resize
func (s *Scaler) XPad() int {
	return s.xPad
}

// YPad returns the y padding used in letterbox resize
func (s *Scaler) YPad() int {
	return s.yPad
}

// Fits returns true when the source frame already fits within the display
// size and no scaling is needed
func Fits(srcWidth, srcHeight, maxWidth, maxHeight int) bool {
	return (maxWidth <= 0 || srcWidth <= maxWidth) &&
		(maxHeight <= 0 || srcHeight <= maxHeight)
}
