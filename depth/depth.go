// Package depth lifts a tracked colour frame bounding box into a 3D position
// using the aligned depth frame and the pinhole model of the colour camera.
package depth

import (
	"errors"
	"fmt"
	"image"
	"sort"

	clipper "github.com/ctessum/go.clipper"
	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// ErrUnsupportedType is returned for depth frames that are not single
// channel 16-bit or 32-bit float images
var ErrUnsupportedType = errors.New("unsupported depth frame type")

// Intrinsics are the pinhole camera parameters of the colour camera in pixels
type Intrinsics struct {
	Fx float64
	Fy float64
	Cx float64
	Cy float64
}

// Deprojector converts a box and depth frame into a camera space point
type Deprojector struct {
	intr Intrinsics
	// scale converts raw depth units into metres, eg: 0.001 for millimetre
	// depth images
	scale float64
	// inset is the number of pixels the box is shrunk by before sampling so
	// background pixels on the box edge are not included
	inset float64
}

// NewDeprojector returns a Deprojector for the given camera
func NewDeprojector(intr Intrinsics, scale, inset float64) (*Deprojector, error) {

	if intr.Fx <= 0 || intr.Fy <= 0 {
		return nil, fmt.Errorf("invalid focal length fx=%v fy=%v", intr.Fx, intr.Fy)
	}

	if scale <= 0 {
		return nil, fmt.Errorf("invalid depth scale %v", scale)
	}

	if inset < 0 {
		return nil, fmt.Errorf("invalid depth inset %v", inset)
	}

	return &Deprojector{
		intr:  intr,
		scale: scale,
		inset: inset,
	}, nil
}

// Locate returns the 3D position in metres of the object in box.  The depth
// is the median of the valid samples inside the inset box and the point is
// deprojected through the box center.  False is returned when the frame has
// no valid depth inside the box
func (d *Deprojector) Locate(depth gocv.Mat, box tracker.BoundingBox) (r3.Vec, bool, error) {

	if depth.Empty() {
		return r3.Vec{}, false, nil
	}

	box = box.Clamp(depth.Cols(), depth.Rows())

	if !box.Valid() {
		return r3.Vec{}, false, nil
	}

	samples, err := d.sample(depth, d.insetRect(box))

	if err != nil {
		return r3.Vec{}, false, err
	}

	if len(samples) == 0 {
		return r3.Vec{}, false, nil
	}

	sort.Float64s(samples)
	z := stat.Quantile(0.5, stat.Empirical, samples, nil)

	return d.Deproject(box.Center(), z), true, nil
}

// Deproject converts a pixel and its depth in metres into camera space
func (d *Deprojector) Deproject(px image.Point, z float64) r3.Vec {
	return r3.Vec{
		X: (float64(px.X) - d.intr.Cx) * z / d.intr.Fx,
		Y: (float64(px.Y) - d.intr.Cy) * z / d.intr.Fy,
		Z: z,
	}
}

// insetRect shrinks the box polygon by the inset distance.  Boxes too small
// to shrink are sampled whole
func (d *Deprojector) insetRect(box tracker.BoundingBox) image.Rectangle {

	rect := box.Rectangle()

	if d.inset == 0 {
		return rect
	}

	path := clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(rect.Min.X), Y: clipper.CInt(rect.Min.Y)},
		&clipper.IntPoint{X: clipper.CInt(rect.Max.X), Y: clipper.CInt(rect.Min.Y)},
		&clipper.IntPoint{X: clipper.CInt(rect.Max.X), Y: clipper.CInt(rect.Max.Y)},
		&clipper.IntPoint{X: clipper.CInt(rect.Min.X), Y: clipper.CInt(rect.Max.Y)},
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	solution := co.Execute(-d.inset)

	var inner image.Rectangle

	for i, sol := range solution {
		for j, pt := range sol {
			p := image.Pt(int(pt.X), int(pt.Y))

			if i == 0 && j == 0 {
				inner = image.Rectangle{Min: p, Max: p}
				continue
			}

			inner.Min.X = min(inner.Min.X, p.X)
			inner.Min.Y = min(inner.Min.Y, p.Y)
			inner.Max.X = max(inner.Max.X, p.X)
			inner.Max.Y = max(inner.Max.Y, p.Y)
		}
	}

	if inner.Dx() <= 0 || inner.Dy() <= 0 {
		return rect
	}

	return inner.Intersect(rect)
}

// sample collects the valid depth values in metres inside rect
func (d *Deprojector) sample(depth gocv.Mat, rect image.Rectangle) ([]float64, error) {

	cols := depth.Cols()
	samples := make([]float64, 0, rect.Dx()*rect.Dy())

	switch depth.Type() {
	case gocv.MatTypeCV16UC1:
		data, err := depth.DataPtrUint16()

		if err != nil {
			return nil, fmt.Errorf("error reading depth data: %w", err)
		}

		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				if v := data[y*cols+x]; v > 0 {
					samples = append(samples, float64(v)*d.scale)
				}
			}
		}

	case gocv.MatTypeCV32FC1:
		data, err := depth.DataPtrFloat32()

		if err != nil {
			return nil, fmt.Errorf("error reading depth data: %w", err)
		}

		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				if v := data[y*cols+x]; v > 0 {
					samples = append(samples, float64(v)*d.scale)
				}
			}
		}

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, depth.Type())
	}

	return samples, nil
}
