package framesource

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gocv.io/x/gocv"
)

var (
	// ErrEndOfStream is returned by Next once all frames have been read
	ErrEndOfStream = errors.New("end of stream")
	// ErrUnavailable is returned when the video can not be opened
	ErrUnavailable = errors.New("frame source unavailable")
)

// FramePair is a color frame and its aligned depth frame for a single
// timestamp.  Depth is an empty Mat when no depth data exists for the frame
type FramePair struct {
	// Index is the zero based position of the frame in the stream
	Index int
	Color gocv.Mat
	Depth gocv.Mat
}

// HasDepth returns true if the pair carries depth data
func (f FramePair) HasDepth() bool {
	return !f.Depth.Empty()
}

// Close frees both Mats of the pair
func (f FramePair) Close() error {
	return errors.Join(f.Color.Close(), f.Depth.Close())
}

// Source delivers aligned color and depth frames in temporal order
type Source interface {
	// TotalFrames returns the number of frames in the stream, or zero if
	// unknown.  It is only used for progress reporting
	TotalFrames() int
	// Next returns the next frame pair or ErrEndOfStream.  The caller owns
	// the returned Mats and must Close them
	Next() (FramePair, error)
	// Close releases the underlying video handles
	Close() error
}

// Video reads the color stream from a video file and the depth stream from
// either a second video file or a numbered image sequence
type Video struct {
	color *gocv.VideoCapture
	// depth is the depth video, nil when reading an image sequence or
	// when no depth stream is configured
	depth *gocv.VideoCapture
	// depthPattern is a printf style file pattern of 16-bit depth images
	// eg: depth/%06d.png
	depthPattern string
	total        int
	index        int
}

// Open opens the color video at colorPath and the optional depth stream at
// depthPath.  A depthPath containing a % verb is treated as an image sequence
// indexed from zero
func Open(colorPath, depthPath string) (*Video, error) {

	color, err := gocv.VideoCaptureFile(colorPath)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, colorPath, err)
	}

	v := &Video{
		color: color,
		total: int(color.Get(gocv.VideoCaptureFrameCount)),
	}

	switch {
	case depthPath == "":

	case strings.Contains(depthPath, "%"):
		v.depthPattern = depthPath

	default:
		depth, err := gocv.VideoCaptureFile(depthPath)

		if err != nil {
			color.Close()
			return nil, fmt.Errorf("%w: depth %s: %v", ErrUnavailable, depthPath, err)
		}

		// keep raw depth values rather than converting to BGR
		depth.Set(gocv.VideoCaptureConvertRGB, 0)
		v.depth = depth
	}

	return v, nil
}

// TotalFrames returns the frame count reported by the color video container
func (v *Video) TotalFrames() int {

	if v.total < 0 {
		return 0
	}

	return v.total
}

// Next reads the next color frame and its aligned depth frame
func (v *Video) Next() (FramePair, error) {

	img := gocv.NewMat()

	if ok := v.color.Read(&img); !ok || img.Empty() {
		img.Close()
		return FramePair{}, ErrEndOfStream
	}

	depth, err := v.readDepth()

	if err != nil {
		img.Close()
		return FramePair{}, err
	}

	pair := FramePair{
		Index: v.index,
		Color: img,
		Depth: depth,
	}

	v.index++

	return pair, nil
}

// readDepth returns the depth frame for the current index, an empty Mat is
// returned once the depth stream is exhausted
func (v *Video) readDepth() (gocv.Mat, error) {

	switch {
	case v.depth != nil:
		depth := gocv.NewMat()
		v.depth.Read(&depth)
		return depth, nil

	case v.depthPattern != "":
		file := fmt.Sprintf(v.depthPattern, v.index)

		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return gocv.NewMat(), nil
			}

			return gocv.Mat{}, fmt.Errorf("error reading depth frame %s: %w", file, err)
		}

		depth := gocv.IMRead(file, gocv.IMReadUnchanged)

		if depth.Empty() {
			depth.Close()
			return gocv.Mat{}, fmt.Errorf("error decoding depth frame %s", file)
		}

		return depth, nil
	}

	return gocv.NewMat(), nil
}

// Close releases the video captures
func (v *Video) Close() error {

	var errs []error

	if v.color != nil {
		errs = append(errs, v.color.Close())
	}

	if v.depth != nil {
		errs = append(errs, v.depth.Close())
	}

	return errors.Join(errs...)
}
