package tracker

import (
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

const (
	// CSRT is the Channel and Spatial Reliability tracker, slow but accurate
	CSRT = "csrt"
	// KCF is the Kernelized Correlation Filter tracker, fast but loses
	// objects under occlusion
	KCF = "kcf"
	// MIL is the Multiple Instance Learning tracker from the OpenCV core
	// video module
	MIL = "mil"
)

var (
	// ErrInitFailed is returned when the tracking algorithm rejects the
	// initial box
	ErrInitFailed = errors.New("tracker initialization failed")
	// ErrNotInitialized is returned when Update is called before Init
	ErrNotInitialized = errors.New("tracker not initialized")
)

// ObjectTracker is a single object visual tracker.  Init must be called
// before the first Update
type ObjectTracker interface {
	// Init seeds the tracker with the region of the object in frame
	Init(frame gocv.Mat, box BoundingBox) error
	// Update locates the object in the next frame.  A false result means the
	// object could not be found with sufficient confidence, this is not an
	// error
	Update(frame gocv.Mat) (BoundingBox, bool, error)
	// Close frees the native tracker resources
	Close() error
}

// Factory creates a fresh ObjectTracker instance
type Factory func() (ObjectTracker, error)

// OpenCV wraps a gocv tracking algorithm
type OpenCV struct {
	algorithm string
	tracker   gocv.Tracker
	ready     bool
}

// NewFactory returns a Factory creating OpenCV trackers of the named
// algorithm.  An empty name selects CSRT
func NewFactory(algorithm string) (Factory, error) {

	algorithm = strings.ToLower(strings.TrimSpace(algorithm))

	if algorithm == "" {
		algorithm = CSRT
	}

	switch algorithm {
	case CSRT, KCF, MIL:
	default:
		return nil, fmt.Errorf("unknown tracker algorithm %q, use %s, %s or %s",
			algorithm, CSRT, KCF, MIL)
	}

	return func() (ObjectTracker, error) {
		return NewOpenCV(algorithm)
	}, nil
}

// NewOpenCV creates a new OpenCV tracker for the given algorithm
func NewOpenCV(algorithm string) (*OpenCV, error) {

	t := &OpenCV{
		algorithm: algorithm,
	}

	switch algorithm {
	case CSRT:
		t.tracker = contrib.NewTrackerCSRT()
	case KCF:
		t.tracker = contrib.NewTrackerKCF()
	case MIL:
		t.tracker = gocv.NewTrackerMIL()
	default:
		return nil, fmt.Errorf("unknown tracker algorithm %q", algorithm)
	}

	return t, nil
}

// Init seeds the tracker with the selected box
func (t *OpenCV) Init(frame gocv.Mat, box BoundingBox) error {

	if !box.Valid() {
		return fmt.Errorf("%w: invalid box %+v", ErrInitFailed, box)
	}

	if ok := t.tracker.Init(frame, box.Rectangle()); !ok {
		return fmt.Errorf("%w: %s rejected box %+v", ErrInitFailed, t.algorithm, box)
	}

	t.ready = true

	return nil
}

// Update runs the tracker on the next frame
func (t *OpenCV) Update(frame gocv.Mat) (BoundingBox, bool, error) {

	if !t.ready {
		return BoundingBox{}, false, ErrNotInitialized
	}

	rect, ok := t.tracker.Update(frame)

	if !ok {
		return BoundingBox{}, false, nil
	}

	return BoxFromRectangle(rect), true, nil
}

// Close frees the underlying tracker
func (t *OpenCV) Close() error {
	t.ready = false
	return t.tracker.Close()
}
