package rgbdtrack

import (
	"errors"
	"log"
	"testing"

	"github.com/swdee/go-rgbdtrack/display"
	"github.com/swdee/go-rgbdtrack/framesource"
	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"
)

var errFault = errors.New("injected fault")

// script drives the fakes, all maps are keyed by the 1-based frame number
type script struct {
	frame int
	// selectOn presses the select key and returns the region
	selectOn map[int]tracker.BoundingBox
	// keyOn overrides the key returned by the surface
	keyOn map[int]display.Key
	// failOn makes the tracker lose the object
	failOn map[int]bool
	// faultOn makes the tracker return an error
	faultOn map[int]bool
}

func newScript() *script {
	return &script{
		selectOn: make(map[int]tracker.BoundingBox),
		keyOn:    make(map[int]display.Key),
		failOn:   make(map[int]bool),
		faultOn:  make(map[int]bool),
	}
}

type fakeSource struct {
	sc     *script
	frames int
	total  int
	// sized creates real colour images for drawing on
	sized bool
	depth bool
	// errOn fails the n-th call to Next
	errOn     int
	nextCalls int
	closed    bool
}

func (f *fakeSource) TotalFrames() int {
	return f.total
}

func (f *fakeSource) Next() (framesource.FramePair, error) {

	f.nextCalls++

	if f.errOn == f.nextCalls {
		return framesource.FramePair{}, errFault
	}

	if f.sc.frame >= f.frames {
		return framesource.FramePair{}, framesource.ErrEndOfStream
	}

	f.sc.frame++

	pair := framesource.FramePair{
		Index: f.sc.frame - 1,
		Color: gocv.NewMat(),
		Depth: gocv.NewMat(),
	}

	if f.sized {
		pair.Color.Close()
		pair.Color = gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	}

	if f.depth {
		pair.Depth.Close()
		pair.Depth = gocv.NewMatWithSize(48, 64, gocv.MatTypeCV16UC1)
	}

	return pair, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeSurface struct {
	sc        *script
	shown     []int
	selects   []int
	// dismissed records the frame of every Dismiss call
	dismissed []int
	showErrOn int
}

func (f *fakeSurface) Show(frame gocv.Mat) error {

	f.shown = append(f.shown, f.sc.frame)

	if f.showErrOn == f.sc.frame {
		return errFault
	}

	return nil
}

func (f *fakeSurface) PollKey() (display.Key, error) {

	if k, ok := f.sc.keyOn[f.sc.frame]; ok {
		return k, nil
	}

	if _, ok := f.sc.selectOn[f.sc.frame]; ok {
		return display.KeyOf(DefaultSelectKey), nil
	}

	return display.NoKey, nil
}

func (f *fakeSurface) SelectRegion(frame gocv.Mat) (tracker.BoundingBox, error) {
	f.selects = append(f.selects, f.sc.frame)
	return f.sc.selectOn[f.sc.frame], nil
}

func (f *fakeSurface) Dismiss() error {
	f.dismissed = append(f.dismissed, f.sc.frame)
	return nil
}

// fakeTracker moves the box one pixel right on every successful update
type fakeTracker struct {
	sc        *script
	seed      tracker.BoundingBox
	last      tracker.BoundingBox
	initCalls int
	updates   []int
	closed    bool
}

func (f *fakeTracker) Init(frame gocv.Mat, box tracker.BoundingBox) error {
	f.initCalls++
	f.seed = box
	f.last = box
	return nil
}

func (f *fakeTracker) Update(frame gocv.Mat) (tracker.BoundingBox, bool, error) {

	f.updates = append(f.updates, f.sc.frame)

	if f.sc.faultOn[f.sc.frame] {
		return tracker.BoundingBox{}, false, errFault
	}

	if f.sc.failOn[f.sc.frame] {
		return tracker.BoundingBox{}, false, nil
	}

	f.last.X++

	return f.last, true, nil
}

func (f *fakeTracker) Close() error {
	f.closed = true
	return nil
}

type trackerFactory struct {
	sc   *script
	made []*fakeTracker
}

func (f *trackerFactory) New() (tracker.ObjectTracker, error) {
	t := &fakeTracker{sc: f.sc}
	f.made = append(f.made, t)
	return t, nil
}

// fakeLocator places the object at a depth equal to the frame number
type fakeLocator struct {
	sc    *script
	errOn int
}

func (f *fakeLocator) Locate(depth gocv.Mat, box tracker.BoundingBox) (r3.Vec, bool, error) {

	if f.errOn == f.sc.frame {
		return r3.Vec{}, false, errFault
	}

	return r3.Vec{Z: float64(f.sc.frame)}, true, nil
}

// fixture wires a session to the fakes
type fixture struct {
	sc       *script
	source   *fakeSource
	surface  *fakeSurface
	trackers *trackerFactory
	progress []int
	opts     Options
}

func newFixture(t *testing.T, frames int) *fixture {

	quiet(t)

	sc := newScript()

	f := &fixture{
		sc:       sc,
		source:   &fakeSource{sc: sc, frames: frames, total: frames},
		surface:  &fakeSurface{sc: sc},
		trackers: &trackerFactory{sc: sc},
		opts:     DefaultOptions(),
	}

	f.opts.Progress = func(percent int) {
		f.progress = append(f.progress, percent)
	}

	return f
}

func (f *fixture) session() *Session {
	return NewSession(f.opts, f.source, f.surface, f.trackers.New)
}

// quiet sends the package log output to the test log
func quiet(t *testing.T) {
	SetLogger(t.Logf)
	t.Cleanup(func() {
		SetLogger(log.Printf)
	})
}

func frameRange(from, to int) []int {

	frames := []int{}

	for i := from; i <= to; i++ {
		frames = append(frames, i)
	}

	return frames
}
