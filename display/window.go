package display

import (
	"image/color"
	"time"

	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
)

// Key is a key code read from the display, NoKey when nothing was pressed
type Key int

// NoKey is returned by PollKey when no key was pressed
const NoKey Key = -1

// DefaultDelay is the pause inserted before showing each frame so a human
// can follow the video and react in time to select a region
const DefaultDelay = 100 * time.Millisecond

// KeyOf returns the Key for a printable character
func KeyOf(r rune) Key {
	return Key(r)
}

// Surface is the interactive display a human uses to watch the video and
// select the object to track
type Surface interface {
	// Show displays the frame
	Show(frame gocv.Mat) error
	// PollKey returns the key pressed since the last poll without blocking
	PollKey() (Key, error)
	// SelectRegion asks the human to draw a box around the object on the
	// frame.  An empty box is returned if the prompt was dismissed without
	// drawing
	SelectRegion(frame gocv.Mat) (tracker.BoundingBox, error)
	// Dismiss closes any open display windows
	Dismiss() error
}

// WindowOptions are the settings for an OpenCV highgui Window
type WindowOptions struct {
	// Delay is the pause before each displayed frame
	Delay time.Duration
	// MaxWidth and MaxHeight letterbox larger frames to fit the screen.
	// Zero means no limit
	MaxWidth  int
	MaxHeight int
	// Sleep is the function used to wait, time.Sleep if nil
	Sleep func(time.Duration)
}

// Window is a Surface rendered with OpenCV highgui.  The window is created
// on first use so a Window that never shows a frame never opens one
type Window struct {
	name   string
	opts   WindowOptions
	window *gocv.Window
	// scaler is created for the first frame larger than the display limits
	scaler  *Scaler
	display gocv.Mat
}

// NewWindow returns a Window with the given title
func NewWindow(name string, opts WindowOptions) *Window {

	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	return &Window{
		name: name,
		opts: opts,
	}
}

// open creates the highgui window if not already open
func (w *Window) open() {

	if w.window != nil {
		return
	}

	w.window = gocv.NewWindow(w.name)
	w.display = gocv.NewMat()
}

// prepare returns the frame as it should be displayed, letterboxed when it is
// larger than the display limits
func (w *Window) prepare(frame gocv.Mat) gocv.Mat {

	if Fits(frame.Cols(), frame.Rows(), w.opts.MaxWidth, w.opts.MaxHeight) {
		return frame
	}

	if w.scaler == nil {
		maxW, maxH := w.opts.MaxWidth, w.opts.MaxHeight

		if maxW <= 0 {
			maxW = frame.Cols()
		}

		if maxH <= 0 {
			maxH = frame.Rows()
		}

		w.scaler = NewScaler(frame.Cols(), frame.Rows(), maxW, maxH)
	}

	w.scaler.LetterBoxResize(frame, &w.display, color.RGBA{A: 255})

	return w.display
}

// Show waits the display delay then shows the frame
func (w *Window) Show(frame gocv.Mat) error {

	w.opts.Sleep(w.opts.Delay)
	w.open()
	w.window.IMShow(w.prepare(frame))

	return nil
}

// PollKey polls highgui for a key press for 1ms
func (w *Window) PollKey() (Key, error) {

	w.open()

	k := w.window.WaitKey(1)

	if k < 0 {
		return NoKey, nil
	}

	return Key(k & 0xFF), nil
}

// SelectRegion opens the OpenCV ROI selector on the frame.  Confirm the box
// with SPACE or ENTER, cancel with C
func (w *Window) SelectRegion(frame gocv.Mat) (tracker.BoundingBox, error) {

	w.open()

	box := tracker.BoxFromRectangle(w.window.SelectROI(w.prepare(frame)))

	if box.Empty() {
		return box, nil
	}

	if w.scaler != nil && !Fits(frame.Cols(), frame.Rows(), w.opts.MaxWidth, w.opts.MaxHeight) {
		return w.scaler.ToSource(box), nil
	}

	return box.Clamp(frame.Cols(), frame.Rows()), nil
}

// Dismiss closes the window.  It is safe to call on a window that was never
// opened and to call more than once
func (w *Window) Dismiss() error {

	if w.window == nil {
		return nil
	}

	err := w.window.Close()
	w.window = nil

	w.display.Close()

	if w.scaler != nil {
		w.scaler.Close()
		w.scaler = nil
	}

	return err
}
