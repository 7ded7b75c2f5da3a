package rgbdtrack

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/swdee/go-rgbdtrack/display"
	"github.com/swdee/go-rgbdtrack/framesource"
	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
)

// trailSize is the number of past centre points drawn in debug mode
const trailSize = 60

// Session runs the tracking state machine over the frames of one video
type Session struct {
	id         string
	opts       Options
	source     framesource.Source
	surface    display.Surface
	newTracker tracker.Factory
	// tracker is the active tracker instance, nil until the first selection
	tracker   tracker.ObjectTracker
	state     State
	frames    int
	total     int
	progress  *progress
	positions ObjectPositions
	predictor *tracker.Predictor
	trail     *tracker.Trail
	// hint is the last predicted box shown while awaiting reselection
	hint tracker.BoundingBox
}

// NewSession returns a Session reading frames from source, interacting with
// the human through surface and creating trackers with newTracker.  The
// session owns the surface and the trackers it creates, the caller keeps
// ownership of the source
func NewSession(opts Options, source framesource.Source, surface display.Surface,
	newTracker tracker.Factory) *Session {

	s := &Session{
		id:         uuid.New().String()[:8],
		opts:       opts,
		source:     source,
		surface:    surface,
		newTracker: newTracker,
		state:      AwaitingInitialSelection,
		positions:  ObjectPositions{},
		predictor:  tracker.NewPredictor(),
		trail:      tracker.NewTrail(trailSize),
	}

	report := opts.Progress

	if report == nil {
		report = func(percent int) {
			Logf("[%s] completion percentage : %d %%", s.id, percent)
		}
	}

	s.total = source.TotalFrames()
	s.progress = newProgress(s.total, report)

	return s
}

// ID returns the run id used to prefix the session log messages
func (s *Session) ID() string {
	return s.id
}

// State returns the current state of the session
func (s *Session) State() State {
	return s.state
}

// Frames returns the number of frames retrieved so far
func (s *Session) Frames() int {
	return s.frames
}

// Run processes every frame of the source and returns the positions of the
// object in the frames it was tracked in.  If an unexpected fault occurs the
// session is aborted, no positions are returned and the error is a
// *FaultError
func (s *Session) Run() (positions ObjectPositions, err error) {

	defer func() {
		if rerr := s.release(); rerr != nil {
			if err != nil {
				err = errors.Join(err, rerr)
				return
			}

			Logf("[%s] error releasing session resources: %v", s.id, rerr)
		}
	}()

	for {
		pair, err := s.source.Next()

		if errors.Is(err, framesource.ErrEndOfStream) {
			break
		}

		if err != nil {
			return nil, s.abort(fmt.Errorf("error reading frame: %w", err))
		}

		s.frames++

		err = s.step(pair)
		pair.Close()

		if err != nil {
			return nil, s.abort(err)
		}

		s.progress.update(s.frames)
	}

	Logf("[%s] video finished after %d frames, object tracked in %d",
		s.id, s.frames, len(s.positions))

	return s.positions, nil
}

// step processes one frame in the current state
func (s *Session) step(pair framesource.FramePair) error {

	if s.state.selecting() {
		return s.awaitSelection(pair)
	}

	return s.track(pair)
}

// awaitSelection shows the frame and initializes a tracker once the human has
// selected the object
func (s *Session) awaitSelection(pair framesource.FramePair) error {

	shown := pair.Color

	if s.opts.Overlay != nil {
		hint := pair.Color.Clone()
		defer hint.Close()

		if s.state == AwaitingReselection {
			if box, ok := s.predictor.Predict(); ok {
				s.opts.Overlay.Predicted(&hint, box)
				s.hint = box
			}
		}

		if err := s.opts.Overlay.Caption(&hint, s.frames, s.total, s.state.String()); err != nil {
			return fmt.Errorf("error drawing caption: %w", err)
		}

		shown = hint
	}

	if err := s.surface.Show(shown); err != nil {
		return fmt.Errorf("error showing frame: %w", err)
	}

	key, err := s.surface.PollKey()

	if err != nil {
		return fmt.Errorf("error polling key: %w", err)
	}

	immediate := s.state == AwaitingReselection && s.opts.ImmediateReselection

	if key != s.opts.SelectKey && !immediate {
		return nil
	}

	box, err := s.surface.SelectRegion(shown)

	if err != nil {
		return fmt.Errorf("error selecting region: %w", err)
	}

	if !box.Valid() {
		Logf("[%s] frame %d: no region selected", s.id, s.frames)
		return nil
	}

	return s.startTracking(pair.Color, box)
}

// startTracking replaces any previous tracker with a fresh instance seeded
// with box
func (s *Session) startTracking(frame gocv.Mat, box tracker.BoundingBox) error {

	if s.tracker != nil {
		err := s.tracker.Close()
		s.tracker = nil

		if err != nil {
			return fmt.Errorf("error closing tracker: %w", err)
		}
	}

	t, err := s.newTracker()

	if err != nil {
		return fmt.Errorf("error creating tracker: %w", err)
	}

	s.tracker = t

	if err := t.Init(frame, box); err != nil {
		return fmt.Errorf("error initializing tracker: %w", err)
	}

	if !s.hint.Empty() {
		Logf("[%s] frame %d: selected region overlaps the predicted location by %.2f IoU",
			s.id, s.frames, box.CalcIoU(s.hint))
		s.hint = tracker.BoundingBox{}
	}

	s.predictor.Reset()
	s.trail.Reset()
	s.observe(box)

	Logf("[%s] frame %d: tracking object at %v", s.id, s.frames, box.Rectangle())

	// frames are only displayed while tracking in debug mode
	if s.opts.Overlay == nil {
		if err := s.surface.Dismiss(); err != nil {
			return fmt.Errorf("error dismissing display: %w", err)
		}
	}

	s.state = Tracking

	return nil
}

// track follows the object into the frame
func (s *Session) track(pair framesource.FramePair) error {

	box, ok, err := s.tracker.Update(pair.Color)

	if err != nil {
		return fmt.Errorf("error updating tracker: %w", err)
	}

	if !ok {
		Logf("[%s] frame %d: tracking failed, select the object again", s.id, s.frames)
		s.state = AwaitingReselection
		return nil
	}

	pos := ObjectPosition{
		Frame: s.frames,
		Box:   box,
	}

	if s.opts.Locator != nil && pair.HasDepth() {
		pos.Point, pos.HasPoint, err = s.opts.Locator.Locate(pair.Depth, box)

		if err != nil {
			return fmt.Errorf("error locating object in depth frame: %w", err)
		}
	}

	s.positions = append(s.positions, pos)
	s.observe(box)

	if s.opts.Overlay == nil {
		return nil
	}

	s.opts.Overlay.Tracked(&pair.Color, box, s.trail)

	if err := s.opts.Overlay.Caption(&pair.Color, s.frames, s.total, s.state.String()); err != nil {
		return fmt.Errorf("error drawing caption: %w", err)
	}

	if err := s.surface.Show(pair.Color); err != nil {
		return fmt.Errorf("error showing frame: %w", err)
	}

	if _, err := s.surface.PollKey(); err != nil {
		return fmt.Errorf("error polling key: %w", err)
	}

	return nil
}

// observe feeds the box to the motion predictor and trail
func (s *Session) observe(box tracker.BoundingBox) {

	s.trail.Add(box)

	if err := s.predictor.Observe(box); err != nil {
		Logf("[%s] frame %d: resetting motion prediction: %v", s.id, s.frames, err)
		s.predictor.Reset()
	}
}

// abort moves the session into the Aborted state
func (s *Session) abort(err error) error {

	ferr := &FaultError{
		Frame: s.frames,
		State: s.state,
		Err:   err,
	}

	s.state = Aborted

	Logf("[%s] %v", s.id, ferr)

	return ferr
}

// release closes the active tracker and dismisses the surface
func (s *Session) release() error {

	var errs []error

	if s.tracker != nil {
		if err := s.tracker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing tracker: %w", err))
		}

		s.tracker = nil
	}

	if err := s.surface.Dismiss(); err != nil {
		errs = append(errs, fmt.Errorf("error dismissing display: %w", err))
	}

	return errors.Join(errs...)
}
