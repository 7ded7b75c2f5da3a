package rgbdtrack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-rgbdtrack/display"
	"github.com/swdee/go-rgbdtrack/render"
	"github.com/swdee/go-rgbdtrack/tracker"
	"gonum.org/v1/gonum/spatial/r3"
)

var seedBox = tracker.NewBoundingBox(10, 10, 20, 20)

func TestSessionTracksAfterInitialSelection(t *testing.T) {

	f := newFixture(t, 10)
	f.sc.selectOn[1] = seedBox

	s := f.session()
	positions, err := s.Run()
	require.NoError(t, err)

	assert.Len(t, positions, 9)
	assert.Equal(t, frameRange(2, 10), positions.Frames())
	assert.Equal(t, Tracking, s.State())
	assert.Equal(t, 10, s.Frames())

	// boxes come from the tracker unchanged
	for i, p := range positions {
		assert.Equal(t, tracker.NewBoundingBox(11+i, 10, 20, 20), p.Box)
		assert.False(t, p.HasPoint)
	}

	// only the selection frame is displayed outside debug mode
	assert.Equal(t, []int{1}, f.surface.shown)
	assert.Equal(t, []int{1}, f.surface.selects)

	require.Len(t, f.trackers.made, 1)
	assert.Equal(t, 1, f.trackers.made[0].initCalls)
	assert.Equal(t, seedBox, f.trackers.made[0].seed)
	assert.True(t, f.trackers.made[0].closed)

	// the window closes once the object is selected and again at the end
	assert.Equal(t, []int{1, 10}, f.surface.dismissed)
}

func TestSessionReselectionAfterFailure(t *testing.T) {

	f := newFixture(t, 10)
	f.sc.selectOn[1] = seedBox
	f.sc.failOn[5] = true

	reselected := tracker.NewBoundingBox(100, 50, 10, 10)
	f.sc.selectOn[6] = reselected

	s := f.session()
	positions, err := s.Run()
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 4, 7, 8, 9, 10}, positions.Frames())
	assert.Equal(t, Tracking, s.State())
	assert.Equal(t, []int{1, 6}, f.surface.shown)

	require.Len(t, f.trackers.made, 2)
	first, second := f.trackers.made[0], f.trackers.made[1]

	// the lost tracker is discarded and a fresh one initialized
	assert.True(t, first.closed)
	assert.Equal(t, []int{2, 3, 4, 5}, first.updates)
	assert.Equal(t, 1, second.initCalls)
	assert.Equal(t, reselected, second.seed)
	assert.Equal(t, []int{7, 8, 9, 10}, second.updates)
	assert.True(t, second.closed)
	assert.Equal(t, []int{1, 6, 10}, f.surface.dismissed)

	// no state carried over from the first tracker
	assert.Equal(t, tracker.NewBoundingBox(101, 50, 10, 10), positions[3].Box)
}

func TestSessionWithoutSelection(t *testing.T) {

	tests := []struct {
		name string
		prep func(sc *script)
	}{
		{
			name: "no keys",
			prep: func(sc *script) {},
		},
		{
			name: "other keys",
			prep: func(sc *script) {
				sc.keyOn[2] = display.KeyOf('q')
				sc.keyOn[5] = display.KeyOf('x')
				sc.keyOn[9] = 27
			},
		},
		{
			name: "abandoned selections",
			prep: func(sc *script) {
				sc.selectOn[3] = tracker.BoundingBox{}
				sc.selectOn[4] = tracker.BoundingBox{}
				sc.selectOn[8] = tracker.BoundingBox{}
			},
		},
		{
			name: "degenerate selection",
			prep: func(sc *script) {
				sc.selectOn[1] = tracker.BoundingBox{X: 5, Y: 5}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			f := newFixture(t, 10)
			tt.prep(f.sc)

			s := f.session()
			positions, err := s.Run()
			require.NoError(t, err)

			assert.NotNil(t, positions)
			assert.Empty(t, positions)
			assert.Equal(t, AwaitingInitialSelection, s.State())
			assert.Empty(t, f.trackers.made)
			assert.Equal(t, frameRange(1, 10), f.surface.shown)
			assert.Equal(t, []int{10}, f.surface.dismissed)
		})
	}
}

func TestSessionFailureMovesToReselection(t *testing.T) {

	for failAt := 2; failAt <= 9; failAt++ {

		f := newFixture(t, 10)
		f.sc.selectOn[1] = seedBox
		f.sc.failOn[failAt] = true

		s := f.session()
		positions, err := s.Run()
		require.NoError(t, err)

		assert.Equal(t, frameRange(2, failAt-1), positions.Frames(), "fail at %d", failAt)
		assert.Equal(t, AwaitingReselection, s.State())

		// every frame after the failure is displayed for selection and never
		// reaches the tracker
		assert.Equal(t, frameRange(2, failAt), f.trackers.made[0].updates)
		assert.Equal(t, append([]int{1}, frameRange(failAt+1, 10)...), f.surface.shown)
	}
}

func TestSessionImmediateReselection(t *testing.T) {

	prep := func(f *fixture) {
		f.sc.selectOn[1] = seedBox
		f.sc.failOn[5] = true
		f.sc.keyOn[6] = display.NoKey
		f.sc.selectOn[6] = tracker.NewBoundingBox(40, 40, 10, 10)
	}

	f := newFixture(t, 10)
	prep(f)
	f.opts.ImmediateReselection = true

	positions, err := f.session().Run()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 7, 8, 9, 10}, positions.Frames())
	assert.Equal(t, []int{1, 6}, f.surface.selects)

	// without the option the select key is required
	f = newFixture(t, 10)
	prep(f)

	s := f.session()
	positions, err = s.Run()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, positions.Frames())
	assert.Equal(t, []int{1}, f.surface.selects)
	assert.Equal(t, AwaitingReselection, s.State())
}

func TestSessionCustomSelectKey(t *testing.T) {

	f := newFixture(t, 5)
	f.opts.SelectKey = display.KeyOf('t')
	f.sc.selectOn[1] = seedBox
	f.sc.keyOn[3] = display.KeyOf('t')
	f.sc.selectOn[3] = seedBox

	positions, err := f.session().Run()
	require.NoError(t, err)

	// 's' on frame 1 is ignored
	assert.Equal(t, []int{4, 5}, positions.Frames())
	assert.Equal(t, []int{3}, f.surface.selects)
}

func TestSessionProgressInEveryState(t *testing.T) {

	want := []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	f := newFixture(t, 10)
	_, err := f.session().Run()
	require.NoError(t, err)
	assert.Equal(t, want, f.progress)

	f = newFixture(t, 7)
	f.sc.selectOn[2] = seedBox
	f.sc.failOn[4] = true
	_, err = f.session().Run()
	require.NoError(t, err)
	assert.Equal(t, want, f.progress)
}

func TestSessionEmptySource(t *testing.T) {

	f := newFixture(t, 0)

	s := f.session()
	positions, err := s.Run()
	require.NoError(t, err)

	assert.Empty(t, positions)
	assert.Empty(t, f.progress)
	assert.Empty(t, f.surface.shown)
	assert.Empty(t, f.trackers.made)
	assert.Equal(t, []int{0}, f.surface.dismissed)
}

func TestSessionFaults(t *testing.T) {

	tests := []struct {
		name      string
		prep      func(f *fixture)
		frame     int
		state     State
		nextCalls int
	}{
		{
			name: "tracker fault",
			prep: func(f *fixture) {
				f.sc.selectOn[1] = seedBox
				f.sc.faultOn[4] = true
			},
			frame:     4,
			state:     Tracking,
			nextCalls: 4,
		},
		{
			name: "source decode error",
			prep: func(f *fixture) {
				f.sc.selectOn[1] = seedBox
				f.source.errOn = 3
			},
			frame:     2,
			state:     Tracking,
			nextCalls: 3,
		},
		{
			name: "display error",
			prep: func(f *fixture) {
				f.surface.showErrOn = 2
			},
			frame:     2,
			state:     AwaitingInitialSelection,
			nextCalls: 2,
		},
		{
			name: "display error during reselection",
			prep: func(f *fixture) {
				f.sc.selectOn[1] = seedBox
				f.sc.failOn[3] = true
				f.surface.showErrOn = 5
			},
			frame:     5,
			state:     AwaitingReselection,
			nextCalls: 5,
		},
		{
			name: "depth fault",
			prep: func(f *fixture) {
				f.sc.selectOn[1] = seedBox
				f.source.depth = true
				f.opts.Locator = &fakeLocator{sc: f.sc, errOn: 6}
			},
			frame:     6,
			state:     Tracking,
			nextCalls: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			f := newFixture(t, 10)
			tt.prep(f)

			s := f.session()
			positions, err := s.Run()

			// partial results are discarded
			assert.Nil(t, positions)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAborted)
			assert.ErrorIs(t, err, errFault)

			var ferr *FaultError
			require.True(t, errors.As(err, &ferr))
			assert.Equal(t, tt.frame, ferr.Frame)
			assert.Equal(t, tt.state, ferr.State)

			assert.Equal(t, Aborted, s.State())
			assert.Equal(t, tt.nextCalls, f.source.nextCalls)
			require.NotEmpty(t, f.surface.dismissed)
			assert.Equal(t, tt.frame, f.surface.dismissed[len(f.surface.dismissed)-1])

			for _, tr := range f.trackers.made {
				assert.True(t, tr.closed)
			}
		})
	}
}

func TestSessionDepthPositions(t *testing.T) {

	f := newFixture(t, 4)
	f.sc.selectOn[1] = seedBox
	f.source.depth = true
	f.opts.Locator = &fakeLocator{sc: f.sc}

	positions, err := f.session().Run()
	require.NoError(t, err)

	want := ObjectPositions{
		{Frame: 2, Box: tracker.NewBoundingBox(11, 10, 20, 20), Point: r3.Vec{Z: 2}, HasPoint: true},
		{Frame: 3, Box: tracker.NewBoundingBox(12, 10, 20, 20), Point: r3.Vec{Z: 3}, HasPoint: true},
		{Frame: 4, Box: tracker.NewBoundingBox(13, 10, 20, 20), Point: r3.Vec{Z: 4}, HasPoint: true},
	}

	if diff := cmp.Diff(want, positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "frame 2: x=11 y=10 w=20 h=20 point=(0.000, 0.000, 2.000)", positions[0].String())

	// frames without depth produce positions without a point
	f = newFixture(t, 4)
	f.sc.selectOn[1] = seedBox
	f.opts.Locator = &fakeLocator{sc: f.sc}

	positions, err = f.session().Run()
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.False(t, positions[0].HasPoint)
	assert.Equal(t, "frame 2: x=11 y=10 w=20 h=20", positions[0].String())
}

func TestSessionDebugDisplaysTrackedFrames(t *testing.T) {

	f := newFixture(t, 8)
	f.source.sized = true
	f.opts.Debug = true
	f.opts.Overlay = render.NewOverlay()
	f.sc.selectOn[1] = seedBox
	f.sc.failOn[4] = true
	f.sc.selectOn[6] = seedBox

	positions, err := f.session().Run()
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 7, 8}, positions.Frames())

	// frame 4 lost the object and is not displayed
	assert.Equal(t, []int{1, 2, 3, 5, 6, 7, 8}, f.surface.shown)

	// the window stays open between selections in debug mode
	assert.Equal(t, []int{8}, f.surface.dismissed)
}
