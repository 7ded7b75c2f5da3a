package rgbdtrack

import (
	"github.com/swdee/go-rgbdtrack/config"
	"github.com/swdee/go-rgbdtrack/display"
	"github.com/swdee/go-rgbdtrack/framesource"
	"github.com/swdee/go-rgbdtrack/tracker"
)

// windowName is the title of the display window
const windowName = "rgbdtrack"

// Launcher builds the components of a tracking session.  The factories can
// be replaced to run a session on other sources, displays or trackers
type Launcher struct {
	// OpenSource opens the colour video and optional aligned depth stream
	OpenSource func(videoPath, depthPath string) (framesource.Source, error)
	// NewSurface creates the display used to interact with the human
	NewSurface func(opts Options) display.Surface
	// NewTracker returns the factory creating tracker instances
	NewTracker func(opts Options) (tracker.Factory, error)
	// DepthPath overrides the depth_path configuration key when set
	DepthPath string
	// Progress overrides the progress reporter when set
	Progress ProgressFunc
}

// DefaultLauncher returns a Launcher using OpenCV for video, display and
// tracking
func DefaultLauncher() *Launcher {
	return &Launcher{
		OpenSource: func(videoPath, depthPath string) (framesource.Source, error) {
			return framesource.Open(videoPath, depthPath)
		},
		NewSurface: func(opts Options) display.Surface {
			return display.NewWindow(windowName, display.WindowOptions{
				Delay:     opts.DisplayDelay,
				MaxWidth:  opts.DisplayMaxWidth,
				MaxHeight: opts.DisplayMaxHeight,
			})
		},
		NewTracker: func(opts Options) (tracker.Factory, error) {
			return tracker.NewFactory(opts.TrackerAlgorithm)
		},
	}
}

// Launch loads the configuration and tracks the object through the video.
// Configuration errors are returned before any frame is read.  A video that
// can not be opened yields an empty result
func (l *Launcher) Launch(configPath, videoPath string) (ObjectPositions, error) {

	store, err := config.Load(configPath)

	if err != nil {
		return nil, err
	}

	opts, err := LoadOptions(store)

	if err != nil {
		return nil, err
	}

	defer opts.Close()

	if l.DepthPath != "" {
		opts.DepthPath = l.DepthPath
	}

	if l.Progress != nil {
		opts.Progress = l.Progress
	}

	source, err := l.OpenSource(videoPath, opts.DepthPath)

	if err != nil {
		Logf("video source unavailable, nothing to track: %v", err)
		return ObjectPositions{}, nil
	}

	defer source.Close()

	newTracker, err := l.NewTracker(opts)

	if err != nil {
		return nil, err
	}

	session := NewSession(opts, source, l.NewSurface(opts), newTracker)

	Logf("[%s] tracking %s (%d frames, debug=%v)", session.ID(), videoPath,
		source.TotalFrames(), opts.Debug)

	return session.Run()
}

// LaunchTracking tracks an object through the video at videoPath using the
// configuration file at configPath
func LaunchTracking(configPath, videoPath string) (ObjectPositions, error) {
	return DefaultLauncher().Launch(configPath, videoPath)
}
