package rgbdtrack

import (
	"fmt"
	"time"

	"github.com/swdee/go-rgbdtrack/config"
	"github.com/swdee/go-rgbdtrack/depth"
	"github.com/swdee/go-rgbdtrack/display"
	"github.com/swdee/go-rgbdtrack/render"
	"github.com/swdee/go-rgbdtrack/tracker"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"
)

// configuration file keys
const (
	KeyDebugMode            = "debug_mode"
	KeySelectKey            = "select_key"
	KeyDisplayDelayMS       = "display_delay_ms"
	KeyTracker              = "tracker"
	KeyImmediateReselection = "immediate_reselection"
	KeyDisplayMaxWidth      = "display_max_width"
	KeyDisplayMaxHeight     = "display_max_height"
	KeyLabelFont            = "label_font"
	KeyCaptionAlign         = "caption_align"
	KeyDepthScale           = "depth_scale"
	KeyIntrinsics           = "intrinsics"
	KeyDepthInset           = "depth_inset"
	KeyDepthPath            = "depth_path"
)

// defaults for optional configuration
const (
	DefaultSelectKey  = 's'
	DefaultDepthInset = 2.0
	captionFontSize   = 16
)

// Locator lifts a tracked box into a 3D point using the aligned depth frame
type Locator interface {
	Locate(depth gocv.Mat, box tracker.BoundingBox) (r3.Vec, bool, error)
}

// Options is the immutable configuration of a tracking session
type Options struct {
	// Debug renders the tracked box while tracking
	Debug bool
	// SelectKey opens region selection while awaiting a selection
	SelectKey display.Key
	// ImmediateReselection opens region selection on the first frame after
	// the tracker lost the object without waiting for SelectKey
	ImmediateReselection bool
	// DisplayDelay is the pause before every displayed frame
	DisplayDelay time.Duration
	// DisplayMaxWidth and DisplayMaxHeight limit the displayed frame size
	DisplayMaxWidth  int
	DisplayMaxHeight int
	// TrackerAlgorithm names the OpenCV tracker to use
	TrackerAlgorithm string
	// DepthPath is the aligned depth stream, empty for none
	DepthPath string
	// Locator computes 3D positions, nil disables them
	Locator Locator
	// Overlay draws debug annotations, only set in debug mode
	Overlay *render.Overlay
	// Progress receives completion percentages, nil logs them
	Progress ProgressFunc
}

// DefaultOptions returns the options used for keys missing from the
// configuration
func DefaultOptions() Options {
	return Options{
		SelectKey:        display.KeyOf(DefaultSelectKey),
		DisplayDelay:     display.DefaultDelay,
		TrackerAlgorithm: tracker.CSRT,
	}
}

// LoadOptions reads the session options from the configuration.  Only
// debug_mode is required
func LoadOptions(store *config.Store) (Options, error) {

	opts := DefaultOptions()

	var err error
	opts.Debug, err = store.GetBool(KeyDebugMode)

	if err != nil {
		return opts, err
	}

	key, found, err := store.LookupString(KeySelectKey)

	if err != nil {
		return opts, err
	}

	if found {
		runes := []rune(key)

		if len(runes) != 1 {
			return opts, fmt.Errorf("%w: %s must be a single character, got %q",
				config.ErrConfig, KeySelectKey, key)
		}

		opts.SelectKey = display.KeyOf(runes[0])
	}

	delay, found, err := store.LookupInt(KeyDisplayDelayMS)

	if err != nil {
		return opts, err
	}

	if found {
		if delay < 0 {
			return opts, fmt.Errorf("%w: %s must not be negative", config.ErrConfig, KeyDisplayDelayMS)
		}

		opts.DisplayDelay = time.Duration(delay) * time.Millisecond
	}

	algorithm, found, err := store.LookupString(KeyTracker)

	if err != nil {
		return opts, err
	}

	if found {
		if _, err := tracker.NewFactory(algorithm); err != nil {
			return opts, fmt.Errorf("%w: %v", config.ErrConfig, err)
		}

		opts.TrackerAlgorithm = algorithm
	}

	if opts.ImmediateReselection, _, err = store.LookupBool(KeyImmediateReselection); err != nil {
		return opts, err
	}

	if opts.DisplayMaxWidth, _, err = store.LookupInt(KeyDisplayMaxWidth); err != nil {
		return opts, err
	}

	if opts.DisplayMaxHeight, _, err = store.LookupInt(KeyDisplayMaxHeight); err != nil {
		return opts, err
	}

	if opts.DepthPath, _, err = store.LookupString(KeyDepthPath); err != nil {
		return opts, err
	}

	if opts.Locator, err = loadLocator(store); err != nil {
		return opts, err
	}

	if opts.Debug {
		if opts.Overlay, err = loadOverlay(store); err != nil {
			return opts, err
		}
	}

	return opts, nil
}

// loadLocator builds the depth deprojector when a depth scale is configured
func loadLocator(store *config.Store) (Locator, error) {

	scale, found, err := store.LookupFloat(KeyDepthScale)

	if err != nil || !found {
		return nil, err
	}

	section, err := store.Section(KeyIntrinsics)

	if err != nil {
		return nil, err
	}

	var intr depth.Intrinsics

	for _, f := range []struct {
		key string
		val *float64
	}{
		{"fx", &intr.Fx},
		{"fy", &intr.Fy},
		{"cx", &intr.Cx},
		{"cy", &intr.Cy},
	} {
		if *f.val, err = section.GetFloat(f.key); err != nil {
			return nil, fmt.Errorf("%s: %w", KeyIntrinsics, err)
		}
	}

	inset, found, err := store.LookupFloat(KeyDepthInset)

	if err != nil {
		return nil, err
	}

	if !found {
		inset = DefaultDepthInset
	}

	d, err := depth.NewDeprojector(intr, scale, inset)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}

	return d, nil
}

// loadOverlay creates the debug overlay with the optional caption font
func loadOverlay(store *config.Store) (*render.Overlay, error) {

	overlay := render.NewOverlay()

	align, found, err := store.LookupString(KeyCaptionAlign)

	if err != nil {
		return nil, err
	}

	if found {
		if overlay.CaptionAlignment, err = render.ParseAlignment(align); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", config.ErrConfig, KeyCaptionAlign, err)
		}
	}

	fontPath, found, err := store.LookupString(KeyLabelFont)

	if err != nil {
		return nil, err
	}

	if found && fontPath != "" {
		ttf, err := render.LoadTTF(fontPath, captionFontSize)

		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", config.ErrConfig, KeyLabelFont, err)
		}

		overlay.TTF = ttf
	}

	return overlay, nil
}

// Close frees resources held by the options
func (o Options) Close() error {

	if o.Overlay != nil && o.Overlay.TTF != nil {
		return o.Overlay.TTF.Close()
	}

	return nil
}
