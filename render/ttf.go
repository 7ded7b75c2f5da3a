package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyText is returned when there is no image to draw on or the rendered
// text layer could not be converted into a Mat
var ErrEmptyText = errors.New("rendered text Mat is empty")

// TTF renders text with a TrueType font for characters the Hershey fonts
// built into OpenCV can not draw
type TTF struct {
	face font.Face
}

// LoadTTF loads the TTF font file and creates a face of the given point size
func LoadTTF(fontPath string, size float64) (*TTF, error) {

	// load font data
	fontBytes, err := os.ReadFile(fontPath)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	// parse the font
	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	// create a type face
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return &TTF{face: face}, nil
}

// Close frees the font face
func (t *TTF) Close() error {
	return t.face.Close()
}

// Width returns the advance width of text in pixels
func (t *TTF) Width(text string) int {
	return font.MeasureString(t.face, text).Ceil()
}

// PutText writes text onto the image with its baseline starting at pt
func (t *TTF) PutText(img *gocv.Mat, text string, pt image.Point, clr color.RGBA) error {

	if img.Empty() {
		return ErrEmptyText
	}

	// create transparent image and write the text on it
	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(clr),
		Face: t.face,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	dr.DrawString(text)

	// Convert image.RGBA to gocv.Mat
	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil {
		return fmt.Errorf("error creating Mat from RGBA: %w", err)
	}

	defer imgRGBA.Close()

	if imgRGBA.Empty() {
		return ErrEmptyText
	}

	textBGR := gocv.NewMat()
	defer textBGR.Close()

	gocv.CvtColor(imgRGBA, &textBGR, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, textBGR, 1.0, 0, img)

	return nil
}
