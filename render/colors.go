package render

import "image/color"

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	// Green is the box color used for the tracked object
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	// Orange is the box color used for the predicted location of a lost
	// object
	Orange = color.RGBA{R: 255, G: 128, B: 0, A: 255}
)
