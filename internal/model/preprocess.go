package model

import (
	"image"

	"github.com/nfnt/resize"
)

// Preprocess resizes img to size x size and packs its RGB channels into a
// float tensor in the given layout, dividing 8-bit values by scale.
func Preprocess(img image.Image, size int, layout string, scale float32) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	inputData := make([]float32, 3*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rgb := [3]float32{
				float32(r>>8) / scale,
				float32(g>>8) / scale,
				float32(b>>8) / scale,
			}

			pixelIndex := y*width + x
			for c, v := range rgb {
				if layout == LayoutNHWC {
					inputData[pixelIndex*3+c] = v
				} else {
					inputData[c*plane+pixelIndex] = v
				}
			}
		}
	}

	return inputData
}
