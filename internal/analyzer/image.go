package analyzer

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// sampleSize is the edge of the square thumbnail the average is taken over.
const sampleSize = 100

// Message keys returned by ColorClassifier.
const (
	ImageGreen = "analysis.image_result_green"
	ImageMuddy = "analysis.image_result_muddy"
	ImageClear = "analysis.image_result_clear"
)

// ColorClassifier guesses water condition from the photo's mean colour.
// It is a heuristic, not a trained model.
type ColorClassifier struct{}

func (ColorClassifier) Classify(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	r, g, b := MeanRGB(img)
	return ClassifyColor(r, g, b), nil
}

// MeanRGB scales img to sampleSize×sampleSize and returns the average
// red, green and blue channels in the 0..255 range.
func MeanRGB(img image.Image) (r, g, b float64) {
	thumb := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sr, sg, sb float64
	pix := thumb.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		sr += float64(pix[i])
		sg += float64(pix[i+1])
		sb += float64(pix[i+2])
	}

	n := float64(sampleSize * sampleSize)
	return sr / n, sg / n, sb / n
}

// ClassifyColor maps an average colour to a message key.
func ClassifyColor(r, g, b float64) string {
	// Green dominant and clearly above blue: algae.
	if g > r && g > b && g > 50 && g-b > 10 {
		return ImageGreen
	}
	// Red and green above blue with earthy balance: muddy water.
	if r > b && g > b && r > 50 && math.Abs(r-g) < 30 && r-b > 20 {
		return ImageMuddy
	}
	return ImageClear
}
