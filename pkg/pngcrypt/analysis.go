package pngcrypt

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
)

// AnalyzeArgs configures Analyze.
type AnalyzeArgs struct {
	OriginalPath  *string
	EncryptedPath *string
	// HeatmapPath, when set, receives an image marking changed pixels.
	HeatmapPath *string
}

// AnalysisResult holds metrics about the comparison between two images.
type AnalysisResult struct {
	Width, Height  int
	ModifiedPixels int
	MSE            float64 // Mean Squared Error
	PSNR           float64 // Peak Signal-to-Noise Ratio (dB)
}

// Identical reports whether both images decoded to the same pixels.
func (r *AnalysisResult) Identical() bool {
	return r.ModifiedPixels == 0
}

// Analyze decodes both images and compares their pixels. An encrypted file
// that fails to decode here is not a renderable PNG.
func Analyze(args *AnalyzeArgs) (*AnalysisResult, error) {
	img1, err := loadImage(deref(args.OriginalPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load original: %w", err)
	}
	img2, err := loadImage(deref(args.EncryptedPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load encrypted image: %w", err)
	}

	bounds := img1.Bounds()
	if bounds != img2.Bounds() {
		return nil, fmt.Errorf("image dimensions do not match: %v vs %v", bounds, img2.Bounds())
	}

	width, height := bounds.Dx(), bounds.Dy()
	result := &AnalysisResult{Width: width, Height: height}

	var heatmap *image.NRGBA
	heatmapPath := deref(args.HeatmapPath)
	if heatmapPath != "" {
		heatmap = image.NewNRGBA(bounds)
	}

	var sumSquaredError float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p1 := img1.PixOffset(x, y)
			p2 := img2.PixOffset(x, y)

			var diffSum float64
			isModified := false
			for i := 0; i < 4; i++ {
				v1, v2 := img1.Pix[p1+i], img2.Pix[p2+i]
				if v1 != v2 {
					isModified = true
				}
				// MSE over R, G, B only
				if i < 3 {
					diff := float64(v1) - float64(v2)
					sumSquaredError += diff * diff
					diffSum += math.Abs(diff)
				}
			}

			if isModified {
				result.ModifiedPixels++
			}
			if heatmap != nil {
				if isModified {
					intensity := uint8(math.Min(255, diffSum*50))
					heatmap.Set(x, y, color.NRGBA{R: intensity, G: 255 - intensity, B: 0, A: 255})
				} else {
					heatmap.Set(x, y, color.NRGBA{A: 255})
				}
			}
		}
	}

	totalPixels := float64(width * height)
	if totalPixels > 0 {
		result.MSE = sumSquaredError / (totalPixels * 3.0)
	}
	result.PSNR = 10 * math.Log10((255*255)/result.MSE)

	if heatmap != nil {
		if err := savePNG(heatmapPath, heatmap); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func loadImage(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioErr("open", path, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

func savePNG(path string, img image.Image) error {
	return withOutputFile(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}
