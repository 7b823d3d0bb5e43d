package pngcrypt

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestAnalyzeEncryptedIsIdentical(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	writeTestPNG(t, origPath, 40, 30)

	encPath, err := EncryptFile(&EncryptArgs{ImagePath: &origPath, Input: StaticInput{Message: []byte("pixels untouched"), Passphrase: "pw"}})
	if err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}

	result, err := Analyze(&AnalyzeArgs{OriginalPath: &origPath, EncryptedPath: &encPath})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !result.Identical() || result.MSE != 0 {
		t.Errorf("expected identical pixels, got %d modified, MSE %f", result.ModifiedPixels, result.MSE)
	}
	if !math.IsInf(result.PSNR, 1) {
		t.Errorf("Expected PSNR +Inf for identical images, got %f", result.PSNR)
	}
	if result.Width != 40 || result.Height != 30 {
		t.Errorf("dimensions = %dx%d; want 40x30", result.Width, result.Height)
	}
}

func TestAnalyzeMetrics(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	otherPath := filepath.Join(tmpDir, "other.png")
	heatmapPath := filepath.Join(tmpDir, "heatmap.png")

	img1 := opaqueImage(10, 10)
	saveImage(t, origPath, img1)

	// Change 1 pixel in 1 channel by a value of 10.
	// MSE = (10^2) / (100 * 3) = 0.333...
	img2 := opaqueImage(10, 10)
	img2.Set(0, 0, color.NRGBA{R: 10, G: 0, B: 0, A: 255})
	saveImage(t, otherPath, img2)

	result, err := Analyze(&AnalyzeArgs{OriginalPath: &origPath, EncryptedPath: &otherPath, HeatmapPath: &heatmapPath})
	if err != nil {
		t.Fatalf("Analyze failed for modified image: %v", err)
	}

	expectedMSE := 100.0 / 300.0
	if math.Abs(result.MSE-expectedMSE) > 0.0001 {
		t.Errorf("MSE calculation incorrect. Got %f, want %f", result.MSE, expectedMSE)
	}
	expectedPSNR := 10 * math.Log10((255*255)/expectedMSE)
	if math.Abs(result.PSNR-expectedPSNR) > 0.0001 {
		t.Errorf("PSNR calculation incorrect. Got %f, want %f", result.PSNR, expectedPSNR)
	}
	if result.ModifiedPixels != 1 {
		t.Errorf("ModifiedPixels = %d; want 1", result.ModifiedPixels)
	}
	if _, err := os.Stat(heatmapPath); os.IsNotExist(err) {
		t.Error("Heatmap file was not created")
	}
}

func TestAnalyzeRejectsNonPNG(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	badPath := filepath.Join(tmpDir, "bad.png")
	writeTestPNG(t, origPath, 4, 4)
	os.WriteFile(badPath, []byte("not a png"), 0644)

	_, err := Analyze(&AnalyzeArgs{OriginalPath: &origPath, EncryptedPath: &badPath})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func opaqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func saveImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode png to %s: %v", path, err)
	}
}
