package core

import (
	"image"
	"math"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

const (
	sharpnessWeight = 0.6
	exposureWeight  = 0.4

	// Half-saturation point for edge energy: a frame whose mean
	// Laplacian magnitude reaches this value scores 0.5 on sharpness.
	edgeEnergyScale = 12.0
)

// ScoreFrame computes a scalar quality score in [0, 1], higher is better.
// It combines a sharpness proxy (Laplacian edge energy) and an exposure
// proxy (luminance spread). Both terms are monotonic: sharper and
// better-exposed frames never score lower.
func ScoreFrame(f entity.Frame) float64 {
	if f.Image == nil {
		return 0
	}
	lum := luminancePlane(f.Image)
	if len(lum) < 3 || len(lum[0]) < 3 {
		return 0
	}

	sharp := edgeEnergy(lum)
	exposure := luminanceSpread(lum)

	score := sharpnessWeight*sharp + exposureWeight*exposure
	return math.Min(1, math.Max(0, score))
}

// luminancePlane extracts an 8-bit luma plane, downsampled so the longer
// side is at most 256 pixels to keep scoring cheap on large frames.
func luminancePlane(img image.Image) [][]float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	stride := 1
	if longer := max(w, h); longer > 256 {
		stride = longer / 256
	}

	rows := h / stride
	cols := w / stride
	plane := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		row := make([]float64, cols)
		for x := 0; x < cols; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x*stride, bounds.Min.Y+y*stride).RGBA()
			// 16-bit channels down to 8-bit luma
			row[x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
		plane[y] = row
	}
	return plane
}

// edgeEnergy is the mean absolute 4-neighbour Laplacian, squashed into
// [0, 1) so the score stays comparable across resolutions.
func edgeEnergy(lum [][]float64) float64 {
	rows, cols := len(lum), len(lum[0])
	var sum float64
	var n int
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			lap := 4*lum[y][x] - lum[y-1][x] - lum[y+1][x] - lum[y][x-1] - lum[y][x+1]
			sum += math.Abs(lap)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return mean / (mean + edgeEnergyScale)
}

// luminanceSpread is the standard deviation of the luma plane normalized
// by the maximum possible spread (127.5 for an 8-bit plane).
func luminanceSpread(lum [][]float64) float64 {
	var sum float64
	var n int
	for _, row := range lum {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)

	var variance float64
	for _, row := range lum {
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
	}
	variance /= float64(n)

	spread := math.Sqrt(variance) / 127.5
	return math.Min(1, spread)
}
