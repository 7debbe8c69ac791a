package core

import (
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

const histogramBins = 32

// SegmenterConfig tunes boundary detection.
type SegmenterConfig struct {
	// MinSceneDuration merges boundaries closer than this, preventing
	// over-segmentation on noisy video.
	MinSceneDuration float64
	// Window is how many recent dissimilarity values feed the adaptive
	// threshold.
	Window int
	// Sensitivity is the stddev multiplier above the rolling mean at
	// which a boundary is declared. Lower means more boundaries.
	Sensitivity float64
	// Floor is the absolute minimum dissimilarity for a boundary, so
	// near-static video never segments on noise alone.
	Floor float64
}

func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MinSceneDuration: 0.5,
		Window:           8,
		Sensitivity:      2.0,
		Floor:            0.25,
	}
}

// Segmenter splits a sampled frame sequence into an ordered,
// non-overlapping list of scenes covering the full video duration.
type Segmenter struct {
	cfg    SegmenterConfig
	logger *zap.Logger
}

func NewSegmenter(cfg SegmenterConfig, logger *zap.Logger) *Segmenter {
	if cfg.Window < 2 {
		cfg.Window = 2
	}
	if cfg.MinSceneDuration <= 0 {
		cfg.MinSceneDuration = 0.5
	}
	return &Segmenter{cfg: cfg, logger: logger}
}

// Segment detects content discontinuities between adjacent sampled frames
// and returns contiguous scenes: scene[i].EndTime == scene[i+1].StartTime
// and the union is exactly [0, duration). Given the same frames and
// configuration the output is identical.
func (s *Segmenter) Segment(frames []entity.Frame, duration float64) []entity.Scene {
	if duration <= 0 {
		return []entity.Scene{{Index: 0, StartTime: 0, EndTime: 0, BoundaryScore: 0}}
	}
	if len(frames) <= 1 {
		return []entity.Scene{{Index: 0, StartTime: 0, EndTime: duration, BoundaryScore: 0}}
	}

	type boundary struct {
		time  float64
		score float64
	}
	var boundaries []boundary

	prev := luminanceHistogram(frames[0].Image)
	recent := make([]float64, 0, s.cfg.Window)
	for i := 1; i < len(frames); i++ {
		hist := luminanceHistogram(frames[i].Image)
		dist := histogramDistance(prev, hist)
		prev = hist

		threshold := s.adaptiveThreshold(recent)
		if dist > threshold && frames[i].Timestamp > 0 && frames[i].Timestamp < duration {
			boundaries = append(boundaries, boundary{time: frames[i].Timestamp, score: dist})
		}

		recent = append(recent, dist)
		if len(recent) > s.cfg.Window {
			recent = recent[1:]
		}
	}

	// Merge boundaries closer than the minimum scene duration, keeping
	// the earliest of each cluster. The leading edge at 0 counts too.
	cuts := []boundary{{time: 0, score: 0}}
	for _, b := range boundaries {
		last := cuts[len(cuts)-1]
		if b.time-last.time < s.cfg.MinSceneDuration {
			continue
		}
		if duration-b.time < s.cfg.MinSceneDuration {
			continue
		}
		cuts = append(cuts, b)
	}

	scenes := make([]entity.Scene, 0, len(cuts))
	for i, c := range cuts {
		end := duration
		if i+1 < len(cuts) {
			end = cuts[i+1].time
		}
		scenes = append(scenes, entity.Scene{
			Index:         i,
			StartTime:     c.time,
			EndTime:       end,
			BoundaryScore: c.score,
		})
	}

	if s.logger != nil {
		s.logger.Debug("segmentation complete",
			zap.Int("frames", len(frames)),
			zap.Int("scenes", len(scenes)),
			zap.Float64("duration", duration),
		)
	}
	return scenes
}

// adaptiveThreshold is a rolling mean + sensitivity*stddev of recent
// dissimilarities, never below the configured floor.
func (s *Segmenter) adaptiveThreshold(recent []float64) float64 {
	if len(recent) < 2 {
		return math.Max(s.cfg.Floor, 1.0)
	}
	var sum float64
	for _, v := range recent {
		sum += v
	}
	mean := sum / float64(len(recent))

	var variance float64
	for _, v := range recent {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	threshold := mean + s.cfg.Sensitivity*math.Sqrt(variance)
	return math.Max(s.cfg.Floor, threshold)
}

// luminanceHistogram is a normalized 32-bin luma histogram, sampled on a
// grid of at most 128x128 points.
func luminanceHistogram(img image.Image) []float64 {
	hist := make([]float64, histogramBins)
	if img == nil {
		return hist
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return hist
	}

	strideX := max(1, w/128)
	strideY := max(1, h/128)
	var n float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += strideY {
		for x := bounds.Min.X; x < bounds.Max.X; x += strideX {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			bin := int(lum) * histogramBins / 256
			if bin >= histogramBins {
				bin = histogramBins - 1
			}
			hist[bin]++
			n++
		}
	}
	if n > 0 {
		for i := range hist {
			hist[i] /= n
		}
	}
	return hist
}

// histogramDistance is the L1 distance between two normalized histograms,
// in [0, 2].
func histogramDistance(a, b []float64) float64 {
	var dist float64
	for i := range a {
		dist += math.Abs(a[i] - b[i])
	}
	return dist
}
