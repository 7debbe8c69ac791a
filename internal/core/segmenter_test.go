package core

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

func uniformFrame(ts float64, gray uint8) entity.Frame {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}
	return entity.Frame{Timestamp: ts, Image: img, Width: 32, Height: 32}
}

// sampledFrames builds count uniform frames at the given sampling rate,
// switching from dark to bright at cutIndex.
func sampledFrames(count int, fps float64, cutIndex int) []entity.Frame {
	frames := make([]entity.Frame, count)
	for i := range frames {
		gray := uint8(20)
		if i >= cutIndex {
			gray = 230
		}
		frames[i] = uniformFrame(float64(i)/fps, gray)
	}
	return frames
}

func assertContiguous(t *testing.T, scenes []entity.Scene, duration float64) {
	t.Helper()
	require.NotEmpty(t, scenes)
	assert.Equal(t, 0.0, scenes[0].StartTime)
	assert.Equal(t, duration, scenes[len(scenes)-1].EndTime)
	for i := 1; i < len(scenes); i++ {
		assert.Equal(t, scenes[i-1].EndTime, scenes[i].StartTime,
			"scene %d must start where scene %d ends", i, i-1)
		assert.Equal(t, i, scenes[i].Index)
	}
	for _, sc := range scenes {
		assert.Greater(t, sc.Duration(), 0.0, "scene %d", sc.Index)
	}
}

func TestSegmentStaticVideoIsOneScene(t *testing.T) {
	s := NewSegmenter(DefaultSegmenterConfig(), nil)
	frames := sampledFrames(20, 2, 20) // no cut
	scenes := s.Segment(frames, 10)

	require.Len(t, scenes, 1)
	assert.Equal(t, 0.0, scenes[0].StartTime)
	assert.Equal(t, 10.0, scenes[0].EndTime)
	assert.Equal(t, 0.0, scenes[0].BoundaryScore)
}

func TestSegmentDetectsHardCut(t *testing.T) {
	s := NewSegmenter(DefaultSegmenterConfig(), nil)
	frames := sampledFrames(20, 2, 10) // cut at 5.0s
	scenes := s.Segment(frames, 10)

	require.Len(t, scenes, 2)
	assertContiguous(t, scenes, 10)
	assert.Equal(t, 5.0, scenes[0].EndTime)
	assert.Equal(t, 5.0, scenes[1].StartTime)
	assert.Greater(t, scenes[1].BoundaryScore, 0.0)
}

func TestSegmentMergesRapidCuts(t *testing.T) {
	cfg := DefaultSegmenterConfig()
	cfg.MinSceneDuration = 2.0
	s := NewSegmenter(cfg, nil)

	// Alternate every sample: raw boundaries land well under the minimum
	// scene duration, so they collapse instead of fragmenting the video.
	frames := make([]entity.Frame, 20)
	for i := range frames {
		gray := uint8(20)
		if i%2 == 1 {
			gray = 230
		}
		frames[i] = uniformFrame(float64(i)/2, gray)
	}

	scenes := s.Segment(frames, 10)
	assertContiguous(t, scenes, 10)
	for i := 1; i < len(scenes); i++ {
		assert.GreaterOrEqual(t, scenes[i].Duration(), cfg.MinSceneDuration,
			"scene %d shorter than the configured minimum", i)
	}
}

func TestSegmentSingleFrameCoversDuration(t *testing.T) {
	s := NewSegmenter(DefaultSegmenterConfig(), nil)
	scenes := s.Segment([]entity.Frame{uniformFrame(0, 100)}, 1)

	require.Len(t, scenes, 1)
	assert.Equal(t, 0.0, scenes[0].StartTime)
	assert.Equal(t, 1.0, scenes[0].EndTime)
}

func TestSegmentZeroDuration(t *testing.T) {
	s := NewSegmenter(DefaultSegmenterConfig(), nil)
	scenes := s.Segment(nil, 0)
	require.Len(t, scenes, 1)
	assert.Equal(t, 0, scenes[0].Index)
}

func TestSegmentDeterministic(t *testing.T) {
	s := NewSegmenter(DefaultSegmenterConfig(), nil)
	frames := sampledFrames(40, 2, 24)

	first := s.Segment(frames, 20)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Segment(frames, 20))
	}
}

func TestHistogramDistanceBounds(t *testing.T) {
	dark := luminanceHistogram(uniformFrame(0, 0).Image)
	bright := luminanceHistogram(uniformFrame(0, 255).Image)

	assert.InDelta(t, 2.0, histogramDistance(dark, bright), 1e-9)
	assert.InDelta(t, 0.0, histogramDistance(dark, dark), 1e-9)
}
