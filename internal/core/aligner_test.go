package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

func TestAlignSegmentWithinScene(t *testing.T) {
	scenes := scenesOf(0, 10, 20)
	segments := []entity.TranscriptSegment{
		{Start: 2, End: 4, Text: "hello"},
		{Start: 12, End: 14, Text: "world"},
	}

	aligned := Align(segments, scenes)
	assert.Equal(t, []int{0}, aligned[0])
	assert.Equal(t, []int{1}, aligned[1])
}

func TestAlignSegmentSpanningBoundaryAttachesToBoth(t *testing.T) {
	scenes := scenesOf(0, 10, 20)
	segments := []entity.TranscriptSegment{
		{Start: 9.5, End: 10.5, Text: "across the cut"},
	}

	aligned := Align(segments, scenes)
	assert.Equal(t, []int{0}, aligned[0])
	assert.Equal(t, []int{0}, aligned[1])
}

func TestAlignSegmentEndingAtBoundaryExcludedFromNextScene(t *testing.T) {
	scenes := scenesOf(0, 10, 20)
	segments := []entity.TranscriptSegment{
		{Start: 8, End: 10, Text: "ends exactly at the cut"},
	}

	aligned := Align(segments, scenes)
	assert.Equal(t, []int{0}, aligned[0])
	assert.NotContains(t, aligned, 1)
}

func TestAlignNoTranscript(t *testing.T) {
	scenes := scenesOf(0, 10)
	aligned := Align(nil, scenes)
	assert.Empty(t, aligned)
}

func TestAlignPreservesSegmentOrder(t *testing.T) {
	scenes := scenesOf(0, 30)
	segments := []entity.TranscriptSegment{
		{Start: 0, End: 5},
		{Start: 5, End: 12},
		{Start: 12, End: 29},
	}

	aligned := Align(segments, scenes)
	assert.Equal(t, []int{0, 1, 2}, aligned[0])
}
