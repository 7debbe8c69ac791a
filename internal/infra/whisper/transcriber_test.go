package whisper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
)

func TestTranscribeMissingBinaryIsUnavailable(t *testing.T) {
	tr := NewTranscriber("definitely-not-a-real-whisper-binary", "base", zap.NewNop())

	segments, err := tr.Transcribe(context.Background(), "whatever.mp4")
	require.ErrorIs(t, err, port.ErrTranscriptionUnavailable)
	assert.Nil(t, segments)
}

func TestLogProbToConfidence(t *testing.T) {
	tests := []struct {
		logProb float64
		want    float64
	}{
		{0, 1},
		{-0.25, 0.75},
		{-1, 0},
		{-5, 0},  // hopeless audio clamps at zero
		{0.5, 1}, // whisper never reports positive, but clamp anyway
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, logProbToConfidence(tt.logProb), 1e-9)
	}
}
