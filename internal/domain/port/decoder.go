package port

import (
	"context"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// VideoProber reads source metadata without decoding the stream.
type VideoProber interface {
	Probe(ctx context.Context, videoPath string) (*entity.VideoInfo, error)
}

// FrameDecoder yields decoded sample frames in increasing timestamp
// order at the requested sampling rate. The decoder is an external
// collaborator; the pipeline treats its calls as blocking.
type FrameDecoder interface {
	SampleFrames(ctx context.Context, videoPath string, fps float64) ([]entity.Frame, error)
}
