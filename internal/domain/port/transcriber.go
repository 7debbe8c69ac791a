package port

import (
	"context"
	"errors"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// ErrTranscriptionUnavailable signals that the transcription collaborator
// cannot produce a transcript for this video. It is not a pipeline error:
// the package is assembled with has_transcript=false.
var ErrTranscriptionUnavailable = errors.New("transcription unavailable")

// Transcriber yields ordered, time-stamped speech segments for a video,
// or ErrTranscriptionUnavailable.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath string) ([]entity.TranscriptSegment, error)
}
