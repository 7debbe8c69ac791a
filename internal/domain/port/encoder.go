package port

import (
	"context"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// KeyframeEncoder re-encodes the source frame at the given timestamp to
// the target resolution and the package's lossy image format.
type KeyframeEncoder interface {
	EncodeKeyframe(ctx context.Context, videoPath string, timestamp float64, res entity.Resolution, quality int) ([]byte, error)
}
