package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// Encoder re-encodes single frames from the source video into WebP at a
// target resolution, seeking to the frame's timestamp so full-quality
// source pixels feed the encode.
type Encoder struct {
	logger *zap.Logger
}

func NewEncoder(logger *zap.Logger) *Encoder {
	return &Encoder{logger: logger}
}

func (e *Encoder) EncodeKeyframe(ctx context.Context, videoPath string, timestamp float64, res entity.Resolution, quality int) ([]byte, error) {
	tempDir, err := os.MkdirTemp("", "lvp-keyframe-*")
	if err != nil {
		return nil, fmt.Errorf("create keyframe dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	outPath := filepath.Join(tempDir, "keyframe.webp")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", res.Width, res.Height),
		"-c:v", "libwebp",
		"-quality", fmt.Sprintf("%d", quality),
		"-y",
		outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg encode at %.3fs: %w, output: %s", timestamp, err, string(output))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read encoded keyframe: %w", err)
	}

	e.logger.Debug("keyframe encoded",
		zap.Float64("timestamp", timestamp),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}
