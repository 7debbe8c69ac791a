package ffmpeg

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/core"
	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// Decoder extracts sampled frames from a video at a fixed rate. Frames
// come back decoded and timestamped, in increasing timestamp order.
type Decoder struct {
	logger *zap.Logger
}

func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// SampleFrames runs ffmpeg's fps filter into a temporary directory of PNG
// files and loads them back as images. Frame i of an fps-f sampling sits
// at timestamp i/f. Failures surface as core.DecodeError and no partial
// output is returned.
func (d *Decoder) SampleFrames(ctx context.Context, videoPath string, fps float64) ([]entity.Frame, error) {
	if fps <= 0 {
		fps = 1
	}

	tempDir, err := os.MkdirTemp("", "lvp-frames-*")
	if err != nil {
		return nil, &core.DecodeError{Path: videoPath, Err: fmt.Errorf("create frame dir: %w", err)}
	}
	defer os.RemoveAll(tempDir)

	pattern := filepath.Join(tempDir, "frame_%06d.png")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%g", fps),
		"-y",
		pattern,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &core.DecodeError{Path: videoPath, Err: fmt.Errorf("ffmpeg: %w, output: %s", err, string(output))}
	}

	paths, err := filepath.Glob(filepath.Join(tempDir, "frame_*.png"))
	if err != nil {
		return nil, &core.DecodeError{Path: videoPath, Err: fmt.Errorf("glob frames: %w", err)}
	}
	if len(paths) == 0 {
		return nil, &core.DecodeError{Path: videoPath, Err: fmt.Errorf("no frames decoded")}
	}
	sort.Strings(paths)

	frames := make([]entity.Frame, 0, len(paths))
	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, &core.DecodeError{Path: videoPath, Err: fmt.Errorf("open frame %s: %w", p, err)}
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, &core.DecodeError{Path: videoPath, Err: fmt.Errorf("decode frame %s: %w", p, err)}
		}
		bounds := img.Bounds()
		frames = append(frames, entity.Frame{
			Timestamp: float64(i) / fps,
			Image:     img,
			Width:     bounds.Dx(),
			Height:    bounds.Dy(),
		})
	}

	d.logger.Info("frames sampled",
		zap.Int("count", len(frames)),
		zap.Float64("fps", fps),
	)
	return frames, nil
}
