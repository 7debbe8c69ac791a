// Package ffmpeg adapts the external ffmpeg/ffprobe tools as the
// pipeline's decoder collaborators.
package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/core"
	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

type Prober struct {
	logger *zap.Logger
}

func NewProber(logger *zap.Logger) *Prober {
	return &Prober{logger: logger}
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// Probe reads source metadata with ffprobe. Unreadable files, files
// without a video stream and zero-duration videos fail with a
// core.SourceError.
func (p *Prober) Probe(ctx context.Context, videoPath string) (*entity.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, &core.SourceError{Path: videoPath, Err: fmt.Errorf("ffprobe: %w", err)}
	}

	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, &core.SourceError{Path: videoPath, Err: fmt.Errorf("parse ffprobe output: %w", err)}
	}

	var width, height int
	found := false
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			width, height = s.Width, s.Height
			found = true
			break
		}
	}
	if !found {
		return nil, &core.SourceError{Path: videoPath, Err: errors.New("no video stream")}
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return nil, &core.SourceError{Path: videoPath, Err: fmt.Errorf("parse duration: %w", err)}
	}
	if duration <= 0 {
		return nil, &core.SourceError{Path: videoPath, Err: errors.New("zero duration")}
	}

	size, err := strconv.ParseInt(probe.Format.Size, 10, 64)
	if err != nil {
		if stat, statErr := os.Stat(videoPath); statErr == nil {
			size = stat.Size()
		}
	}

	info := &entity.VideoInfo{
		Filename:   filepath.Base(videoPath),
		Duration:   duration,
		Resolution: entity.Resolution{Width: width, Height: height},
		SizeBytes:  size,
	}

	p.logger.Debug("probed video",
		zap.String("path", videoPath),
		zap.Float64("duration", duration),
		zap.String("resolution", info.Resolution.String()),
	)
	return info, nil
}
