// Package whisper adapts a local whisper CLI as the transcription
// collaborator.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
)

type Transcriber struct {
	bin    string
	model  string
	logger *zap.Logger
}

func NewTranscriber(bin, model string, logger *zap.Logger) *Transcriber {
	return &Transcriber{bin: bin, model: model, logger: logger}
}

type whisperOutput struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
		// whisper reports avg_logprob; mapped to a [0,1] confidence below
		AvgLogProb float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// Transcribe extracts the audio track and runs the whisper CLI with JSON
// output. A missing binary or a video without an audio track yields
// port.ErrTranscriptionUnavailable, which the pipeline records as
// has_transcript=false rather than failing.
func (t *Transcriber) Transcribe(ctx context.Context, videoPath string) ([]entity.TranscriptSegment, error) {
	if _, err := exec.LookPath(t.bin); err != nil {
		t.logger.Warn("whisper binary not found, continuing without transcript",
			zap.String("bin", t.bin))
		return nil, port.ErrTranscriptionUnavailable
	}

	tempDir, err := os.MkdirTemp("", "lvp-transcribe-*")
	if err != nil {
		return nil, fmt.Errorf("create transcribe dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.wav")
	extract := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		audioPath,
	)
	if output, err := extract.CombinedOutput(); err != nil {
		t.logger.Warn("audio extraction failed, continuing without transcript",
			zap.Error(err),
			zap.ByteString("output", output))
		return nil, port.ErrTranscriptionUnavailable
	}

	cmd := exec.CommandContext(ctx, t.bin,
		audioPath,
		"--model", t.model,
		"--output_format", "json",
		"--output_dir", tempDir,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.logger.Warn("whisper failed, continuing without transcript",
			zap.Error(err),
			zap.ByteString("output", output))
		return nil, port.ErrTranscriptionUnavailable
	}

	resultPath := filepath.Join(tempDir, "audio.json")
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var result whisperOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]entity.TranscriptSegment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, entity.TranscriptSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       text,
			Confidence: logProbToConfidence(seg.AvgLogProb),
		})
	}
	if len(segments) == 0 {
		return nil, port.ErrTranscriptionUnavailable
	}

	t.logger.Info("transcription complete", zap.Int("segments", len(segments)))
	return segments, nil
}

// logProbToConfidence maps whisper's average log probability (typically
// in [-1, 0] for usable speech) onto [0, 1].
func logProbToConfidence(avgLogProb float64) float64 {
	c := 1 + avgLogProb
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
