package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lvpkg/lvp-processing-service/internal/core"
	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
	"github.com/lvpkg/lvp-processing-service/internal/infra/metrics"
	"github.com/lvpkg/lvp-processing-service/internal/lvp"
)

// PipelineConfig tunes the reduction pipeline.
type PipelineConfig struct {
	SampleFPS        float64
	ScoreWorkers     int
	MinSceneDuration float64
	SceneSensitivity float64
}

// PipelineOptions are per-run overrides.
type PipelineOptions struct {
	// IncludeTranscript toggles the transcription collaborator.
	IncludeTranscript bool
	// TargetKeyframes overrides the profile-derived budget when > 0.
	TargetKeyframes int
}

// Pipeline turns one video into a Package: probe, sample, segment,
// score, allocate, transcribe, align, assemble. One logical pipeline per
// video; no shared mutable state, so videos may be processed in parallel
// with independent Pipeline calls.
type Pipeline struct {
	prober      port.VideoProber
	decoder     port.FrameDecoder
	encoder     port.KeyframeEncoder
	transcriber port.Transcriber
	segmenter   *core.Segmenter
	allocator   *core.Allocator
	cfg         PipelineConfig
	logger      *zap.Logger
}

func NewPipeline(
	prober port.VideoProber,
	decoder port.FrameDecoder,
	encoder port.KeyframeEncoder,
	transcriber port.Transcriber,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	if cfg.SampleFPS <= 0 {
		cfg.SampleFPS = 2
	}
	if cfg.ScoreWorkers < 1 {
		cfg.ScoreWorkers = 4
	}
	segCfg := core.DefaultSegmenterConfig()
	if cfg.MinSceneDuration > 0 {
		segCfg.MinSceneDuration = cfg.MinSceneDuration
	}
	if cfg.SceneSensitivity > 0 {
		segCfg.Sensitivity = cfg.SceneSensitivity
	}
	return &Pipeline{
		prober:      prober,
		decoder:     decoder,
		encoder:     encoder,
		transcriber: transcriber,
		segmenter:   core.NewSegmenter(segCfg, logger),
		allocator:   core.NewAllocator(logger),
		cfg:         cfg,
		logger:      logger,
	}
}

// Run processes one video into a Package. Any stage failure aborts the
// run; no partial package is ever returned.
func (p *Pipeline) Run(ctx context.Context, videoPath string, profile entity.Profile, opts PipelineOptions) (*entity.Package, error) {
	tracer := otel.Tracer("pipeline")
	start := time.Now()

	ctxProbe, spanProbe := tracer.Start(ctx, "probe_video")
	info, err := p.prober.Probe(ctxProbe, videoPath)
	spanProbe.End()
	if err != nil {
		return nil, err
	}

	decStart := time.Now()
	ctxDec, spanDec := tracer.Start(ctx, "sample_frames")
	frames, err := p.decoder.SampleFrames(ctxDec, videoPath, p.cfg.SampleFPS)
	spanDec.End()
	if err != nil {
		return nil, err
	}
	metrics.JobProcessingDuration.WithLabelValues("decode").Observe(time.Since(decStart).Seconds())

	segStart := time.Now()
	_, spanSeg := tracer.Start(ctx, "segment_scenes")
	scenes := p.segmenter.Segment(frames, info.Duration)
	spanSeg.End()
	metrics.JobProcessingDuration.WithLabelValues("segment").Observe(time.Since(segStart).Seconds())
	metrics.ScenesDetectedTotal.Add(float64(len(scenes)))

	scoreStart := time.Now()
	ctxScore, spanScore := tracer.Start(ctx, "score_frames")
	scores, err := p.scoreFrames(ctxScore, frames)
	spanScore.End()
	if err != nil {
		return nil, err
	}
	framesByScene := core.GroupFramesByScene(scenes, frames, scores)
	frames = nil // raw frames are not retained past scoring
	metrics.JobProcessingDuration.WithLabelValues("score").Observe(time.Since(scoreStart).Seconds())

	budget := core.Budget(profile, info.Duration)
	if opts.TargetKeyframes > 0 {
		budget = opts.TargetKeyframes
	}

	allocStart := time.Now()
	ctxAlloc, spanAlloc := tracer.Start(ctx, "allocate_keyframes")
	selected, err := p.allocator.AllocateBudget(ctxAlloc, scenes, framesByScene, budget, info.Duration,
		func(ctx context.Context, _ int, ts float64) ([]byte, error) {
			return p.encoder.EncodeKeyframe(ctx, videoPath, ts, profile.Resolution, profile.Quality)
		})
	spanAlloc.End()
	if err != nil {
		return nil, fmt.Errorf("allocate keyframes: %w", err)
	}
	metrics.JobProcessingDuration.WithLabelValues("allocate").Observe(time.Since(allocStart).Seconds())
	metrics.KeyframesSelectedTotal.Add(float64(len(selected)))
	if len(selected) < budget {
		metrics.BudgetShortfallTotal.Inc()
		p.logger.Warn("final keyframe count below nominal budget",
			zap.Int("budget", budget),
			zap.Int("selected", len(selected)),
		)
	}

	var transcript []entity.TranscriptSegment
	if opts.IncludeTranscript {
		trStart := time.Now()
		ctxTr, spanTr := tracer.Start(ctx, "transcribe")
		transcript, err = p.transcriber.Transcribe(ctxTr, videoPath)
		spanTr.End()
		if err != nil {
			if !errors.Is(err, port.ErrTranscriptionUnavailable) {
				return nil, fmt.Errorf("transcribe: %w", err)
			}
			transcript = nil
		}
		metrics.JobProcessingDuration.WithLabelValues("transcribe").Observe(time.Since(trStart).Seconds())
	}

	sceneSegments := core.Align(transcript, scenes)

	pkg := lvp.Assemble(*info, scenes, selected, transcript, sceneSegments, profile, time.Since(start))

	p.logger.Info("pipeline complete",
		zap.String("video", info.Filename),
		zap.Int("scenes", len(scenes)),
		zap.Int("keyframes", len(selected)),
		zap.Bool("has_transcript", pkg.Manifest.Content.HasTranscript),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pkg, nil
}

// scoreFrames scores candidate frames concurrently. Scoring is
// embarrassingly parallel; results land in a positional slice so the
// allocator's ordering contract holds regardless of execution order.
func (p *Pipeline) scoreFrames(ctx context.Context, frames []entity.Frame) ([]float64, error) {
	scores := make([]float64, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ScoreWorkers)
	for i := range frames {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			scores[i] = core.ScoreFrame(frames[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
