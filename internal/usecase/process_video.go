package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
	"github.com/lvpkg/lvp-processing-service/internal/infra/metrics"
	"github.com/lvpkg/lvp-processing-service/internal/lvp"
)

type ProcessVideoUseCase struct {
	repo           port.JobRepository
	storage        port.VideoStorage
	pipeline       *Pipeline
	publisher      port.StatusPublisher
	dlq            port.DLQPublisher
	notifier       port.FailureNotifier
	logger         *zap.Logger
	tempDir        string
	maxRetry       int
	defaultProfile string
}

type ProcessVideoConfig struct {
	TempDir        string
	MaxRetries     int
	DefaultProfile string
}

func NewProcessVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	pipeline *Pipeline,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessVideoConfig,
) *ProcessVideoUseCase {
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = "balanced"
	}
	return &ProcessVideoUseCase{
		repo:           repo,
		storage:        storage,
		pipeline:       pipeline,
		publisher:      publisher,
		dlq:            dlq,
		notifier:       notifier,
		logger:         logger,
		tempDir:        cfg.TempDir,
		maxRetry:       cfg.MaxRetries,
		defaultProfile: cfg.DefaultProfile,
	}
}

func (uc *ProcessVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.VideoProcessingMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
		attribute.String("job.profile", msg.Profile),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	profileName := msg.Profile
	if profileName == "" {
		profileName = uc.defaultProfile
	}
	profile, err := entity.ProfileByName(profileName)
	if err != nil {
		log.Error("unknown profile, sending to DLQ", zap.Error(err))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "profile_error: "+err.Error())
		return nil
	}

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, profile.Name, msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.processPackagePipeline(ctx, job, profile, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobProcessingDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessVideoUseCase) processPackagePipeline(
	ctx context.Context,
	job *entity.Job,
	profile entity.Profile,
	msg entity.VideoProcessingMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from MinIO
	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctxDl, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobProcessingDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Run the reduction pipeline
	pkg, err := uc.pipeline.Run(ctx, videoPath, profile, PipelineOptions{IncludeTranscript: true})
	if err != nil {
		log.Error("pipeline failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "pipeline: "+err.Error(), log)
	}

	// Save the package next to the input; nothing partial ever leaves
	// the workdir.
	asmStart := time.Now()
	_, spanAsm := tracer.Start(ctx, "save_package")
	pkgPath, err := lvp.Save(pkg, filepath.Join(workDir, "output.lvp"))
	spanAsm.End()
	if err != nil {
		log.Error("package save failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "save_package: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("assemble").Observe(time.Since(asmStart).Seconds())

	// Upload package to MinIO
	upStart := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_package")
	packageKey := fmt.Sprintf("%s/package_%s.lvp", msg.UserID, job.ID.String())
	pkgFile, err := os.Open(pkgPath)
	if err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_package: "+err.Error(), log)
	}
	pkgStat, _ := pkgFile.Stat()
	if err := uc.storage.UploadPackage(ctxUp, packageKey, pkgFile, pkgStat.Size()); err != nil {
		pkgFile.Close()
		spanUp.End()
		log.Error("package upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_package: "+err.Error(), log)
	}
	pkgFile.Close()
	spanUp.End()
	metrics.JobProcessingDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	// Mark completed
	content := pkg.Manifest.Content
	job.MarkCompleted(packageKey, content.KeyframeCount, content.SceneCount, content.HasTranscript, pkg.Manifest.Source.DurationSeconds)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("keyframe_count", content.KeyframeCount),
		zap.Int("scene_count", content.SceneCount),
		zap.Bool("has_transcript", content.HasTranscript),
		zap.String("package_key", packageKey),
	)

	return nil
}

func (uc *ProcessVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.VideoProcessingMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.VideoProcessingMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *ProcessVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.PackageStatusMessage{
		JobID:         job.ID,
		UserID:        job.UserID,
		Status:        job.Status,
		VideoKey:      job.VideoKey,
		PackageKey:    job.PackageKey,
		KeyframeCount: job.KeyframeCount,
		SceneCount:    job.SceneCount,
		HasTranscript: job.HasTranscript,
		Duration:      job.VideoDuration,
		ErrorMessage:  job.ErrorMessage,
		Attempt:       job.Attempt,
		MaxAttempts:   job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
