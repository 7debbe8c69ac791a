package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
)

type memRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.Job
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (r *memRepo) Create(ctx context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memRepo) Update(ctx context.Context, job *entity.Job) error {
	return r.Create(ctx, job)
}

func (r *memRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	copied := *job
	return &copied, nil
}

type memStorage struct {
	uploads map[string]int64
}

func newMemStorage() *memStorage {
	return &memStorage{uploads: make(map[string]int64)}
}

func (s *memStorage) DownloadVideo(ctx context.Context, objectKey, destPath string) error {
	return os.WriteFile(destPath, []byte("video bytes"), 0644)
}

func (s *memStorage) UploadPackage(ctx context.Context, objectKey string, reader io.Reader, size int64) error {
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		return err
	}
	s.uploads[objectKey] = n
	return nil
}

type memPublisher struct {
	statuses []entity.PackageStatusMessage
}

func (p *memPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	var status entity.PackageStatusMessage
	if err := json.Unmarshal(msg, &status); err != nil {
		return err
	}
	p.statuses = append(p.statuses, status)
	return nil
}

type memDLQ struct {
	reasons []string
}

func (d *memDLQ) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	d.reasons = append(d.reasons, reason)
	return nil
}

type memNotifier struct {
	emails []string
}

func (n *memNotifier) NotifyFailure(ctx context.Context, userEmail, jobID, videoKey, errorMsg string) error {
	n.emails = append(n.emails, userEmail)
	return nil
}

type ucFixture struct {
	uc        *ProcessVideoUseCase
	repo      *memRepo
	storage   *memStorage
	publisher *memPublisher
	dlq       *memDLQ
	notifier  *memNotifier
}

func newUCFixture(t *testing.T, prober port.VideoProber, maxRetries int) *ucFixture {
	t.Helper()

	_, decoder := twoSceneFixture()
	pipeline := newTestPipeline(prober, decoder, &fakeEncoder{},
		&fakeTranscriber{err: port.ErrTranscriptionUnavailable})

	f := &ucFixture{
		repo:      newMemRepo(),
		storage:   newMemStorage(),
		publisher: &memPublisher{},
		dlq:       &memDLQ{},
		notifier:  &memNotifier{},
	}
	f.uc = NewProcessVideoUseCase(
		f.repo, f.storage, pipeline,
		f.publisher, f.dlq, f.notifier,
		zap.NewNop(),
		ProcessVideoConfig{TempDir: t.TempDir(), MaxRetries: maxRetries},
	)
	return f
}

func processingMessage(t *testing.T, profile string) (entity.VideoProcessingMessage, []byte) {
	t.Helper()
	msg := entity.VideoProcessingMessage{
		JobID:     uuid.New(),
		UserID:    "user-1",
		VideoKey:  "user-1/clip.mp4",
		Profile:   profile,
		FileSize:  1 << 20,
		UserEmail: "user@example.com",
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return msg, raw
}

func TestExecuteHappyPath(t *testing.T) {
	prober, _ := twoSceneFixture()
	f := newUCFixture(t, prober, 3)
	msg, raw := processingMessage(t, "balanced")

	require.NoError(t, f.uc.Execute(context.Background(), raw))

	job, err := f.repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Greater(t, job.KeyframeCount, 0)
	assert.Greater(t, job.SceneCount, 0)
	assert.NotEmpty(t, job.PackageKey)

	require.NotEmpty(t, f.publisher.statuses)
	last := f.publisher.statuses[len(f.publisher.statuses)-1]
	assert.Equal(t, entity.JobStatusCompleted, last.Status)
	assert.Equal(t, job.PackageKey, last.PackageKey)

	size, ok := f.storage.uploads[job.PackageKey]
	assert.True(t, ok, "package should be uploaded")
	assert.Greater(t, size, int64(0))
	assert.Empty(t, f.dlq.reasons)
}

func TestExecuteMalformedMessageGoesToDLQ(t *testing.T) {
	prober, _ := twoSceneFixture()
	f := newUCFixture(t, prober, 3)

	err := f.uc.Execute(context.Background(), []byte(`{not json`))
	require.NoError(t, err, "malformed messages must not be retried")
	require.Len(t, f.dlq.reasons, 1)
	assert.Contains(t, f.dlq.reasons[0], "unmarshal_error")
}

func TestExecuteUnknownProfileGoesToDLQ(t *testing.T) {
	prober, _ := twoSceneFixture()
	f := newUCFixture(t, prober, 3)
	_, raw := processingMessage(t, "ludicrous")

	err := f.uc.Execute(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, f.dlq.reasons, 1)
	assert.Contains(t, f.dlq.reasons[0], "profile_error")
}

func TestExecutePipelineFailureIsRetryable(t *testing.T) {
	prober := &fakeProber{err: errors.New("no video stream")}
	f := newUCFixture(t, prober, 3)
	msg, raw := processingMessage(t, "balanced")

	err := f.uc.Execute(context.Background(), raw)
	require.Error(t, err, "a failed attempt with retries left must requeue")

	job, findErr := f.repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, findErr)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.Attempt)
	assert.Empty(t, f.dlq.reasons)
	assert.Empty(t, f.notifier.emails)
}

func TestExecuteExhaustedRetriesNotifiesAndDLQs(t *testing.T) {
	prober := &fakeProber{err: errors.New("no video stream")}
	f := newUCFixture(t, prober, 1)
	msg, raw := processingMessage(t, "balanced")

	// The single allowed attempt fails permanently.
	err := f.uc.Execute(context.Background(), raw)
	require.NoError(t, err, "exhausted jobs are acked, not requeued")

	job, findErr := f.repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, findErr)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	require.Len(t, f.dlq.reasons, 1)
	assert.Equal(t, []string{"user@example.com"}, f.notifier.emails)
}
