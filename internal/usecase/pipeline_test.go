package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
)

type fakeProber struct {
	info *entity.VideoInfo
	err  error
}

func (f *fakeProber) Probe(ctx context.Context, videoPath string) (*entity.VideoInfo, error) {
	return f.info, f.err
}

type fakeDecoder struct {
	frames []entity.Frame
	err    error
}

func (f *fakeDecoder) SampleFrames(ctx context.Context, videoPath string, fps float64) ([]entity.Frame, error) {
	return f.frames, f.err
}

type fakeEncoder struct {
	calls int
}

func (f *fakeEncoder) EncodeKeyframe(ctx context.Context, videoPath string, ts float64, res entity.Resolution, quality int) ([]byte, error) {
	f.calls++
	return []byte(fmt.Sprintf("kf@%.2f:%s:q%d", ts, res, quality)), nil
}

type fakeTranscriber struct {
	segments []entity.TranscriptSegment
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, videoPath string) ([]entity.TranscriptSegment, error) {
	return f.segments, f.err
}

func grayFrame(ts float64, gray uint8) entity.Frame {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}
	return entity.Frame{Timestamp: ts, Image: img, Width: 16, Height: 16}
}

// twoSceneFixture is a 10-second video sampled at 2 fps with a hard cut
// at 5 seconds.
func twoSceneFixture() (*fakeProber, *fakeDecoder) {
	frames := make([]entity.Frame, 20)
	for i := range frames {
		gray := uint8(30)
		if i >= 10 {
			gray = 220
		}
		frames[i] = grayFrame(float64(i)/2, gray)
	}
	return &fakeProber{info: &entity.VideoInfo{
		Filename:   "clip.mp4",
		Duration:   10,
		Resolution: entity.Resolution{Width: 1280, Height: 720},
		SizeBytes:  1 << 20,
	}}, &fakeDecoder{frames: frames}
}

func newTestPipeline(prober port.VideoProber, decoder port.FrameDecoder, encoder port.KeyframeEncoder, transcriber port.Transcriber) *Pipeline {
	return NewPipeline(prober, decoder, encoder, transcriber,
		PipelineConfig{SampleFPS: 2, ScoreWorkers: 2}, zap.NewNop())
}

func TestPipelineRunProducesPackage(t *testing.T) {
	prober, decoder := twoSceneFixture()
	encoder := &fakeEncoder{}
	transcriber := &fakeTranscriber{segments: []entity.TranscriptSegment{
		{Start: 0, End: 4, Text: "first half"},
		{Start: 4.5, End: 5.5, Text: "over the cut"},
		{Start: 6, End: 9, Text: "second half"},
	}}

	p := newTestPipeline(prober, decoder, encoder, transcriber)
	profile, err := entity.ProfileByName("balanced")
	require.NoError(t, err)

	pkg, err := p.Run(context.Background(), "clip.mp4", profile, PipelineOptions{IncludeTranscript: true})
	require.NoError(t, err)

	// balanced at 12/min over 10s rounds to a budget of 2.
	assert.Len(t, pkg.Keyframes, 2)
	assert.Equal(t, encoder.calls, len(pkg.Keyframes))
	assert.Len(t, pkg.Scenes, 2)
	assert.True(t, pkg.HasTranscript())
	assert.Equal(t, "clip.mp4", pkg.Manifest.Source.Filename)
	assert.Equal(t, 2, pkg.Manifest.Content.KeyframeCount)

	// Each scene holds a keyframe and the spanning segment lands in both.
	assert.NotEmpty(t, pkg.SceneKeyframes(0))
	assert.NotEmpty(t, pkg.SceneKeyframes(1))
	assert.Contains(t, pkg.SceneSegments[0], 1)
	assert.Contains(t, pkg.SceneSegments[1], 1)

	// Keyframes come out ordered by timestamp.
	for i := 1; i < len(pkg.Keyframes); i++ {
		assert.Less(t, pkg.Keyframes[i-1].Timestamp, pkg.Keyframes[i].Timestamp)
	}
}

func TestPipelineRunTranscriptionUnavailable(t *testing.T) {
	prober, decoder := twoSceneFixture()
	transcriber := &fakeTranscriber{err: port.ErrTranscriptionUnavailable}

	p := newTestPipeline(prober, decoder, &fakeEncoder{}, transcriber)
	profile, err := entity.ProfileByName("balanced")
	require.NoError(t, err)

	pkg, err := p.Run(context.Background(), "clip.mp4", profile, PipelineOptions{IncludeTranscript: true})
	require.NoError(t, err)

	assert.False(t, pkg.HasTranscript())
	assert.False(t, pkg.Manifest.Content.HasTranscript)
	assert.Empty(t, pkg.SceneSegments)
	assert.NotEmpty(t, pkg.Keyframes)
}

func TestPipelineRunTranscriberFailureAborts(t *testing.T) {
	prober, decoder := twoSceneFixture()
	transcriber := &fakeTranscriber{err: errors.New("whisper crashed")}

	p := newTestPipeline(prober, decoder, &fakeEncoder{}, transcriber)
	profile, err := entity.ProfileByName("balanced")
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "clip.mp4", profile, PipelineOptions{IncludeTranscript: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whisper crashed")
}

func TestPipelineRunSkipsTranscription(t *testing.T) {
	prober, decoder := twoSceneFixture()
	transcriber := &fakeTranscriber{segments: []entity.TranscriptSegment{{Start: 0, End: 1, Text: "unwanted"}}}

	p := newTestPipeline(prober, decoder, &fakeEncoder{}, transcriber)
	profile, err := entity.ProfileByName("balanced")
	require.NoError(t, err)

	pkg, err := p.Run(context.Background(), "clip.mp4", profile, PipelineOptions{IncludeTranscript: false})
	require.NoError(t, err)
	assert.False(t, pkg.HasTranscript())
}

func TestPipelineRunKeyframeOverride(t *testing.T) {
	prober, decoder := twoSceneFixture()

	p := newTestPipeline(prober, decoder, &fakeEncoder{}, &fakeTranscriber{err: port.ErrTranscriptionUnavailable})
	profile, err := entity.ProfileByName("minimal")
	require.NoError(t, err)

	pkg, err := p.Run(context.Background(), "clip.mp4", profile, PipelineOptions{TargetKeyframes: 6})
	require.NoError(t, err)
	assert.Len(t, pkg.Keyframes, 6)
}

func TestPipelineRunProbeFailure(t *testing.T) {
	prober := &fakeProber{err: errors.New("no video stream")}

	p := newTestPipeline(prober, &fakeDecoder{}, &fakeEncoder{}, &fakeTranscriber{})
	profile, err := entity.ProfileByName("balanced")
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "broken.mp4", profile, PipelineOptions{})
	require.Error(t, err)
}

func TestPipelineRunShortVideoGetsOneKeyframe(t *testing.T) {
	prober := &fakeProber{info: &entity.VideoInfo{
		Filename: "blip.mp4",
		Duration: 1,
	}}
	decoder := &fakeDecoder{frames: []entity.Frame{grayFrame(0, 100), grayFrame(0.5, 100)}}

	p := newTestPipeline(prober, decoder, &fakeEncoder{}, &fakeTranscriber{err: port.ErrTranscriptionUnavailable})
	profile, err := entity.ProfileByName("maximum")
	require.NoError(t, err)

	pkg, err := p.Run(context.Background(), "blip.mp4", profile, PipelineOptions{})
	require.NoError(t, err)

	assert.Len(t, pkg.Scenes, 1)
	assert.Len(t, pkg.Keyframes, 1)
}
