// Package lvp assembles, writes and reads .lvp archives: a manifest,
// re-encoded keyframes, the transcript and scene metadata for one video.
package lvp

import (
	"fmt"
	"time"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

const (
	manifestEntry   = "manifest.json"
	transcriptEntry = "transcript.json"
	scenesEntry     = "scenes.json"
	keyframePrefix  = "keyframes/"
	keyframeExt     = ".webp"

	keyframeMethod = "scene_adaptive"
)

func keyframeEntryName(index int) string {
	return fmt.Sprintf("%sframe_%04d%s", keyframePrefix, index, keyframeExt)
}

// sceneRecord is the persisted form of a scene inside scenes.json. The
// index lists make each scene self-describing within the archive.
type sceneRecord struct {
	Index           int     `json:"index"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	BoundaryScore   float64 `json:"boundary_score"`
	KeyframeIndices []int   `json:"keyframe_indices"`
	SegmentIndices  []int   `json:"segment_indices"`
}

// Assemble combines the pipeline outputs into a Package with a derived
// Manifest. Content fields are computed here, never supplied by the
// caller, so manifest and content cannot drift.
func Assemble(
	info entity.VideoInfo,
	scenes []entity.Scene,
	selected []entity.KeyframeCandidate,
	transcript []entity.TranscriptSegment,
	sceneSegments map[int][]int,
	profile entity.Profile,
	processingTime time.Duration,
) *entity.Package {
	keyframes := make([]entity.Keyframe, len(selected))
	timestamps := make([]float64, len(selected))
	for i, kc := range selected {
		keyframes[i] = entity.Keyframe{
			Index:      i,
			SceneIndex: kc.SceneIndex,
			Timestamp:  kc.Timestamp,
			Data:       kc.Encoded,
		}
		timestamps[i] = kc.Timestamp
	}

	if sceneSegments == nil {
		sceneSegments = make(map[int][]int)
	}

	manifest := entity.Manifest{
		LVPVersion: entity.LVPVersion,
		CreatedAt:  time.Now().UTC(),
		Source: entity.ManifestSource{
			Filename:           info.Filename,
			DurationSeconds:    info.Duration,
			OriginalResolution: info.Resolution,
			OriginalSizeBytes:  info.SizeBytes,
		},
		Processing: &entity.ManifestProcessing{
			DeviceProfile:         profile.Name,
			ProcessingTimeSeconds: processingTime.Seconds(),
			KeyframeMethod:        keyframeMethod,
			KeyframeTimestamps:    timestamps,
		},
		Content: entity.ManifestContent{
			KeyframeCount:      len(keyframes),
			KeyframeResolution: profile.Resolution,
			HasTranscript:      len(transcript) > 0,
			SceneCount:         len(scenes),
		},
	}

	return &entity.Package{
		Manifest:      manifest,
		Keyframes:     keyframes,
		Transcript:    transcript,
		Scenes:        scenes,
		SceneSegments: sceneSegments,
	}
}
