package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LVPVersion is the package format version written by this build.
const LVPVersion = "1.0"

// Manifest describes a package's provenance and content statistics.
// It is derived entirely from the other entities at assembly time and
// regenerated on every assembly, never hand-edited.
type Manifest struct {
	LVPVersion string              `json:"lvp_version"`
	CreatedAt  time.Time           `json:"created_at"`
	Source     ManifestSource      `json:"source"`
	Processing *ManifestProcessing `json:"processing,omitempty"`
	Content    ManifestContent     `json:"content"`
}

type ManifestSource struct {
	Filename           string     `json:"filename"`
	DurationSeconds    float64    `json:"duration_seconds"`
	OriginalResolution Resolution `json:"original_resolution"`
	OriginalSizeBytes  int64      `json:"original_size_bytes"`
}

// ManifestProcessing is optional on read: archives written by older
// minor versions may omit it.
type ManifestProcessing struct {
	DeviceProfile         string    `json:"device_profile"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	KeyframeMethod        string    `json:"keyframe_method"`
	KeyframeTimestamps    []float64 `json:"keyframe_timestamps,omitempty"`
}

type ManifestContent struct {
	KeyframeCount      int        `json:"keyframe_count"`
	KeyframeResolution Resolution `json:"keyframe_resolution"`
	HasTranscript      bool       `json:"has_transcript"`
	SceneCount         int        `json:"scene_count"`
}

// ParseVersion splits a "major.minor" version string.
func ParseVersion(v string) (major, minor int, err error) {
	parts := strings.SplitN(v, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("version %q is not major.minor", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("version %q has non-numeric major: %w", v, err)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("version %q has non-numeric minor: %w", v, err)
	}
	return major, minor, nil
}
