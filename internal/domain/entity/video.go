package entity

import (
	"encoding/json"
	"fmt"
	"image"
)

// Resolution is a width/height pair, serialized as a two-element
// [width, height] JSON array to match the manifest schema.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Width, r.Height})
}

func (r *Resolution) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("resolution must be a [width, height] array: %w", err)
	}
	r.Width, r.Height = pair[0], pair[1]
	return nil
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// VideoInfo is the probed metadata of a source video.
type VideoInfo struct {
	Filename   string
	Duration   float64
	Resolution Resolution
	SizeBytes  int64
}

// Frame is a decoded, timestamped sample frame. Read-only once captured.
type Frame struct {
	Timestamp float64
	Image     image.Image
	Width     int
	Height    int
}

// Scene is a contiguous span of visually coherent content.
// Scenes are contiguous and ordered: scene[i].EndTime == scene[i+1].StartTime,
// and together they cover [0, duration).
type Scene struct {
	Index         int     `json:"index"`
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
	BoundaryScore float64 `json:"boundary_score"`
}

func (s Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}

// KeyframeCandidate is a frame selected by the allocator, already
// re-encoded to the profile's target resolution and format.
type KeyframeCandidate struct {
	SceneIndex int
	Timestamp  float64
	Score      float64
	Encoded    []byte
}

// TranscriptSegment is a time-stamped piece of recognized speech,
// supplied by the external transcription collaborator.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
