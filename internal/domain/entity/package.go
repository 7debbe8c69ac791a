package entity

// Keyframe is a selected, re-encoded frame inside a package.
type Keyframe struct {
	Index      int
	SceneIndex int
	Timestamp  float64
	Data       []byte
}

// Package is the complete bundle for one video: manifest, ordered
// keyframes, transcript, scenes and the scene-to-transcript mapping.
// A Package owns its contents exclusively; once written to an archive
// it is a value, and reloading produces a fresh, independent Package.
type Package struct {
	Manifest   Manifest
	Keyframes  []Keyframe
	Transcript []TranscriptSegment
	Scenes     []Scene

	// SceneSegments maps a scene index to indices into Transcript.
	// A segment spanning a boundary appears under both scenes.
	SceneSegments map[int][]int
}

// SceneKeyframes returns the keyframe indices belonging to the scene.
func (p *Package) SceneKeyframes(sceneIndex int) []int {
	var indices []int
	for _, kf := range p.Keyframes {
		if kf.SceneIndex == sceneIndex {
			indices = append(indices, kf.Index)
		}
	}
	return indices
}

// SceneText returns the transcript segments overlapping the scene, in order.
func (p *Package) SceneText(sceneIndex int) []TranscriptSegment {
	indices := p.SceneSegments[sceneIndex]
	segments := make([]TranscriptSegment, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(p.Transcript) {
			segments = append(segments, p.Transcript[i])
		}
	}
	return segments
}

// HasTranscript reports whether any transcript text is present.
func (p *Package) HasTranscript() bool {
	return len(p.Transcript) > 0
}

// FullText concatenates all transcript segments.
func (p *Package) FullText() string {
	var out string
	for i, seg := range p.Transcript {
		if i > 0 {
			out += " "
		}
		out += seg.Text
	}
	return out
}
