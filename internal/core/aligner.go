package core

import (
	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// Align associates transcript segments with every scene they temporally
// overlap, comparing the half-open intervals [segment.Start, segment.End)
// and [scene.StartTime, scene.EndTime). A segment spanning a scene
// boundary is attached to both scenes, so each scene is self-describing.
// The returned map holds indices into segments, per scene index; with no
// transcript the mapping is empty, which is not an error.
func Align(segments []entity.TranscriptSegment, scenes []entity.Scene) map[int][]int {
	aligned := make(map[int][]int)
	for i, seg := range segments {
		for _, sc := range scenes {
			if seg.Start < sc.EndTime && seg.End > sc.StartTime {
				aligned[sc.Index] = append(aligned[sc.Index], i)
			}
		}
	}
	return aligned
}
