package lvp

import (
	"fmt"
	"strings"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// LLMPrompt renders the package as a structured text prompt, for callers
// without access to a vision API.
func LLMPrompt(pkg *entity.Package) string {
	src := pkg.Manifest.Source
	var b strings.Builder

	b.WriteString("# Video Analysis Package\n")
	b.WriteString("\n## Source Information\n")
	fmt.Fprintf(&b, "- File: %s\n", src.Filename)
	fmt.Fprintf(&b, "- Duration: %.1f seconds\n", src.DurationSeconds)
	fmt.Fprintf(&b, "- Resolution: %s\n", src.OriginalResolution)
	fmt.Fprintf(&b, "- Keyframes extracted: %d\n", pkg.Manifest.Content.KeyframeCount)
	fmt.Fprintf(&b, "- Scenes detected: %d\n", pkg.Manifest.Content.SceneCount)

	if pkg.HasTranscript() {
		b.WriteString("\n## Transcript\n")
		b.WriteString(pkg.FullText())
		b.WriteString("\n")
	}

	if len(pkg.Scenes) > 0 {
		b.WriteString("\n## Scene Breakdown\n")
		for _, sc := range pkg.Scenes {
			fmt.Fprintf(&b, "- Scene %d: %.1fs - %.1fs (%.1fs, %d keyframes)\n",
				sc.Index, sc.StartTime, sc.EndTime, sc.Duration(),
				len(pkg.SceneKeyframes(sc.Index)))
		}
	}

	return b.String()
}

// Summary holds the human-facing statistics of a saved package.
type Summary struct {
	SourceFile       string  `json:"source_file"`
	DurationSeconds  float64 `json:"duration_seconds"`
	OriginalSizeMB   float64 `json:"original_size_mb"`
	PackageSizeKB    float64 `json:"package_size_kb"`
	CompressionRatio float64 `json:"compression_ratio"`
	Keyframes        int     `json:"keyframes"`
	Scenes           int     `json:"scenes"`
	HasTranscript    bool    `json:"has_transcript"`
	Profile          string  `json:"profile"`
}

// Summarize derives a Summary from a loaded package and the archive size
// in bytes (zero when the archive size is unknown).
func Summarize(pkg *entity.Package, archiveSize int64) Summary {
	s := Summary{
		SourceFile:      pkg.Manifest.Source.Filename,
		DurationSeconds: pkg.Manifest.Source.DurationSeconds,
		OriginalSizeMB:  float64(pkg.Manifest.Source.OriginalSizeBytes) / 1024 / 1024,
		Keyframes:       pkg.Manifest.Content.KeyframeCount,
		Scenes:          pkg.Manifest.Content.SceneCount,
		HasTranscript:   pkg.Manifest.Content.HasTranscript,
	}
	if pkg.Manifest.Processing != nil {
		s.Profile = pkg.Manifest.Processing.DeviceProfile
	}
	if archiveSize > 0 {
		s.PackageSizeKB = float64(archiveSize) / 1024
		s.CompressionRatio = float64(pkg.Manifest.Source.OriginalSizeBytes) / float64(archiveSize)
	}
	return s
}
