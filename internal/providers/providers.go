// Package providers implements adapters that query hosted multimodal
// models with a finished package. The pipeline core never depends on a
// concrete provider, only on the Package value type.
package providers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
	"github.com/lvpkg/lvp-processing-service/internal/domain/port"
)

// maxImagesPerQuery caps how many keyframes are uploaded per request;
// larger packages are thinned by uniform striding.
const maxImagesPerQuery = 20

// New returns the named provider using the given API key.
func New(name, apiKey string) (port.Provider, error) {
	switch name {
	case "claude":
		return NewClaude(apiKey, "")
	case "openai":
		return NewOpenAI(apiKey, "")
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: claude, openai)", name)
	}
}

func keyframesBase64(pkg *entity.Package) []string {
	keyframes := pkg.Keyframes
	if len(keyframes) > maxImagesPerQuery {
		step := len(keyframes) / maxImagesPerQuery
		thinned := make([]entity.Keyframe, 0, maxImagesPerQuery)
		for i := 0; i < len(keyframes) && len(thinned) < maxImagesPerQuery; i += step {
			thinned = append(thinned, keyframes[i])
		}
		keyframes = thinned
	}

	encoded := make([]string, len(keyframes))
	for i, kf := range keyframes {
		encoded[i] = base64.StdEncoding.EncodeToString(kf.Data)
	}
	return encoded
}

func contextText(pkg *entity.Package) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video: %s\n", pkg.Manifest.Source.Filename)
	fmt.Fprintf(&b, "Duration: %.1f seconds\n", pkg.Manifest.Source.DurationSeconds)
	fmt.Fprintf(&b, "Keyframes shown: %d\n", pkg.Manifest.Content.KeyframeCount)
	if pkg.HasTranscript() {
		fmt.Fprintf(&b, "\nTranscript:\n%s\n", pkg.FullText())
	}
	return b.String()
}
