package lvp

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	// Keyframe entries are validated by decoding; webp registers itself
	// with the image package.
	_ "golang.org/x/image/webp"
	_ "image/jpeg"
	_ "image/png"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// Load opens and validates a .lvp archive from disk. See Read.
func Load(path string, logger *zap.Logger) (*entity.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Check: "archive", Detail: err.Error()}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ValidationError{Check: "archive", Detail: err.Error()}
	}
	return Read(f, info.Size(), logger)
}

// Read parses a byte stream purporting to be a package. Validation stops
// at the first failing check: archive readability, manifest presence and
// shape, format version (major mismatch fails, minor mismatch warns),
// declared keyframe count versus actual entries, and decodability of
// every keyframe image. No partial Package is ever returned.
func Read(r io.ReaderAt, size int64, logger *zap.Logger) (*entity.Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ValidationError{Check: "archive", Detail: err.Error()}
	}

	entries := make(map[string]*zip.File, len(zr.File))
	var keyframeNames []string
	for _, f := range zr.File {
		entries[f.Name] = f
		if strings.HasPrefix(f.Name, keyframePrefix) && strings.HasSuffix(f.Name, keyframeExt) {
			keyframeNames = append(keyframeNames, f.Name)
		}
	}
	sort.Strings(keyframeNames)

	manifestFile, ok := entries[manifestEntry]
	if !ok {
		return nil, &ValidationError{Check: "manifest", Detail: "manifest.json entry missing"}
	}
	manifestData, err := readEntry(manifestFile)
	if err != nil {
		return nil, &ValidationError{Check: "manifest", Detail: err.Error()}
	}
	var manifest entity.Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, &ValidationError{Check: "manifest", Detail: err.Error()}
	}

	major, minor, err := entity.ParseVersion(manifest.LVPVersion)
	if err != nil {
		return nil, &ValidationError{Check: "lvp_version", Detail: err.Error()}
	}
	supportedMajor, supportedMinor, _ := entity.ParseVersion(entity.LVPVersion)
	if major != supportedMajor {
		return nil, &FormatError{Version: manifest.LVPVersion, Supported: entity.LVPVersion}
	}
	if minor != supportedMinor && logger != nil {
		logger.Warn("package minor version differs from supported version",
			zap.String("package_version", manifest.LVPVersion),
			zap.String("supported_version", entity.LVPVersion),
		)
	}

	if len(keyframeNames) != manifest.Content.KeyframeCount {
		return nil, &ValidationError{
			Check: "keyframe_count",
			Detail: fmt.Sprintf("manifest declares %d keyframes, archive contains %d",
				manifest.Content.KeyframeCount, len(keyframeNames)),
		}
	}

	keyframes := make([]entity.Keyframe, len(keyframeNames))
	for i, name := range keyframeNames {
		data, err := readEntry(entries[name])
		if err != nil {
			return nil, &ValidationError{Check: "keyframe_read", Detail: fmt.Sprintf("%s: %v", name, err)}
		}
		if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			return nil, &ValidationError{Check: "keyframe_decode", Detail: fmt.Sprintf("%s: %v", name, err)}
		}
		keyframes[i] = entity.Keyframe{Index: i, Data: data}
	}

	var transcript []entity.TranscriptSegment
	if f, ok := entries[transcriptEntry]; ok {
		data, err := readEntry(f)
		if err != nil {
			return nil, &ValidationError{Check: "transcript", Detail: err.Error()}
		}
		if err := json.Unmarshal(data, &transcript); err != nil {
			return nil, &ValidationError{Check: "transcript", Detail: err.Error()}
		}
	}

	var records []sceneRecord
	if f, ok := entries[scenesEntry]; ok {
		data, err := readEntry(f)
		if err != nil {
			return nil, &ValidationError{Check: "scenes", Detail: err.Error()}
		}
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, &ValidationError{Check: "scenes", Detail: err.Error()}
		}
	}

	scenes := make([]entity.Scene, len(records))
	sceneSegments := make(map[int][]int, len(records))
	for i, rec := range records {
		scenes[i] = entity.Scene{
			Index:         rec.Index,
			StartTime:     rec.StartTime,
			EndTime:       rec.EndTime,
			BoundaryScore: rec.BoundaryScore,
		}
		if len(rec.SegmentIndices) > 0 {
			sceneSegments[rec.Index] = rec.SegmentIndices
		}
		for _, kfIdx := range rec.KeyframeIndices {
			if kfIdx >= 0 && kfIdx < len(keyframes) {
				keyframes[kfIdx].SceneIndex = rec.Index
			}
		}
	}

	// Older minor versions may omit the processing block; timestamps
	// default to zero in that case.
	if manifest.Processing != nil {
		for i, ts := range manifest.Processing.KeyframeTimestamps {
			if i < len(keyframes) {
				keyframes[i].Timestamp = ts
			}
		}
	}

	return &entity.Package{
		Manifest:      manifest,
		Keyframes:     keyframes,
		Transcript:    transcript,
		Scenes:        scenes,
		SceneSegments: sceneSegments,
	}, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
