package lvp

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvpkg/lvp-processing-service/internal/domain/entity"
)

// Write serializes the package as a .lvp archive. The internal layout is
// deterministic: manifest first, then keyframes ordered by timestamp with
// zero-padded names, then transcript and scenes. Entry modification times
// are pinned to the manifest's created_at, so two saves of an identical
// Package differ only through that field.
func Write(pkg *entity.Package, w io.Writer) error {
	zw := zip.NewWriter(w)

	manifest, err := json.MarshalIndent(pkg.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeEntry(zw, pkg, manifestEntry, manifest); err != nil {
		return err
	}

	for _, kf := range pkg.Keyframes {
		if err := writeEntry(zw, pkg, keyframeEntryName(kf.Index), kf.Data); err != nil {
			return err
		}
	}

	transcript := pkg.Transcript
	if transcript == nil {
		transcript = []entity.TranscriptSegment{}
	}
	transcriptJSON, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := writeEntry(zw, pkg, transcriptEntry, transcriptJSON); err != nil {
		return err
	}

	records := make([]sceneRecord, len(pkg.Scenes))
	for i, sc := range pkg.Scenes {
		records[i] = sceneRecord{
			Index:           sc.Index,
			StartTime:       sc.StartTime,
			EndTime:         sc.EndTime,
			BoundaryScore:   sc.BoundaryScore,
			KeyframeIndices: emptyIfNil(pkg.SceneKeyframes(sc.Index)),
			SegmentIndices:  emptyIfNil(pkg.SceneSegments[sc.Index]),
		}
	}
	scenesJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scenes: %w", err)
	}
	if err := writeEntry(zw, pkg, scenesEntry, scenesJSON); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// Save writes the package to disk, appending the .lvp extension when
// missing. The file is written atomically via a temp sibling.
func Save(pkg *entity.Package, path string) (string, error) {
	if !strings.HasSuffix(path, ".lvp") {
		path += ".lvp"
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".lvp-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp package: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Write(pkg, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp package: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("move package into place: %w", err)
	}
	return path, nil
}

func writeEntry(zw *zip.Writer, pkg *entity.Package, name string, data []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: pkg.Manifest.CreatedAt,
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}

func emptyIfNil(indices []int) []int {
	if indices == nil {
		return []int{}
	}
	return indices
}
