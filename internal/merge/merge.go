// Package merge writes analysis results into per-video metadata JSON files
// without disturbing unrelated fields.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clipscan/clipscan/internal/analysis"
	"github.com/clipscan/clipscan/internal/logger"
)

// AnalysisKey is the top-level metadata field owned by this tool. Everything
// else in the file is preserved verbatim.
const AnalysisKey = "analysis"

// ErrNoData means the result carried nothing worth persisting, so the
// metadata file was left untouched.
var ErrNoData = errors.New("analysis produced no usable data")

// WriteResult merges res into the metadata file at path, creating the file
// if it does not exist. The write is atomic: a temp file in the same
// directory is renamed over the target, so a crash mid-write never leaves a
// truncated metadata file. Re-running replaces the previous analysis section.
func WriteResult(path string, res *analysis.Result) error {
	if !res.HasData() {
		return fmt.Errorf("%s: %w", res.Video, ErrNoData)
	}

	meta, err := readMetadata(path)
	if err != nil {
		return err
	}
	section, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	meta[AnalysisKey] = section

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	data = append(data, '\n')

	if err := writeAtomic(path, data); err != nil {
		return err
	}
	logger.Debug("Metadata updated", "path", path)
	return nil
}

// readMetadata loads the existing metadata map, or an empty one if the file
// does not exist yet.
func readMetadata(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	meta := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
		}
	}
	return meta, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".clipscan-meta-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing metadata: %w", err)
	}
	return nil
}

// MetadataPath returns the metadata file that pairs with a video: the same
// path with the extension swapped for .json.
func MetadataPath(video string) string {
	ext := filepath.Ext(video)
	return video[:len(video)-len(ext)] + ".json"
}
