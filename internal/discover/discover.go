// Package discover finds video files to analyze.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/clipscan/clipscan/internal/logger"
	"github.com/clipscan/clipscan/internal/media"
	"github.com/clipscan/clipscan/internal/merge"
)

// Video pairs a video file with its metadata sidecar. The sidecar may not
// exist yet; it is created on the first merge.
type Video struct {
	Path         string
	MetadataPath string
	HasMetadata  bool
	Size         int64
}

// Scan walks root recursively and returns every video file, sorted by path
// for deterministic batch ordering. Hidden directories are skipped.
func Scan(root string) ([]Video, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		if !media.IsVideoFile(root) {
			return nil, fmt.Errorf("%s is not a recognized video file", root)
		}
		return []Video{describe(root, info.Size())}, nil
	}

	var videos []Video
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if !media.IsVideoFile(path) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			logger.Warn("Skipping unreadable file", "path", path, "error", err)
			return nil
		}
		videos = append(videos, describe(path, fi.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Slice(videos, func(i, j int) bool { return videos[i].Path < videos[j].Path })
	return videos, nil
}

func describe(path string, size int64) Video {
	metaPath := merge.MetadataPath(path)
	_, err := os.Stat(metaPath)
	return Video{
		Path:         path,
		MetadataPath: metaPath,
		HasMetadata:  err == nil,
		Size:         size,
	}
}
