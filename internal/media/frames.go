package media

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clipscan/clipscan/internal/logger"
)

// Frame is one sampled frame: its index in the source video plus the decoded
// image and the on-disk JPEG it was decoded from. The JPEG path is kept so
// extractors that shell out to external tools can hand the file over directly.
type Frame struct {
	Index int
	Path  string
	Img   image.Image
}

// FFmpeg wraps the ffmpeg binary for frame extraction and filter-based
// stream analysis.
type FFmpeg struct {
	ffmpegPath string
}

// NewFFmpeg creates an FFmpeg wrapper with the given binary path
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	return &FFmpeg{ffmpegPath: ffmpegPath}
}

// ExtractFrames pulls the frames with the given indices out of the video in a
// single ffmpeg pass and decodes them. Indices must be sorted ascending; the
// returned frames are in the same order. scaleWidth > 0 downscales each frame
// to that width (keeping aspect); scaleWidth <= 0 keeps native resolution.
//
// The JPEGs are written under outDir, which the caller owns and cleans up.
func (f *FFmpeg) ExtractFrames(ctx context.Context, input, outDir string, indices []int, scaleWidth int) ([]*Frame, error) {
	if len(indices) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	pattern := filepath.Join(outDir, "frame_%05d.jpg")

	args := []string{
		"-i", input,
		"-vf", buildSelectFilter(indices, scaleWidth),
		"-vsync", "0",
		"-q:v", "2",
		"-y",
		pattern,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("frame extraction failed: %w (%s)", err, lastLines(string(output), 3))
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "frame_") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("frame extraction produced no frames for %s", input)
	}
	if len(names) < len(indices) {
		// Index list ran past the end of the stream; keep what we got
		logger.Debug("Extracted fewer frames than requested",
			"video", input, "requested", len(indices), "got", len(names))
	}

	frames := make([]*Frame, 0, len(names))
	for i, name := range names {
		path := filepath.Join(outDir, name)
		img, err := decodeJPEG(path)
		if err != nil {
			return nil, fmt.Errorf("decode frame %s: %w", name, err)
		}
		idx := indices[len(indices)-1]
		if i < len(indices) {
			idx = indices[i]
		}
		frames = append(frames, &Frame{Index: idx, Path: path, Img: img})
	}

	return frames, nil
}

// buildSelectFilter builds the -vf expression selecting exactly the given
// frame indices, with an optional trailing downscale.
func buildSelectFilter(indices []int, scaleWidth int) string {
	var b strings.Builder
	b.WriteString("select='")
	for i, idx := range indices {
		if i > 0 {
			b.WriteByte('+')
		}
		fmt.Fprintf(&b, "eq(n\\,%d)", idx)
	}
	b.WriteByte('\'')
	if scaleWidth > 0 {
		fmt.Fprintf(&b, ",scale=%d:-2", scaleWidth)
	}
	return b.String()
}

func decodeJPEG(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return jpeg.Decode(fh)
}

// lastLines returns the last n non-empty lines from tool output
func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
