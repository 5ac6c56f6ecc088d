package analysis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/clipscan/clipscan/internal/logger"
)

// analysisWidth is the scale-down target for sampled frames when full
// resolution analysis is off.
const analysisWidth = 640

// AnalyzerOptions carries the host-level knobs the analyzer needs beyond
// the resolved Config.
type AnalyzerOptions struct {
	TempDir        string
	ObjectDetector string
	SceneThreshold float64
}

// Analyzer runs the full extractor pipeline against single videos. Safe for
// concurrent use; each Analyze call works in its own temp directory.
type Analyzer struct {
	cfg    *Config
	prober VideoProber
	tools  MediaTools
	opts   AnalyzerOptions
}

func NewAnalyzer(cfg *Config, prober VideoProber, tools MediaTools, opts AnalyzerOptions) *Analyzer {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Analyzer{cfg: cfg, prober: prober, tools: tools, opts: opts}
}

// Analyze runs every enabled extractor against one video. It never returns
// an error: failures are recorded in the Result so one bad video cannot
// take down a batch.
func (a *Analyzer) Analyze(ctx context.Context, path string) *Result {
	start := time.Now()
	res := &Result{
		Video:        path,
		Thoroughness: a.cfg.Thoroughness,
		AnalyzedAt:   start.UTC(),
	}

	info, err := a.prober.Probe(ctx, path)
	if err != nil {
		// Unreadable container: nothing downstream can run.
		res.Errors = append(res.Errors, fmt.Sprintf("open: %v", err))
		logger.Warn("Failed to open video", "video", path, "error", err)
		return res
	}

	indices := SampleIndices(info.FrameCount, a.cfg)
	scaleWidth := 0
	if !a.cfg.FullResolution {
		// Extracted frames must be at least as wide as the motion
		// analysis target; downscaleGray never upscales.
		scaleWidth = analysisWidth
		if a.cfg.MotionResolution > scaleWidth {
			scaleWidth = a.cfg.MotionResolution
		}
	}

	frameDir, err := os.MkdirTemp(a.opts.TempDir, "clipscan-frames-*")
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("sample: %v", err))
		res.Quality = buildQuality(info, nil)
		return res
	}
	defer os.RemoveAll(frameDir)

	frames, err := a.tools.ExtractFrames(ctx, path, frameDir, indices, scaleWidth)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("sample: %v", err))
	}
	res.SampledFrames = len(frames)
	res.Quality = buildQuality(info, frames)

	src := &Source{Path: path, Info: info, Frames: frames, Config: a.cfg}
	for _, ex := range a.buildExtractors(a.cfg) {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", ex.Name(), err))
			continue
		}
		if err := ex.Extract(ctx, src, res); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", ex.Name(), err))
			logger.Debug("Extractor failed", "video", path, "extractor", ex.Name(), "error", err)
		}
	}

	logger.Debug("Video analyzed",
		"video", path,
		"frames", res.SampledFrames,
		"errors", len(res.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res
}
