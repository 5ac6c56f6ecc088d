package analysis

import (
	"context"

	"github.com/clipscan/clipscan/internal/media"
)

// Source is the per-video input handed to each extractor: the probed
// metadata, the decoded sample frames, and the resolved config. Extractors
// read from it and write their section of the Result.
type Source struct {
	Path   string
	Info   *media.Info
	Frames []*media.Frame
	Config *Config
}

// Extractor computes one feature from a Source. Extractors are independently
// fallible: an error is recorded against the video and the remaining
// extractors still run.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, src *Source, res *Result) error
}

// VideoProber probes container metadata. Implemented by media.Prober.
type VideoProber interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
}

// MediaTools is the subset of ffmpeg operations the extractors need.
// Implemented by media.FFmpeg.
type MediaTools interface {
	ExtractFrames(ctx context.Context, input, outDir string, indices []int, scaleWidth int) ([]*media.Frame, error)
	DetectScenes(ctx context.Context, input string, threshold float64) ([]float64, error)
	AnalyzeVolume(ctx context.Context, input string) (*media.VolumeStats, error)
	DetectSilence(ctx context.Context, input string, noiseDB, minDuration float64) ([]media.SilenceSpan, error)
}

// buildExtractors assembles the extractor set enabled by cfg, in a fixed
// order so result and error ordering is stable across runs.
func (a *Analyzer) buildExtractors(cfg *Config) []Extractor {
	exs := []Extractor{
		&colorExtractor{clusters: cfg.ColorClusters},
		&motionExtractor{resolution: cfg.MotionResolution},
		&faceExtractor{model: cfg.FaceModel},
	}
	if cfg.UseYOLO {
		exs = append(exs, &objectExtractor{command: a.opts.ObjectDetector})
	}
	if cfg.SceneDetection {
		exs = append(exs, &sceneExtractor{tools: a.tools, threshold: a.opts.SceneThreshold})
	}
	if cfg.EnableAudio {
		exs = append(exs, &audioExtractor{tools: a.tools})
	}
	return exs
}
