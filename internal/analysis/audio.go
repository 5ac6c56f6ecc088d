package analysis

import (
	"context"

	"github.com/clipscan/clipscan/internal/logger"
)

// Silence detection parameters matching common speech content: anything
// quieter than -35 dB for at least half a second counts as silence.
const (
	silenceNoiseDB     = -35.0
	silenceMinDuration = 0.5
)

type audioExtractor struct {
	tools MediaTools
}

func (e *audioExtractor) Name() string { return "audio" }

func (e *audioExtractor) Extract(ctx context.Context, src *Source, res *Result) error {
	if src.Info != nil && !src.Info.HasAudio {
		logger.Debug("No audio stream, skipping audio analysis", "video", src.Path)
		return nil
	}

	stats, err := e.tools.AnalyzeVolume(ctx, src.Path)
	if err != nil {
		return err
	}
	spans, err := e.tools.DetectSilence(ctx, src.Path, silenceNoiseDB, silenceMinDuration)
	if err != nil {
		return err
	}

	ratio := 0.0
	if src.Info != nil && src.Info.Duration > 0 {
		var silent float64
		for _, s := range spans {
			silent += s.Duration
		}
		ratio = silent / src.Info.Duration.Seconds()
		if ratio > 1 {
			ratio = 1
		}
	}
	res.Audio = &AudioResult{
		MeanVolumeDB: stats.MeanVolume,
		MaxVolumeDB:  stats.MaxVolume,
		SilenceRatio: ratio,
		SilenceSpans: len(spans),
	}
	return nil
}
