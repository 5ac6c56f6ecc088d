package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SilenceSpan is one detected period of silence in the audio stream.
type SilenceSpan struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// VolumeStats holds volume analysis results in dB.
type VolumeStats struct {
	MeanVolume float64 `json:"mean_volume"`
	MaxVolume  float64 `json:"max_volume"`
}

// DetectScenes finds scene-change timestamps (seconds) using ffmpeg's scene
// score filter. threshold is the scene score cutoff, typically 0.3-0.5.
func (f *FFmpeg) DetectScenes(ctx context.Context, input string, threshold float64) ([]float64, error) {
	output, err := f.runNullSink(ctx, []string{
		"-i", input,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-f", "null", "-",
	})
	if err != nil {
		return nil, fmt.Errorf("scene detection failed: %w", err)
	}
	return parseSceneTimes(output), nil
}

// AnalyzeVolume runs ffmpeg's volumedetect filter over the audio stream.
func (f *FFmpeg) AnalyzeVolume(ctx context.Context, input string) (*VolumeStats, error) {
	output, err := f.runNullSink(ctx, []string{
		"-i", input,
		"-vn",
		"-af", "volumedetect",
		"-f", "null", "-",
	})
	if err != nil {
		return nil, fmt.Errorf("volume analysis failed: %w", err)
	}

	stats, ok := parseVolumeStats(output)
	if !ok {
		return nil, fmt.Errorf("volume analysis produced no stats for %s", input)
	}
	return stats, nil
}

// DetectSilence finds silent spans below noiseDB lasting at least minDuration
// seconds.
func (f *FFmpeg) DetectSilence(ctx context.Context, input string, noiseDB, minDuration float64) ([]SilenceSpan, error) {
	output, err := f.runNullSink(ctx, []string{
		"-i", input,
		"-vn",
		"-af", fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseDB, minDuration),
		"-f", "null", "-",
	})
	if err != nil {
		return nil, fmt.Errorf("silence detection failed: %w", err)
	}
	return parseSilenceSpans(output), nil
}

// runNullSink runs ffmpeg with a null output and returns the combined
// output, which is where filters like showinfo and volumedetect report.
func (f *FFmpeg) runNullSink(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w (%s)", err, lastLines(string(output), 3))
	}
	return string(output), nil
}

// parseSceneTimes extracts pts_time values from showinfo filter output.
func parseSceneTimes(output string) []float64 {
	var times []float64
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "pts_time:") {
			continue
		}
		parts := strings.SplitN(line, "pts_time:", 2)
		fields := strings.Fields(strings.TrimSpace(parts[1]))
		if len(fields) == 0 {
			continue
		}
		if seconds, err := strconv.ParseFloat(fields[0], 64); err == nil {
			times = append(times, seconds)
		}
	}
	return times
}

// parseVolumeStats extracts mean_volume and max_volume from volumedetect
// output. Returns false if neither field was present.
func parseVolumeStats(output string) (*VolumeStats, bool) {
	stats := &VolumeStats{}
	found := false
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, "mean_volume:"):
			if v, ok := parseDBField(line, "mean_volume:"); ok {
				stats.MeanVolume = v
				found = true
			}
		case strings.Contains(line, "max_volume:"):
			if v, ok := parseDBField(line, "max_volume:"); ok {
				stats.MaxVolume = v
				found = true
			}
		}
	}
	return stats, found
}

func parseDBField(line, key string) (float64, bool) {
	parts := strings.SplitN(line, key, 2)
	fields := strings.Fields(strings.TrimSpace(parts[1]))
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	return v, err == nil
}

// parseSilenceSpans extracts silence segments from silencedetect output.
func parseSilenceSpans(output string) []SilenceSpan {
	var spans []SilenceSpan
	var currentStart float64

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, "silence_start:"):
			parts := strings.SplitN(line, "silence_start:", 2)
			currentStart, _ = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)

		case strings.Contains(line, "silence_end:"):
			parts := strings.SplitN(line, "silence_end:", 2)
			fields := strings.Fields(strings.TrimSpace(parts[1]))
			if len(fields) == 0 {
				continue
			}
			end, _ := strconv.ParseFloat(fields[0], 64)

			duration := end - currentStart
			if strings.Contains(line, "silence_duration:") {
				durParts := strings.SplitN(line, "silence_duration:", 2)
				if d, err := strconv.ParseFloat(strings.TrimSpace(durParts[1]), 64); err == nil {
					duration = d
				}
			}

			spans = append(spans, SilenceSpan{
				Start:    currentStart,
				End:      end,
				Duration: duration,
			})
		}
	}

	return spans
}
