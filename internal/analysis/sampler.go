package analysis

// SampleIndices returns the evenly spaced frame indices to extract from a
// video with totalFrames frames. A configured percentage takes precedence
// over the fixed frame count. Indices are strictly increasing and never
// exceed totalFrames entries.
func SampleIndices(totalFrames int, cfg *Config) []int {
	if totalFrames <= 0 {
		return nil
	}

	count := cfg.SampleFrames
	if cfg.SamplePercent > 0 {
		count = totalFrames * cfg.SamplePercent / 100
		if count < 1 {
			count = 1
		}
	}
	if count > totalFrames {
		count = totalFrames
	}
	if count < 1 {
		count = 1
	}

	indices := make([]int, count)
	for i := range indices {
		indices[i] = i * totalFrames / count
	}
	return indices
}
