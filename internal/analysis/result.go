package analysis

import "time"

// Result holds everything extracted from one video. Extractor failures are
// recorded in Errors; a partially populated Result is still usable.
type Result struct {
	Video         string    `json:"video"`
	Thoroughness  string    `json:"thoroughness"`
	SampledFrames int       `json:"sampled_frames"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
	Errors        []string  `json:"errors,omitempty"`

	Quality *QualitySummary `json:"video_quality,omitempty"`
	Color   *ColorResult    `json:"color,omitempty"`
	Motion  *MotionResult   `json:"motion,omitempty"`
	Faces   *FaceResult     `json:"faces,omitempty"`
	Objects *ObjectResult   `json:"objects,omitempty"`
	Scenes  *SceneResult    `json:"scenes,omitempty"`
	Audio   *AudioResult    `json:"audio,omitempty"`
}

// HasData reports whether at least one extractor (or the probe step)
// produced usable output.
func (r *Result) HasData() bool {
	return r.Quality != nil || r.Color != nil || r.Motion != nil ||
		r.Faces != nil || r.Objects != nil || r.Scenes != nil || r.Audio != nil
}

// QualitySummary combines container metadata with pixel statistics
// measured on the sampled frames.
type QualitySummary struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Duration   float64 `json:"duration_seconds"`
	FrameRate  float64 `json:"frame_rate"`
	Bitrate    int64   `json:"bitrate"`
	Codec      string  `json:"codec"`
	Brightness float64 `json:"brightness"` // mean luma, 0..255
	Contrast   float64 `json:"contrast"`   // luma standard deviation
	Sharpness  float64 `json:"sharpness"`  // mean gradient magnitude
}

// ColorCluster is one dominant color with its share of sampled pixels.
type ColorCluster struct {
	R          uint8   `json:"r"`
	G          uint8   `json:"g"`
	B          uint8   `json:"b"`
	Proportion float64 `json:"proportion"`
}

// ColorResult holds the dominant color clusters sorted by proportion,
// largest first.
type ColorResult struct {
	Clusters []ColorCluster `json:"clusters"`
}

// MotionResult summarizes frame-to-frame pixel change across the sample.
type MotionResult struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"` // number of frame pairs compared
}

// FaceResult summarizes face detections across the sampled frames.
type FaceResult struct {
	Model           string  `json:"model"`
	FramesWithFaces int     `json:"frames_with_faces"`
	TotalDetections int     `json:"total_detections"`
	AvgCoverage     float64 `json:"avg_coverage"` // mean fraction of frame area covered
}

// ObjectDetection is a single labelled detection on one sampled frame.
type ObjectDetection struct {
	Frame      int     `json:"frame"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ObjectResult holds raw detections plus per-label counts.
type ObjectResult struct {
	Detections []ObjectDetection `json:"detections"`
	Counts     map[string]int    `json:"counts"`
}

// SceneResult lists detected scene-cut timestamps in seconds.
type SceneResult struct {
	Threshold float64   `json:"threshold"`
	Cuts      []float64 `json:"cuts"`
	Count     int       `json:"count"`
}

// AudioResult summarizes loudness and silence of the audio stream.
type AudioResult struct {
	MeanVolumeDB float64 `json:"mean_volume_db"`
	MaxVolumeDB  float64 `json:"max_volume_db"`
	SilenceRatio float64 `json:"silence_ratio"` // silent seconds / duration
	SilenceSpans int     `json:"silence_spans"`
}
