// Package analysis implements the batch video-analysis pipeline: preset
// resolution, frame sampling, the feature extractors, the per-video analyzer,
// and the bounded-worker batch engine.
package analysis

import (
	"fmt"
	"runtime"

	"github.com/clipscan/clipscan/internal/logger"
)

// Thoroughness presets, ordered fastest to most thorough.
const (
	PresetQuick    = "quick"
	PresetBalanced = "balanced"
	PresetThorough = "thorough"
	PresetMaximum  = "maximum"
	PresetExtreme  = "extreme"
)

// Presets lists the valid preset names in speed order.
var Presets = []string{PresetQuick, PresetBalanced, PresetThorough, PresetMaximum, PresetExtreme}

// Face model variants. Short trades accuracy for speed.
const (
	FaceModelShort = "short"
	FaceModelFull  = "full"
)

// Documented bounds for numeric parameters. Out-of-range overrides are
// rejected, never clamped.
const (
	MinSampleFrames = 1
	MaxSampleFrames = 300

	MinSamplePercent = 1
	MaxSamplePercent = 100

	MinColorClusters = 3
	MaxColorClusters = 20

	MinMotionResolution = 80
	MaxMotionResolution = 1080
)

// Config is the fully resolved parameter set for one batch run.
// Built once by Resolve and immutable afterwards; safe to share across
// workers by reference.
type Config struct {
	Thoroughness     string `json:"thoroughness"`
	SampleFrames     int    `json:"sample_frames"`
	SamplePercent    int    `json:"sample_percent"` // 0 = use SampleFrames
	ColorClusters    int    `json:"color_clusters"`
	MotionResolution int    `json:"motion_resolution"`
	FaceModel        string `json:"face_model"`
	UseYOLO          bool   `json:"use_yolo"`
	SceneDetection   bool   `json:"scene_detection"`
	FullResolution   bool   `json:"full_resolution"`
	EnableAudio      bool   `json:"enable_audio"`
	Workers          int    `json:"workers"`
}

// Overrides carries explicit per-field overrides on top of a preset.
// Nil pointers mean "keep the preset default".
type Overrides struct {
	SampleFrames     *int
	SamplePercent    *int
	ColorClusters    *int
	MotionResolution *int
	FaceModel        *string
	Workers          *int
	UseYOLO          *bool
	SceneDetection   *bool
	FullResolution   *bool
	EnableAudio      *bool
}

// ConfigError reports an invalid or out-of-range parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// presetTable holds the base defaults per preset. The extreme preset's
// forced scene-detection/full-resolution behavior is intentionally NOT in
// this table; it is applied as a post-pass in Resolve so explicit overrides
// still win.
var presetTable = map[string]Config{
	PresetQuick: {
		Thoroughness:     PresetQuick,
		SampleFrames:     8,
		ColorClusters:    4,
		MotionResolution: 160,
		FaceModel:        FaceModelShort,
		UseYOLO:          false,
		EnableAudio:      false,
	},
	PresetBalanced: {
		Thoroughness:     PresetBalanced,
		SampleFrames:     20,
		ColorClusters:    6,
		MotionResolution: 320,
		FaceModel:        FaceModelShort,
		UseYOLO:          true,
		EnableAudio:      true,
	},
	PresetThorough: {
		Thoroughness:     PresetThorough,
		SampleFrames:     45,
		ColorClusters:    8,
		MotionResolution: 480,
		FaceModel:        FaceModelFull,
		UseYOLO:          true,
		EnableAudio:      true,
	},
	PresetMaximum: {
		Thoroughness:     PresetMaximum,
		SampleFrames:     90,
		ColorClusters:    12,
		MotionResolution: 720,
		FaceModel:        FaceModelFull,
		UseYOLO:          true,
		EnableAudio:      true,
	},
	PresetExtreme: {
		Thoroughness:     PresetExtreme,
		SampleFrames:     150,
		ColorClusters:    16,
		MotionResolution: 1080,
		FaceModel:        FaceModelFull,
		UseYOLO:          true,
		EnableAudio:      true,
	},
}

// Resolve builds a validated Config from a preset plus explicit overrides.
// Application order: preset defaults, forced extreme defaults, explicit
// overrides. Every numeric field of the returned config lies within its
// documented bound.
func Resolve(preset string, ov Overrides) (*Config, error) {
	base, ok := presetTable[preset]
	if !ok {
		return nil, &ConfigError{Field: "thoroughness", Value: preset,
			Reason: fmt.Sprintf("must be one of %v", Presets)}
	}
	cfg := base

	// Extreme forces the two expensive toggles on unless the caller
	// explicitly turned them off; overrides below still win.
	if preset == PresetExtreme {
		cfg.SceneDetection = true
		cfg.FullResolution = true
	}

	if ov.SampleFrames != nil && ov.SamplePercent == nil {
		if err := checkRange("sample_frames", *ov.SampleFrames, MinSampleFrames, MaxSampleFrames); err != nil {
			return nil, err
		}
		cfg.SampleFrames = *ov.SampleFrames
	}
	if ov.SamplePercent != nil {
		if err := checkRange("sample_percent", *ov.SamplePercent, MinSamplePercent, MaxSamplePercent); err != nil {
			return nil, err
		}
		if ov.SampleFrames != nil {
			// Percentage wins over an explicit frame count. Documented
			// precedence, not an error.
			logger.Warn("Both sample-percent and sample-frames set; percentage takes precedence",
				"sample_percent", *ov.SamplePercent, "sample_frames", *ov.SampleFrames)
		}
		cfg.SamplePercent = *ov.SamplePercent
	}
	if ov.ColorClusters != nil {
		if err := checkRange("color_clusters", *ov.ColorClusters, MinColorClusters, MaxColorClusters); err != nil {
			return nil, err
		}
		cfg.ColorClusters = *ov.ColorClusters
	}
	if ov.MotionResolution != nil {
		if err := checkRange("motion_resolution", *ov.MotionResolution, MinMotionResolution, MaxMotionResolution); err != nil {
			return nil, err
		}
		cfg.MotionResolution = *ov.MotionResolution
	}
	if ov.FaceModel != nil {
		if *ov.FaceModel != FaceModelShort && *ov.FaceModel != FaceModelFull {
			return nil, &ConfigError{Field: "face_model", Value: *ov.FaceModel,
				Reason: fmt.Sprintf("must be %q or %q", FaceModelShort, FaceModelFull)}
		}
		cfg.FaceModel = *ov.FaceModel
	}
	if ov.Workers != nil {
		if *ov.Workers < 1 {
			return nil, &ConfigError{Field: "workers", Value: *ov.Workers, Reason: "must be at least 1"}
		}
		cfg.Workers = *ov.Workers
	}
	if ov.UseYOLO != nil {
		cfg.UseYOLO = *ov.UseYOLO
	}
	if ov.SceneDetection != nil {
		cfg.SceneDetection = *ov.SceneDetection
	}
	if ov.FullResolution != nil {
		cfg.FullResolution = *ov.FullResolution
	}
	if ov.EnableAudio != nil {
		cfg.EnableAudio = *ov.EnableAudio
	}

	// Auto worker count is resolved here so the engine never reads
	// host state itself: one less than available parallelism, minimum 1.
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU() - 1
		if cfg.Workers < 1 {
			cfg.Workers = 1
		}
	}

	return &cfg, nil
}

func checkRange(field string, value, min, max int) error {
	if value < min || value > max {
		return &ConfigError{Field: field, Value: value,
			Reason: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return nil
}
