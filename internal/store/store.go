// Package store persists batch run history.
package store

import "time"

// Run is one completed batch invocation.
type Run struct {
	ID         string        `json:"id"`
	Preset     string        `json:"preset"`
	Root       string        `json:"root"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Elapsed    time.Duration `json:"elapsed"`
	Total      int           `json:"total"`
	Analyzed   int           `json:"analyzed"` // results with usable data
	Failed     int           `json:"failed"`   // results with no usable data
	Workers    int           `json:"workers"`
}

// VideoRecord is the per-video outcome within a run.
type VideoRecord struct {
	RunID         string `json:"run_id"`
	Video         string `json:"video"`
	SampledFrames int    `json:"sampled_frames"`
	ErrorCount    int    `json:"error_count"`
	Merged        bool   `json:"merged"`
	Error         string `json:"error,omitempty"` // first recorded error, if any
}

// Store records runs and their per-video outcomes.
type Store interface {
	SaveRun(run *Run, videos []VideoRecord) error
	ListRuns(limit int) ([]*Run, error)
	GetRunVideos(runID string) ([]VideoRecord, error)
	Close() error
}
