// Package util contains small formatting helpers shared by the CLI and workers.
package util

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in a human-readable IEC form (e.g. "1.5 MiB").
func FormatBytes(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

// FormatDuration renders a duration as h/m/s without sub-second noise.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatRate renders a videos-per-second throughput figure.
func FormatRate(count int, elapsed time.Duration) string {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(count)/secs)
}
