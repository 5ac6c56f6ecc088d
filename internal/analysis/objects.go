package analysis

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// maxObjectFrames bounds how many frames go through the external detector;
// one process launch per frame is the expensive part of a run.
const maxObjectFrames = 12

// objectExtractor shells out to an external YOLO-style detector once per
// sampled frame. The command receives a frame image path as its only
// argument and prints one detection per line as "label confidence".
type objectExtractor struct {
	command string
}

func (e *objectExtractor) Name() string { return "objects" }

func (e *objectExtractor) Extract(ctx context.Context, src *Source, res *Result) error {
	if len(src.Frames) == 0 {
		return fmt.Errorf("no sampled frames")
	}
	bin, err := exec.LookPath(e.command)
	if err != nil {
		return fmt.Errorf("object detector %q not found in PATH", e.command)
	}

	frames := src.Frames
	if len(frames) > maxObjectFrames {
		sel := frames[:0:0]
		for i := 0; i < maxObjectFrames; i++ {
			sel = append(sel, frames[i*len(frames)/maxObjectFrames])
		}
		frames = sel
	}

	out := &ObjectResult{Counts: make(map[string]int)}
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd := exec.CommandContext(ctx, bin, f.Path)
		raw, err := cmd.Output()
		if err != nil {
			return fmt.Errorf("detector failed on frame %d: %w", f.Index, err)
		}
		for _, det := range parseDetections(string(raw), f.Index) {
			out.Detections = append(out.Detections, det)
			out.Counts[det.Label]++
		}
	}
	res.Objects = out
	return nil
}

// parseDetections reads "label confidence" lines from detector output.
// Malformed lines are skipped.
func parseDetections(raw string, frame int) []ObjectDetection {
	var dets []ObjectDetection
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		conf, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || conf < 0 || conf > 1 {
			continue
		}
		dets = append(dets, ObjectDetection{
			Frame:      frame,
			Label:      fields[0],
			Confidence: conf,
		})
	}
	return dets
}
