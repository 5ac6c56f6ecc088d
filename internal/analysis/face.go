package analysis

import (
	"context"
	"errors"
	"image"
)

// faceExtractor runs an in-process skin-region heuristic over the sampled
// frames. The full model scans at a finer grid than short, trading speed
// for smaller detectable regions.
type faceExtractor struct {
	model string
}

func (e *faceExtractor) Name() string { return "faces" }

func (e *faceExtractor) Extract(ctx context.Context, src *Source, res *Result) error {
	if len(src.Frames) == 0 {
		return errors.New("no sampled frames")
	}

	cellSize, pixelStride := 24, 4
	if e.model == FaceModelFull {
		cellSize, pixelStride = 12, 2
	}

	framesWith := 0
	totalDetections := 0
	coverageSum := 0.0
	for _, f := range src.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Img == nil {
			continue
		}
		regions := findSkinRegions(f.Img, cellSize, pixelStride)
		if len(regions) > 0 {
			framesWith++
			totalDetections += len(regions)
			area := f.Img.Bounds().Dx() * f.Img.Bounds().Dy()
			cells := 0
			for _, r := range regions {
				cells += r
			}
			coverageSum += float64(cells*cellSize*cellSize) / float64(area)
		}
	}

	avg := 0.0
	if framesWith > 0 {
		avg = coverageSum / float64(framesWith)
	}
	res.Faces = &FaceResult{
		Model:           e.model,
		FramesWithFaces: framesWith,
		TotalDetections: totalDetections,
		AvgCoverage:     avg,
	}
	return nil
}

// findSkinRegions grids the image into cellSize squares, marks cells whose
// sampled pixels are mostly skin-toned, and returns the sizes (in cells) of
// each connected marked region big enough to plausibly be a face.
func findSkinRegions(img image.Image, cellSize, pixelStride int) []int {
	const minRegionCells = 2

	b := img.Bounds()
	cols := b.Dx() / cellSize
	rows := b.Dy() / cellSize
	if cols == 0 || rows == 0 {
		return nil
	}

	marked := make([]bool, cols*rows)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			skin, total := 0, 0
			for y := b.Min.Y + cy*cellSize; y < b.Min.Y+(cy+1)*cellSize; y += pixelStride {
				for x := b.Min.X + cx*cellSize; x < b.Min.X+(cx+1)*cellSize; x += pixelStride {
					r, g, bl, _ := img.At(x, y).RGBA()
					if isSkinTone(uint8(r>>8), uint8(g>>8), uint8(bl>>8)) {
						skin++
					}
					total++
				}
			}
			if total > 0 && float64(skin)/float64(total) > 0.45 {
				marked[cy*cols+cx] = true
			}
		}
	}

	// Flood-fill connected marked cells, 4-neighbor.
	var regions []int
	seen := make([]bool, len(marked))
	for start := range marked {
		if !marked[start] || seen[start] {
			continue
		}
		size := 0
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			size++
			cx, cy := cur%cols, cur/cols
			for _, n := range [][2]int{{cx - 1, cy}, {cx + 1, cy}, {cx, cy - 1}, {cx, cy + 1}} {
				if n[0] < 0 || n[0] >= cols || n[1] < 0 || n[1] >= rows {
					continue
				}
				idx := n[1]*cols + n[0]
				if marked[idx] && !seen[idx] {
					seen[idx] = true
					queue = append(queue, idx)
				}
			}
		}
		if size >= minRegionCells {
			regions = append(regions, size)
		}
	}
	return regions
}

// isSkinTone is the classic RGB skin rule: warm, red-dominant pixels with
// enough spread between channels.
func isSkinTone(r, g, b uint8) bool {
	if r <= 95 || g <= 40 || b <= 20 {
		return false
	}
	max, min := r, r
	for _, v := range []uint8{g, b} {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	if int(max)-int(min) <= 15 {
		return false
	}
	diff := int(r) - int(g)
	if diff < 0 {
		diff = -diff
	}
	return diff > 15 && r > g && r > b
}
