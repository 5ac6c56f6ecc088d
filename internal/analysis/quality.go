package analysis

import (
	"image"

	"github.com/clipscan/clipscan/internal/media"
	"gonum.org/v1/gonum/stat"
)

// buildQuality combines probed container metadata with pixel statistics
// measured on the sampled frames. Frames may be empty; the metadata half is
// still populated.
func buildQuality(info *media.Info, frames []*media.Frame) *QualitySummary {
	q := &QualitySummary{
		Width:     info.Width,
		Height:    info.Height,
		Duration:  info.Duration.Seconds(),
		FrameRate: info.FrameRate,
		Bitrate:   info.Bitrate,
		Codec:     info.VideoCodec,
	}

	var brightness, sharpness []float64
	var lumas []float64
	for _, f := range frames {
		if f.Img == nil {
			continue
		}
		gray := downscaleGray(f.Img, 320)
		b, s, l := frameMetrics(gray)
		brightness = append(brightness, b)
		sharpness = append(sharpness, s)
		lumas = append(lumas, l...)
	}
	if len(brightness) > 0 {
		q.Brightness = stat.Mean(brightness, nil)
		q.Sharpness = stat.Mean(sharpness, nil)
		q.Contrast = stdDevOrZero(lumas)
	}
	return q
}

// frameMetrics returns the mean luma, mean gradient magnitude, and a
// subsample of luma values for one grayscale frame.
func frameMetrics(gray *image.Gray) (brightness, sharpness float64, lumas []float64) {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if w < 2 || h < 2 {
		return 0, 0, nil
	}
	var lumaSum, gradSum float64
	n := 0
	for y := 0; y < h-1; y++ {
		row := gray.Pix[y*gray.Stride:]
		next := gray.Pix[(y+1)*gray.Stride:]
		for x := 0; x < w-1; x++ {
			v := float64(row[x])
			lumaSum += v
			dx := v - float64(row[x+1])
			dy := v - float64(next[x])
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			gradSum += dx + dy
			if n%7 == 0 {
				lumas = append(lumas, v)
			}
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return lumaSum / float64(n), gradSum / float64(n), lumas
}
