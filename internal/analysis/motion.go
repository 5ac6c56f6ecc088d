package analysis

import (
	"context"
	"errors"
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

// motionExtractor measures mean absolute luma difference between
// consecutive sampled frames, after downscaling both to the configured
// analysis resolution.
type motionExtractor struct {
	resolution int // target width in pixels
}

func (e *motionExtractor) Name() string { return "motion" }

func (e *motionExtractor) Extract(ctx context.Context, src *Source, res *Result) error {
	if len(src.Frames) < 2 {
		return errors.New("need at least two sampled frames")
	}

	grays := make([]*image.Gray, len(src.Frames))
	for i, f := range src.Frames {
		if f.Img == nil {
			return errors.New("frame with no decoded image")
		}
		grays[i] = downscaleGray(f.Img, e.resolution)
	}

	diffs := make([]float64, 0, len(grays)-1)
	for i := 1; i < len(grays); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		diffs = append(diffs, meanAbsDiff(grays[i-1], grays[i]))
	}

	max := diffs[0]
	for _, d := range diffs[1:] {
		if d > max {
			max = d
		}
	}
	res.Motion = &MotionResult{
		Mean:    stat.Mean(diffs, nil),
		StdDev:  stdDevOrZero(diffs),
		Max:     max,
		Samples: len(diffs),
	}
	return nil
}

// stdDevOrZero avoids the NaN gonum returns for a single sample.
func stdDevOrZero(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// downscaleGray converts img to grayscale at the given width, preserving
// aspect ratio. Images already at or below the target width are converted
// without resampling.
func downscaleGray(img image.Image, width int) *image.Gray {
	b := img.Bounds()
	if b.Dx() <= width {
		gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
		return gray
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)
	return gray
}

// meanAbsDiff returns the mean absolute pixel difference between two
// grayscale images of the same size. Differing sizes compare over the
// overlapping region.
func meanAbsDiff(a, b *image.Gray) float64 {
	w := a.Bounds().Dx()
	if bw := b.Bounds().Dx(); bw < w {
		w = bw
	}
	h := a.Bounds().Dy()
	if bh := b.Bounds().Dy(); bh < h {
		h = bh
	}
	if w == 0 || h == 0 {
		return 0
	}
	var sum int64
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := 0; x < w; x++ {
			d := int64(ra[x]) - int64(rb[x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return float64(sum) / float64(w*h)
}
