package analysis

import (
	"context"
	"errors"
	"image"
	"sort"
)

// maxColorPixels caps how many pixels feed the clustering pass, spread
// evenly across all sampled frames.
const maxColorPixels = 20000

type rgb struct {
	r, g, b float64
}

type colorExtractor struct {
	clusters int
}

func (e *colorExtractor) Name() string { return "color" }

func (e *colorExtractor) Extract(ctx context.Context, src *Source, res *Result) error {
	if len(src.Frames) == 0 {
		return errors.New("no sampled frames")
	}

	var pixels []rgb
	for _, f := range src.Frames {
		pixels = append(pixels, samplePixels(f.Img, maxColorPixels/len(src.Frames))...)
	}
	if len(pixels) == 0 {
		return errors.New("no decodable pixels")
	}

	k := e.clusters
	if k > len(pixels) {
		k = len(pixels)
	}
	centers, counts := kmeans(pixels, k)

	out := &ColorResult{Clusters: make([]ColorCluster, 0, len(centers))}
	total := float64(len(pixels))
	for i, c := range centers {
		if counts[i] == 0 {
			continue
		}
		out.Clusters = append(out.Clusters, ColorCluster{
			R:          clampByte(c.r),
			G:          clampByte(c.g),
			B:          clampByte(c.b),
			Proportion: float64(counts[i]) / total,
		})
	}
	sort.Slice(out.Clusters, func(i, j int) bool {
		return out.Clusters[i].Proportion > out.Clusters[j].Proportion
	})
	res.Color = out
	return nil
}

// samplePixels takes up to limit pixels from img at a uniform stride.
func samplePixels(img image.Image, limit int) []rgb {
	if img == nil || limit <= 0 {
		return nil
	}
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return nil
	}
	stride := 1
	if total > limit {
		stride = total / limit
	}
	pixels := make([]rgb, 0, limit)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i%stride == 0 {
				r, g, bl, _ := img.At(x, y).RGBA()
				pixels = append(pixels, rgb{
					r: float64(r >> 8),
					g: float64(g >> 8),
					b: float64(bl >> 8),
				})
			}
			i++
		}
	}
	return pixels
}

// kmeans runs a fixed-iteration k-means over the pixel set. Centers are
// seeded evenly through the luma-sorted pixels so results are deterministic
// for a given input.
func kmeans(pixels []rgb, k int) ([]rgb, []int) {
	const maxIterations = 20

	sorted := make([]rgb, len(pixels))
	copy(sorted, pixels)
	sort.Slice(sorted, func(i, j int) bool {
		return luma(sorted[i]) < luma(sorted[j])
	})

	centers := make([]rgb, k)
	for i := range centers {
		centers[i] = sorted[i*len(sorted)/k+len(sorted)/(2*k)]
	}

	assign := make([]int, len(pixels))
	counts := make([]int, k)
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range pixels {
			best, bestDist := 0, sqDist(p, centers[0])
			for c := 1; c < k; c++ {
				if d := sqDist(p, centers[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([]rgb, k)
		for i := range counts {
			counts[i] = 0
		}
		for i, p := range pixels {
			c := assign[i]
			sums[c].r += p.r
			sums[c].g += p.g
			sums[c].b += p.b
			counts[c]++
		}
		for c := range centers {
			if counts[c] > 0 {
				n := float64(counts[c])
				centers[c] = rgb{sums[c].r / n, sums[c].g / n, sums[c].b / n}
			}
		}
	}
	return centers, counts
}

func luma(p rgb) float64 {
	return 0.299*p.r + 0.587*p.g + 0.114*p.b
}

func sqDist(a, b rgb) float64 {
	dr, dg, db := a.r-b.r, a.g-b.g, a.b-b.b
	return dr*dr + dg*dg + db*db
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
