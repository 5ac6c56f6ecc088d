package analysis

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/clipscan/clipscan/internal/media"
)

// solidFrame builds a synthetic frame filled with one color.
func solidFrame(index, w, h int, c color.RGBA) *media.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &media.Frame{Index: index, Img: img}
}

func testSource(frames ...*media.Frame) *Source {
	return &Source{Path: "test.mp4", Frames: frames, Config: &Config{}}
}

func TestColorExtractorDominantColors(t *testing.T) {
	// One red frame and three blue ones: blue should dominate.
	red := color.RGBA{R: 220, G: 10, B: 10, A: 255}
	blue := color.RGBA{R: 10, G: 10, B: 220, A: 255}
	src := testSource(
		solidFrame(0, 64, 64, red),
		solidFrame(1, 64, 64, blue),
		solidFrame(2, 64, 64, blue),
		solidFrame(3, 64, 64, blue),
	)

	res := &Result{}
	ex := &colorExtractor{clusters: 2}
	if err := ex.Extract(context.Background(), src, res); err != nil {
		t.Fatal(err)
	}
	if res.Color == nil || len(res.Color.Clusters) == 0 {
		t.Fatal("no color clusters")
	}
	top := res.Color.Clusters[0]
	if top.B < top.R {
		t.Errorf("dominant cluster should be blue, got R=%d B=%d", top.R, top.B)
	}
	if top.Proportion < 0.5 {
		t.Errorf("dominant proportion = %f, want >= 0.5", top.Proportion)
	}
	var sum float64
	for _, c := range res.Color.Clusters {
		sum += c.Proportion
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("proportions sum to %f, want ~1", sum)
	}
}

func TestColorExtractorNoFrames(t *testing.T) {
	ex := &colorExtractor{clusters: 4}
	if err := ex.Extract(context.Background(), testSource(), &Result{}); err == nil {
		t.Error("expected error with no frames")
	}
}

func TestMotionExtractorStaticFrames(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	src := testSource(solidFrame(0, 64, 48, gray), solidFrame(1, 64, 48, gray), solidFrame(2, 64, 48, gray))

	res := &Result{}
	ex := &motionExtractor{resolution: 160}
	if err := ex.Extract(context.Background(), src, res); err != nil {
		t.Fatal(err)
	}
	if res.Motion.Mean != 0 || res.Motion.Max != 0 {
		t.Errorf("static frames: Mean=%f Max=%f, want 0", res.Motion.Mean, res.Motion.Max)
	}
	if res.Motion.Samples != 2 {
		t.Errorf("Samples = %d, want 2", res.Motion.Samples)
	}
}

func TestMotionExtractorDetectsChange(t *testing.T) {
	src := testSource(
		solidFrame(0, 64, 48, color.RGBA{A: 255}),
		solidFrame(1, 64, 48, color.RGBA{R: 255, G: 255, B: 255, A: 255}),
	)
	res := &Result{}
	ex := &motionExtractor{resolution: 160}
	if err := ex.Extract(context.Background(), src, res); err != nil {
		t.Fatal(err)
	}
	if res.Motion.Mean < 200 {
		t.Errorf("black-to-white Mean = %f, want near 255", res.Motion.Mean)
	}
}

func TestMotionExtractorNeedsTwoFrames(t *testing.T) {
	ex := &motionExtractor{resolution: 160}
	src := testSource(solidFrame(0, 64, 48, color.RGBA{A: 255}))
	if err := ex.Extract(context.Background(), src, &Result{}); err == nil {
		t.Error("expected error with a single frame")
	}
}

func TestIsSkinTone(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"light skin", 224, 172, 120, true},
		{"darker skin", 141, 85, 36, true},
		{"pure red", 255, 0, 0, false},
		{"blue", 30, 60, 220, false},
		{"flat gray", 128, 128, 128, false},
		{"near black", 20, 15, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSkinTone(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("isSkinTone(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestFaceExtractorFindsSkinRegion(t *testing.T) {
	skin := color.RGBA{R: 224, G: 172, B: 120, A: 255}
	bg := color.RGBA{R: 30, G: 60, B: 120, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, 160, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			c := bg
			if x >= 40 && x < 110 && y >= 20 && y < 90 {
				c = skin
			}
			img.SetRGBA(x, y, c)
		}
	}
	src := testSource(&media.Frame{Index: 0, Img: img})

	res := &Result{}
	ex := &faceExtractor{model: FaceModelFull}
	if err := ex.Extract(context.Background(), src, res); err != nil {
		t.Fatal(err)
	}
	if res.Faces.FramesWithFaces != 1 || res.Faces.TotalDetections < 1 {
		t.Errorf("skin block not detected: %+v", res.Faces)
	}
	if res.Faces.AvgCoverage <= 0 || res.Faces.AvgCoverage > 1 {
		t.Errorf("AvgCoverage = %f, want in (0, 1]", res.Faces.AvgCoverage)
	}
	if res.Faces.Model != FaceModelFull {
		t.Errorf("Model = %q", res.Faces.Model)
	}
}

func TestFaceExtractorNoFacesOnFlatColor(t *testing.T) {
	src := testSource(solidFrame(0, 160, 120, color.RGBA{R: 10, G: 120, B: 40, A: 255}))
	res := &Result{}
	ex := &faceExtractor{model: FaceModelShort}
	if err := ex.Extract(context.Background(), src, res); err != nil {
		t.Fatal(err)
	}
	if res.Faces.FramesWithFaces != 0 {
		t.Errorf("FramesWithFaces = %d, want 0", res.Faces.FramesWithFaces)
	}
}

func TestParseDetections(t *testing.T) {
	raw := "person 0.91\ndog 0.45\n\nmalformed line here\ncat 1.5\ncar 0.30\n"
	dets := parseDetections(raw, 7)
	if len(dets) != 3 {
		t.Fatalf("got %d detections, want 3: %+v", len(dets), dets)
	}
	if dets[0].Label != "person" || dets[0].Confidence != 0.91 || dets[0].Frame != 7 {
		t.Errorf("first detection = %+v", dets[0])
	}
}

func TestFrameMetricsFlatImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range gray.Pix {
		gray.Pix[i] = 100
	}
	brightness, sharpness, _ := frameMetrics(gray)
	if brightness != 100 {
		t.Errorf("brightness = %f, want 100", brightness)
	}
	if sharpness != 0 {
		t.Errorf("sharpness = %f, want 0 for flat image", sharpness)
	}
}
