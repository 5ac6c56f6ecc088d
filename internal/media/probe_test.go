package media

import (
	"encoding/json"
	"testing"
	"time"
)

const sampleProbeJSON = `{
	"format": {
		"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
		"duration": "12.500000",
		"size": "2048000",
		"bit_rate": "1310720"
	},
	"streams": [
		{
			"codec_type": "video",
			"codec_name": "h264",
			"width": 1080,
			"height": 1920,
			"r_frame_rate": "30000/1001",
			"nb_frames": "374"
		},
		{
			"codec_type": "audio",
			"codec_name": "aac"
		}
	]
}`

func TestBuildInfo(t *testing.T) {
	var out ffprobeOutput
	if err := json.Unmarshal([]byte(sampleProbeJSON), &out); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	info := buildInfo("/videos/user/clip.mp4", &out)

	if info.VideoCodec != "h264" {
		t.Errorf("video codec = %q", info.VideoCodec)
	}
	if info.Width != 1080 || info.Height != 1920 {
		t.Errorf("dimensions = %dx%d", info.Width, info.Height)
	}
	if info.FrameCount != 374 {
		t.Errorf("frame count = %d, want 374", info.FrameCount)
	}
	if !info.HasAudio || info.AudioCodec != "aac" {
		t.Errorf("audio: has=%v codec=%q", info.HasAudio, info.AudioCodec)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("duration = %v", info.Duration)
	}
	if info.Size != 2048000 {
		t.Errorf("size = %d", info.Size)
	}
}

func TestBuildInfoEstimatesFrameCount(t *testing.T) {
	out := ffprobeOutput{
		Format: ffprobeFormat{Duration: "10.0"},
		Streams: []ffprobeStream{
			{CodecType: "video", CodecName: "vp9", RFrameRate: "30/1"},
		},
	}

	info := buildInfo("clip.webm", &out)
	if info.FrameCount != 300 {
		t.Errorf("estimated frame count = %d, want 300", info.FrameCount)
	}
	if info.HasAudio {
		t.Error("should not report audio without an audio stream")
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"0/0", 0},
		{"", 0},
		{"25", 25},
	}

	for _, c := range cases {
		if got := parseFrameRate(c.in); got != c.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIsVideoFile(t *testing.T) {
	if !IsVideoFile("clip.MP4") {
		t.Error("MP4 should be a video file")
	}
	if !IsVideoFile("/some/dir/video.webm") {
		t.Error("webm should be a video file")
	}
	if IsVideoFile("metadata.json") {
		t.Error("json should not be a video file")
	}
}
