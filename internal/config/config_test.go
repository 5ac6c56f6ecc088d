package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("expected default tool paths, got %q / %q", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadAppliesDefaultsForEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipscan.yaml")
	content := "output_path: /srv/videos\nffmpeg_path: \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputPath != "/srv/videos" {
		t.Errorf("output_path = %q", cfg.OutputPath)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("empty ffmpeg_path should default, got %q", cfg.FFmpegPath)
	}
	if cfg.ObjectDetectorPath != "yolo" {
		t.Errorf("object_detector_path should default to yolo, got %q", cfg.ObjectDetectorPath)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "clipscan.yaml")

	cfg := DefaultConfig()
	cfg.OutputPath = "/media/clips"
	cfg.LogLevel = "debug"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.OutputPath != "/media/clips" || got.LogLevel != "debug" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestTempDirFallback(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TempDir() == "" {
		t.Error("TempDir should never be empty")
	}

	cfg.TempPath = "/scratch"
	if cfg.TempDir() != "/scratch" {
		t.Errorf("TempDir = %q, want /scratch", cfg.TempDir())
	}
}

func TestDatabaseDefault(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Database() == "" {
		t.Error("Database should never be empty")
	}

	cfg.DatabasePath = "/data/history.db"
	if cfg.Database() != "/data/history.db" {
		t.Errorf("Database = %q, want /data/history.db", cfg.Database())
	}
}
