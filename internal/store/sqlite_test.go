package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() (*Run, []VideoRecord) {
	started := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	run := &Run{
		ID:         uuid.NewString(),
		Preset:     "balanced",
		Root:       "/videos",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Elapsed:    90 * time.Second,
		Total:      3,
		Analyzed:   2,
		Failed:     1,
		Workers:    4,
	}
	videos := []VideoRecord{
		{RunID: run.ID, Video: "/videos/a.mp4", SampledFrames: 20, Merged: true},
		{RunID: run.ID, Video: "/videos/b.mp4", SampledFrames: 20, ErrorCount: 1, Merged: true, Error: "audio: ffmpeg exited"},
		{RunID: run.ID, Video: "/videos/c.mp4", ErrorCount: 1, Error: "open: moov atom not found"},
	}
	return run, videos
}

func TestSaveAndListRuns(t *testing.T) {
	s := newTestStore(t)
	run, videos := sampleRun()
	if err := s.SaveRun(run, videos); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.Preset != "balanced" || got.Analyzed != 2 || got.Failed != 1 {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if got.Elapsed != 90*time.Second {
		t.Errorf("Elapsed = %v", got.Elapsed)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		run, _ := sampleRun()
		run.StartedAt = run.StartedAt.Add(time.Duration(i) * time.Hour)
		if err := s.SaveRun(run, nil); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Error("runs not sorted newest first")
	}
}

func TestGetRunVideos(t *testing.T) {
	s := newTestStore(t)
	run, videos := sampleRun()
	if err := s.SaveRun(run, videos); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRunVideos(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d videos, want 3", len(got))
	}
	if got[0].Video != "/videos/a.mp4" || !got[0].Merged {
		t.Errorf("first video = %+v", got[0])
	}
	if got[2].Error != "open: moov atom not found" || got[2].Merged {
		t.Errorf("failed video = %+v", got[2])
	}
}

func TestGetRunVideosUnknownRun(t *testing.T) {
	s := newTestStore(t)
	videos, err := s.GetRunVideos(uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	if len(videos) != 0 {
		t.Errorf("got %d videos for unknown run", len(videos))
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	run, videos := sampleRun()
	if err := s.SaveRun(run, videos); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	runs, err := s2.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen, want 1", len(runs))
	}
}
