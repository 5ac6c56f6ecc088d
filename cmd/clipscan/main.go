package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	clipscan "github.com/clipscan/clipscan"
	"github.com/clipscan/clipscan/internal/analysis"
	"github.com/clipscan/clipscan/internal/config"
	"github.com/clipscan/clipscan/internal/discover"
	"github.com/clipscan/clipscan/internal/logger"
	"github.com/clipscan/clipscan/internal/media"
	"github.com/clipscan/clipscan/internal/merge"
	"github.com/clipscan/clipscan/internal/store"
	"github.com/clipscan/clipscan/internal/util"
)

var (
	flagConfig   string
	flagLogLevel string

	flagOutput         string
	flagThoroughness   string
	flagSampleFrames   int
	flagSamplePercent  int
	flagColorClusters  int
	flagMotionRes      int
	flagFaceModel      string
	flagWorkers        int
	flagSkipAudio      bool
	flagSceneDetection bool
	flagFullResolution bool

	flagHistoryLimit int
)

var rootCmd = &cobra.Command{
	Use:           "clipscan",
	Short:         "Batch video analysis: color, motion, faces, objects, scenes, and audio",
	Version:       clipscan.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a video file or every video under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past batch runs, or the per-video outcomes of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	f := analyzeCmd.Flags()
	f.StringVarP(&flagOutput, "output", "o", "", "directory to scan for videos (overrides config)")
	f.StringVarP(&flagThoroughness, "thoroughness", "t", analysis.PresetBalanced,
		fmt.Sprintf("analysis preset %v", analysis.Presets))
	f.IntVar(&flagSampleFrames, "sample-frames", 0, "number of frames to sample per video")
	f.IntVar(&flagSamplePercent, "sample-percent", 0, "percentage of frames to sample (takes precedence)")
	f.IntVar(&flagColorClusters, "color-clusters", 0, "dominant color cluster count")
	f.IntVar(&flagMotionRes, "motion-res", 0, "frame width for motion analysis")
	f.StringVar(&flagFaceModel, "face-model", "", "face detection model (short or full)")
	f.IntVarP(&flagWorkers, "workers", "w", 0, "concurrent video workers (0 = auto)")
	f.BoolVar(&flagSkipAudio, "skip-audio", false, "skip audio analysis")
	f.BoolVar(&flagSceneDetection, "scene-detection", false, "detect scene cuts")
	f.BoolVar(&flagFullResolution, "full-resolution", false, "analyze frames at native resolution")

	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of runs to show")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	path := flagConfig
	if path == "" {
		if envPath := os.Getenv("CLIPSCAN_CONFIG"); envPath != "" {
			path = envPath
		} else {
			path = "config/clipscan.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Init("info")
		logger.Warn("Could not load config", "path", path, "error", err)
		cfg = config.DefaultConfig()
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logger.Init(cfg.LogLevel)
	return cfg
}

// buildOverrides maps only the flags the user actually set, so preset
// defaults stay in force for the rest.
func buildOverrides(cmd *cobra.Command) analysis.Overrides {
	var ov analysis.Overrides
	f := cmd.Flags()
	if f.Changed("sample-frames") {
		ov.SampleFrames = &flagSampleFrames
	}
	if f.Changed("sample-percent") {
		ov.SamplePercent = &flagSamplePercent
	}
	if f.Changed("color-clusters") {
		ov.ColorClusters = &flagColorClusters
	}
	if f.Changed("motion-res") {
		ov.MotionResolution = &flagMotionRes
	}
	if f.Changed("face-model") {
		ov.FaceModel = &flagFaceModel
	}
	if f.Changed("workers") {
		ov.Workers = &flagWorkers
	}
	if f.Changed("skip-audio") {
		enabled := !flagSkipAudio
		ov.EnableAudio = &enabled
	}
	if f.Changed("scene-detection") {
		ov.SceneDetection = &flagSceneDetection
	}
	if f.Changed("full-resolution") {
		ov.FullResolution = &flagFullResolution
	}
	return ov
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	acfg, err := analysis.Resolve(flagThoroughness, buildOverrides(cmd))
	if err != nil {
		return err
	}

	root := cfg.OutputPath
	if flagOutput != "" {
		root = flagOutput
	}
	if len(args) == 1 {
		root = args[0]
	}

	videos, err := discover.Scan(root)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		fmt.Printf("No videos found under %s\n", root)
		return nil
	}

	var totalSize int64
	paths := make([]string, len(videos))
	metaPaths := make(map[string]string, len(videos))
	for i, v := range videos {
		paths[i] = v.Path
		metaPaths[v.Path] = v.MetadataPath
		totalSize += v.Size
	}

	fmt.Printf("clipscan %s\n", clipscan.Version)
	fmt.Printf("Analyzing %d videos (%s) with preset %q, %d workers\n",
		len(videos), util.FormatBytes(totalSize), acfg.Thoroughness, acfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober := media.NewProber(cfg.FFprobePath)
	ffmpeg := media.NewFFmpeg(cfg.FFmpegPath)
	analyzer := analysis.NewAnalyzer(acfg, prober, ffmpeg, analysis.AnalyzerOptions{
		TempDir:        cfg.TempDir(),
		ObjectDetector: cfg.ObjectDetectorPath,
	})

	start := time.Now()
	var progressMu sync.Mutex
	progress := func(completed, total int) {
		progressMu.Lock()
		fmt.Printf("\r[%d/%d] analyzed", completed, total)
		if completed == total {
			fmt.Println()
		}
		progressMu.Unlock()
	}
	results := analysis.NewEngine(analyzer.Analyze).Run(ctx, paths, acfg.Workers, progress)
	elapsed := time.Since(start)

	analyzed, failed := 0, 0
	records := make([]store.VideoRecord, 0, len(results))
	for _, v := range videos {
		res := results[v.Path]
		if res == nil {
			continue
		}
		rec := store.VideoRecord{
			Video:         v.Path,
			SampledFrames: res.SampledFrames,
			ErrorCount:    len(res.Errors),
		}
		if len(res.Errors) > 0 {
			rec.Error = res.Errors[0]
		}
		if err := merge.WriteResult(v.MetadataPath, res); err != nil {
			logger.Warn("Skipping metadata merge", "video", v.Path, "error", err)
			failed++
		} else {
			rec.Merged = true
			analyzed++
		}
		records = append(records, rec)
	}

	saveRun(cfg, &store.Run{
		ID:         uuid.NewString(),
		Preset:     acfg.Thoroughness,
		Root:       root,
		StartedAt:  start,
		FinishedAt: start.Add(elapsed),
		Elapsed:    elapsed,
		Total:      len(videos),
		Analyzed:   analyzed,
		Failed:     failed,
		Workers:    acfg.Workers,
	}, records)

	fmt.Printf("Done: %d analyzed, %d failed in %s (%s videos/sec)\n",
		analyzed, failed, util.FormatDuration(elapsed), util.FormatRate(len(videos), elapsed))
	for _, rec := range records {
		if rec.ErrorCount > 0 {
			fmt.Printf("  %s: %d error(s), first: %s\n", rec.Video, rec.ErrorCount, rec.Error)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d videos produced no usable analysis data", failed, len(videos))
	}
	return nil
}

// saveRun records history on a best-effort basis; a broken database never
// fails the batch.
func saveRun(cfg *config.Config, run *store.Run, records []store.VideoRecord) {
	s, err := store.NewSQLiteStore(cfg.Database())
	if err != nil {
		logger.Warn("Run history unavailable", "error", err)
		return
	}
	defer s.Close()
	for i := range records {
		records[i].RunID = run.ID
	}
	if err := s.SaveRun(run, records); err != nil {
		logger.Warn("Could not record run", "error", err)
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	s, err := store.NewSQLiteStore(cfg.Database())
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 1 {
		videos, err := s.GetRunVideos(args[0])
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			fmt.Println("No videos recorded for that run")
			return nil
		}
		for _, v := range videos {
			status := "ok"
			if !v.Merged {
				status = "failed"
			}
			fmt.Printf("%-8s %3d frames  %d error(s)  %s\n", status, v.SampledFrames, v.ErrorCount, v.Video)
		}
		return nil
	}

	runs, err := s.ListRuns(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %-9s %3d videos  %d ok / %d failed  %s  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Preset,
			r.Total, r.Analyzed, r.Failed,
			util.FormatDuration(r.Elapsed), humanize.Time(r.StartedAt))
	}
	return nil
}
