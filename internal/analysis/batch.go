package analysis

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/clipscan/clipscan/internal/logger"
)

// AnalyzeFunc analyzes one video and always returns a Result.
type AnalyzeFunc func(ctx context.Context, video string) *Result

// ProgressFunc is called after each video completes, with the number
// completed so far and the batch total. Calls are serialized and completed
// values are strictly increasing.
type ProgressFunc func(completed, total int)

// Engine fans a batch of videos out over a bounded worker pool.
type Engine struct {
	analyze AnalyzeFunc
}

func NewEngine(analyze AnalyzeFunc) *Engine {
	return &Engine{analyze: analyze}
}

// Run analyzes every video with at most workers running concurrently and
// returns a result per unique input path. Duplicate paths are dispatched
// once. A cancelled context stops launching new work; already-running
// analyses wind down through their own ctx checks, and every video still
// gets a map entry.
func (e *Engine) Run(ctx context.Context, videos []string, workers int, progress ProgressFunc) map[string]*Result {
	if workers < 1 {
		workers = 1
	}
	unique := dedupe(videos)
	total := len(unique)
	logger.Info("Starting batch", "videos", total, "workers", workers)

	results := make(map[string]*Result, total)
	var mu sync.Mutex
	completed := 0

	var g errgroup.Group
	g.SetLimit(workers)
	for _, video := range unique {
		video := video
		g.Go(func() error {
			res := e.analyze(ctx, video)

			mu.Lock()
			results[video] = res
			completed++
			if progress != nil {
				progress(completed, total)
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return results
}

func dedupe(videos []string) []string {
	seen := make(map[string]struct{}, len(videos))
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
