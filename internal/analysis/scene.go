package analysis

import "context"

// DefaultSceneThreshold is the ffmpeg scene-change score above which a
// frame counts as a cut.
const DefaultSceneThreshold = 0.4

type sceneExtractor struct {
	tools     MediaTools
	threshold float64
}

func (e *sceneExtractor) Name() string { return "scenes" }

func (e *sceneExtractor) Extract(ctx context.Context, src *Source, res *Result) error {
	threshold := e.threshold
	if threshold <= 0 {
		threshold = DefaultSceneThreshold
	}
	cuts, err := e.tools.DetectScenes(ctx, src.Path, threshold)
	if err != nil {
		return err
	}
	res.Scenes = &SceneResult{
		Threshold: threshold,
		Cuts:      cuts,
		Count:     len(cuts),
	}
	return nil
}
