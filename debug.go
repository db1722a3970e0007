package grove

import "time"

// FrameStats holds per-frame counters. Timings are only populated when the
// scene is in debug mode.
type FrameStats struct {
	UpdateTime   time.Duration
	RenderTime   time.Duration
	DrawCalls    int
	Instances    int
	BufferWrites int
	BytesWritten int
}

// debugLog writes timing and draw-call stats to the logger.
func (s *Scene) debugLog(stats FrameStats) {
	if !s.debug {
		return
	}
	logger.Info("frame",
		"update", stats.UpdateTime,
		"render", stats.RenderTime,
		"total", stats.UpdateTime+stats.RenderTime,
		"draws", stats.DrawCalls,
		"instances", stats.Instances,
		"writes", stats.BufferWrites,
		"bytes", stats.BytesWritten,
	)
}

// debugMaxTreeDepth is the depth beyond which debugCheckTree warns.
const debugMaxTreeDepth = 32

// debugMaxChildCount is the child count beyond which a node is reported.
const debugMaxChildCount = 1000

// debugCheckTree warns once per offending node about deep or wide trees.
func debugCheckTree(root *Node) {
	debugCheckChildCount(root)
	root.Walk(func(obj Object, depth int) bool {
		n := obj.Base()
		if depth > debugMaxTreeDepth {
			logger.Warn("tree too deep", "node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
			return false
		}
		debugCheckChildCount(n)
		return true
	})
}

// debugCheckChildCount warns if a node has more than debugMaxChildCount children.
func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Warn("too many children", "node", n.Name, "children", len(n.children),
			"threshold", debugMaxChildCount)
	}
}
