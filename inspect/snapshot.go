// Package inspect serves a live view of a running grove scene over HTTP.
//
// A Publisher attached to the scene snapshots the object tree and the frame
// counters on the frame thread. The HTTP handlers only ever read published
// snapshots, so they never touch the scene concurrently.
//
//	GET /snapshot  full snapshot as JSON
//	GET /tree      object tree as JSON
//	GET /stats     last frame counters as JSON
//	GET /nodes/id  one node of the tree
//	GET /ws        websocket receiving every published snapshot
package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/phanxgames/grove"
)

// NodeInfo describes one object of the tree.
type NodeInfo struct {
	ID        uint32      `json:"id"`
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type"`
	Disabled  bool        `json:"disabled,omitempty"`
	Position  *[3]float32 `json:"position,omitempty"`
	Scale     *[3]float32 `json:"scale,omitempty"`
	Instances *int        `json:"instances,omitempty"`
	Children  []NodeInfo  `json:"children,omitempty"`
}

// Stats is the JSON form of grove.FrameStats.
type Stats struct {
	UpdateMillis float64 `json:"updateMs"`
	RenderMillis float64 `json:"renderMs"`
	DrawCalls    int     `json:"drawCalls"`
	Instances    int     `json:"instances"`
	BufferWrites int     `json:"bufferWrites"`
	BytesWritten int     `json:"bytesWritten"`
}

// Snapshot is the state published for one frame.
type Snapshot struct {
	Frame  uint64    `json:"frame"`
	Time   time.Time `json:"time"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Nodes  int       `json:"nodes"`
	Stats  Stats     `json:"stats"`
	Tree   NodeInfo  `json:"tree"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func statsOf(fs grove.FrameStats) Stats {
	return Stats{
		UpdateMillis: millis(fs.UpdateTime),
		RenderMillis: millis(fs.RenderTime),
		DrawCalls:    fs.DrawCalls,
		Instances:    fs.Instances,
		BufferWrites: fs.BufferWrites,
		BytesWritten: fs.BytesWritten,
	}
}

func typeName(obj grove.Object) string {
	name := fmt.Sprintf("%T", obj)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// describe builds the NodeInfo tree under obj and returns the node count.
func describe(obj grove.Object) (NodeInfo, int) {
	n := obj.Base()
	info := NodeInfo{
		ID:       n.ID,
		Name:     n.Name,
		Type:     typeName(obj),
		Disabled: n.Disabled(),
	}
	if p, ok := obj.(grove.Posed); ok {
		t := p.Pose()
		pos, scale := [3]float32(t.Position()), [3]float32(t.Scale())
		info.Position, info.Scale = &pos, &scale
	}
	if r, ok := obj.(*grove.InstancedRenderable); ok {
		count := r.InstanceCount()
		info.Instances = &count
	}
	total := 1
	for _, c := range n.Children() {
		ci, cn := describe(c)
		info.Children = append(info.Children, ci)
		total += cn
	}
	return info, total
}

// Take snapshots s. It must run on the thread updating the scene.
func Take(s *grove.Scene, frame uint64) Snapshot {
	tree, count := describe(s)
	w, h := s.Size()
	return Snapshot{
		Frame:  frame,
		Time:   time.Now(),
		Width:  w,
		Height: h,
		Nodes:  count,
		Stats:  statsOf(s.Stats()),
		Tree:   tree,
	}
}
