package inspect

import (
	"encoding/json"
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"github.com/phanxgames/grove"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newScene returns a headless scene holding a named group with one
// disabled child.
func newScene() (*grove.Scene, *grove.CompositeRenderable) {
	s := grove.NewScene(nil, nil)
	group := grove.NewCompositeRenderable()
	group.Name = "group"
	group.SetPosition(mgl32.Vec3{1, 2, 3})
	child := grove.NewCompositeRenderable()
	child.Name = "child"
	child.SetDisabled(true)
	group.AddChild(child)
	s.AddChild(group)
	return s, group
}

func TestTake(t *testing.T) {
	s, group := newScene()
	snap := Take(s, 7)

	assert.Equal(t, uint64(7), snap.Frame)
	assert.Equal(t, 3, snap.Nodes)
	assert.Equal(t, "Scene", snap.Tree.Type)
	require.Len(t, snap.Tree.Children, 1)

	g := snap.Tree.Children[0]
	assert.Equal(t, group.ID, g.ID)
	assert.Equal(t, "group", g.Name)
	assert.Equal(t, "CompositeRenderable", g.Type)
	require.NotNil(t, g.Position)
	assert.Equal(t, [3]float32{1, 2, 3}, *g.Position)
	assert.Equal(t, [3]float32{1, 1, 1}, *g.Scale)
	assert.Nil(t, g.Instances)

	require.Len(t, g.Children, 1)
	assert.True(t, g.Children[0].Disabled)
}

func TestFindNode(t *testing.T) {
	s, group := newScene()
	snap := Take(s, 1)

	n, ok := FindNode(snap.Tree, group.ID)
	assert.True(t, ok)
	assert.Equal(t, "group", n.Name)

	_, ok = FindNode(snap.Tree, 0xffffff)
	assert.False(t, ok)
}

func TestPublisherInterval(t *testing.T) {
	s, _ := newScene()
	p := NewPublisher()
	p.Interval = 100 * time.Millisecond

	_, ok := p.Latest()
	assert.False(t, ok)

	// The first update always publishes.
	require.NoError(t, p.Update(s, 10*time.Millisecond))
	snap, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.Frame)

	require.NoError(t, p.Update(s, 50*time.Millisecond))
	snap, _ = p.Latest()
	assert.Equal(t, uint64(1), snap.Frame)

	require.NoError(t, p.Update(s, 50*time.Millisecond))
	snap, _ = p.Latest()
	assert.Equal(t, uint64(3), snap.Frame)
}

func TestPublisherAsSceneSystem(t *testing.T) {
	s, _ := newScene()
	p := NewPublisher()
	s.AttachPhysics(p)

	require.NoError(t, s.Update(grove.DefaultTimeStep))
	_, ok := p.Latest()
	assert.True(t, ok)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerBeforePublish(t *testing.T) {
	h := NewHandler(NewPublisher(), nil)
	for _, path := range []string{"/snapshot", "/tree", "/stats"} {
		rec := get(t, h, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestHandlerRoutes(t *testing.T) {
	s, group := newScene()
	p := NewPublisher()
	p.Publish(Take(s, 4))

	var log strings.Builder
	h := NewHandler(p, &log)

	rec := get(t, h, "/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(4), snap.Frame)
	assert.Equal(t, 3, snap.Nodes)

	rec = get(t, h, "/tree")
	require.Equal(t, http.StatusOK, rec.Code)
	var tree NodeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.Equal(t, "Scene", tree.Type)

	rec = get(t, h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"drawCalls":0`)

	rec = get(t, h, fmt.Sprintf("/nodes/%d", group.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	var node NodeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &node))
	assert.Equal(t, "group", node.Name)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nodes/99999999").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/nodes/abc").Code)

	assert.Contains(t, log.String(), "GET /snapshot")
}

func TestWebsocketReceivesSnapshots(t *testing.T) {
	s, _ := newScene()
	p := NewPublisher()
	p.Publish(Take(s, 1))

	srv := httptest.NewServer(NewHandler(p, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// The latest snapshot is replayed on connect.
	var snap Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, uint64(1), snap.Frame)

	require.Eventually(t, func() bool { return p.Clients() == 1 }, time.Second, 5*time.Millisecond)
	p.Publish(Take(s, 2))
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, uint64(2), snap.Frame)

	p.Close()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, p.Clients())
}

func TestLogsFollowGroveLogger(t *testing.T) {
	var out bytes.Buffer
	grove.SetLogger(slog.New(slog.NewTextHandler(&out, nil)))
	defer grove.SetLogger(nil)

	// A plain GET on /ws fails the websocket handshake.
	rec := get(t, NewHandler(NewPublisher(), nil), "/ws")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out.String(), "ws upgrade")
	assert.Contains(t, out.String(), "pkg=inspect")
}
