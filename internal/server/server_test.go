package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b99631944-eng/Bennett-lab/internal/config"
	"github.com/b99631944-eng/Bennett-lab/internal/core/clock"
	"github.com/b99631944-eng/Bennett-lab/internal/core/components"
	"github.com/b99631944-eng/Bennett-lab/internal/core/ecs"
	"github.com/b99631944-eng/Bennett-lab/internal/core/engine"
	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
)

// nudgeSystem shifts every positioned entity by one unit per update.
type nudgeSystem struct {
	ecs.SystemBase
}

func newNudgeSystem() *nudgeSystem {
	return &nudgeSystem{SystemBase: ecs.NewSystemBase(0)}
}

func (n *nudgeSystem) Update(w *ecs.World, _, _ float64) {
	for _, id := range w.Query(components.KindPosition) {
		if c, ok := w.GetComponent(id, components.KindPosition); ok {
			c.(*components.Position).X++
		}
	}
}

func testServer(t *testing.T) (*Server, *engine.Context) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = 0 // any free port
	eng := engine.New(cfg, log.Nop(), clock.WithInterval(0))
	return New(cfg.Server, log.Nop(), eng), eng
}

func addEntity(t *testing.T, eng *engine.Context, name string, x, y, z float64) {
	t.Helper()
	id := eng.World.CreateEntity(name)
	require.NoError(t, eng.World.AddComponent(id, &components.Position{X: x, Y: y, Z: z}))
	require.NoError(t, eng.World.AddComponent(id, &components.Mesh{Resource: "sphere", Visible: true}))
}

func TestEncodeSnapshotEmptyWorld(t *testing.T) {
	s, _ := testServer(t)

	payload, err := s.encodeSnapshot()
	require.NoError(t, err)

	var snap worldSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Empty(t, snap.Entities)
}

func TestEncodeSnapshotCarriesEntityState(t *testing.T) {
	s, eng := testServer(t)
	addEntity(t, eng, "probe", 1, 2, 3)

	payload, err := s.encodeSnapshot()
	require.NoError(t, err)

	var snap worldSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	require.Len(t, snap.Entities, 1)
	st := snap.Entities[0]
	assert.Equal(t, "probe", st.Name)
	assert.Equal(t, 1.0, st.X)
	assert.Equal(t, 2.0, st.Y)
	assert.Equal(t, 3.0, st.Z)
	assert.Equal(t, "sphere", st.Mesh)
	assert.True(t, st.Visible)
}

func TestEncodeSnapshotSkipsInactiveAndUnpositioned(t *testing.T) {
	s, eng := testServer(t)
	addEntity(t, eng, "visible", 0, 0, 0)

	hidden := eng.World.CreateEntity("hidden")
	require.NoError(t, eng.World.AddComponent(hidden, &components.Position{}))
	eng.World.DeactivateEntity(hidden)

	bare := eng.World.CreateEntity("bare")
	require.NoError(t, eng.World.AddComponent(bare, &components.Mesh{Resource: "cube"}))

	payload, err := s.encodeSnapshot()
	require.NoError(t, err)

	var snap worldSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, "visible", snap.Entities[0].Name)
}

func TestSnapshotHashStableForUnchangedWorld(t *testing.T) {
	s, eng := testServer(t)
	addEntity(t, eng, "probe", 1, 2, 3)

	first, err := s.encodeSnapshot()
	require.NoError(t, err)
	second, err := s.encodeSnapshot()
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64(first), xxhash.Sum64(second))

	// A moved entity changes the hash.
	eng.World.AddSystem(newNudgeSystem())
	eng.World.Update(1, 1)
	third, err := s.encodeSnapshot()
	require.NoError(t, err)
	assert.NotEqual(t, xxhash.Sum64(first), xxhash.Sum64(third))
}

func TestHandleHealth(t *testing.T) {
	s, eng := testServer(t)
	addEntity(t, eng, "probe", 0, 0, 0)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["entities"])
	assert.Equal(t, false, body["running"])
}

func TestWebSocketReceivesSeedSnapshot(t *testing.T) {
	s, eng := testServer(t)
	addEntity(t, eng, "probe", 4, 5, 6)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var snap worldSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, 4.0, snap.Entities[0].X)
}

func TestServerStartStopLifecycle(t *testing.T) {
	s, _ := testServer(t)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), ErrServerAlreadyRunning)

	require.NoError(t, s.Stop(ctx))
	assert.ErrorIs(t, s.Stop(ctx), ErrServerNotRunning)
}
