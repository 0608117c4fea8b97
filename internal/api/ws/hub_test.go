package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanvaslabs/kanvas/internal/api/ws"
	redisstore "github.com/kanvaslabs/kanvas/internal/store/redis"
)

// newTestHub wires a hub to a miniredis instance and exposes it over an
// httptest server, the same shape as the real /ws mount.
func newTestHub(t *testing.T) (*ws.Hub, string) {
	t.Helper()

	mr := miniredis.RunT(t)

	pubsub, err := redisstore.New(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pubsub.Close() })

	hub := ws.NewHub(pubsub)
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	return hub, srv.URL
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.CloseNow() })

	return c
}

func send(t *testing.T, c *websocket.Conn, event string, boardID uuid.UUID) {
	t.Helper()

	frame, err := ws.MarshalEvent(event, boardID.String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, frame))
}

func readFrame(t *testing.T, c *websocket.Conn) ws.Envelope {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := c.Read(ctx)
	require.NoError(t, err)

	var env ws.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

// expectSilence asserts that no frame arrives within the window.
func expectSilence(t *testing.T, c *websocket.Conn) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, data, err := c.Read(ctx)
	require.Error(t, err, "expected no frame, got %s", data)
}

// joinBoard sends a join frame and waits for the ack, after which the room
// subscription is live.
func joinBoard(t *testing.T, c *websocket.Conn, boardID uuid.UUID) {
	t.Helper()

	send(t, c, ws.EventJoinBoard, boardID)
	env := readFrame(t, c)
	require.Equal(t, ws.EventJoinedBoard, env.Event)
}

func TestHubJoinAck(t *testing.T) {
	t.Parallel()

	_, url := newTestHub(t)
	boardID := uuid.New()

	c := dial(t, url)
	send(t, c, ws.EventJoinBoard, boardID)

	env := readFrame(t, c)
	assert.Equal(t, ws.EventJoinedBoard, env.Event)

	var msg string
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Contains(t, msg, boardID.String())
}

func TestHubJoinIsIdempotent(t *testing.T) {
	t.Parallel()

	hub, url := newTestHub(t)
	boardID := uuid.New()

	c := dial(t, url)
	joinBoard(t, c, boardID)

	// Second join acks again but must not double-subscribe the connection.
	joinBoard(t, c, boardID)

	require.NoError(t, hub.BroadcastTask(context.Background(), boardID, ws.EventTaskDeleted, map[string]string{"id": uuid.New().String()}))

	env := readFrame(t, c)
	assert.Equal(t, ws.EventTaskDeleted, env.Event)

	expectSilence(t, c)
}

func TestHubBroadcastReachesRoom(t *testing.T) {
	t.Parallel()

	hub, url := newTestHub(t)
	boardID := uuid.New()

	c1 := dial(t, url)
	joinBoard(t, c1, boardID)

	c2 := dial(t, url)
	joinBoard(t, c2, boardID)

	taskID := uuid.New()
	err := hub.BroadcastTask(context.Background(), boardID, ws.EventTaskCreated, map[string]string{"id": taskID.String()})
	require.NoError(t, err)

	// Both connections, the originator's included, receive the frame.
	for _, c := range []*websocket.Conn{c1, c2} {
		env := readFrame(t, c)
		assert.Equal(t, ws.EventTaskCreated, env.Event)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, taskID.String(), payload["id"])
	}
}

func TestHubRoomIsolation(t *testing.T) {
	t.Parallel()

	hub, url := newTestHub(t)
	boardA := uuid.New()
	boardB := uuid.New()

	cA := dial(t, url)
	joinBoard(t, cA, boardA)

	cB := dial(t, url)
	joinBoard(t, cB, boardB)

	err := hub.BroadcastTask(context.Background(), boardA, ws.EventTaskUpdated, map[string]string{"id": uuid.New().String()})
	require.NoError(t, err)

	env := readFrame(t, cA)
	assert.Equal(t, ws.EventTaskUpdated, env.Event)

	expectSilence(t, cB)
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	t.Parallel()

	hub, url := newTestHub(t)
	boardID := uuid.New()

	c := dial(t, url)
	joinBoard(t, c, boardID)

	send(t, c, ws.EventLeaveBoard, boardID)
	env := readFrame(t, c)
	require.Equal(t, ws.EventLeftBoard, env.Event)

	err := hub.BroadcastTask(context.Background(), boardID, ws.EventTaskCreated, map[string]string{"id": uuid.New().String()})
	require.NoError(t, err)

	expectSilence(t, c)
}

func TestHubLeaveWithoutJoinIsNoop(t *testing.T) {
	t.Parallel()

	_, url := newTestHub(t)
	boardID := uuid.New()

	c := dial(t, url)
	send(t, c, ws.EventLeaveBoard, boardID)

	env := readFrame(t, c)
	assert.Equal(t, ws.EventLeftBoard, env.Event)
}

func TestHubIgnoresMalformedFrames(t *testing.T) {
	t.Parallel()

	hub, url := newTestHub(t)
	boardID := uuid.New()

	c := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("not json")))
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"event":"join_board","data":"not-a-uuid"}`)))
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"event":"mystery","data":"`+boardID.String()+`"}`)))

	// The connection survives garbage and can still join.
	joinBoard(t, c, boardID)

	require.NoError(t, hub.BroadcastTask(context.Background(), boardID, ws.EventTaskCreated, map[string]string{"id": uuid.New().String()}))
	env := readFrame(t, c)
	assert.Equal(t, ws.EventTaskCreated, env.Event)
}

func TestMarshalEvent(t *testing.T) {
	t.Parallel()

	frame, err := ws.MarshalEvent(ws.EventTaskDeleted, map[string]string{"id": "abc"})
	require.NoError(t, err)

	var env ws.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, ws.EventTaskDeleted, env.Event)
	assert.JSONEq(t, `{"id":"abc"}`, string(env.Data))
}
