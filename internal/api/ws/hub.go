package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/kanvaslabs/kanvas/internal/store/redis"
)

// Hub owns the room table mapping board IDs to live connections. Mutation
// events travel through Redis pub/sub: the task service publishes to a
// board's channel and the hub fans received frames out to every connection
// joined to that board's room, the originator included. Room state is only
// reachable through join/leave/teardown, never mutated directly by callers.
type Hub struct {
	pubsub *redisstore.PubSub

	mu    sync.Mutex
	rooms map[uuid.UUID]*room
}

// room tracks the connections joined to one board plus the Redis
// subscription feeding them. The subscription starts with the first join and
// is cancelled when the last connection leaves.
type room struct {
	conns  map[*conn]struct{}
	cancel context.CancelFunc
}

type conn struct {
	sock *websocket.Conn
	send chan []byte

	// boards the connection has joined, for teardown. Guarded by Hub.mu.
	boards map[uuid.UUID]struct{}
}

// NewHub creates a hub backed by the given pub/sub fabric.
func NewHub(pubsub *redisstore.PubSub) *Hub {
	return &Hub{
		pubsub: pubsub,
		rooms:  make(map[uuid.UUID]*room),
	}
}

// BroadcastTask publishes a board event to the board's channel. Every hub
// subscribed to the channel (here: this process) delivers it to the board's
// room.
func (h *Hub) BroadcastTask(ctx context.Context, boardID uuid.UUID, event string, data any) error {
	frame, err := MarshalEvent(event, data)
	if err != nil {
		return fmt.Errorf("ws.Hub.BroadcastTask: %w", err)
	}
	if err := h.pubsub.Publish(ctx, redisstore.BoardChannel(boardID), frame); err != nil {
		return fmt.Errorf("ws.Hub.BroadcastTask: %w", err)
	}
	return nil
}

// ServeWS upgrades the request and runs the connection until the client
// disconnects. Clients drive room membership with join_board / leave_board
// frames; board events for joined rooms are pushed as they arrive.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer sock.CloseNow()

	c := &conn{
		sock:   sock,
		send:   make(chan []byte, 32),
		boards: make(map[uuid.UUID]struct{}),
	}

	ctx := r.Context()
	defer h.dropConn(c)

	go c.writeLoop(ctx)

	h.readLoop(ctx, c)
}

func (h *Hub) readLoop(ctx context.Context, c *conn) {
	for {
		_, data, err := c.sock.Read(ctx)
		if err != nil {
			// Normal closure and network drops end the connection the
			// same way: teardown via the deferred dropConn.
			log.Debug().Err(err).Msg("websocket read")
			return
		}

		var frame Envelope
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Debug().Err(err).Msg("websocket: malformed frame")
			continue
		}

		var boardIDStr string
		if err := json.Unmarshal(frame.Data, &boardIDStr); err != nil {
			log.Debug().Err(err).Str("event", frame.Event).Msg("websocket: frame data is not a board id")
			continue
		}
		boardID, err := uuid.Parse(boardIDStr)
		if err != nil {
			log.Debug().Err(err).Str("event", frame.Event).Msg("websocket: invalid board id")
			continue
		}

		switch frame.Event {
		case EventJoinBoard:
			h.join(c, boardID)
			c.ack(EventJoinedBoard, "joined board "+boardID.String())
		case EventLeaveBoard:
			h.leave(c, boardID)
			c.ack(EventLeftBoard, "left board "+boardID.String())
		default:
			log.Debug().Str("event", frame.Event).Msg("websocket: unknown client event")
		}
	}
}

// join adds the connection to the board's room, creating the room and its
// Redis subscription on first join. Joining twice is a no-op.
func (h *Hub) join(c *conn, boardID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[boardID]
	if !ok {
		subCtx, cancel := context.WithCancel(context.Background())

		messages, cleanup, err := h.pubsub.Subscribe(subCtx, redisstore.BoardChannel(boardID))
		if err != nil {
			cancel()
			log.Error().Err(err).Str("board_id", boardID.String()).Msg("websocket: room subscribe")
			return
		}

		rm = &room{
			conns:  make(map[*conn]struct{}),
			cancel: cancel,
		}
		h.rooms[boardID] = rm

		go func() {
			defer cleanup()
			for msg := range messages {
				h.fanOut(boardID, msg)
			}
		}()
	}

	rm.conns[c] = struct{}{}
	c.boards[boardID] = struct{}{}
}

// leave removes the connection from the board's room. Leaving a room that
// was never joined is a no-op.
func (h *Hub) leave(c *conn, boardID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(c, boardID)
}

func (h *Hub) leaveLocked(c *conn, boardID uuid.UUID) {
	delete(c.boards, boardID)

	rm, ok := h.rooms[boardID]
	if !ok {
		return
	}
	delete(rm.conns, c)

	if len(rm.conns) == 0 {
		rm.cancel()
		delete(h.rooms, boardID)
	}
}

// dropConn removes the connection from every room it joined.
func (h *Hub) dropConn(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for boardID := range c.boards {
		h.leaveLocked(c, boardID)
	}
}

// fanOut queues a frame for every connection in the board's room. A
// connection with a full send queue misses the frame; delivery is
// fire-and-forget and clients resync on their next full fetch.
func (h *Hub) fanOut(boardID uuid.UUID, frame []byte) {
	h.mu.Lock()
	rm, ok := h.rooms[boardID]
	if !ok {
		h.mu.Unlock()
		return
	}
	conns := make([]*conn, 0, len(rm.conns))
	for c := range rm.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		select {
		case c.send <- frame:
		default:
			log.Debug().Str("board_id", boardID.String()).Msg("websocket: send queue full, dropping frame")
		}
	}
}

// Close tears down every room subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for boardID, rm := range h.rooms {
		rm.cancel()
		delete(h.rooms, boardID)
	}
}

func (c *conn) ack(event, message string) {
	frame, err := MarshalEvent(event, message)
	if err != nil {
		log.Debug().Err(err).Msg("websocket: marshal ack")
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *conn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			if err := c.sock.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}
