package ws

import (
	"encoding/json"
	"fmt"
)

// Server-to-client board events.
const (
	EventTaskCreated    = "task_created"
	EventTaskUpdated    = "task_updated"
	EventTaskDeleted    = "task_deleted"
	EventTasksReordered = "tasks_reordered"
	EventJoinedBoard    = "joined_board"
	EventLeftBoard      = "left_board"
)

// Client-to-server room commands.
const (
	EventJoinBoard  = "join_board"
	EventLeaveBoard = "leave_board"
)

// Envelope is the wire frame for every realtime message, in both directions.
// For room commands Data is the board ID string; for board events it is the
// event payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MarshalEvent encodes an event name and payload into an envelope frame.
func MarshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("ws.MarshalEvent: payload: %w", err)
	}

	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("ws.MarshalEvent: envelope: %w", err)
	}

	return frame, nil
}
