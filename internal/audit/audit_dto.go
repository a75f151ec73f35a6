package audit

import (
	"encoding/json"
	"time"
)

type EntryResponse struct {
	EventID   string          `json:"event_id"`
	ActorID   int64           `json:"actor_id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  int64           `json:"entity_id"`
	OldValues json.RawMessage `json:"old_values"`
	NewValues json.RawMessage `json:"new_values"`
	RequestID string          `json:"request_id,omitempty"`
	CreatedAt string          `json:"created_at"`
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}

func mapEntriesToResponse(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			EventID:   e.EventID,
			ActorID:   e.ActorID,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			OldValues: rawOrNull(e.OldValues),
			NewValues: rawOrNull(e.NewValues),
			RequestID: e.RequestID,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
