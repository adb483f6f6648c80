package ws

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/roomhub/internal/model"
)

// Envelope is the frame used in both directions:
// {"event": name, "data": payload, "ack": n}
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   int64           `json:"ack,omitempty"`
}

// Encode renders an outbound event as a text frame
func Encode(event model.Event) ([]byte, error) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event.Name, err)
	}
	return json.Marshal(Envelope{
		Event: string(event.Name),
		Data:  data,
		Ack:   event.Ack,
	})
}

// Decode parses an inbound text frame
func Decode(frame []byte) (model.Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return model.Inbound{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	if env.Event == "" {
		return model.Inbound{}, fmt.Errorf("%w: missing event name", model.ErrInvalidPayload)
	}
	return model.Inbound{
		Name: model.EventName(env.Event),
		Data: env.Data,
		Ack:  env.Ack,
	}, nil
}
