package signaling

import (
	"log/slog"

	"github.com/mcoot/roomhub/internal/model"
)

// Deliverer hands an event to a single connection, reporting whether it was
// accepted
type Deliverer interface {
	Deliver(id model.ConnID, event model.Event) bool
}

// Relay forwards opaque call-setup payloads between two connections. It holds
// no state; delivery to an identity that is not connected is dropped.
type Relay struct {
	deliverer Deliverer
	logger    *slog.Logger
}

// New creates a new Relay
func New(deliverer Deliverer, logger *slog.Logger) *Relay {
	return &Relay{
		deliverer: deliverer,
		logger:    logger.With(slog.String("component", "signaling")),
	}
}

// Offer forwards a call offer as incoming-call
func (r *Relay) Offer(from model.ConnID, req model.CallUserRequest) bool {
	return r.forward(req.To, model.Event{
		Name: model.EventIncomingCall,
		Payload: model.IncomingCallPayload{
			Payload:     req.Payload,
			From:        from,
			DisplayName: req.DisplayName,
		},
	}, from)
}

// Answer forwards a call answer as call-accepted
func (r *Relay) Answer(from model.ConnID, req model.AnswerCallRequest) bool {
	return r.forward(req.To, model.Event{
		Name: model.EventCallAccepted,
		Payload: model.CallAcceptedPayload{
			Payload: req.Payload,
			From:    from,
		},
	}, from)
}

// Candidate forwards an ICE candidate
func (r *Relay) Candidate(from model.ConnID, req model.IceCandidateRequest) bool {
	return r.forward(req.To, model.Event{
		Name: model.EventIceCandidate,
		Payload: model.IceCandidatePayload{
			Candidate: req.Candidate,
			From:      from,
		},
	}, from)
}

func (r *Relay) forward(to model.ConnID, event model.Event, from model.ConnID) bool {
	if to == "" {
		return false
	}
	ok := r.deliverer.Deliver(to, event)
	r.logger.Debug("signal relayed",
		slog.String("event", string(event.Name)),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Bool("delivered", ok))
	return ok
}
