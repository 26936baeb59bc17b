package service

import "go-restaurant-authz/internal/ws"

// EventPublisher broadcasts state changes to connected sessions.
// *ws.Hub implements it.
type EventPublisher interface {
	Publish(event ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
