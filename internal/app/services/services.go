// Package services holds the console's business logic. Every read recomputes its
// view from a fresh repository snapshot; every successful write publishes an
// entity change event.
package services

import (
	"strconv"

	"github.com/yigit/projecthub/internal/pkg/websocket"
)

// EventPublisher is satisfied by the websocket hub
type EventPublisher interface {
	Publish(eventType websocket.EventType, entity string, entityID, actorID int64)
}

// NopPublisher discards events
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(websocket.EventType, string, int64, int64) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return NopPublisher{}
	}
	return p
}

// optionalIDText renders an optional id for equality filters; nil is ""
func optionalIDText(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// optionalIntText renders an optional int for equality filters; nil is ""
func optionalIntText(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func int64Ptr(n int64) *int64 { return &n }
