package websocket

import (
	"context"

	"github.com/rs/zerolog"
)

// Recorder writes an audit log line for every event the hub sees
type Recorder struct {
	hub     *Hub
	logger  zerolog.Logger
	observe func(*Event)
}

// NewRecorder creates a Recorder; observe, when non-nil, is called for each event (metrics)
func NewRecorder(hub *Hub, logger zerolog.Logger, observe func(*Event)) *Recorder {
	return &Recorder{hub: hub, logger: logger, observe: observe}
}

// Start listens for events until ctx is cancelled
func (r *Recorder) Start(ctx context.Context) {
	events := make(chan *Event, 64)
	r.hub.AddListener(events)

	go func() {
		defer r.hub.RemoveListener(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-events:
				r.record(event)
			}
		}
	}()
}

func (r *Recorder) record(event *Event) {
	r.logger.Info().
		Str("event", string(event.Type)).
		Str("entity", event.Entity).
		Int64("entityID", event.EntityID).
		Int64("actorID", event.ActorID).
		Msg("Entity changed")

	if r.observe != nil {
		r.observe(event)
	}
}
