package feed

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/stanbotdev/stanbot/internal/observability"
)

// SubscriptionStore resolves a source id to its subscribed destinations.
// services.SubscriptionService satisfies it.
type SubscriptionStore interface {
	DestinationsFor(ctx context.Context, sourceID string) ([]int64, error)
}

// DeliverFunc sends one rendering to one destination channel. Failures are
// per-destination: the router logs and skips, it never retries and never
// escalates to the stream.
type DeliverFunc func(ctx context.Context, channelID int64, r Rendering) error

// Router fans one incoming event out to every channel subscribed to its
// source. The event is rendered once; each delivery is independent.
type Router struct {
	Subs     SubscriptionStore
	Renderer *Renderer
	Deliver  DeliverFunc
}

// NewRouter constructs a Router.
func NewRouter(subs SubscriptionStore, renderer *Renderer, deliver DeliverFunc) *Router {
	return &Router{Subs: subs, Renderer: renderer, Deliver: deliver}
}

// Dispatch resolves the event's destinations, renders it once, and attempts
// delivery to each destination in order. It returns the number of
// successful deliveries. A destination failing (gone, unreachable, over
// whatever deadline the delivery channel enforces) is logged and skipped;
// an event with no subscribers is dropped silently.
func (rt *Router) Dispatch(ctx context.Context, ev Event) (int, error) {
	dests, err := rt.Subs.DestinationsFor(ctx, ev.SourceID)
	if err != nil {
		log.Error().Err(err).Str("source_id", ev.SourceID).Msg("destination lookup failed")
		return 0, err
	}
	if len(dests) == 0 {
		return 0, nil
	}

	rendering := rt.Renderer.Render(ev)
	observability.ObserveEvent(ev.SourceID)

	delivered := 0
	for _, ch := range dests {
		if err := rt.Deliver(ctx, ch, rendering); err != nil {
			log.Warn().Err(err).
				Str("source_id", ev.SourceID).
				Str("event_id", ev.ID).
				Int64("channel_id", ch).
				Msg("delivery failed, skipping destination")
			observability.ObserveDelivery(false)
			continue
		}
		delivered++
		observability.ObserveDelivery(true)
	}

	log.Debug().
		Str("source_id", ev.SourceID).
		Str("event_id", ev.ID).
		Int("destinations", len(dests)).
		Int("delivered", delivered).
		Msg("event dispatched")
	return delivered, nil
}

// Listener pumps events from the external stream client into the router.
// The stream client is external and assumed to deliver already-deserialized
// events at-least-once; the listener is a thin loop with a shutdown signal.
type Listener struct {
	Events <-chan Event
	Router *Router
}

// Run consumes events until the channel closes or ctx is cancelled. Each
// event is dispatched synchronously; dispatch errors are already logged by
// the router and do not stop the loop.
func (l *Listener) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-l.Events:
			if !ok {
				return
			}
			_, _ = l.Router.Dispatch(ctx, ev)
		}
	}
}
