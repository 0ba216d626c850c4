// Package event provides parse event recording for the query service.
// Events are written as activity entries via the activity.Store interface,
// then published to the in-process event bus for downstream consumers.
package event

import (
	"context"

	"github.com/matthewbaird/nlquery/internal/activity"
)

// Recorder writes parse events to the activity store.
type Recorder interface {
	Record(ctx context.Context, evt ParseEvent) error
}

// Publisher sends parse events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt ParseEvent)
}

// ActivityRecorder implements Recorder on an activity.Store. If a Publisher
// is set, the event is also published after the store write succeeds.
type ActivityRecorder struct {
	store activity.Store
	bus   Publisher
}

// NewActivityRecorder creates a new ActivityRecorder backed by the given store.
func NewActivityRecorder(store activity.Store) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// SetPublisher attaches an event bus.
func (r *ActivityRecorder) SetPublisher(p Publisher) {
	r.bus = p
}

// Record writes evt as an activity entry and publishes it.
func (r *ActivityRecorder) Record(ctx context.Context, evt ParseEvent) error {
	if err := r.store.WriteEntries(ctx, []activity.Entry{Entry(evt)}); err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
	return nil
}

// Entry converts evt to its activity entry.
func Entry(evt ParseEvent) activity.Entry {
	return activity.Entry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		Query:      evt.Query,
		Kind:       evt.Kind,
		Index:      evt.Index,
		ErrorType:  evt.ErrorType,
		Summary:    evt.Summary,
		DurationMS: float64(evt.Duration.Microseconds()) / 1000,
		Payload:    evt.Payload,
	}
}
