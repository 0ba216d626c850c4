package eventbus

import (
	"context"

	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/event"
)

// LogConsumer logs all parse events.
type LogConsumer struct {
	log *zap.Logger
}

func NewLogConsumer(log *zap.Logger) *LogConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogConsumer{log: log.Named("events")}
}

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.ParseEvent) error {
	fields := []zap.Field{
		zap.String("event_type", evt.EventType),
		zap.String("query", evt.Query),
		zap.Duration("duration", evt.Duration),
	}
	switch {
	case evt.Failed():
		c.log.Info(evt.Summary, append(fields, zap.String("error_type", evt.ErrorType))...)
	case evt.Target != "":
		c.log.Debug(evt.Summary, append(fields, zap.String("target", evt.Target))...)
	default:
		c.log.Debug(evt.Summary, append(fields, zap.String("kind", evt.Kind), zap.String("index", evt.Index))...)
	}
	return nil
}
