package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lokation/pkg/protocol"
	"github.com/vango-dev/lokation/pkg/remote"
)

// observer records session traffic as metrics and spans, then hands it
// to next if set.
type observer struct {
	metrics *metrics
	tracer  trace.Tracer
	next    remote.Observer
}

var _ remote.Observer = (*observer)(nil)

// EventReceived wraps delivery of a browser event in a span, so the
// listeners and subscribers it triggers are timed together.
func (o *observer) EventReceived(s *remote.Session, ev *protocol.Event, deliver func()) {
	kind := ev.Kind.String()
	o.metrics.eventsTotal.WithLabelValues(kind).Inc()
	start := time.Now()

	_, span := o.tracer.Start(context.Background(), "lokation.event "+kind,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("lokation.session_id", s.ID),
			attribute.Int64("lokation.seq", int64(ev.Seq)),
			attribute.String("lokation.new_url", ev.NewURL),
			attribute.String("lokation.href", ev.Location.Href),
		),
	)
	defer func() {
		span.End()
		o.metrics.eventDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	if o.next != nil {
		o.next.EventReceived(s, ev, deliver)
		return
	}
	deliver()
}

// CommandSent records a command.
func (o *observer) CommandSent(s *remote.Session, cmd *protocol.Command) {
	o.metrics.commandsTotal.WithLabelValues(cmd.Op.String()).Inc()

	attrs := []attribute.KeyValue{
		attribute.String("lokation.session_id", s.ID),
		attribute.Int64("lokation.seq", int64(cmd.Seq)),
	}
	if cmd.Op == protocol.OpListen {
		attrs = append(attrs, attribute.String("lokation.kind", cmd.Kind.String()))
	} else {
		attrs = append(attrs, attribute.String("lokation.value", cmd.Value))
	}

	_, span := o.tracer.Start(context.Background(), "lokation.command "+cmd.Op.String(),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attrs...),
	)
	span.End()

	if o.next != nil {
		o.next.CommandSent(s, cmd)
	}
}
