package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "anchorid_audit_events_dropped_total",
	Help: "Audit events dropped because the async buffer was full",
})

// Sink receives events. Implementations: Kafka for deployments, memory for
// tests and single-binary runs.
type Sink interface {
	Append(ctx context.Context, event Event) error
	Close() error
}

// Publisher forwards events to a sink, optionally through an async buffer so
// a slow broker never sits on the request path.
type Publisher struct {
	sink   Sink
	logger *slog.Logger

	buffer chan Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given buffer size. When the buffer is full, events are dropped and logged.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan Event, size)
	}
}

// NewPublisher builds a publisher in synchronous mode unless an option says
// otherwise.
func NewPublisher(sink Sink, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode a full buffer drops the event rather
// than blocking the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	if p.buffer == nil {
		return p.sink.Append(ctx, event)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	select {
	case p.buffer <- event:
	default:
		droppedEvents.Inc()
		p.logger.Warn("audit buffer full, event dropped",
			"kind", event.Kind,
			"event_id", event.ID,
		)
	}
	return nil
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.buffer {
		// Detached context: the originating request may be long gone.
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.logger.Error("audit sink append failed",
				"kind", event.Kind,
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}

// Close drains buffered events and closes the sink.
func (p *Publisher) Close() error {
	if p.buffer != nil {
		p.mu.Lock()
		if !p.closed {
			p.closed = true
			close(p.buffer)
		}
		p.mu.Unlock()
		<-p.done
	}
	return p.sink.Close()
}
