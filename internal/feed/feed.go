// Package feed republishes ledger entries to a socket.io server as they are
// appended.
package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/hotswap/internal/ctxlog"
	"github.com/vk/hotswap/internal/ledger"
)

// DefaultEvent is the socket.io event name entries are emitted under.
const DefaultEvent = "ledger"

const queueSize = 256

// Emitter is the part of a socket.io client the publisher needs.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Message is the payload of one emitted event.
type Message struct {
	Instance   string       `json:"instance"`
	Seq        uint64       `json:"seq"`
	Kind       ledger.Kind  `json:"kind"`
	Capability string       `json:"capability,omitempty"`
	Summary    string       `json:"summary"`
	At         time.Time    `json:"at"`
	Entry      ledger.Entry `json:"entry"`
}

// NewMessage describes e on behalf of instance.
func NewMessage(instance string, e ledger.Entry) Message {
	return Message{
		Instance:   instance,
		Seq:        e.Seq,
		Kind:       e.Kind,
		Capability: e.Capability(),
		Summary:    e.String(),
		At:         e.At(),
		Entry:      e,
	}
}

// Publisher forwards ledger entries to an Emitter from its own goroutine, so
// a slow connection never holds up the ledger. Entries arriving while the
// queue is full are dropped and counted.
type Publisher struct {
	em       Emitter
	event    string
	instance string

	queue   chan ledger.Entry
	done    chan struct{}
	dropped atomic.Int64
	sent    atomic.Int64

	stopOnce sync.Once
	cancel   func()
}

// NewPublisher creates a Publisher emitting under event. An empty event uses
// DefaultEvent.
func NewPublisher(em Emitter, instance, event string) *Publisher {
	if event == "" {
		event = DefaultEvent
	}
	return &Publisher{
		em:       em,
		event:    event,
		instance: instance,
		queue:    make(chan ledger.Entry, queueSize),
		done:     make(chan struct{}),
	}
}

// Attach subscribes to l and starts forwarding. It must be called once.
func (p *Publisher) Attach(ctx context.Context, l *ledger.Ledger) {
	logger := ctxlog.FromContext(ctx).With("component", "feed", "event", p.event)

	p.cancel = l.Subscribe(func(e ledger.Entry) {
		select {
		case p.queue <- e:
		default:
			p.dropped.Add(1)
		}
	})

	go func() {
		defer close(p.done)
		for e := range p.queue {
			if err := p.em.Emit(p.event, NewMessage(p.instance, e)); err != nil {
				logger.Warn("Failed to emit ledger entry.", "seq", e.Seq, "error", err)
				continue
			}
			p.sent.Add(1)
		}
	}()
	logger.Debug("Feed publisher attached.")
}

// Stop unsubscribes, drains what is already queued, and waits for the
// forwarding goroutine to exit.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel == nil {
			close(p.done)
			return
		}
		p.cancel()
		close(p.queue)
		<-p.done
	})
}

// Sent returns the number of entries emitted successfully.
func (p *Publisher) Sent() int64 {
	return p.sent.Load()
}

// Dropped returns the number of entries discarded on a full queue.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}
