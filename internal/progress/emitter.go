// Package progress fans stage lifecycle events out to external observers
// without letting them disturb pipeline execution.
package progress

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Phase is a stage lifecycle transition visible to subscribers.
type Phase string

const (
	PhaseStarted   Phase = "started"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// Event describes one stage-level lifecycle transition. Events are
// ephemeral: the emitter keeps no history.
type Event struct {
	Stage         string
	Phase         Phase
	Detail        string
	CorrelationID string
	Timestamp     time.Time
}

// Subscriber receives events synchronously, in registration order.
type Subscriber func(Event)

// Emitter is a registry of subscriber callbacks. A subscriber panic is
// recovered and logged, never propagated into the caller's control flow,
// and no event is dropped for subscribers registered before a run begins.
type Emitter struct {
	mu     sync.RWMutex
	subs   []Subscriber
	logger *log.Logger
}

// NewEmitter creates an emitter. logger may be nil.
func NewEmitter(logger *log.Logger) *Emitter {
	return &Emitter{logger: logger}
}

// Subscribe registers a callback for all subsequent events.
func (e *Emitter) Subscribe(fn Subscriber) {
	e.mu.Lock()
	e.subs = append(e.subs, fn)
	e.mu.Unlock()
}

// SubscribeChannel registers a buffered channel subscriber and returns the
// receive side. Delivery is non-blocking: if the buffer is full the event
// is dropped for that channel rather than stalling the pipeline.
func (e *Emitter) SubscribeChannel(bufSize int) <-chan Event {
	if bufSize <= 0 {
		bufSize = 256
	}
	ch := make(chan Event, bufSize)
	e.Subscribe(func(ev Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	return ch
}

// Emit delivers the event to every subscriber, in registration order.
func (e *Emitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	e.mu.RLock()
	subs := make([]Subscriber, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	for _, fn := range subs {
		e.dispatch(fn, ev)
	}
}

func (e *Emitter) dispatch(fn Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.Error("progress subscriber panicked", "stage", ev.Stage, "phase", ev.Phase, "panic", r)
		}
	}()
	fn(ev)
}
