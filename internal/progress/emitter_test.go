package progress

import (
	"fmt"
	"reflect"
	"testing"
)

// TestOrderedFanOut verifies two subscribers observe identical, ordered
// event sequences.
func TestOrderedFanOut(t *testing.T) {
	e := NewEmitter(nil)

	var first, second []string
	e.Subscribe(func(ev Event) {
		first = append(first, fmt.Sprintf("%s/%s", ev.Stage, ev.Phase))
	})
	e.Subscribe(func(ev Event) {
		second = append(second, fmt.Sprintf("%s/%s", ev.Stage, ev.Phase))
	})

	events := []Event{
		{Stage: "ingest", Phase: PhaseStarted},
		{Stage: "ingest", Phase: PhaseCompleted},
		{Stage: "extract", Phase: PhaseStarted},
		{Stage: "extract", Phase: PhaseFailed},
	}
	for _, ev := range events {
		e.Emit(ev)
	}

	want := []string{"ingest/started", "ingest/completed", "extract/started", "extract/failed"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("first subscriber saw %v, want %v", first, want)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("subscribers diverged: %v vs %v", first, second)
	}
}

// TestPanickingSubscriberIsolated verifies a panicking subscriber neither
// aborts emission nor starves later subscribers.
func TestPanickingSubscriberIsolated(t *testing.T) {
	e := NewEmitter(nil)

	received := 0
	e.Subscribe(func(Event) { panic("observer bug") })
	e.Subscribe(func(Event) { received++ })

	e.Emit(Event{Stage: "ingest", Phase: PhaseStarted})
	e.Emit(Event{Stage: "ingest", Phase: PhaseCompleted})

	if received != 2 {
		t.Errorf("later subscriber received %d events, want 2", received)
	}
}

// TestSubscribeChannel verifies the channel bridge delivers events and
// never blocks emission when the buffer fills.
func TestSubscribeChannel(t *testing.T) {
	e := NewEmitter(nil)
	ch := e.SubscribeChannel(1)

	// Second emit overflows the buffer; Emit must not block.
	e.Emit(Event{Stage: "a", Phase: PhaseStarted})
	e.Emit(Event{Stage: "b", Phase: PhaseStarted})

	ev := <-ch
	if ev.Stage != "a" {
		t.Errorf("stage = %q, want a", ev.Stage)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected extra event %+v (should have been dropped)", extra)
	default:
	}
}

// TestEmitStampsTimestamp verifies a zero timestamp is filled in.
func TestEmitStampsTimestamp(t *testing.T) {
	e := NewEmitter(nil)
	var got Event
	e.Subscribe(func(ev Event) { got = ev })

	e.Emit(Event{Stage: "ingest", Phase: PhaseStarted})
	if got.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
}
