// Package visibility turns sentinel visibility reports into edge-triggered
// advance signals for the feed loader.
//
// A Trigger is owned by exactly one loader. The rendering surface reports
// whether the sentinel element intersects the scroll viewport through Notify;
// the trigger invokes the advance callback once per transition from "not
// intersecting" to "intersecting", and only while no advance is in flight.
//
// Lifecycle:
//
//	trigger := visibility.NewTrigger(logger)
//	trigger.Hold()           // latch held for the initial load
//	trigger.Arm(onAdvance)   // armed once, on the first transition away from idle
//	trigger.Notify(true)     // ignored while held
//	trigger.Release()        // cycle finished, next edge may fire
//	trigger.Disconnect()     // end of feed, nothing fires again
package visibility

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var visibilityEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feed_visibility_events_total",
	Help: "Sentinel visibility reports by outcome",
}, []string{"outcome"})

// Event outcomes.
const (
	outcomeFired        = "fired"
	outcomeNoEdge       = "no_edge"
	outcomeUnarmed      = "unarmed"
	outcomeInFlight     = "in_flight"
	outcomeDisconnected = "disconnected"
)

// Trigger is an edge-triggered, re-entrancy guarded visibility observer.
type Trigger struct {
	mu     sync.Mutex
	logger zerolog.Logger

	onAdvance    func()
	armed        bool
	disconnected bool
	inFlight     bool
	intersecting bool
}

// NewTrigger creates an unarmed trigger.
func NewTrigger(logger zerolog.Logger) *Trigger {
	return &Trigger{logger: logger}
}

// Arm starts observation with the given callback. Only the first call has an
// effect; it returns false for later calls or after Disconnect.
func (t *Trigger) Arm(onAdvance func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed || t.disconnected || onAdvance == nil {
		return false
	}
	t.armed = true
	t.onAdvance = onAdvance
	t.logger.Debug().Msg("Visibility trigger armed")
	return true
}

// Notify reports the current intersection state of the sentinel.
// It returns true when the report produced an advance signal.
// The callback runs synchronously on the caller's goroutine after the
// latch has been set.
func (t *Trigger) Notify(intersecting bool) bool {
	t.mu.Lock()
	wasIntersecting := t.intersecting
	t.intersecting = intersecting

	outcome := outcomeFired
	switch {
	case t.disconnected:
		outcome = outcomeDisconnected
	case !intersecting || wasIntersecting:
		outcome = outcomeNoEdge
	case !t.armed:
		outcome = outcomeUnarmed
	case t.inFlight:
		outcome = outcomeInFlight
	}

	if outcome != outcomeFired {
		t.mu.Unlock()
		visibilityEventsTotal.WithLabelValues(outcome).Inc()
		if outcome != outcomeNoEdge {
			t.logger.Debug().
				Bool("intersecting", intersecting).
				Str("outcome", outcome).
				Msg("Visibility event ignored")
		}
		return false
	}

	t.inFlight = true
	cb := t.onAdvance
	t.mu.Unlock()

	visibilityEventsTotal.WithLabelValues(outcomeFired).Inc()
	t.logger.Debug().Msg("Sentinel became visible - advancing")
	cb()
	return true
}

// Hold sets the in-flight latch without a visibility event.
// It returns false if the latch is already held or the trigger is disconnected.
func (t *Trigger) Hold() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inFlight || t.disconnected {
		return false
	}
	t.inFlight = true
	return true
}

// Release clears the in-flight latch once a fetch cycle completed.
func (t *Trigger) Release() {
	t.mu.Lock()
	t.inFlight = false
	t.mu.Unlock()
}

// Disconnect permanently stops observation.
func (t *Trigger) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disconnected {
		return
	}
	t.disconnected = true
	t.onAdvance = nil
	t.logger.Debug().Msg("Visibility trigger disconnected")
}

// Connected reports whether the trigger still observes visibility.
func (t *Trigger) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.disconnected
}

// Armed reports whether Arm has been called successfully.
func (t *Trigger) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// InFlight reports whether the re-entrancy latch is held.
func (t *Trigger) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}
