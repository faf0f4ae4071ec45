package visibility

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func newTestTrigger() *Trigger {
	return NewTrigger(zerolog.New(os.Stderr).Level(zerolog.Disabled))
}

func TestTrigger_FiresOncePerEdge(t *testing.T) {
	trigger := newTestTrigger()
	var fired int
	trigger.Arm(func() { fired++ })

	steps := []struct {
		intersecting bool
		release      bool
		wantFire     bool
	}{
		{intersecting: false, wantFire: false},
		{intersecting: true, wantFire: true},
		{intersecting: true, release: true, wantFire: false},
		{intersecting: false, wantFire: false},
		{intersecting: true, wantFire: true},
	}

	for i, step := range steps {
		if step.release {
			trigger.Release()
		}
		if got := trigger.Notify(step.intersecting); got != step.wantFire {
			t.Errorf("step %d: Notify(%v) = %v, want %v", i, step.intersecting, got, step.wantFire)
		}
		if step.wantFire {
			trigger.Release()
		}
	}

	if fired != 2 {
		t.Errorf("callback fired %d times, want 2", fired)
	}
}

func TestTrigger_LatchBlocksUntilRelease(t *testing.T) {
	trigger := newTestTrigger()
	var fired int
	trigger.Arm(func() { fired++ })

	trigger.Notify(true)
	if !trigger.InFlight() {
		t.Fatal("latch should be set synchronously when firing")
	}

	// Visibility flaps while the cycle is in flight.
	trigger.Notify(false)
	trigger.Notify(true)
	trigger.Notify(false)
	trigger.Notify(true)

	if fired != 1 {
		t.Errorf("callback fired %d times while latched, want 1", fired)
	}

	trigger.Release()
	trigger.Notify(false)
	trigger.Notify(true)
	if fired != 2 {
		t.Errorf("callback fired %d times after release, want 2", fired)
	}
}

func TestTrigger_UnarmedIgnoresEvents(t *testing.T) {
	trigger := newTestTrigger()
	if trigger.Notify(true) {
		t.Error("unarmed trigger should not fire")
	}
	if trigger.Armed() {
		t.Error("trigger should not be armed")
	}
}

func TestTrigger_ArmOnlyOnce(t *testing.T) {
	trigger := newTestTrigger()
	var first, second int

	if !trigger.Arm(func() { first++ }) {
		t.Fatal("first Arm() should succeed")
	}
	if trigger.Arm(func() { second++ }) {
		t.Error("second Arm() should be a no-op")
	}
	if trigger.Arm(nil) {
		t.Error("Arm(nil) should be rejected")
	}

	trigger.Notify(true)
	if first != 1 || second != 0 {
		t.Errorf("first = %d, second = %d, want 1, 0", first, second)
	}
}

func TestTrigger_Disconnect(t *testing.T) {
	trigger := newTestTrigger()
	var fired int
	trigger.Arm(func() { fired++ })

	trigger.Disconnect()
	trigger.Disconnect()
	trigger.Release()

	if trigger.Notify(true) {
		t.Error("disconnected trigger should not fire")
	}
	if trigger.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
	if trigger.Hold() {
		t.Error("Hold() should fail after Disconnect")
	}
	if trigger.Arm(func() {}) {
		t.Error("Arm() should fail after Disconnect")
	}
	if fired != 0 {
		t.Errorf("fired = %d, want 0", fired)
	}
}

func TestTrigger_Hold(t *testing.T) {
	trigger := newTestTrigger()
	var fired int
	trigger.Arm(func() { fired++ })

	if !trigger.Hold() {
		t.Fatal("Hold() should succeed on a free latch")
	}
	if trigger.Hold() {
		t.Error("Hold() should fail while held")
	}
	trigger.Notify(true)
	if fired != 0 {
		t.Error("held trigger should not fire")
	}
}

func TestTrigger_ConcurrentNotifyFiresOnce(t *testing.T) {
	trigger := newTestTrigger()
	var fired atomic.Int32
	trigger.Arm(func() { fired.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trigger.Notify(true)
		}()
	}
	wg.Wait()

	if got := fired.Load(); got != 1 {
		t.Errorf("fired = %d, want 1", got)
	}
}
