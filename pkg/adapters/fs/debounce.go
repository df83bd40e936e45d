package fs

import (
	"sync"
	"time"

	"github.com/aretw0/silt/pkg/core"
)

// debouncer coalesces bursts of events per collection+type key. Editors and
// atomic renames produce several filesystem notifications for one logical
// change; only the last one within the window is emitted.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules emit for the event after the debounce window, resetting the
// window if an event with the same key is already pending.
func (d *debouncer) add(event core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	key := event.Collection + "|" + string(event.Type)
	if t, ok := d.timers[key]; ok {
		t.Reset(d.delay)
		return
	}

	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		delete(d.timers, key)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			emit(event)
		}
	})
}

// stopAndWait stops accepting events and waits, up to the timeout, for all
// in-flight timers to finish. Safe to call before closing the destination
// channel.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
