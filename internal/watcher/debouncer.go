package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path and flushes them after a
// quiet window, or immediately once the batch limit is hit. Editors saving
// an Office file emit several events in quick succession; callers want one.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]TemplateEvent)

	mu      sync.Mutex
	events  map[string]TemplateEvent
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]TemplateEvent)) *Debouncer {
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		events:   make(map[string]TemplateEvent),
		onFlush:  onFlush,
	}
}

func (d *Debouncer) Add(event TemplateEvent) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.events[event.Path] = event

	if len(d.events) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if !d.stopped {
			d.flushLocked()
		} else {
			d.mu.Unlock()
		}
	})

	d.mu.Unlock()
}

// flushLocked hands the pending batch to onFlush. It releases the lock
// before the callback runs.
func (d *Debouncer) flushLocked() {
	events := make([]TemplateEvent, 0, len(d.events))
	for _, e := range d.events {
		events = append(events, e)
	}
	d.events = make(map[string]TemplateEvent)
	d.mu.Unlock()

	if len(events) > 0 {
		d.onFlush(events)
	}
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
