package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into one signal on C, delivered once the
// calls have been quiet for the configured delay.
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
	out   chan struct{}
}

// NewDebouncer creates a debouncer. A non-positive delay fires on every trigger.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, out: make(chan struct{}, 1)}
}

// C delivers debounced signals. At most one signal is buffered.
func (d *Debouncer) C() <-chan struct{} { return d.out }

// Trigger (re)arms the timer.
func (d *Debouncer) Trigger() {
	if d.delay <= 0 {
		d.fire()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Stop cancels a pending signal.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	select {
	case d.out <- struct{}{}:
	default:
	}
}
