package admin

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key: of the calls made within one
// window only the last one proceeds.
type Debouncer struct {
	window time.Duration

	mu  sync.Mutex
	gen map[string]uint64
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window, gen: make(map[string]uint64)}
}

// Wait blocks for the window and reports whether this call is still the
// latest for key. Superseded calls return false and should do nothing.
func (d *Debouncer) Wait(ctx context.Context, key string) (bool, error) {
	d.mu.Lock()
	d.gen[key]++
	mine := d.gen[key]
	d.mu.Unlock()

	if d.window > 0 {
		timer := time.NewTimer(d.window)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen[key] == mine, nil
}

// ForgetPrefix drops the counters of every key starting with prefix
func (d *Debouncer) ForgetPrefix(prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.gen {
		if strings.HasPrefix(k, prefix) {
			delete(d.gen, k)
		}
	}
}
