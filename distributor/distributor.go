// SPDX-License-Identifier: MIT
/*
Package distributor smooths bursty batch delivery into a steady pop rate.

Audio sources hand over buffers of irregular size at irregular intervals,
while downstream consumers (FFT windows, renderers) want a steady trickle.
A Distributor measures the arrival rate online and, on every Pop, converts
the elapsed time since the previous Pop into an element count, carrying the
fractional remainder forward so rounding never accumulates into drift.
*/
package distributor

import (
	"time"

	applog "spectra/internal/log"
)

// Distributor is an adaptive-rate FIFO over elements of type T.
//
// It is not safe for concurrent use; callers that share one across
// goroutines must serialize access themselves (the spectrum.Controller
// does this by owning its state in a single loop).
type Distributor[T any] struct {
	buffer []T

	// dataRate is the measured arrival rate in elements per second. It is
	// seeded with the caller's estimate and recomputed on every Push after
	// the first, since a single push carries no rate information.
	dataRate    float64
	initialized bool

	// excess carries the fractional part of elapsed*rate between Pop calls
	// so that floor-rounding does not starve the consumer over time.
	excess float64

	// lastPushLen caps queue growth: after a Pop the queue may not exceed
	// twice the most recent push, or the safety valve drops the oldest
	// elements.
	lastPushLen int

	pushClock time.Time
	popClock  time.Time
}

// New constructs a Distributor seeded with estimatedRate in elements per
// second. The estimate is used until two pushes have occurred, after which
// the measured rate takes over. A wrong estimate costs latency, not
// correctness.
func New[T any](estimatedRate float64) *Distributor[T] {
	now := time.Now()
	return &Distributor[T]{
		dataRate:  estimatedRate,
		pushClock: now,
		popClock:  now,
	}
}

// Push appends batch to the queue. elapsed is the time since the previous
// Push; once at least one push has already happened it is used to refresh
// the measured data rate.
func (d *Distributor[T]) Push(batch []T, elapsed time.Duration) {
	d.lastPushLen = len(batch)

	if d.initialized && elapsed > 0 {
		d.dataRate = float64(len(batch)) / elapsed.Seconds()
	}

	d.buffer = append(d.buffer, batch...)
	d.initialized = true
}

// PushAuto is Push with the elapsed time measured by the Distributor's own
// monotonic clock.
func (d *Distributor[T]) PushAuto(batch []T) {
	now := time.Now()
	elapsed := now.Sub(d.pushClock)
	d.pushClock = now
	d.Push(batch, elapsed)
}

// Pop removes and returns the elements due after elapsed time at the
// current data rate. The returned slice may be empty; it is never nil for
// a non-empty request against a non-empty queue.
//
// If the queue still exceeds twice the last push length after the drain,
// the oldest surplus elements are dropped with a warning. That keeps
// memory bounded when the measured rate undershoots the true arrival
// rate; it is lossy but never blocks and never panics.
func (d *Distributor[T]) Pop(elapsed time.Duration) []T {
	want := elapsed.Seconds() * d.dataRate
	if want < 0 {
		// A backwards clock yields nothing rather than a negative count.
		want = 0
	}

	whole := int(want)
	d.excess += want - float64(whole)
	if d.excess >= 1.0 {
		whole++
		d.excess -= 1.0
	}

	n := whole
	if n > len(d.buffer) {
		n = len(d.buffer)
	}

	out := make([]T, n)
	copy(out, d.buffer[:n])
	d.buffer = d.buffer[n:]

	// Safety valve: the rate estimate is lagging behind the producer.
	if limit := d.lastPushLen * 2; limit != 0 && len(d.buffer) > limit {
		if len(d.buffer) > whole {
			oversize := len(d.buffer) - whole
			d.buffer = d.buffer[oversize:]
			applog.Warnf("distributor: queue exceeded %d elements, dropped %d oldest", limit, oversize)
		}
	}

	return out
}

// PopAuto is Pop with the elapsed time measured by the Distributor's own
// monotonic clock.
func (d *Distributor[T]) PopAuto() []T {
	now := time.Now()
	elapsed := now.Sub(d.popClock)
	d.popClock = now
	return d.Pop(elapsed)
}

// CloneBuffer returns a snapshot copy of the queued elements, oldest
// first. Intended for diagnostics and tests.
func (d *Distributor[T]) CloneBuffer() []T {
	out := make([]T, len(d.buffer))
	copy(out, d.buffer)
	return out
}

// Clear drops all queued elements without touching the measured rate.
// Recommended after the second push when the seed estimate was far off,
// before the safety valve fires.
func (d *Distributor[T]) Clear() {
	d.buffer = d.buffer[:0]
}

// Len returns the number of queued elements.
func (d *Distributor[T]) Len() int {
	return len(d.buffer)
}

// DataRate returns the current arrival rate estimate in elements per
// second.
func (d *Distributor[T]) DataRate() float64 {
	return d.dataRate
}
