// SPDX-License-Identifier: MIT
package distributor

import (
	"testing"
	"time"
)

func batchOf(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

func TestPushMeasuresRate(t *testing.T) {
	d := New[int](100)

	// The first push cannot carry rate information; the seed survives.
	d.Push(batchOf(0, 50), 100*time.Millisecond)
	if got := d.DataRate(); got != 100 {
		t.Fatalf("DataRate after first push = %g, expected seed 100", got)
	}

	// The second push measures: 50 elements / 100ms = 500/s.
	d.Push(batchOf(50, 50), 100*time.Millisecond)
	if got := d.DataRate(); got != 500 {
		t.Fatalf("DataRate after second push = %g, expected 500", got)
	}
}

func TestPopFIFOOrder(t *testing.T) {
	d := New[int](1000)
	d.Push(batchOf(0, 10), 10*time.Millisecond)

	got := d.Pop(5 * time.Millisecond) // 1000/s * 5ms = 5 elements
	if len(got) != 5 {
		t.Fatalf("Pop returned %d elements, expected 5", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("Pop()[%d] = %d, expected %d (FIFO order)", i, v, i)
		}
	}
}

func TestPopEmptyQueue(t *testing.T) {
	d := New[int](1000)
	if got := d.Pop(time.Second); len(got) != 0 {
		t.Fatalf("Pop on empty queue returned %d elements, expected 0", len(got))
	}
}

// Cumulative popped count must converge to the cumulative pushed count
// when elapsed times are consistent: the fractional-excess carry prevents
// floor-rounding from drifting.
func TestNoLongRunDrift(t *testing.T) {
	const (
		rate      = 640.0 // elements per second
		batchSize = 64
		cycles    = 50
	)

	d := New[int](rate)

	pushed, popped := 0, 0
	for c := 0; c < cycles; c++ {
		d.Push(batchOf(pushed, batchSize), 100*time.Millisecond)
		pushed += batchSize

		// Ten 10ms pops cover the same elapsed time as the push; each
		// wants 6.4 elements, so the carry has to do real work.
		for i := 0; i < 10; i++ {
			popped += len(d.Pop(10 * time.Millisecond))
		}
	}

	diff := pushed - popped
	if diff < 0 {
		diff = -diff
	}
	if diff > 1 {
		t.Errorf("cumulative drift after %d cycles: pushed %d, popped %d", cycles, pushed, popped)
	}
}

// Pushing far faster than the estimated rate must never grow the queue
// beyond twice the last push size: the safety valve drops the oldest
// elements instead.
func TestSafetyValveBoundsQueue(t *testing.T) {
	const batchSize = 100

	d := New[int](10) // estimate is wildly below the true arrival rate

	for i := 0; i < 50; i++ {
		// Keep the measured rate low by claiming a long elapsed time.
		d.Push(batchOf(i*batchSize, batchSize), 10*time.Second)
		d.Pop(10 * time.Millisecond)

		if got := d.Len(); got > 2*batchSize {
			t.Fatalf("queue length %d after pop %d, expected <= %d", got, i, 2*batchSize)
		}
	}
}

func TestPopNegativeElapsed(t *testing.T) {
	d := New[int](1000)
	d.Push(batchOf(0, 10), 10*time.Millisecond)

	// A clock running backwards (suspend, NTP step) must yield nothing,
	// not a negative allocation.
	if got := d.Pop(-time.Second); len(got) != 0 {
		t.Fatalf("Pop with negative elapsed returned %d elements, expected 0", len(got))
	}
	if got := d.Len(); got != 10 {
		t.Fatalf("queue length %d after negative-elapsed pop, expected 10", got)
	}
}

func TestCloneBufferNonDestructive(t *testing.T) {
	d := New[int](1000)
	d.Push(batchOf(0, 8), 8*time.Millisecond)

	snapshot := d.CloneBuffer()
	if len(snapshot) != 8 || d.Len() != 8 {
		t.Fatalf("CloneBuffer consumed the queue: snapshot %d, queue %d", len(snapshot), d.Len())
	}

	// Mutating the snapshot must not reach the queue.
	snapshot[0] = -1
	if d.CloneBuffer()[0] != 0 {
		t.Error("CloneBuffer shares backing storage with the queue")
	}
}

func TestClear(t *testing.T) {
	d := New[int](1000)
	d.Push(batchOf(0, 8), 8*time.Millisecond)
	d.Clear()
	if d.Len() != 0 {
		t.Fatalf("Len after Clear = %d, expected 0", d.Len())
	}
	if d.DataRate() != 1000 {
		t.Errorf("Clear changed the data rate to %g", d.DataRate())
	}
}

// Auto-clock variant of the steady-state scenario: batches of 9 arrive
// every 5th tick, so after the rate settles every tick should pop data
// and the queue must stay bounded.
func TestAutoSteadyState(t *testing.T) {
	d := New[int](12.8)

	for counter := 0; counter <= 100; counter++ {
		if counter%5 == 0 {
			d.PushAuto(batchOf(counter, 9))
		}

		data := d.PopAuto()

		if counter >= 10 {
			if len(data) == 0 {
				t.Fatalf("tick %d: empty pop after rate settled", counter)
			}
			if got := len(d.CloneBuffer()); got > 16 {
				t.Fatalf("tick %d: queue length %d, expected <= 16", counter, got)
			}
		}

		time.Sleep(2 * time.Millisecond)
	}
}

func BenchmarkPushPop(b *testing.B) {
	d := New[float64](48000)
	batch := make([]float64, 512)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Push(batch, 10*time.Millisecond)
		d.Pop(10 * time.Millisecond)
		d.Clear()
	}
}
