// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"sync"
	"testing"
	"time"

	"spectra/spectrum"
)

type stubSource struct {
	mu    sync.Mutex
	frame [][]spectrum.Frequency
}

func (s *stubSource) Frequencies() [][]spectrum.Frequency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *stubSource) set(frame [][]spectrum.Frequency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

type collectTransport struct {
	mu     sync.Mutex
	frames [][][]spectrum.Frequency
	closed bool
	err    error
}

func (c *collectTransport) Send(frame [][]spectrum.Frequency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *collectTransport) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *collectTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *collectTransport) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var _ Transport = (*collectTransport)(nil)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPublisherFansOut(t *testing.T) {
	source := &stubSource{}
	source.set([][]spectrum.Frequency{{{Volume: 1, Freq: 440, Position: 0.5}}})

	first := &collectTransport{}
	second := &collectTransport{}

	p := NewPublisher(time.Millisecond, source, first, second)
	p.Start()
	defer p.Stop()

	waitFor(t, func() bool { return first.count() >= 3 && second.count() >= 3 },
		"frames did not reach both transports")
}

func TestPublisherSkipsNilFrames(t *testing.T) {
	source := &stubSource{} // Frequencies returns nil until set
	sink := &collectTransport{}

	p := NewPublisher(time.Millisecond, source, sink)
	p.Start()
	defer p.Stop()

	time.Sleep(20 * time.Millisecond)
	if got := sink.count(); got != 0 {
		t.Fatalf("%d frames sent from a nil source, expected 0", got)
	}

	source.set([][]spectrum.Frequency{{}})
	waitFor(t, func() bool { return sink.count() > 0 }, "no frames after the source came up")
}

func TestPublisherStopClosesTransports(t *testing.T) {
	source := &stubSource{}
	sink := &collectTransport{}

	p := NewPublisher(time.Millisecond, source, sink)
	p.Start()
	p.Stop()
	p.Stop() // idempotent

	if !sink.isClosed() {
		t.Fatal("Stop did not close the transport")
	}
}

func TestPublisherSurvivesSendErrors(t *testing.T) {
	source := &stubSource{}
	source.set([][]spectrum.Frequency{{}})

	failing := &collectTransport{err: errors.New("boom")}
	working := &collectTransport{}

	p := NewPublisher(time.Millisecond, source, failing, working)
	p.Start()
	defer p.Stop()

	// A failing transport must not stop delivery to the healthy one.
	waitFor(t, func() bool { return working.count() >= 3 }, "healthy transport starved by a failing one")
}

func TestNewPublisherDefaultInterval(t *testing.T) {
	p := NewPublisher(0, &stubSource{})
	if p.interval != 16*time.Millisecond {
		t.Fatalf("interval = %s, expected 16ms default", p.interval)
	}
}
