// SPDX-License-Identifier: MIT
package spectrum

import (
	"sync"
	"time"
)

// Controller events. Each one is atomic at loop granularity: ticks,
// pushes and requests never interleave because they arrive over the same
// serialized channel.
type pushEvent struct {
	samples []float64
}

type freqRequest struct {
	reply chan [][]Frequency
}

type configRequest struct {
	reply chan StreamConfig
}

type configUpdate struct {
	config StreamConfig
	reply  chan error
}

// Controller owns a Stream inside a single processing loop and exposes it
// to any number of producer and consumer goroutines through message
// passing. All Controller methods are safe for concurrent use.
//
// The periodic analysis tick is a timer event injected into the same loop,
// so there is a well-defined happens-before order between a Push and the
// next tick's recompute, and consumers can never observe a torn spectrum.
type Controller struct {
	events chan any
	done   chan struct{}

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewController validates config, starts the processing loop and returns
// its handle.
func NewController(config StreamConfig) (*Controller, error) {
	stream, err := NewStream(config)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		events: make(chan any, 64),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run(stream)
	return c, nil
}

func refreshInterval(rate int) time.Duration {
	return time.Second / time.Duration(rate)
}

func (c *Controller) run(stream *Stream) {
	defer c.wg.Done()

	ticker := time.NewTicker(refreshInterval(stream.Config().RefreshRate))
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			stream.Update()
		case ev := <-c.events:
			switch e := ev.(type) {
			case pushEvent:
				stream.Push(e.samples)
			case freqRequest:
				e.reply <- stream.Frequencies()
			case configRequest:
				e.reply <- stream.Config()
			case configUpdate:
				oldRate := stream.Config().RefreshRate
				err := stream.SetConfig(e.config)
				if err == nil && e.config.RefreshRate != oldRate {
					ticker.Reset(refreshInterval(e.config.RefreshRate))
				}
				e.reply <- err
			}
		}
	}
}

// Push hands channel-interleaved samples to the processing loop. It only
// blocks while the event queue is full; after Close it is a no-op.
func (c *Controller) Push(samples []float64) {
	select {
	case c.events <- pushEvent{samples: samples}:
	case <-c.done:
	}
}

// Frequencies returns the current spectrum per channel (outer index =
// channel). The caller blocks until the loop replies; the loop itself
// never waits on a consumer. After Close it returns nil.
func (c *Controller) Frequencies() [][]Frequency {
	req := freqRequest{reply: make(chan [][]Frequency, 1)}
	select {
	case c.events <- req:
	case <-c.done:
		return nil
	}
	select {
	case freqs := <-req.reply:
		return freqs
	case <-c.done:
		return nil
	}
}

// Config returns the loop's current configuration. After Close it returns
// the zero StreamConfig.
func (c *Controller) Config() StreamConfig {
	req := configRequest{reply: make(chan StreamConfig, 1)}
	select {
	case c.events <- req:
	case <-c.done:
		return StreamConfig{}
	}
	select {
	case config := <-req.reply:
		return config
	case <-c.done:
		return StreamConfig{}
	}
}

// SetConfig validates and applies config atomically between ticks. A
// changed refresh rate takes effect immediately.
func (c *Controller) SetConfig(config StreamConfig) error {
	req := configUpdate{config: config, reply: make(chan error, 1)}
	select {
	case c.events <- req:
	case <-c.done:
		return nil
	}
	select {
	case err := <-req.reply:
		return err
	case <-c.done:
		return nil
	}
}

// Close stops the processing loop and waits for it to exit. In-flight
// events are simply dropped; every operation is atomic at event
// granularity, so nothing needs rollback.
func (c *Controller) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}
