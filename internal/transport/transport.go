// SPDX-License-Identifier: MIT
// Package transport fans spectrum frames out to external consumers.
package transport

import (
	"sync"
	"time"

	applog "spectra/internal/log"
	"spectra/spectrum"
)

// Transport delivers one spectrum frame to an external consumer.
// Implementations must be safe for concurrent use and must not block the
// publisher on a slow client.
type Transport interface {
	Send(frame [][]spectrum.Frequency) error
	Close() error
}

// SpectrumSource is the read side of a running spectrum controller.
type SpectrumSource interface {
	Frequencies() [][]spectrum.Frequency
}

// Publisher polls a SpectrumSource on a fixed interval and fans each
// frame out to all configured transports. It runs in its own goroutine
// between Start and Stop.
type Publisher struct {
	source     SpectrumSource
	transports []Transport
	interval   time.Duration

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPublisher creates a Publisher sending every interval. A non-positive
// interval defaults to 16ms (~60 Hz).
func NewPublisher(interval time.Duration, source SpectrumSource, transports ...Transport) *Publisher {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Publisher{
		source:     source,
		transports: transports,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

// Start launches the publishing loop.
func (p *Publisher) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Publisher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			frame := p.source.Frequencies()
			if frame == nil {
				continue
			}
			for _, t := range p.transports {
				if err := t.Send(frame); err != nil {
					applog.Errorf("publisher: send failed: %v", err)
				}
			}
		}
	}
}

// Stop halts the publishing loop and closes all transports.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()

	for _, t := range p.transports {
		if err := t.Close(); err != nil {
			applog.Errorf("publisher: transport close failed: %v", err)
		}
	}
}
