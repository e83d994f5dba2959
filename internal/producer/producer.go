// SPDX-License-Identifier: MIT
package producer

import (
	"io"
	"sync"
	"time"

	"spectra/distributor"
	applog "spectra/internal/log"
)

// Sink receives channel-interleaved sample batches; a spectrum.Controller
// satisfies it.
type Sink interface {
	Push(samples []float64)
}

// Producer reads batches from a WAVSource and pushes them into a Sink at
// a steady rate. File reads arrive in decode-sized bursts; a Distributor
// between the reader and the sink converts them into the smooth delivery
// a live capture device would provide.
type Producer struct {
	source    *WAVSource
	sink      Sink
	dist      *distributor.Distributor[float64]
	batchSize int
	interval  time.Duration
	loop      bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewProducer builds a Producer pushing batchSize-sample batches every
// interval, looping at EOF when loop is set.
func NewProducer(source *WAVSource, sink Sink, batchSize int, interval time.Duration, loop bool) *Producer {
	estimatedRate := float64(batchSize) / interval.Seconds()
	return &Producer{
		source:    source,
		sink:      sink,
		dist:      distributor.New[float64](estimatedRate),
		batchSize: batchSize,
		interval:  interval,
		loop:      loop,
		done:      make(chan struct{}),
	}
}

// Start launches the replay loop.
func (p *Producer) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Producer) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.refill()
			if batch := p.dist.PopAuto(); len(batch) > 0 {
				p.sink.Push(batch)
			}
		}
	}
}

// refill keeps roughly two batches queued ahead of the pop schedule so a
// slow disk read never starves the sink.
func (p *Producer) refill() {
	if p.dist.Len() >= p.batchSize*2 {
		return
	}

	batch, err := p.source.ReadBatch(p.batchSize)
	if len(batch) > 0 {
		p.dist.PushAuto(batch)
	}
	if err == io.EOF {
		if !p.loop {
			return
		}
		if err := p.source.Rewind(); err != nil {
			applog.Errorf("producer: rewind failed: %v", err)
		}
	} else if err != nil {
		applog.Errorf("producer: read failed: %v", err)
	}
}

// Stop halts the replay loop. The source is left open for the caller to
// close.
func (p *Producer) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
