// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"

	"spectra/dsp"
)

// channelState is the per-channel working set of a Stream.
type channelState struct {
	// raw accumulates pushed samples until the next analysis tick. Only
	// the most recent FFTResolution samples survive a tick: a decimating
	// sliding window that bounds per-tick work at the cost of inter-window
	// overlap.
	raw []float64

	// held is the gravity-smoothed "current" spectrum, and ages counts
	// the ticks since each bin last rose.
	held []Frequency
	ages []uint32
}

// Stream accumulates raw samples per channel, recomputes the spectrum at
// a refresh cadence, and applies a fast-attack slow-decay gravity
// envelope across frames.
//
// A Stream's mutable state must be owned by a single goroutine; wrap it
// in a Controller to share it between producers and consumers.
type Stream struct {
	config      StreamConfig
	transformer *dsp.Transformer
	channels    []channelState
	window      []float64 // scratch copy of the analysis window
}

// NewStream validates config and returns a Stream.
func NewStream(config StreamConfig) (*Stream, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stream config: %w", err)
	}
	return &Stream{
		config:      config,
		transformer: dsp.NewTransformer(),
		channels:    make([]channelState, config.ChannelCount),
		window:      make([]float64, config.FFTResolution),
	}, nil
}

// Push appends channel-interleaved samples to the per-channel raw
// buffers. No analysis happens here; the call is cheap and never blocks
// on the transform.
func (s *Stream) Push(samples []float64) {
	cc := s.config.ChannelCount
	if cc == 1 {
		s.channels[0].raw = append(s.channels[0].raw, samples...)
		return
	}
	for i, sample := range samples {
		ch := &s.channels[i%cc]
		ch.raw = append(ch.raw, sample)
	}
}

// Update runs one analysis tick on every channel. Channels that have not
// yet accumulated more than a full FFT window are skipped; their spectrum
// simply does not change this cycle.
func (s *Stream) Update() {
	for i := range s.channels {
		s.updateChannel(&s.channels[i])
	}
}

func (s *Stream) updateChannel(ch *channelState) {
	fftRes := s.config.FFTResolution
	if len(ch.raw) <= fftRes {
		return
	}

	// Drop samples older than the analysis window; they would only add
	// latency.
	ch.raw = append(ch.raw[:0], ch.raw[len(ch.raw)-fftRes:]...)

	// Apodize a scratch copy so the raw window survives for the next
	// tick's overlap with freshly pushed samples.
	if len(s.window) != fftRes {
		s.window = make([]float64, fftRes)
	}
	copy(s.window, ch.raw)
	dsp.Apodize(s.window, s.config.Window)

	proc := FromMagnitudes(s.config.Processor, s.transformer.Magnitudes(s.window))
	proc.NormalizeVolume()
	proc.ToFrequencies()
	proc.NormalizePosition()
	proc.DistributePosition()
	processed := proc.Frequencies()

	gravity := s.config.Gravity
	if gravity == nil {
		// No smoothing: snap straight to the latest frame.
		ch.held = processed
		return
	}

	// A resolution change makes the held buffer obsolete; start over. The
	// two buffers are checked independently: after a stint with gravity
	// disabled, held is already sized but ages is not.
	if len(ch.held) != len(processed) {
		ch.held = make([]Frequency, len(processed))
	}
	if len(ch.ages) != len(processed) {
		ch.ages = make([]uint32, len(processed))
	}

	for i := range processed {
		if processed[i].Volume >= ch.held[i].Volume {
			ch.held[i] = processed[i]
			ch.ages[i] = 0
		} else {
			ch.ages[i]++
		}
	}

	for i := range ch.held {
		drop := *gravity * 0.0025 * float64(ch.ages[i])
		if ch.held[i].Volume-drop >= 0 {
			ch.held[i].Volume -= drop
		} else {
			ch.held[i].Volume = 0
			ch.ages[i] = 0
		}
	}
}

// Frequencies re-runs the bounding and interpolation stages on a snapshot
// of every channel's held spectrum. Running these two stages fresh on
// every call lets bounds, resolution and interpolation settings change
// live without waiting for the next transform tick.
func (s *Stream) Frequencies() [][]Frequency {
	out := make([][]Frequency, len(s.channels))
	for i := range s.channels {
		snapshot := make([]Frequency, len(s.channels[i].held))
		copy(snapshot, s.channels[i].held)

		proc := FromFrequencies(s.config.Processor, snapshot)
		proc.Bound()
		proc.Interpolate()
		out[i] = proc.Frequencies()
	}
	return out
}

// Config returns the current configuration.
func (s *Stream) Config() StreamConfig {
	return s.config
}

// SetConfig validates and replaces the configuration wholesale. A changed
// channel count resets the per-channel state; everything else is picked
// up by the next tick (the transformer re-plans itself on a window-length
// change, and held buffers reallocate when the spectrum length moves).
func (s *Stream) SetConfig(config StreamConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid stream config: %w", err)
	}
	if config.ChannelCount != s.config.ChannelCount {
		s.channels = make([]channelState, config.ChannelCount)
	}
	s.config = config
	return nil
}
