// SPDX-License-Identifier: MIT
package spectrum

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Processor runs the frequency-mapper pipeline over one channel's FFT
// magnitudes. Every stage is independently callable; ComputeAll composes
// them in the required order. A Processor is single-use and not safe for
// concurrent access.
type Processor struct {
	config ProcessorConfig
	mags   []float64
	freqs  []Frequency
}

// FromMagnitudes starts a pipeline from raw FFT magnitudes, ordered from
// 0 Hz to Nyquist.
func FromMagnitudes(config ProcessorConfig, mags []float64) *Processor {
	return &Processor{
		config: config,
		mags:   mags,
		freqs:  make([]Frequency, 0, len(mags)),
	}
}

// FromFrequencies starts a pipeline from already-mapped bins, for
// re-running the bounding and interpolation stages on a held spectrum.
func FromFrequencies(config ProcessorConfig, freqs []Frequency) *Processor {
	return &Processor{
		config: config,
		freqs:  freqs,
	}
}

// Frequencies returns the current pipeline output.
func (p *Processor) Frequencies() []Frequency {
	return p.freqs
}

// ComputeAll runs all pipeline stages in the required order.
func (p *Processor) ComputeAll() {
	p.NormalizeVolume()
	p.ToFrequencies()
	p.NormalizePosition()
	p.DistributePosition()
	p.Bound()
	p.Interpolate()
}

// NormalizeVolume scales the raw magnitudes by their index percentage so
// the low-frequency weighting of natural audio does not drown out the
// high end.
func (p *Processor) NormalizeVolume() {
	n := float64(len(p.mags))
	switch p.config.VolumeNormalisation {
	case VolumeNone:
	case VolumeExponential:
		for i := range p.mags {
			percentage := float64(i+1) / n
			p.mags[i] *= math.Sqrt(percentage)
		}
	case VolumeLogarithmic:
		for i := range p.mags {
			percentage := float64(i+1) / n
			p.mags[i] *= math.Log2(percentage + 1)
		}
	case VolumeMixture:
		for i := range p.mags {
			percentage := float64(i+1) / n
			logarithmic := math.Log2(percentage + 1)
			exponential := math.Sqrt(percentage)
			p.mags[i] *= (logarithmic + exponential) / 2
		}
	}
}

// ToFrequencies maps each magnitude bin to a Frequency with the
// configured gain applied, in ascending frequency order. Positions start
// out linear.
func (p *Processor) ToFrequencies() {
	n := float64(len(p.mags))
	nyquist := p.config.SamplingRate / 2
	for i, mag := range p.mags {
		percentage := float64(i+1) / n
		p.freqs = append(p.freqs, Frequency{
			Volume:   mag * p.config.Volume,
			Freq:     percentage * nyquist,
			Position: percentage,
		})
	}
}

// NormalizePosition rewrites bin positions so low frequencies occupy more
// of the layout axis.
func (p *Processor) NormalizePosition() {
	switch p.config.PositionNormalisation {
	case PositionLinear:
		// Already linear from ToFrequencies.
	case PositionExponential:
		for i := range p.freqs {
			p.freqs[i].Position = math.Sqrt(p.freqs[i].Position)
		}
	case PositionHarmonic:
		pos := 0.0
		for i := range p.freqs {
			p.freqs[i].Position = pos
			pos += 1.0 / float64(i+1)
		}

		// Rescale so the last bin sits at exactly 1.0.
		if len(p.freqs) > 0 {
			if maxPos := p.freqs[len(p.freqs)-1].Position; maxPos > 0 {
				for i := range p.freqs {
					p.freqs[i].Position /= maxPos
				}
			}
		}
	}
}

// DistributePosition stretches the layout axis by the manual distribution
// curve, then rescales so the final position is 1.0. A no-op when the
// curve is disabled.
func (p *Processor) DistributePosition() {
	curve := p.distributionCurve()
	if curve == nil || len(p.freqs) == 0 {
		return
	}

	n := float64(len(p.freqs))
	nyquist := p.config.SamplingRate / 2
	lastPosition := 0.0
	pointer := 0.0
	for i := range p.freqs {
		percentage := float64(i+1) / n
		freq := percentage * nyquist

		diff := p.freqs[i].Position - lastPosition
		pointer += diff * curve(freq)
		lastPosition = p.freqs[i].Position
		p.freqs[i].Position = pointer
	}

	if maxPos := p.freqs[len(p.freqs)-1].Position; maxPos > 0 {
		for i := range p.freqs {
			p.freqs[i].Position /= maxPos
		}
	}
}

// distributionCurve builds a clamped piecewise-linear evaluator over the
// configured control points, or nil when the curve is disabled.
func (p *Processor) distributionCurve() func(float64) float64 {
	pts := p.config.sortedDistribution()
	switch len(pts) {
	case 0:
		return nil
	case 1:
		m := pts[0].Multiplier
		return func(float64) float64 { return m }
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i] = pt.Freq
		ys[i] = pt.Multiplier
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		// Duplicate control frequencies are rejected by Validate; a curve
		// that still fails to fit falls back to the identity multiplier.
		return func(float64) float64 { return 1.0 }
	}

	lo, hi := xs[0], xs[len(xs)-1]
	return func(freq float64) float64 {
		if freq < lo {
			freq = lo
		} else if freq > hi {
			freq = hi
		}
		return pl.Predict(freq)
	}
}

// Bound clips the bins to the configured frequency range and re-anchors
// the retained positions so the first sits at 0 and the last at 1. An
// empty result leaves the bins untouched.
func (p *Processor) Bound() {
	lo, hi := p.config.FrequencyBounds[0], p.config.FrequencyBounds[1]

	// Bins are in ascending frequency order, so both cut points are
	// binary searches.
	start := sort.Search(len(p.freqs), func(i int) bool {
		return p.freqs[i].Freq > lo
	})
	end := sort.Search(len(p.freqs), func(i int) bool {
		return p.freqs[i].Freq >= hi
	})
	if start >= end {
		return
	}

	bounded := p.freqs[start:end]
	startPos := bounded[0].Position
	span := bounded[len(bounded)-1].Position - startPos
	for i := range bounded {
		if span > 0 {
			bounded[i].Position = (bounded[i].Position - startPos) / span
		} else {
			bounded[i].Position = 0
		}
	}
	p.freqs = bounded
}
