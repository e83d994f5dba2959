// SPDX-License-Identifier: MIT
package spectrum

import "math"

// Interpolate resamples the bins onto the configured number of output
// slots using their positions. With Resolution 0 the natural bin count is
// kept. For every scatter-based mode, slot collisions keep the louder
// value: loud content must never be overwritten by quieter content that
// happens to share a slot.
func (p *Processor) Interpolate() {
	resolution := p.config.Resolution
	if resolution == 0 {
		resolution = len(p.freqs)
	}

	switch p.config.Interpolation {
	case InterpolationNone:
	case InterpolationGaps:
		p.freqs = interpolateGaps(p.freqs, resolution)
	case InterpolationStep:
		p.freqs = interpolateStep(p.freqs, resolution)
	case InterpolationLinear:
		p.freqs = interpolateLinear(p.freqs, resolution)
	case InterpolationCubic:
		p.freqs = interpolateCubic(p.freqs, resolution)
	}
}

// interpolateGaps scatters each bin to its nearest slot; everything else
// stays EmptyFrequency.
func interpolateGaps(freqs []Frequency, resolution int) []Frequency {
	out := make([]Frequency, resolution)
	for _, f := range freqs {
		slot := int(math.Round(f.Position * float64(resolution)))
		if slot >= 0 && slot < resolution && f.Volume > out[slot].Volume {
			out[slot] = f
		}
	}
	return out
}

// interpolateStep holds each bin flat from its own position to the next
// bin's position; the last bin fills to the end. Bins keep their original
// position, which makes a second Step pass over its own output a no-op.
func interpolateStep(freqs []Frequency, resolution int) []Frequency {
	out := make([]Frequency, resolution)
	for i, f := range freqs {
		start := int(f.Position * float64(resolution))
		endPos := 1.0
		if i+1 < len(freqs) {
			endPos = freqs[i+1].Position
		}
		end := int(endPos * float64(resolution))

		for j := start; j <= end; j++ {
			if j >= 0 && j < resolution && out[j].Volume < f.Volume {
				out[j] = f
			}
		}
	}
	return out
}

// interpolateLinear ramps volume and frequency between each adjacent pair
// of bins across the slots separating their positions.
func interpolateLinear(freqs []Frequency, resolution int) []Frequency {
	out := make([]Frequency, resolution)
	for i := 0; i+1 < len(freqs); i++ {
		startFreq := freqs[i]
		endFreq := freqs[i+1]
		start := int(startFreq.Position * float64(resolution))
		end := int(endFreq.Position * float64(resolution))
		if start >= resolution || end >= resolution {
			continue
		}

		for j := start; j <= end; j++ {
			t := fraction(j-start, end-start)
			volume := startFreq.Volume*(1-t) + endFreq.Volume*t
			freq := startFreq.Freq*(1-t) + endFreq.Freq*t
			if j >= 0 && out[j].Volume < volume {
				out[j] = Frequency{Volume: volume, Freq: freq}
			}
		}
	}
	return out
}

// interpolateCubic applies 4-point cubic interpolation of volume (see
// http://paulbourke.net/miscellaneous/interpolation/) with linear
// interpolation of frequency. The outermost segments are padded with
// EmptyFrequency sentinels so the first and last real bins still get two
// neighbors on each side.
func interpolateCubic(freqs []Frequency, resolution int) []Frequency {
	out := make([]Frequency, resolution)

	padded := make([]Frequency, 0, len(freqs)+2)
	padded = append(padded, EmptyFrequency())
	padded = append(padded, freqs...)
	padded = append(padded, EmptyFrequency())
	if len(padded) <= 4 {
		return out
	}

	for i := 0; i < len(padded)-3; i++ {
		y0 := padded[i].Volume
		y1 := padded[i+1].Volume
		y2 := padded[i+2].Volume
		y3 := padded[i+3].Volume

		start := int(padded[i+1].Position * float64(resolution))
		end := int(padded[i+2].Position * float64(resolution))
		if start >= resolution || end >= resolution {
			continue
		}

		a0 := y3 - y2 - y0 + y1
		a1 := y0 - y1 - a0
		a2 := y2 - y0
		a3 := y1

		for j := start; j <= end; j++ {
			t := fraction(j-start, end-start)
			volume := a0*t*t*t + a1*t*t + a2*t + a3

			freq := padded[i+1].Freq*(1-t) + padded[i+2].Freq*t
			if j >= 0 && out[j].Volume < volume {
				out[j] = Frequency{Volume: volume, Freq: freq}
			}
		}
	}
	return out
}

// fraction returns pos/gap, treating a zero-width gap as its midpoint to
// avoid a divide-by-zero NaN poisoning the interpolation.
func fraction(pos, gap int) float64 {
	if gap == 0 {
		return 0.5
	}
	return float64(pos) / float64(gap)
}
