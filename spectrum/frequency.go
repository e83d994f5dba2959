// SPDX-License-Identifier: MIT
/*
Package spectrum turns windows of raw audio samples into a perceptually
scaled frequency spectrum for visualization.

The pipeline runs in a fixed order: volume normalization of the raw FFT
magnitudes, bin-to-frequency mapping, position normalization, optional
manual position distribution, frequency bounding, and interpolation onto
the output resolution. Processor exposes each stage; Stream schedules the
expensive transform at a refresh cadence and applies a gravity envelope;
Controller serializes all of it behind a message-passing loop.
*/
package spectrum

// Frequency is one output bin of the spectrum.
//
// Position is a layout coordinate along a 1-D axis, not a frequency: after
// position normalization low frequencies occupy proportionally more space,
// mimicking pitch perception. It is only guaranteed to lie in [0, 1] once
// the bounding stage has re-anchored it.
type Frequency struct {
	Volume   float64 `json:"volume"`
	Freq     float64 `json:"freq"`
	Position float64 `json:"position"`
}

// EmptyFrequency returns the zero sentinel used to mark unfilled output
// slots after scatter-based interpolation.
func EmptyFrequency() Frequency {
	return Frequency{}
}
