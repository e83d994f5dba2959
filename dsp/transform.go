// SPDX-License-Identifier: MIT
/*
Package dsp wraps the forward spectral transform used by the spectrum
pipeline: window the time-domain samples, run a real FFT, and keep the
magnitude of the non-mirrored half of the output.
*/
package dsp

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Transformer performs forward FFTs with a cached plan and scratch
// buffer. The plan is rebuilt lazily when the input length changes, so a
// live fft_resolution reconfiguration costs one re-plan instead of a
// constructor round-trip.
//
// A Transformer is not safe for concurrent use.
type Transformer struct {
	n      int
	fft    *fourier.FFT
	coeffs []complex128
}

// NewTransformer returns a Transformer with no plan; the first call to
// Magnitudes sizes it.
func NewTransformer() *Transformer {
	return &Transformer{}
}

func (t *Transformer) replan(n int) {
	t.n = n
	t.fft = fourier.NewFFT(n)
	t.coeffs = make([]complex128, n/2+1)
}

// Magnitudes runs the forward transform on buf, treating the samples as a
// real sequence, and returns the Euclidean norm of each of the first
// len(buf)/2+1 bins, ordered from 0 Hz to Nyquist. The redundant mirrored
// upper half is never materialized.
//
// The returned slice is freshly allocated and owned by the caller. A nil
// or empty buf returns nil.
func (t *Transformer) Magnitudes(buf []float64) []float64 {
	if len(buf) == 0 {
		return nil
	}
	if t.fft == nil || t.n != len(buf) {
		t.replan(len(buf))
	}

	t.fft.Coefficients(t.coeffs, buf)

	mags := make([]float64, len(t.coeffs))
	for i, c := range t.coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// Len returns the input length of the current plan, or 0 before the
// first transform.
func (t *Transformer) Len() int {
	return t.n
}
