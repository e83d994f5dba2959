// SPDX-License-Identifier: MIT
package spectrum

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"spectra/dsp"
	"spectra/pkg/bitint"
)

// Configuration errors, reported at construction or SetConfig time rather
// than deep inside the pipeline.
var (
	ErrInvalidSamplingRate  = errors.New("sampling rate must be positive")
	ErrInvalidBounds        = errors.New("frequency bounds must satisfy 0 <= lo < hi <= rate/2")
	ErrInvalidVolume        = errors.New("volume must not be negative")
	ErrInvalidResolution    = errors.New("resolution must not be negative")
	ErrInvalidDistribution  = errors.New("distribution curve frequencies must be unique")
	ErrInvalidFFTResolution = errors.New("fft resolution must be a power of two")
	ErrInvalidRefreshRate   = errors.New("refresh rate must be positive")
	ErrInvalidChannelCount  = errors.New("channel count must be at least 1")
	ErrInvalidGravity       = errors.New("gravity must not be negative")
)

// VolumeNormalisation compensates for the low-frequency weighting of
// natural audio spectra so high frequencies remain visible.
type VolumeNormalisation int

const (
	VolumeNone VolumeNormalisation = iota
	VolumeExponential
	VolumeLogarithmic

	// VolumeMixture averages the exponential and logarithmic curves.
	VolumeMixture
)

func (v VolumeNormalisation) String() string {
	switch v {
	case VolumeNone:
		return "none"
	case VolumeExponential:
		return "exponential"
	case VolumeLogarithmic:
		return "logarithmic"
	case VolumeMixture:
		return "mixture"
	default:
		return "unknown"
	}
}

// ParseVolumeNormalisation converts a name (case-insensitive) to a
// VolumeNormalisation.
func ParseVolumeNormalisation(name string) (VolumeNormalisation, error) {
	switch strings.ToLower(name) {
	case "none":
		return VolumeNone, nil
	case "exponential":
		return VolumeExponential, nil
	case "logarithmic":
		return VolumeLogarithmic, nil
	case "mixture":
		return VolumeMixture, nil
	default:
		return VolumeMixture, fmt.Errorf("unknown volume normalisation: %q", name)
	}
}

// PositionNormalisation rewrites bin positions along the layout axis.
// Harmonic most closely approximates logarithmic pitch perception.
type PositionNormalisation int

const (
	PositionLinear PositionNormalisation = iota
	PositionExponential
	PositionHarmonic
)

func (p PositionNormalisation) String() string {
	switch p {
	case PositionLinear:
		return "linear"
	case PositionExponential:
		return "exponential"
	case PositionHarmonic:
		return "harmonic"
	default:
		return "unknown"
	}
}

// ParsePositionNormalisation converts a name (case-insensitive) to a
// PositionNormalisation.
func ParsePositionNormalisation(name string) (PositionNormalisation, error) {
	switch strings.ToLower(name) {
	case "linear":
		return PositionLinear, nil
	case "exponential":
		return PositionExponential, nil
	case "harmonic":
		return PositionHarmonic, nil
	default:
		return PositionHarmonic, fmt.Errorf("unknown position normalisation: %q", name)
	}
}

// Interpolation selects how bins are resampled onto the output slots.
type Interpolation int

const (
	// InterpolationNone returns the bins as-is with their irregular
	// positions; the caller must lay them out manually.
	InterpolationNone Interpolation = iota

	// InterpolationGaps scatters each bin to its nearest slot and leaves
	// the rest empty.
	InterpolationGaps

	// InterpolationStep holds each bin flat until the next one starts.
	InterpolationStep

	// InterpolationLinear ramps volume and frequency between neighbors.
	InterpolationLinear

	// InterpolationCubic uses 4-point cubic volume interpolation. The
	// smoothest, but can overshoot near sharp peaks.
	InterpolationCubic
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationNone:
		return "none"
	case InterpolationGaps:
		return "gaps"
	case InterpolationStep:
		return "step"
	case InterpolationLinear:
		return "linear"
	case InterpolationCubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// ParseInterpolation converts a name (case-insensitive) to an
// Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(name) {
	case "none":
		return InterpolationNone, nil
	case "gaps":
		return InterpolationGaps, nil
	case "step":
		return InterpolationStep, nil
	case "linear":
		return InterpolationLinear, nil
	case "cubic":
		return InterpolationCubic, nil
	default:
		return InterpolationCubic, fmt.Errorf("unknown interpolation: %q", name)
	}
}

// DistributionPoint is one control point of the manual position
// distribution curve: bins around Freq get Multiplier times their normal
// share of the layout axis.
type DistributionPoint struct {
	Freq       float64
	Multiplier float64
}

// ProcessorConfig configures the frequency-mapper pipeline.
type ProcessorConfig struct {
	// SamplingRate defines the freq = position * (rate/2) mapping.
	SamplingRate float64

	// FrequencyBounds clips the output spectrum to [lo, hi] Hz.
	FrequencyBounds [2]float64

	// Resolution is the target output bin count; 0 keeps the natural FFT
	// bin count.
	Resolution int

	// Volume is a linear output gain.
	Volume float64

	VolumeNormalisation   VolumeNormalisation
	PositionNormalisation PositionNormalisation

	// ManualPositionDistribution is a sparse piecewise-linear curve of
	// (Hz, multiplier) control points; nil disables it.
	ManualPositionDistribution []DistributionPoint

	Interpolation Interpolation
}

// DefaultProcessorConfig returns the recommended pipeline settings.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SamplingRate:          44100,
		FrequencyBounds:       [2]float64{50, 20000},
		Resolution:            0,
		Volume:                1.0,
		VolumeNormalisation:   VolumeMixture,
		PositionNormalisation: PositionHarmonic,
		Interpolation:         InterpolationCubic,
	}
}

// Validate rejects out-of-range settings.
func (c ProcessorConfig) Validate() error {
	if c.SamplingRate <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidSamplingRate, c.SamplingRate)
	}
	lo, hi := c.FrequencyBounds[0], c.FrequencyBounds[1]
	if lo < 0 || lo >= hi || hi > c.SamplingRate/2 {
		return fmt.Errorf("%w: got [%g, %g] at rate %g", ErrInvalidBounds, lo, hi, c.SamplingRate)
	}
	if c.Volume < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidVolume, c.Volume)
	}
	if c.Resolution < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidResolution, c.Resolution)
	}
	if len(c.ManualPositionDistribution) > 1 {
		seen := make(map[float64]struct{}, len(c.ManualPositionDistribution))
		for _, p := range c.ManualPositionDistribution {
			if _, dup := seen[p.Freq]; dup {
				return fmt.Errorf("%w: %g Hz appears twice", ErrInvalidDistribution, p.Freq)
			}
			seen[p.Freq] = struct{}{}
		}
	}
	return nil
}

// sortedDistribution returns the distribution control points ordered by
// frequency, or nil when the curve is disabled.
func (c ProcessorConfig) sortedDistribution() []DistributionPoint {
	if len(c.ManualPositionDistribution) == 0 {
		return nil
	}
	pts := make([]DistributionPoint, len(c.ManualPositionDistribution))
	copy(pts, c.ManualPositionDistribution)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Freq < pts[j].Freq })
	return pts
}

// StreamConfig configures a Stream on top of the pipeline settings.
type StreamConfig struct {
	Processor ProcessorConfig

	// ChannelCount is the number of independent channels; pushed samples
	// are expected channel-interleaved.
	ChannelCount int

	// FFTResolution is the analysis window length in samples. Higher
	// values resolve low frequencies better at the cost of latency.
	FFTResolution int

	// RefreshRate is the recompute cadence in Hz and should match the
	// consumer's frame rate; gravity decay is counted in ticks, not
	// wall time.
	RefreshRate int

	// Gravity is the envelope decay rate; nil disables smoothing so every
	// tick snaps straight to the latest frame.
	Gravity *float64

	// Window selects the apodization function, Hann by default.
	Window dsp.Window
}

// Gravity returns a pointer suitable for StreamConfig.Gravity.
func Gravity(v float64) *float64 {
	return &v
}

// DefaultStreamConfig returns the recommended stream settings.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Processor:     DefaultProcessorConfig(),
		ChannelCount:  2,
		FFTResolution: 2048,
		RefreshRate:   60,
		Gravity:       Gravity(1.0),
		Window:        dsp.Hann,
	}
}

// Validate rejects out-of-range settings.
func (c StreamConfig) Validate() error {
	if err := c.Processor.Validate(); err != nil {
		return err
	}
	if !bitint.IsPowerOfTwo(c.FFTResolution) {
		return fmt.Errorf("%w: got %d", ErrInvalidFFTResolution, c.FFTResolution)
	}
	if c.RefreshRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRefreshRate, c.RefreshRate)
	}
	if c.ChannelCount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidChannelCount, c.ChannelCount)
	}
	if c.Gravity != nil && *c.Gravity < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidGravity, *c.Gravity)
	}
	return nil
}
