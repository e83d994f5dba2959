// SPDX-License-Identifier: MIT
// Package config holds the daemon configuration: defaults, YAML loading,
// environment overrides and the mapping onto the spectrum package's
// typed configs.
package config

import (
	"fmt"
	"time"

	"spectra/dsp"
	"spectra/spectrum"
)

// Defaults and limits for the daemon configuration.
const (
	DefaultLogLevel     = "info"
	DefaultSampleRate   = 44100
	DefaultLowBound     = 50
	DefaultHighBound    = 20000
	DefaultVolume       = 1.0
	DefaultVolumeNorm   = "mixture"
	DefaultPositionNorm = "harmonic"
	DefaultInterp       = "cubic"
	DefaultWindow       = "hann"
	DefaultFFTRes       = 2048
	DefaultRefreshRate  = 60
	DefaultGravity      = 1.0
	DefaultChannels     = 2

	DefaultBatchSize    = 512
	DefaultPushInterval = 10 * time.Millisecond

	DefaultWSAddr          = ":8080"
	DefaultUDPTarget       = "127.0.0.1:9090"
	DefaultUDPSendInterval = 16 * time.Millisecond
)

// Config is the root daemon configuration, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Input     InputConfig     `yaml:"input"`
	Spectrum  SpectrumConfig  `yaml:"spectrum"`
	Transport TransportConfig `yaml:"transport"`
}

// InputConfig configures the WAV sample producer.
type InputConfig struct {
	WAVPath      string        `yaml:"wav_path"`      // Source file replayed as a live producer.
	Loop         bool          `yaml:"loop"`          // Restart from the beginning at EOF.
	BatchSize    int           `yaml:"batch_size"`    // Samples per push batch.
	PushInterval time.Duration `yaml:"push_interval"` // Pacing between batches.
}

// DistributionPoint is one (Hz, multiplier) control point of the manual
// position distribution curve.
type DistributionPoint struct {
	Freq       float64 `yaml:"freq"`
	Multiplier float64 `yaml:"multiplier"`
}

// SpectrumConfig mirrors spectrum.StreamConfig with YAML-friendly types;
// enum fields are strings parsed by ToStreamConfig.
type SpectrumConfig struct {
	SampleRate            float64             `yaml:"sample_rate"` // 0 takes the rate from the WAV header.
	LowFrequency          float64             `yaml:"low_frequency"`
	HighFrequency         float64             `yaml:"high_frequency"`
	Resolution            int                 `yaml:"resolution"` // 0 keeps the natural bin count.
	Volume                float64             `yaml:"volume"`
	VolumeNormalisation   string              `yaml:"volume_normalisation"`
	PositionNormalisation string              `yaml:"position_normalisation"`
	Distribution          []DistributionPoint `yaml:"distribution,omitempty"`
	Interpolation         string              `yaml:"interpolation"`
	Window                string              `yaml:"window"`
	FFTResolution         int                 `yaml:"fft_resolution"`
	RefreshRate           int                 `yaml:"refresh_rate"`
	GravityEnabled        bool                `yaml:"gravity_enabled"`
	Gravity               float64             `yaml:"gravity"`
	Channels              int                 `yaml:"channels"`
}

// TransportConfig configures how spectrum frames leave the daemon.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Input: InputConfig{
			Loop:         true,
			BatchSize:    DefaultBatchSize,
			PushInterval: DefaultPushInterval,
		},
		Spectrum: SpectrumConfig{
			SampleRate:            DefaultSampleRate,
			LowFrequency:          DefaultLowBound,
			HighFrequency:         DefaultHighBound,
			Resolution:            0,
			Volume:                DefaultVolume,
			VolumeNormalisation:   DefaultVolumeNorm,
			PositionNormalisation: DefaultPositionNorm,
			Interpolation:         DefaultInterp,
			Window:                DefaultWindow,
			FFTResolution:         DefaultFFTRes,
			RefreshRate:           DefaultRefreshRate,
			GravityEnabled:        true,
			Gravity:               DefaultGravity,
			Channels:              DefaultChannels,
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketAddr:    DefaultWSAddr,
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}

// ToStreamConfig parses the string-typed fields and assembles the typed
// stream configuration. All range checks are delegated to
// spectrum.StreamConfig.Validate via the caller.
func (c *Config) ToStreamConfig() (spectrum.StreamConfig, error) {
	s := c.Spectrum

	volumeNorm, err := spectrum.ParseVolumeNormalisation(s.VolumeNormalisation)
	if err != nil {
		return spectrum.StreamConfig{}, fmt.Errorf("spectrum.volume_normalisation: %w", err)
	}
	positionNorm, err := spectrum.ParsePositionNormalisation(s.PositionNormalisation)
	if err != nil {
		return spectrum.StreamConfig{}, fmt.Errorf("spectrum.position_normalisation: %w", err)
	}
	interpolation, err := spectrum.ParseInterpolation(s.Interpolation)
	if err != nil {
		return spectrum.StreamConfig{}, fmt.Errorf("spectrum.interpolation: %w", err)
	}
	window, err := dsp.ParseWindow(s.Window)
	if err != nil {
		return spectrum.StreamConfig{}, fmt.Errorf("spectrum.window: %w", err)
	}

	var distribution []spectrum.DistributionPoint
	for _, p := range s.Distribution {
		distribution = append(distribution, spectrum.DistributionPoint{
			Freq:       p.Freq,
			Multiplier: p.Multiplier,
		})
	}

	var gravity *float64
	if s.GravityEnabled {
		gravity = spectrum.Gravity(s.Gravity)
	}

	return spectrum.StreamConfig{
		Processor: spectrum.ProcessorConfig{
			SamplingRate:               s.SampleRate,
			FrequencyBounds:            [2]float64{s.LowFrequency, s.HighFrequency},
			Resolution:                 s.Resolution,
			Volume:                     s.Volume,
			VolumeNormalisation:        volumeNorm,
			PositionNormalisation:      positionNorm,
			ManualPositionDistribution: distribution,
			Interpolation:              interpolation,
		},
		ChannelCount:  s.Channels,
		FFTResolution: s.FFTResolution,
		RefreshRate:   s.RefreshRate,
		Gravity:       gravity,
		Window:        window,
	}, nil
}
