// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the YAML file at path. An empty
// path searches the default locations; if no file is found the built-in
// defaults are used. Environment overrides are applied after the file,
// and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"spectra.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the daemon-level fields and the assembled stream
// configuration.
func (c *Config) Validate() error {
	if c.Input.BatchSize <= 0 {
		return fmt.Errorf("input.batch_size must be positive, got %d", c.Input.BatchSize)
	}
	if c.Input.PushInterval <= 0 {
		return fmt.Errorf("input.push_interval must be positive, got %s", c.Input.PushInterval)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPSendInterval <= 0 {
		return fmt.Errorf("transport.udp_send_interval must be positive, got %s", c.Transport.UDPSendInterval)
	}

	// SampleRate 0 is resolved from the WAV header before the stream
	// starts; validate against a placeholder in that case.
	probe := *c
	if probe.Spectrum.SampleRate == 0 {
		probe.Spectrum.SampleRate = DefaultSampleRate
	}
	streamCfg, err := probe.ToStreamConfig()
	if err != nil {
		return err
	}
	return streamCfg.Validate()
}

// applyEnvOverrides applies SPECTRA_* environment variables on top of the
// loaded configuration.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("SPECTRA_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("SPECTRA_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_TARGET"); ok {
		c.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_SEND_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = d
		}
	}
}
