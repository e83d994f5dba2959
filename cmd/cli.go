// SPDX-License-Identifier: MIT
// Package cmd parses command line arguments into the daemon
// configuration. Flags override values loaded from the YAML config file.
package cmd

import (
	"github.com/spf13/cobra"

	"spectra/internal/config"
)

// ParseArgs builds the daemon configuration from the config file and
// command line flags.
func ParseArgs() (*config.Config, error) {
	var (
		configPath string
		input      string
		wsAddr     string
		fftRes     int
		refresh    int
		channels   int
		noGravity  bool
		logLevel   string
		cfg        *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           "spectra",
		Short:         "Real-time audio spectrum analysis daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("input") {
				c.Input.WAVPath = input
			}
			if flags.Changed("ws-addr") {
				c.Transport.WebSocketAddr = wsAddr
			}
			if flags.Changed("fft-resolution") {
				c.Spectrum.FFTResolution = fftRes
			}
			if flags.Changed("refresh-rate") {
				c.Spectrum.RefreshRate = refresh
			}
			if flags.Changed("channels") {
				c.Spectrum.Channels = channels
			}
			if flags.Changed("no-gravity") {
				c.Spectrum.GravityEnabled = !noGravity
			}
			if flags.Changed("log-level") {
				c.LogLevel = logLevel
			}

			if err := c.Validate(); err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&input, "input", "i", "",
		"WAV file replayed as the live sample source")
	rootCmd.PersistentFlags().StringVar(&wsAddr, "ws-addr", config.DefaultWSAddr,
		"WebSocket listen address for spectrum frames")
	rootCmd.PersistentFlags().IntVar(&fftRes, "fft-resolution", config.DefaultFFTRes,
		"Analysis window length in samples (power of two)")
	rootCmd.PersistentFlags().IntVar(&refresh, "refresh-rate", config.DefaultRefreshRate,
		"Spectrum recompute cadence in Hz")
	rootCmd.PersistentFlags().IntVar(&channels, "channels", config.DefaultChannels,
		"Number of interleaved input channels")
	rootCmd.PersistentFlags().BoolVar(&noGravity, "no-gravity", false,
		"Disable the gravity envelope (snap to every frame)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return cfg, nil
}
