// SPDX-License-Identifier: MIT
// spectra replays a WAV file as a live sample source, runs it through
// the spectrum analysis stream, and publishes the resulting frames to
// WebSocket and/or UDP consumers.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectra/cmd"
	"spectra/internal/config"
	applog "spectra/internal/log"
	"spectra/internal/producer"
	"spectra/internal/transport"
	"spectra/internal/transport/udp"
	"spectra/spectrum"
)

func main() {
	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}
	if cfg == nil {
		// Help or completion output; nothing to run.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	if cfg.Input.WAVPath == "" {
		applog.Fatalf("startup: no input file; pass --input or set input.wav_path")
	}

	source, err := producer.OpenWAV(cfg.Input.WAVPath)
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}
	defer source.Close()

	// The file header wins over unset config values.
	if cfg.Spectrum.SampleRate == 0 {
		cfg.Spectrum.SampleRate = float64(source.SampleRate())
	}
	if source.Channels() != cfg.Spectrum.Channels {
		applog.Infof("startup: using %d channels from %s", source.Channels(), cfg.Input.WAVPath)
		cfg.Spectrum.Channels = source.Channels()
	}

	streamCfg, err := cfg.ToStreamConfig()
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}

	controller, err := spectrum.NewController(streamCfg)
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}
	defer controller.Close()

	prod := producer.NewProducer(source, controller,
		cfg.Input.BatchSize, cfg.Input.PushInterval, cfg.Input.Loop)
	prod.Start()
	defer prod.Stop()

	var transports []transport.Transport
	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err != nil {
			applog.Fatalf("startup: %v", err)
		}
		transports = append(transports, ws)
	}
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Fatalf("startup: %v", err)
		}
		transports = append(transports, udp.NewTransport(sender))
	}
	if len(transports) == 0 {
		applog.Warnf("startup: no transports enabled, running analysis only")
	}

	publisher := transport.NewPublisher(refreshIntervalFor(cfg), controller, transports...)
	publisher.Start()
	defer publisher.Stop()

	applog.Infof("spectra: analyzing %s at %g Hz, %d channels",
		cfg.Input.WAVPath, cfg.Spectrum.SampleRate, cfg.Spectrum.Channels)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	applog.Infof("spectra: shutting down")
}

// refreshIntervalFor matches the publish cadence to the analysis refresh
// rate; publishing faster than the stream recomputes only resends stale
// frames.
func refreshIntervalFor(cfg *config.Config) time.Duration {
	return time.Second / time.Duration(cfg.Spectrum.RefreshRate)
}
