// SPDX-License-Identifier: MIT
// Package producer replays audio files as if they were a live capture
// source, feeding paced sample batches into a spectrum controller.
package producer

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource decodes a WAV file into interleaved float64 samples in
// [-1, 1).
type WAVSource struct {
	file  *os.File
	dec   *wav.Decoder
	buf   *audio.IntBuffer
	scale float64
}

// OpenWAV opens and validates path.
func OpenWAV(path string) (*WAVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}

	dec := wav.NewDecoder(file)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("%s is not a valid wav file", path)
	}

	return &WAVSource{
		file:  file,
		dec:   dec,
		scale: float64(int64(1) << (dec.BitDepth - 1)),
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (s *WAVSource) SampleRate() int {
	return int(s.dec.SampleRate)
}

// Channels returns the file's channel count.
func (s *WAVSource) Channels() int {
	return int(s.dec.NumChans)
}

// ReadBatch decodes up to n interleaved samples. It returns io.EOF once
// the file is exhausted.
func (s *WAVSource) ReadBatch(n int) ([]float64, error) {
	if s.buf == nil || cap(s.buf.Data) < n {
		s.buf = &audio.IntBuffer{
			Data:   make([]int, n),
			Format: s.dec.Format(),
		}
	}
	s.buf.Data = s.buf.Data[:n]

	read, err := s.dec.PCMBuffer(s.buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode wav data: %w", err)
	}
	if read == 0 {
		return nil, io.EOF
	}

	out := make([]float64, read)
	for i := 0; i < read; i++ {
		out[i] = float64(s.buf.Data[i]) / s.scale
	}
	return out, nil
}

// Rewind restarts decoding from the beginning of the file.
func (s *WAVSource) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind wav file: %w", err)
	}
	s.dec = wav.NewDecoder(s.file)
	s.dec.ReadInfo()
	return nil
}

// Close releases the underlying file.
func (s *WAVSource) Close() error {
	return s.file.Close()
}
