// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		want    Window
		wantErr bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackman", Blackman, false},
		{"lanczos", Lanczos, false},
		{"nuttall", Nuttall, false},
		{"bartletthann", BartlettHann, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"triangle", Hann, true},
		{"", Hann, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindow(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWindow(%q) = %v, expected %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseWindowRoundTrip(t *testing.T) {
	for _, w := range []Window{Hann, Hamming, Blackman, BlackmanNuttall, BartlettHann, Lanczos, Nuttall} {
		got, err := ParseWindow(w.String())
		if err != nil {
			t.Fatalf("ParseWindow(%q): %v", w.String(), err)
		}
		if got != w {
			t.Errorf("round trip %v -> %q -> %v", w, w.String(), got)
		}
	}
}

func TestApodizeHannShape(t *testing.T) {
	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = 1.0
	}
	Apodize(buf, Hann)

	// Hann tapers both edges to zero and is symmetric.
	if math.Abs(buf[0]) > 1e-12 || math.Abs(buf[63]) > 1e-12 {
		t.Errorf("Hann edges = %g, %g, expected 0", buf[0], buf[63])
	}
	for i := 0; i < 32; i++ {
		if math.Abs(buf[i]-buf[63-i]) > 1e-12 {
			t.Fatalf("Hann not symmetric at %d: %g vs %g", i, buf[i], buf[63-i])
		}
	}
	for i := 1; i < 63; i++ {
		if buf[i] <= 0 || buf[i] > 1 {
			t.Fatalf("Hann coefficient %d = %g outside (0, 1]", i, buf[i])
		}
	}
}
