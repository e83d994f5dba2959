// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// Window selects the apodization function applied to a sample window
// before the transform. Hann is the default and the right choice for
// spectrum visualization; the alternatives trade main-lobe width against
// side-lobe leakage.
type Window int

const (
	Hann Window = iota
	Hamming
	Blackman
	BlackmanNuttall
	BartlettHann
	Lanczos
	Nuttall
)

// String returns the window's name as accepted by ParseWindow.
func (w Window) String() string {
	switch w {
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case BartlettHann:
		return "bartletthann"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindow converts a name (case-insensitive) to a Window. Unknown
// names return Hann and an error.
func ParseWindow(name string) (Window, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: %q", name)
	}
}

// Apodize tapers buf in place with the given window function, reducing
// the spectral leakage a hard-edged window would smear across bins.
func Apodize(buf []float64, w Window) {
	switch w {
	case Hann:
		window.Hann(buf)
	case Hamming:
		window.Hamming(buf)
	case Blackman:
		window.Blackman(buf)
	case BlackmanNuttall:
		window.BlackmanNuttall(buf)
	case BartlettHann:
		window.BartlettHann(buf)
	case Lanczos:
		window.Lanczos(buf)
	case Nuttall:
		window.Nuttall(buf)
	default:
		window.Hann(buf)
	}
}
