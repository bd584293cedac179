package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/samber/lo"

	"github.com/san-kum/vehsim/internal/vehicle"
)

var ErrShortTrace = errors.New("analysis: trace too short")

// Spectrum is a one-sided power spectrum.
type Spectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// Trace extracts one signal from recorded states.
func Trace(states []vehicle.State, field func(vehicle.State) float64) []float64 {
	return lo.Map(states, func(s vehicle.State, _ int) float64 { return field(s) })
}

// PowerSpectrum removes the mean, applies a Hann window and returns the
// one-sided power spectrum of data sampled every dt seconds.
func PowerSpectrum(data []float64, dt float64) (Spectrum, error) {
	n := len(data)
	if n < 4 {
		return Spectrum{}, ErrShortTrace
	}

	mean := lo.Mean(data)
	x := lo.Map(data, func(v float64, _ int) float64 { return v - mean })
	window.Apply(x, window.Hann)

	coeffs := fft.FFTReal(x)
	half := n/2 + 1
	s := Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		a := cmplx.Abs(coeffs[k])
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Power[k] = a * a / float64(n)
	}
	return s, nil
}

// DominantFrequency is the frequency with the most power, excluding DC.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	s, err := PowerSpectrum(data, dt)
	if err != nil {
		return 0, err
	}
	best := 1
	for k := 2; k < len(s.Power); k++ {
		if s.Power[k] > s.Power[best] {
			best = k
		}
	}
	return s.Freqs[best], nil
}

// Gain is the amplitude ratio out/in at frequency f, from the spectral
// bins nearest f.
func Gain(in, out []float64, dt, f float64) (float64, error) {
	if len(in) != len(out) {
		return 0, errors.New("analysis: traces differ in length")
	}
	si, err := PowerSpectrum(in, dt)
	if err != nil {
		return 0, err
	}
	so, err := PowerSpectrum(out, dt)
	if err != nil {
		return 0, err
	}

	df := si.Freqs[1]
	k := int(math.Round(f / df))
	if k <= 0 || k >= len(si.Power) {
		return 0, errors.New("analysis: frequency outside spectrum")
	}
	if si.Power[k] == 0 {
		return 0, errors.New("analysis: no input power at frequency")
	}
	return math.Sqrt(so.Power[k] / si.Power[k]), nil
}
