package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the non-negative frequency
// coefficients of data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(data))
	coeff := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in data
// sampled every dt. It returns 0 when the signal has no oscillating
// component or is too short to resolve one.
func DominantPeriod(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 3 {
		return 0
	}

	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if ps[peak] == 0 {
		return 0
	}

	// parabolic interpolation around the peak bin
	offset := 0.0
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			offset = 0.5 * (a - c) / denom
		}
	}

	freq := (float64(peak) + offset) / (float64(len(data)) * dt)
	if freq <= 0 || math.IsNaN(freq) {
		return 0
	}
	return 1 / freq
}
