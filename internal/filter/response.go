// Package filter provides frequency-response analysis for fixed FIR filter
// coefficient tables.
//
// This is deliberately a read-only analysis surface, not a filter design
// library: the resampler's coefficient tables are fixed at compile time and
// runtime filter redesign is not something this system does. What lives
// here is the evaluation internal/resample's coefficient tests use to
// confirm the embedded stage 1 and stage 2 tables still have the
// passband/stopband/DC-gain shape they were designed for.
package filter

import "math"

const (
	minMagnitude = 1e-10
	dbMultiplier = 20.0
)

// FilterResponse holds the frequency response of a filter evaluated at a
// set of normalized frequencies.
type FilterResponse struct {
	// Frequencies holds the normalized frequencies (0 to 0.5, where 0.5 is
	// Nyquist) at which the response was evaluated.
	Frequencies []float64
	// Magnitude holds the linear-scale magnitude response at each
	// frequency.
	Magnitude []float64
	// Phase holds the phase response, in radians, at each frequency.
	Phase []float64
}

// ComputeFrequencyResponse evaluates an FIR filter's frequency response at
// numPoints equally spaced normalized frequencies between 0 and Nyquist,
// via the direct discrete-time Fourier transform of coeffs.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = 512
	}

	resp := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(2*numPoints)
		resp.Frequencies[k] = freq

		omega := 2 * math.Pi * freq
		var re, im float64
		for n, h := range coeffs {
			angle := omega * float64(n)
			re += h * math.Cos(angle)
			im -= h * math.Sin(angle)
		}

		resp.Magnitude[k] = math.Hypot(re, im)
		resp.Phase[k] = math.Atan2(im, re)
	}

	return resp
}

// MagnitudeDB converts a linear magnitude to decibels, floored at
// minMagnitude to keep log10 finite for effectively-zero responses.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}

// NearestBin returns the index into a ComputeFrequencyResponse result whose
// normalized frequency is closest to freqHz/sampleRateHz.
func NearestBin(resp FilterResponse, freqHz, sampleRateHz float64) int {
	target := freqHz / sampleRateHz
	best, bestDist := 0, math.Inf(1)
	for i, f := range resp.Frequencies {
		if d := math.Abs(f - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
