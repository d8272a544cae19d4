package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

// TestZeroInZeroOut covers property 1: after reset, an all-zero input produces
// an all-zero output.
func TestZeroInZeroOut(t *testing.T) {
	r := New()
	n := 50_000
	inI := make([]float32, n)
	inQ := make([]float32, n)
	outI := make([]float32, n/9+16)
	outQ := make([]float32, n/9+16)

	produced := r.Process(inI, inQ, outI, outQ)
	require.Greater(t, produced, 0)
	for i := 0; i < produced; i++ {
		assert.Zero(t, outI[i])
		assert.Zero(t, outQ[i])
	}
}

// TestOutputRateLaw covers property 2: over K inputs from reset, produced
// output count matches floor/ceil(K*13/120), and the long-run ratio tracks
// 13/120 tightly.
func TestOutputRateLaw(t *testing.T) {
	r := New()
	const k = 1_200_000
	inI := make([]float32, k)
	inQ := make([]float32, k)
	outI := make([]float32, k) // generous, exact sizing tested separately
	outQ := make([]float32, k)

	produced := r.Process(inI, inQ, outI, outQ)

	exact := float64(k) * 13.0 / 120.0
	lo := int(math.Floor(exact))
	hi := int(math.Ceil(exact))
	assert.True(t, produced == lo || produced == hi || abs(produced-int(exact)) <= 1,
		"produced=%d not within rounding of exact=%f", produced, exact)

	ratio := float64(produced) / float64(k)
	assert.InDelta(t, 13.0/120.0, ratio, 1e-6)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// TestDCGain covers property 3 / scenario S2: a constant (1,0) input settles to
// (1,0) within +-1e-3 once the filter history has been primed.
func TestDCGain(t *testing.T) {
	r := New()
	const n = 10_000
	inI := make([]float32, n)
	inQ := make([]float32, n)
	for i := range inI {
		inI[i] = 1.0
	}
	outI := make([]float32, n)
	outQ := make([]float32, n)

	produced := r.Process(inI, inQ, outI, outQ)
	require.Greater(t, produced, 120)

	for i := 120; i < produced; i++ {
		assert.InDelta(t, 1.0, float64(outI[i]), 1e-3, "outI[%d]", i)
		assert.InDelta(t, 0.0, float64(outQ[i]), 1e-3, "outQ[%d]", i)
	}
}

// TestDeterminism covers property 4 / scenario S1: splitting the input stream
// across two Process calls (no intervening Reset) must not change the
// output versus one single call.
func TestDeterminism(t *testing.T) {
	const n = 1_200_000
	inI := make([]float32, n)
	inQ := make([]float32, n)
	noise := newLCG(1)
	for i := range inI {
		inI[i] = noise.float32()
		inQ[i] = noise.float32()
	}

	outCap := n/9 + 64

	whole := New()
	wholeOutI := make([]float32, outCap)
	wholeOutQ := make([]float32, outCap)
	wholeN := whole.Process(inI, inQ, wholeOutI, wholeOutQ)

	split := New()
	half := n / 2
	splitOutI := make([]float32, outCap)
	splitOutQ := make([]float32, outCap)
	n1 := split.Process(inI[:half], inQ[:half], splitOutI, splitOutQ)
	n2 := split.Process(inI[half:], inQ[half:], splitOutI[n1:], splitOutQ[n1:])
	splitN := n1 + n2

	require.Equal(t, wholeN, splitN)
	require.Equal(t, 130_000, wholeN)
	assert.Equal(t, wholeOutI[:wholeN], splitOutI[:splitN])
	assert.Equal(t, wholeOutQ[:wholeN], splitOutQ[:splitN])
}

// TestPassbandStopband covers property 5 / scenarios S3-S4: a 67kHz tone
// survives near-unity amplitude, a 300kHz tone is attenuated >=60dB.
func TestPassbandStopband(t *testing.T) {
	passbandMag := toneOutputMagnitude(t, 67_000)
	stopbandMag := toneOutputMagnitude(t, 300_000)

	passbandDB := 20 * math.Log10(passbandMag)
	assert.LessOrEqual(t, math.Abs(passbandDB), 1.0, "passband tone attenuated %f dB", passbandDB)

	stopbandDB := 20 * math.Log10(stopbandMag / passbandMag)
	assert.LessOrEqual(t, stopbandDB, -60.0, "stopband tone only attenuated %f dB relative to passband", stopbandDB)
}

// toneOutputMagnitude feeds a complex tone at freqHz through the resampler
// and returns the peak magnitude across all bins of the output FFT,
// normalized against the number of FFT input samples (so a unity-amplitude
// input tone reads back near 1.0).
func toneOutputMagnitude(t *testing.T, freqHz float64) float64 {
	t.Helper()
	const n = 2_500_000
	inI := make([]float32, n)
	inQ := make([]float32, n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * freqHz * float64(i) / InputSampleRate
		inI[i] = float32(math.Cos(phase))
		inQ[i] = float32(math.Sin(phase))
	}

	r := New()
	outCap := n/9 + 64
	outI := make([]float32, outCap)
	outQ := make([]float32, outCap)
	produced := r.Process(inI, inQ, outI, outQ)
	require.GreaterOrEqual(t, produced, 16384)

	const fftN = 16384
	start := produced - fftN
	re := make([]float64, fftN)
	im := make([]float64, fftN)
	for i := 0; i < fftN; i++ {
		re[i] = float64(outI[start+i])
		im[i] = float64(outQ[start+i])
	}

	fft := fourier.NewCmplxFFT(fftN)
	coeffs := make([]complex128, fftN)
	for i := range coeffs {
		coeffs[i] = complex(re[i], im[i])
	}
	spectrum := fft.Coefficients(nil, coeffs)

	var peak float64
	for _, c := range spectrum {
		m := math.Hypot(real(c), imag(c))
		if m > peak {
			peak = m
		}
	}
	return peak / float64(fftN)
}

// TestResetClearsHistory covers the retuning contract: Reset after feeding a
// tone must remove enough transient energy that immediately feeding silence
// settles back toward zero at the same rate as a fresh Resampler.
func TestResetClearsHistory(t *testing.T) {
	r := New()
	n := 5_000
	tone := make([]float32, n)
	for i := range tone {
		tone[i] = float32(math.Cos(2 * math.Pi * 67000 * float64(i) / InputSampleRate))
	}
	outI := make([]float32, n)
	outQ := make([]float32, n)
	r.Process(tone, tone, outI, outQ)

	r.Reset()

	fresh := New()
	zeros := make([]float32, n)
	freshOutI := make([]float32, n)
	freshOutQ := make([]float32, n)
	resetOutI := make([]float32, n)
	resetOutQ := make([]float32, n)

	np := fresh.Process(zeros, zeros, freshOutI, freshOutQ)
	rp := r.Process(zeros, zeros, resetOutI, resetOutQ)
	require.Equal(t, np, rp)
	assert.Equal(t, freshOutI[:np], resetOutI[:rp])
	assert.Equal(t, freshOutQ[:np], resetOutQ[:rp])
}

// --- small deterministic PRNG for reproducible noise, grounded in the
// teacher's habit (parallel_test.go) of seeding its own generator rather
// than depending on math/rand's global state across test runs.

type lcg struct{ state uint64 }

func newLCG(seed uint64) *lcg { return &lcg{state: seed} }

func (g *lcg) next() uint64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return g.state
}

func (g *lcg) float32() float32 {
	return float32(int32(g.next()>>33)) / float32(1<<30)
}
