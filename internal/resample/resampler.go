// Package resample implements the fixed two-stage rational resampler that
// converts the native 2,500,000 Hz complex sample stream of the radio front
// end down to the GSM symbol rate of 270,833.333... Hz.
//
// Stage 1 decimates by 5 with a 61-tap anti-alias FIR. Stage 2 performs a
// 13/24 polyphase rational resampling with a 729-tap prototype filter split
// into 13 branches of 57 taps. Both stages keep their convolution history in
// a double-written buffer (the sample is stored at both head and head+N) so
// the inner dot product always runs over a contiguous, non-wrapping window.
package resample

import "github.com/gsmcal/gsmiq/internal/simdops"

// Resampler holds the full mutable state of the two-stage pipeline. It is
// not safe for concurrent use; callers that need concurrent access must
// serialize calls to Process and Reset themselves.
type Resampler struct {
	ops *simdops.Ops

	s1Index int
	s1Head  int
	s1HistI [2 * S1Taps]float32
	s1HistQ [2 * S1Taps]float32

	s2Head       int
	s2PhaseState int
	s2HistI      [2 * S2TapsPerPhase]float32
	s2HistQ      [2 * S2TapsPerPhase]float32
}

// New returns a Resampler with its filter history zeroed.
func New() *Resampler {
	r := &Resampler{ops: simdops.Float32Ops()}
	r.Reset()
	return r
}

// Reset clears all filter history and phase/decimation counters. Callers
// must invoke this after retuning so that transients from the previous
// frequency do not leak into the newly tuned signal.
func (r *Resampler) Reset() {
	r.s1Index = 0
	r.s1Head = 0
	for i := range r.s1HistI {
		r.s1HistI[i] = 0
		r.s1HistQ[i] = 0
	}
	r.s2Head = 0
	r.s2PhaseState = 0
	for i := range r.s2HistI {
		r.s2HistI[i] = 0
		r.s2HistQ[i] = 0
	}
}

// Process runs inI/inQ (equal length, at 2,500,000 Hz) through both stages
// and appends produced output samples into outI/outQ starting at index 0.
// It returns the number of output samples written. If outI/outQ fill before
// all input has been consumed, the remaining input is silently dropped —
// callers size the output buffers (roughly len(in)/9.23) to avoid this.
func (r *Resampler) Process(inI, inQ []float32, outI, outQ []float32) int {
	outCap := len(outI)
	if len(outQ) < outCap {
		outCap = len(outQ)
	}
	produced := 0
	n := len(inI)
	if len(inQ) < n {
		n = len(inQ)
	}
	for i := 0; i < n; i++ {
		produced = r.pushStage1(inI[i], inQ[i], outI, outQ, outCap, produced)
		if produced >= outCap {
			break
		}
	}
	return produced
}

func (r *Resampler) pushStage1(si, sq float32, outI, outQ []float32, outCap, produced int) int {
	r.s1HistI[r.s1Head] = si
	r.s1HistI[r.s1Head+S1Taps] = si
	r.s1HistQ[r.s1Head] = sq
	r.s1HistQ[r.s1Head+S1Taps] = sq

	r.s1Head++
	if r.s1Head >= S1Taps {
		r.s1Head = 0
	}

	r.s1Index++
	if r.s1Index < S1Decimation {
		return produced
	}
	r.s1Index = 0

	hI := r.s1HistI[r.s1Head : r.s1Head+S1Taps]
	hQ := r.s1HistQ[r.s1Head : r.s1Head+S1Taps]
	accI := r.ops.DotProductUnsafe(hI, s1CoeffsRev[:])
	accQ := r.ops.DotProductUnsafe(hQ, s1CoeffsRev[:])

	return r.pushStage2(accI, accQ, outI, outQ, outCap, produced)
}

func (r *Resampler) pushStage2(si, sq float32, outI, outQ []float32, outCap, produced int) int {
	r.s2HistI[r.s2Head] = si
	r.s2HistI[r.s2Head+S2TapsPerPhase] = si
	r.s2HistQ[r.s2Head] = sq
	r.s2HistQ[r.s2Head+S2TapsPerPhase] = sq

	r.s2Head++
	if r.s2Head >= S2TapsPerPhase {
		r.s2Head = 0
	}

	hI := r.s2HistI[r.s2Head : r.s2Head+S2TapsPerPhase]
	hQ := r.s2HistQ[r.s2Head : r.s2Head+S2TapsPerPhase]

	for r.s2PhaseState < S2Interp {
		if produced >= outCap {
			return produced
		}
		branch := s2Poly[r.s2PhaseState][:]
		outI[produced] = r.ops.DotProductUnsafe(hI, branch)
		outQ[produced] = r.ops.DotProductUnsafe(hQ, branch)
		produced++
		r.s2PhaseState += S2Decim
	}
	r.s2PhaseState -= S2Interp

	return produced
}
