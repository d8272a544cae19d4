// Package simdops wraps the SIMD-accelerated dot product the resampler's
// hot path depends on behind a struct of function pointers, so a future
// backend swap touches one assignment here instead of every call site in
// internal/resample.
//
// The samples flowing through both resampler stages are IEEE-754
// single-precision (see Sample in the root package), so unlike a general
// purpose DSP library this package only ever needs the float32 path.
package simdops

import "github.com/tphakala/simd/f32"

// Ops holds the dot-product implementation shared by both resampler
// stages.
type Ops struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length; both
	// resampler stages multiply a fixed-length history window against a
	// coefficient vector of that same fixed length, so the check is
	// pure overhead on every call.
	DotProductUnsafe func(a, b []float32) float32
}

var ops32 = Ops{DotProductUnsafe: f32.DotProductUnsafe}

// Float32Ops returns the dot-product operation both resampler stages share.
func Float32Ops() *Ops {
	return &ops32
}
