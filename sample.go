package gsmiq

// Sample is a single complex IQ sample: a pair of IEEE-754 single-precision
// floats. It is the unit the ring buffer, resampler, and source pipeline all
// exchange; its in-memory layout (8 bytes, I then Q) doubles as the ring
// buffer's item representation.
type Sample struct {
	I, Q float32
}

// ToComplex64 converts s to the standard library's native complex64, for
// callers that prefer to work with Go's built-in complex arithmetic once
// the sample leaves the hot path.
func (s Sample) ToComplex64() complex64 {
	return complex(s.I, s.Q)
}

// FromComplex64 builds a Sample from a native complex64.
func FromComplex64(c complex64) Sample {
	return Sample{I: real(c), Q: imag(c)}
}

const sampleSize = 8 // bytes per Sample: two float32s
