package gsmiq

// ReadSamples is a convenience wrapper over Source.GetBuffer().Read that
// decodes the raw item bytes back into Sample values, for callers that
// would rather work with Sample than with the ring's byte-oriented
// contract directly.
func ReadSamples(buf interface {
	Read(dst []byte, n int) int
}, out []Sample) int {
	raw := make([]byte, len(out)*sampleSize)
	n := buf.Read(raw, len(out))
	for i := 0; i < n; i++ {
		out[i].I = getFloat32LE(raw[i*sampleSize:])
		out[i].Q = getFloat32LE(raw[i*sampleSize+4:])
	}
	return n
}

// PeekSamples decodes a byte-oriented Peek() result into freshly allocated
// Samples, for callers that don't need the zero-copy byte view.
func PeekSamples(peeked []byte) []Sample {
	n := len(peeked) / sampleSize
	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		out[i].I = getFloat32LE(peeked[i*sampleSize:])
		out[i].Q = getFloat32LE(peeked[i*sampleSize+4:])
	}
	return out
}
