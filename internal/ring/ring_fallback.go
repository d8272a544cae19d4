//go:build !linux && !windows

package ring

// newMapping is the degraded fallback for platforms without a supported
// dual virtual-memory mapping: a single plain allocation, no aliasing.
// Every contract method still holds except Peek's "always flat, never
// copies" guarantee — here Peek copies into a scratch buffer whenever the
// unread region wraps around the physical end of the allocation. Linux and
// Windows are the primary targets; this exists so the package still builds
// and passes correctness (not zero-copy) tests elsewhere.
func newMapping(minBytes int) (data []byte, spanBytes int, mirrored bool, closeFn func() error, err error) {
	const granularity = 4096
	spanBytes = roundUp(minBytes, granularity)
	data = make([]byte, spanBytes)
	return data, spanBytes, false, func() error { return nil }, nil
}
