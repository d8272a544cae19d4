// Package ring implements the "magic" dual-mapped ring buffer: the same
// physical pages are mapped twice, contiguously, in virtual address space,
// so any wrapped window of unread data is always addressable as one flat
// span with no modulo arithmetic and no copy.
//
// Construction is platform-specific (ring_linux.go / ring_windows.go /
// ring_fallback.go); the buffer logic itself — write/read/peek/purge
// accounting — lives here and is shared across platforms.
package ring

import (
	"fmt"
	"sync"
)

// Buffer is a fixed-capacity, item-oriented ring buffer over a byte-level
// shared region. All operations are serialized by a single internal mutex.
// It is not resizable: capacity is fixed at construction, rounded up to the
// platform's allocation granularity.
type Buffer struct {
	mu sync.Mutex

	data     []byte // a real OS double mapping of length 2*spanBytes, or (fallback) a plain allocation of length spanBytes
	mirrored bool    // true when data[i] and data[i+spanBytes] are guaranteed to alias the same bytes

	itemSize  int
	spanBytes int // R: physical region size in bytes
	spanItems int // R / itemSize

	r, w  int // byte offsets into [0, spanBytes)
	count int // bytes currently held

	overwrite bool

	closeFn func() error
}

// New constructs a Buffer holding at least capacityItems items of itemSize
// bytes each, using the platform's dual virtual-memory mapping. Capacity is
// rounded up to the platform's allocation granularity. The buffer is in
// non-overwrite mode: Write reports back-pressure via a short count instead
// of evicting unread data.
func New(capacityItems, itemSize int) (*Buffer, error) {
	return newBuffer(capacityItems, itemSize, false)
}

// NewOverwrite is like New but in overwrite mode (spec.md §3/§4.2): Write
// always copies all n items, advancing the read pointer r past whatever
// unread bytes it must evict to make room. The source pipeline itself never
// constructs one of these — its producer try-lock policy already has its
// own eviction accounting via the overrun counter (spec.md §4.3) — but the
// data model calls for the mode, matching the original's
// circular_buffer(..., int overwrite) constructor flag.
func NewOverwrite(capacityItems, itemSize int) (*Buffer, error) {
	return newBuffer(capacityItems, itemSize, true)
}

func newBuffer(capacityItems, itemSize int, overwrite bool) (*Buffer, error) {
	if capacityItems <= 0 || itemSize <= 0 {
		return nil, fmt.Errorf("ring: invalid capacity=%d itemSize=%d", capacityItems, itemSize)
	}
	requested := capacityItems * itemSize
	data, spanBytes, mirrored, closeFn, err := newMapping(requested)
	if err != nil {
		return nil, fmt.Errorf("ring: %w", err)
	}
	return &Buffer{
		data:      data,
		mirrored:  mirrored,
		itemSize:  itemSize,
		spanBytes: spanBytes,
		spanItems: spanBytes / itemSize,
		overwrite: overwrite,
		closeFn:   closeFn,
	}, nil
}

// Close releases the underlying mapping. Safe to call once; subsequent
// operations on a closed Buffer are undefined.
func (b *Buffer) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// Write copies up to n items from src (which must hold at least n*itemSize
// bytes) into the buffer. In non-overwrite mode, written = min(n,
// SpaceAvailable()); excess items are not copied. In overwrite mode,
// written = n always, and r is advanced past whatever unread bytes get
// evicted to make room — if n exceeds Capacity(), only the most recent
// Capacity() items of src actually survive, since anything written before
// them is overwritten within the same call.
func (b *Buffer) Write(src []byte, n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	spaceItems := (b.spanBytes - b.count) / b.itemSize
	if n > spaceItems && !b.overwrite {
		n = spaceItems
	}
	if n <= 0 {
		return 0
	}

	written := n
	nBytes := n * b.itemSize
	p := src[:nBytes]
	if nBytes > b.spanBytes {
		// The request alone exceeds total capacity: only the most recent
		// Capacity() items of it can ever survive, since everything before
		// them gets overwritten within this same call.
		p = p[len(p)-b.spanBytes:]
		nBytes = b.spanBytes
	}

	if evict := nBytes - (b.spanBytes - b.count); evict > 0 {
		b.r = (b.r + evict) % b.spanBytes
		b.count -= evict
	}

	b.copyIn(b.w, p)
	b.w = (b.w + nBytes) % b.spanBytes
	b.count += nBytes
	return written
}

// Read copies up to n items into dst, read_count = min(n, DataAvailable()).
func (b *Buffer) Read(dst []byte, n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	availItems := b.count / b.itemSize
	if n > availItems {
		n = availItems
	}
	if n <= 0 {
		return 0
	}
	nBytes := n * b.itemSize
	b.copyOut(dst[:nBytes], b.r)
	b.r = (b.r + nBytes) % b.spanBytes
	b.count -= nBytes
	return n
}

// Peek returns a slice directly over the contiguous unread region, with
// length DataAvailable() bytes. On a true dual-mapped buffer this never
// copies, even when r is within itemSize bytes of the physical wrap.
func (b *Buffer) Peek() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peekLocked()
}

func (b *Buffer) peekLocked() []byte {
	if b.count == 0 {
		return nil
	}
	if b.mirrored || b.r+b.count <= len(b.data) {
		return b.data[b.r : b.r+b.count]
	}
	scratch := make([]byte, b.count)
	first := len(b.data) - b.r
	copy(scratch, b.data[b.r:])
	copy(scratch[first:], b.data[:b.count-first])
	return scratch
}

// Purge advances the read pointer by min(n, DataAvailable()) items without
// copying any data out, returning the number of items purged.
func (b *Buffer) Purge(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	availItems := b.count / b.itemSize
	if n > availItems {
		n = availItems
	}
	if n <= 0 {
		return 0
	}
	nBytes := n * b.itemSize
	b.r = (b.r + nBytes) % b.spanBytes
	b.count -= nBytes
	return n
}

// Flush discards all buffered items by setting r = w.
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.r = b.w
	b.count = 0
}

// Capacity returns buf_len in items.
func (b *Buffer) Capacity() int {
	return b.spanItems
}

// BufLen is an alias for Capacity, matching the original contract's naming.
func (b *Buffer) BufLen() int {
	return b.Capacity()
}

// DataAvailable returns the number of unread items.
func (b *Buffer) DataAvailable() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count / b.itemSize
}

// SpaceAvailable returns the number of items that can still be written
// before Write starts truncating.
func (b *Buffer) SpaceAvailable() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return (b.spanBytes - b.count) / b.itemSize
}

// copyIn writes p starting at byte offset into the ring, wrapping as
// necessary. On a mirrored buffer offset+len(p) never exceeds len(data), so
// this always takes the direct, single-copy path.
func (b *Buffer) copyIn(offset int, p []byte) {
	if offset+len(p) <= len(b.data) {
		copy(b.data[offset:], p)
		return
	}
	first := len(b.data) - offset
	copy(b.data[offset:], p[:first])
	copy(b.data[:len(p)-first], p[first:])
}

// roundUp rounds n up to the nearest multiple of the given allocation
// granularity, shared by every platform's newMapping.
func roundUp(n, multiple int) int {
	if n%multiple == 0 {
		return n
	}
	return (n/multiple + 1) * multiple
}

func (b *Buffer) copyOut(dst []byte, offset int) {
	if offset+len(dst) <= len(b.data) {
		copy(dst, b.data[offset:offset+len(dst)])
		return
	}
	first := len(b.data) - offset
	copy(dst, b.data[offset:])
	copy(dst[first:], b.data[:len(dst)-first])
}
