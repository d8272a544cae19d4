package ring

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testItemSize = 8

func itemBytes(v uint64) []byte {
	b := make([]byte, testItemSize)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func items(vs ...uint64) []byte {
	b := make([]byte, 0, len(vs)*testItemSize)
	for _, v := range vs {
		b = append(b, itemBytes(v)...)
	}
	return b
}

// TestRoundTrip covers property 7: write(s); read(|s|) == s.
func TestRoundTrip(t *testing.T) {
	buf, err := New(16, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	src := items(1, 2, 3, 4, 5)
	written := buf.Write(src, 5)
	require.Equal(t, 5, written)

	dst := make([]byte, 5*testItemSize)
	n := buf.Read(dst, 5)
	require.Equal(t, 5, n)
	assert.Equal(t, src, dst)
}

// TestBackPressure covers property 8: write never exceeds space_available;
// excess items are reported via written < n. Requested capacity rounds up
// to the platform's allocation granularity (spec.md 4.2), so a ring
// constructed with capacity 4 actually holds hundreds of 8-byte items; the
// overflow below must exceed the real Capacity(), not the requested one,
// for truncation to actually occur.
func TestBackPressure(t *testing.T) {
	buf, err := New(4, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	capacity := buf.Capacity()
	require.Equal(t, capacity, buf.SpaceAvailable(), "empty buffer should offer its full capacity as space")

	overflow := capacity + 10
	vals := make([]uint64, overflow)
	for i := range vals {
		vals[i] = uint64(i)
	}
	written := buf.Write(items(vals...), overflow)

	assert.Equal(t, capacity, written)
	assert.Less(t, written, overflow)
	assert.Equal(t, 0, buf.SpaceAvailable())
}

// TestFlatPeek covers property 6: for any fill level, peek's length equals
// data_available, and it returns the oldest items in FIFO order, even when
// the read pointer is within one item of the physical wrap.
func TestFlatPeek(t *testing.T) {
	buf, err := New(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	capacity := buf.Capacity()
	require.GreaterOrEqual(t, capacity, 8)

	// Push the write pointer to one item before the physical wrap, so the
	// next write straddles the boundary.
	filler := make([]uint64, capacity-1)
	for i := range filler {
		filler[i] = uint64(i + 100)
	}
	buf.Write(items(filler...), len(filler))
	buf.Purge(len(filler))

	vals := []uint64{1, 2, 3}
	buf.Write(items(vals...), len(vals))

	peeked := buf.Peek()
	require.Equal(t, buf.DataAvailable()*testItemSize, len(peeked))
	for i, want := range vals {
		got := binary.LittleEndian.Uint64(peeked[i*testItemSize : (i+1)*testItemSize])
		assert.Equal(t, want, got, "item %d crosses the physical wrap incorrectly", i)
	}
}

// TestRingWrap is literal scenario S5, scaled from the spec's 8-item ring
// up to this ring's real rounded-up Capacity() (spec.md 4.2 mandates
// rounding to the platform allocation granularity, so an 8-item request
// never actually reaches the physical wrap to test against): write
// capacity-1, read capacity-3, write capacity-3. peek() must return length
// capacity-1 and read(capacity-1) must equal the 2 still-unread items of the
// first write followed by the newly written ones, straddling the physical
// wrap.
func TestRingWrap(t *testing.T) {
	buf, err := New(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	capacity := buf.Capacity()
	firstN := capacity - 1
	first := make([]uint64, firstN)
	for i := range first {
		first[i] = uint64(i)
	}
	n := buf.Write(items(first...), firstN)
	require.Equal(t, firstN, n)

	readN := capacity - 3
	readBuf := make([]byte, readN*testItemSize)
	rn := buf.Read(readBuf, readN)
	require.Equal(t, readN, rn)

	nextN := readN
	next := make([]uint64, nextN)
	for i := range next {
		next[i] = uint64(1000 + i)
	}
	wn := buf.Write(items(next...), nextN)
	require.Equal(t, nextN, wn)

	remaining := firstN - readN
	peeked := buf.Peek()
	require.Equal(t, (remaining+nextN)*testItemSize, len(peeked))

	want := append(append([]uint64{}, first[readN:]...), next...)
	got := make([]byte, (remaining+nextN)*testItemSize)
	gn := buf.Read(got, remaining+nextN)
	require.Equal(t, remaining+nextN, gn)
	assert.Equal(t, items(want...), got)
}

// TestPurgeAdvancesWithoutCopy exercises purge() directly, independent of
// read(), since peek()+purge() is the consumer's zero-copy path.
func TestPurgeAdvancesWithoutCopy(t *testing.T) {
	buf, err := New(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	buf.Write(items(1, 2, 3), 3)
	assert.Equal(t, 3, buf.DataAvailable())

	purged := buf.Purge(2)
	assert.Equal(t, 2, purged)
	assert.Equal(t, 1, buf.DataAvailable())

	peeked := buf.Peek()
	got := binary.LittleEndian.Uint64(peeked)
	assert.Equal(t, uint64(3), got)
}

func TestFlush(t *testing.T) {
	buf, err := New(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	buf.Write(items(1, 2, 3), 3)
	buf.Flush()
	assert.Equal(t, 0, buf.DataAvailable())
	assert.Equal(t, buf.Capacity(), buf.SpaceAvailable())
}

// TestOverwriteEvictsOldest checks overwrite mode's spec.md §3/§4.2
// contract: written always equals n, and the read pointer advances past
// whatever unread data gets evicted to make room, rather than truncating
// the write the way non-overwrite mode does.
func TestOverwriteEvictsOldest(t *testing.T) {
	buf, err := NewOverwrite(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	capacity := buf.Capacity()
	filler := make([]uint64, capacity)
	for i := range filler {
		filler[i] = uint64(i)
	}
	written := buf.Write(items(filler...), capacity)
	require.Equal(t, capacity, written)
	require.Equal(t, capacity, buf.DataAvailable())
	require.Equal(t, 0, buf.SpaceAvailable())

	// The buffer is now completely full; writing 3 more items in overwrite
	// mode must not be truncated, and must evict the 3 oldest items.
	overwritten := buf.Write(items(9001, 9002, 9003), 3)
	assert.Equal(t, 3, overwritten)
	assert.Equal(t, capacity, buf.DataAvailable())

	dst := make([]byte, capacity*testItemSize)
	n := buf.Read(dst, capacity)
	require.Equal(t, capacity, n)

	want := append(append([]uint64{}, filler[3:]...), 9001, 9002, 9003)
	assert.Equal(t, items(want...), dst)
}

// TestOverwriteRequestLargerThanCapacity checks that a single overwrite
// Write exceeding the buffer's total capacity still reports written == n,
// but only the most recent Capacity() items of the request are retained.
func TestOverwriteRequestLargerThanCapacity(t *testing.T) {
	buf, err := NewOverwrite(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	capacity := buf.Capacity()
	oversized := capacity + 5
	vals := make([]uint64, oversized)
	for i := range vals {
		vals[i] = uint64(i)
	}

	written := buf.Write(items(vals...), oversized)
	assert.Equal(t, oversized, written)
	assert.Equal(t, capacity, buf.DataAvailable())

	dst := make([]byte, capacity*testItemSize)
	n := buf.Read(dst, capacity)
	require.Equal(t, capacity, n)
	assert.Equal(t, items(vals[oversized-capacity:]...), dst)
}

// TestNonOverwriteStillTruncates guards against a regression where adding
// overwrite mode accidentally changes New's (non-overwrite) back-pressure
// behavior.
func TestNonOverwriteStillTruncates(t *testing.T) {
	buf, err := New(8, testItemSize)
	require.NoError(t, err)
	defer buf.Close()

	capacity := buf.Capacity()
	oversized := capacity + 5
	vals := make([]uint64, oversized)
	written := buf.Write(items(vals...), oversized)
	assert.Equal(t, capacity, written)
	assert.Equal(t, 0, buf.SpaceAvailable())
}
