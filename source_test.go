package gsmiq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, toneHz float64) *Source {
	t.Helper()
	dev := NewReplayDevice(toneHz)
	src := NewSource(dev)
	require.NoError(t, src.Open())
	t.Cleanup(func() { _ = src.Stop() })
	return src
}

// TestOverrunMonotonic covers property 9: overrun counts are monotonically
// non-decreasing until consumed via Fill, then zero, then non-decreasing
// again.
func TestOverrunMonotonic(t *testing.T) {
	src := newTestSource(t, 67_000)
	require.NoError(t, src.Start())

	time.Sleep(20 * time.Millisecond)

	var overruns uint32
	require.NoError(t, src.Fill(1, &overruns))
	_ = overruns // first swap may be zero or not, just establishing the baseline

	var prev uint32
	require.NoError(t, src.Fill(1, &prev))
	assert.GreaterOrEqual(t, prev, uint32(0))

	// Between consuming Fills the counter must never go down.
	before, err := src.Overruns()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	later, err := src.Overruns()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, later, before, "overrun count decreased without a consuming Fill")

	var after uint32
	require.NoError(t, src.Fill(1, &after))
	_ = after // the swapped value is whatever accumulated since the last
	// Fill; this test also exercises that Fill never errors mid-stream.

	require.NoError(t, src.Stop())
}

// TestOverrunAccounting is literal scenario S6: start the pipeline, never
// call Fill while the worker produces more than the ring can hold, then
// Fill with a small n and verify overruns_out equals the exact discarded
// count.
func TestOverrunAccounting(t *testing.T) {
	src := newTestSource(t, 67_000)
	require.NoError(t, src.Start())

	// Let the worker run long enough to produce well over 256K output
	// samples (each 128K-sample Refill resamples to about 14.2K outputs, so
	// about 19 refills fill the ring).
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, src.Stop())

	// Stop joins the worker before returning, so overruns is frozen here.
	// Sample it on this same run: a second Start would zero the counter
	// (source.go's overrun-reset-on-restart, matching the original's
	// m_overflow_count = 0) before Fill ever got to read it. The ring
	// already holds up to its full capacity of unread samples, so Fill
	// returns immediately despite streaming having stopped.
	wantOverrun := src.overruns.Load()
	require.Greater(t, wantOverrun, uint64(0), "expected the ring to have overrun while unread")

	var overruns uint32
	require.NoError(t, src.Fill(1, &overruns))
	assert.Equal(t, uint32(wantOverrun), overruns)

	var again uint32
	require.NoError(t, src.Fill(1, &again))
	assert.Zero(t, again)
}

// TestCancellationPromptness covers property 10: after the exit flag is
// set, any in-flight Fill returns within 200ms.
func TestCancellationPromptness(t *testing.T) {
	defer ResetExitRequested()

	src := newTestSource(t, 0)
	require.NoError(t, src.Start())
	src.Flush() // make sure Fill has to actually block

	done := make(chan error, 1)
	go func() {
		var overruns uint32
		done <- src.Fill(RingCapacityItems*2, &overruns) // unreachable data level
	}()

	time.Sleep(20 * time.Millisecond)
	RequestExit()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Fill did not return within 200ms of exit being requested")
	}
}

// TestOverrunsRequiresStreaming checks that Overruns reports ErrNotStreaming
// before Start and a live count once streaming.
func TestOverrunsRequiresStreaming(t *testing.T) {
	src := newTestSource(t, 67_000)

	_, err := src.Overruns()
	assert.ErrorIs(t, err, ErrNotStreaming)

	require.NoError(t, src.Start())
	time.Sleep(20 * time.Millisecond)

	count, err := src.Overruns()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, uint64(0))
}

// TestStopWakesBlockedFill ensures Stop's broadcast unblocks a Fill call
// that would otherwise wait for data that will never arrive.
func TestStopWakesBlockedFill(t *testing.T) {
	src := newTestSource(t, 0)
	require.NoError(t, src.Start())

	done := make(chan error, 1)
	go func() {
		var overruns uint32
		done <- src.Fill(RingCapacityItems*2, &overruns)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, src.Stop())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Fill did not return after Stop")
	}
}
