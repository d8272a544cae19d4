package gsmiq

import "context"

// Frame is one refill's worth of raw samples from a Device: interleaved
// int16 I/Q pairs, Step bytes apart (the driver's native buffer stride,
// which may exceed 2*int16 if the hardware interleaves extra channels).
type Frame struct {
	Data []byte
	Step int
}

// Device is the inbound driver interface the source pipeline drives. It is
// deliberately narrow: configuration (SetSampleRate/SetGain/SetLOFrequency),
// buffer lifecycle (CreateRxBuffer/Close), and the one blocking call the
// worker thread makes on every iteration (Refill). A real IIO/USB driver
// binding lives outside this package; ReplayDevice (replay_device.go) and
// WAVDevice (wav_device.go) are the implementations in this package, for
// tests and tooling.
type Device interface {
	// SetSampleRate configures the native input rate in Hz. The pipeline
	// always requests InputSampleRate (2,500,000 Hz). Hz and dB are int64,
	// matching spec.md §6's "long long Hz"/"long long dB" driver interface;
	// Source's own Tune/SetGain keep a float64 surface for callers and
	// round to the nearest Hz/dB before calling into the Device.
	SetSampleRate(hz int64) error

	// SetGain programs hardware gain in dB.
	SetGain(db int64) error

	// SetLOFrequency programs the front-end local oscillator in Hz.
	SetLOFrequency(hz int64) error

	// CreateRxBuffer allocates the device's DMA/USB transfer buffer sized
	// to hold the given number of samples.
	CreateRxBuffer(samples int) error

	// Refill blocks until a new Frame of samples is available, or ctx is
	// done. It is the only call the worker makes inside its hot loop.
	Refill(ctx context.Context) (Frame, error)

	// Close releases the device's buffer and any underlying handle.
	Close() error
}
