package gsmiq

import "errors"

// Sentinel errors returned by Source's lifecycle operations. Overrun is
// deliberately not one of these: it is telemetry reported through fill's
// overruns-out parameter, never an error return.
var (
	// ErrDeviceUnavailable means the radio front end could not be opened or
	// located (no context, no matching RX channels).
	ErrDeviceUnavailable = errors.New("gsmiq: device unavailable")

	// ErrConfigurationRejected means the device refused a requested sample
	// rate, gain, or local-oscillator frequency.
	ErrConfigurationRejected = errors.New("gsmiq: configuration rejected")

	// ErrResourceExhausted means an allocation needed to operate the
	// pipeline failed: the ring buffer's shared mapping, or the device's
	// transfer buffer.
	ErrResourceExhausted = errors.New("gsmiq: resource exhausted")

	// ErrCancelled means fill returned because streaming stopped or the
	// process-wide exit flag was set, not because of an error condition in
	// the normal sense.
	ErrCancelled = errors.New("gsmiq: cancelled")

	// ErrNotStreaming means an operation that requires Start to have been
	// called was attempted on an idle Source.
	ErrNotStreaming = errors.New("gsmiq: not streaming")
)
