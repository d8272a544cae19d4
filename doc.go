// Package gsmiq implements the real-time DSP core of a GSM
// frequency-calibration tool: a fixed two-stage rational resampler, a
// dual-mapped ring buffer, and the producer/consumer source pipeline that
// couples a bursty radio driver to a latency-tolerant downstream analyzer.
//
// # Quick Start
//
//	src := gsmiq.NewSource(device)
//	if err := src.Open(); err != nil { ... }
//	if err := src.Tune(935_200_000); err != nil { ... }
//	if err := src.Start(); err != nil { ... }
//	defer src.Stop()
//
//	var overruns uint32
//	for {
//		if err := src.Fill(4096, &overruns); err != nil {
//			break // streaming stopped or cancellation requested
//		}
//		buf := src.GetBuffer()
//		window := buf.Peek()
//		// ... hand window to a downstream analyzer, then buf.Purge(n) ...
//	}
//
// # Architecture
//
// Source owns exactly one Device, one resampler, and one ring.Buffer. A
// single worker goroutine (the producer) refills the device and pushes
// resampled output into the ring under a non-blocking try-lock; the calling
// goroutine (the consumer) blocks in Fill until enough data has accumulated,
// streaming has stopped, or cancellation has been requested. See
// cancellation.go for the process-wide exit flag and signal handling.
//
// The resampler itself runs in two fixed stages: a /5 decimating FIR
// followed by a 13/24 polyphase rational stage, converting a 2.5MS/s
// complex baseband capture to the 270.833kS/s GSM symbol rate. See
// internal/resample for the filter design.
//
// # Attribution
//
// The two-stage resampler's filter coefficients and algorithm, and the
// dual-mapped ring buffer's virtual-memory technique, are reproduced from
// a BSD-2-Clause licensed reference DSP pipeline for PlutoSDR/AD936x-based
// GSM frequency calibration.
package gsmiq
