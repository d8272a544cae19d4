package gsmiq

// Pipeline sizing constants, matching the reference implementation's fixed
// buffer sizes exactly (spec.md 4.3).
const (
	// RingCapacityItems is the ring buffer's item capacity in complex samples.
	RingCapacityItems = 256 * 1024

	// TransferBufferItems is the device DMA/USB transfer buffer's item
	// capacity, allocated by Start.
	TransferBufferItems = 128 * 1024

	// BatchSize bounds how many raw samples the worker normalizes and
	// resamples at a time; a Refill frame larger than this is processed in
	// successive batches. Mirrors iio_source.h's BATCH_SIZE.
	BatchSize = 32768

	// adcScale converts a signed 12-bit ADC sample to the unit range;
	// 1/2048 because the 12-bit range is [-2048, 2047].
	adcScale = 1.0 / 2048.0

	// fillPollIntervalMillis is how often a blocked Fill re-checks the
	// streaming/exit flags, per spec.md 5's 100ms re-check requirement.
	fillPollIntervalMillis = 100
)
