package gsmiq

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gsmcal/gsmiq/internal/resample"
	"github.com/gsmcal/gsmiq/internal/ring"
)

// Source owns one Device, one Resampler, one ring.Buffer, one worker
// goroutine, and the mutex/condition-variable pair that hands resampled
// output from the worker to Fill. It implements the Source Pipeline and
// Consumer Interface components of the design.
type Source struct {
	device Device

	mu   sync.Mutex
	cond *sync.Cond
	buf  *ring.Buffer

	resampler *resample.Resampler

	streaming atomic.Bool
	overruns  atomic.Uint64

	workerStop context.CancelFunc
	workerDone chan struct{}

	centerFreqHz        float64
	transferBufferItems int
}

// NewSource returns a Source bound to device. Open must be called before
// any other method.
func NewSource(device Device) *Source {
	s := &Source{device: device, resampler: resample.New()}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Open initializes the device with DefaultConfig: configures the native
// sample rate to InputSampleRate and allocates the ring buffer at the
// fixed 256K-item capacity.
func (s *Source) Open() error {
	return s.OpenWithConfig(DefaultConfig())
}

// OpenWithConfig initializes the device exactly as Open does, but sizes the
// ring buffer and the transfer buffer Start will later allocate from cfg
// instead of the package defaults. cfg is validated before anything is
// allocated.
func (s *Source) OpenWithConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.device.SetSampleRate(int64(resample.InputSampleRate)); err != nil {
		return fmt.Errorf("%w: set sample rate: %v", ErrConfigurationRejected, err)
	}
	buf, err := ring.New(cfg.RingCapacityItems, sampleSize)
	if err != nil {
		return fmt.Errorf("%w: allocate ring: %v", ErrResourceExhausted, err)
	}
	s.buf = buf
	s.transferBufferItems = cfg.TransferBufferItems
	return nil
}

// Tune programs the front-end local oscillator and resets the resampler to
// clear transients left over from the previous frequency. freqHz is rounded
// to the nearest Hz before being passed to the Device, which takes integer
// Hz per spec.md §6.
func (s *Source) Tune(freqHz float64) error {
	if err := s.device.SetLOFrequency(int64(math.Round(freqHz))); err != nil {
		return fmt.Errorf("%w: tune to %.0f Hz: %v", ErrConfigurationRejected, freqHz, err)
	}
	s.mu.Lock()
	s.resampler.Reset()
	s.mu.Unlock()
	s.centerFreqHz = freqHz
	return nil
}

// SetGain programs hardware gain in dB, rounded to the nearest dB before
// being passed to the Device, which takes integer dB per spec.md §6.
// Idempotent.
func (s *Source) SetGain(db float64) error {
	if err := s.device.SetGain(int64(math.Round(db))); err != nil {
		return fmt.Errorf("%w: set gain: %v", ErrConfigurationRejected, err)
	}
	return nil
}

// Start allocates the device's transfer buffer and spawns the worker
// goroutine (the producer). Idempotent: calling Start while already
// streaming is a no-op.
func (s *Source) Start() error {
	if s.streaming.Load() {
		return nil
	}
	if err := s.device.CreateRxBuffer(s.transferBufferItems); err != nil {
		return fmt.Errorf("%w: create transfer buffer: %v", ErrResourceExhausted, err)
	}

	s.mu.Lock()
	s.resampler.Reset()
	s.mu.Unlock()
	s.overruns.Store(0)
	s.streaming.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	s.workerStop = cancel
	s.workerDone = make(chan struct{})
	go s.runWorker(ctx)

	return nil
}

// Stop sets streaming false, waits for the worker to exit, tears down the
// transfer buffer, and wakes any blocked Fill callers. Idempotent.
func (s *Source) Stop() error {
	if !s.streaming.Load() {
		return nil
	}
	s.streaming.Store(false)
	if s.workerStop != nil {
		s.workerStop()
	}
	if s.workerDone != nil {
		<-s.workerDone
	}

	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()

	return s.device.Close()
}

// Fill blocks until the ring holds at least n items, streaming has
// stopped, or the process-wide exit flag has been set. On success it
// returns nil and atomically swaps the accumulated overrun count into
// *overrunsOut. It returns ErrCancelled if streaming ended or cancellation
// was requested first.
func (s *Source) Fill(n int, overrunsOut *uint32) error {
	s.mu.Lock()
	for {
		if s.buf.DataAvailable() >= n {
			break
		}
		if !s.streaming.Load() {
			s.mu.Unlock()
			return fmt.Errorf("%w: streaming stopped", ErrCancelled)
		}
		if ExitRequested() {
			s.mu.Unlock()
			return fmt.Errorf("%w: exit requested", ErrCancelled)
		}
		s.waitWithTimeout(fillPollIntervalMillis * time.Millisecond)
	}
	s.mu.Unlock()

	if overrunsOut != nil {
		*overrunsOut = uint32(s.overruns.Swap(0))
	}
	return nil
}

// waitWithTimeout is sync.Cond.Wait with a bounded wake-up, so Fill always
// re-checks the streaming/exit flags at least every fillPollIntervalMillis
// even if the worker never calls Broadcast — this is how the pipeline meets
// the "cancellation returns within 200ms" property without the worker
// needing to know about cancellation at all.
func (s *Source) waitWithTimeout(d time.Duration) {
	woken := make(chan struct{})
	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
		close(woken)
	})
	s.cond.Wait()
	timer.Stop()
	select {
	case <-woken:
	default:
	}
}

// Flush discards all buffered samples and zeroes the overrun counter.
func (s *Source) Flush() {
	s.buf.Flush()
	s.overruns.Store(0)
}

// GetBuffer returns the underlying ring buffer so the consumer can
// Read/Peek/Purge directly, per the Consumer Interface contract.
func (s *Source) GetBuffer() *ring.Buffer {
	return s.buf
}

// SampleRate returns the resampler's fixed output rate in Hz.
func (s *Source) SampleRate() float64 {
	return resample.OutputSampleRate
}

// Overruns returns the accumulated overrun count without resetting it, for
// monitoring between Fill calls (Fill itself swaps the counter to zero on
// every successful call). It returns ErrNotStreaming if called before Start.
func (s *Source) Overruns() (uint64, error) {
	if !s.streaming.Load() {
		return 0, ErrNotStreaming
	}
	return s.overruns.Load(), nil
}
