package gsmiq

import (
	"context"
	"math"
	"math/rand"
)

// ReplayDevice is a synthetic Device: instead of talking to real hardware
// it generates a configurable tone directly into each Refill's Frame,
// dithered the same way a real 12-bit ADC's quantization would be.
// It exists for tests, cmd/gsmcal-bench and cmd/gsmcal-scope — nowhere does
// it read or write a capture file as part of its own operation.
type ReplayDevice struct {
	// ToneHz is the synthesized tone frequency in Hz. Zero gives a constant
	// (DC) signal: I at Amplitude and Q near zero, plus dither. There is no
	// noise-only mode.
	ToneHz float64
	// Amplitude is the synthesized signal's peak amplitude, in ADC counts
	// (full scale is +-2048 for the 12-bit ADC this pipeline targets).
	Amplitude float64
	// Seed seeds the dither generator for reproducible tests.
	Seed int64

	sampleRate float64
	gainDB     float64
	loHz       float64

	frame []byte
	phase float64
	rng   *rand.Rand
}

// NewReplayDevice returns a ReplayDevice synthesizing a unity-amplitude
// tone at toneHz.
func NewReplayDevice(toneHz float64) *ReplayDevice {
	return &ReplayDevice{ToneHz: toneHz, Amplitude: 2040.0, Seed: 1}
}

func (d *ReplayDevice) SetSampleRate(hz int64) error {
	d.sampleRate = float64(hz)
	return nil
}

func (d *ReplayDevice) SetGain(db int64) error {
	d.gainDB = float64(db)
	return nil
}

func (d *ReplayDevice) SetLOFrequency(hz int64) error {
	d.loHz = float64(hz)
	return nil
}

func (d *ReplayDevice) CreateRxBuffer(samples int) error {
	d.frame = make([]byte, samples*4) // interleaved int16 I/Q, step 4
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(d.Seed))
	}
	return nil
}

// Refill synthesizes one transfer buffer's worth of interleaved int16 I/Q
// samples at the configured tone frequency, dithered by +-0.5 LSB the way
// dummy_streamer.go's simulator dithers its synthetic 12-bit output.
func (d *ReplayDevice) Refill(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if d.sampleRate == 0 {
		d.sampleRate = 2_500_000
	}
	n := len(d.frame) / 4
	phaseStep := 2 * math.Pi * d.ToneHz / d.sampleRate

	for s := 0; s < n; s++ {
		dither := d.rng.Float64() - 0.5
		iVal := clampInt16(d.Amplitude*math.Cos(d.phase) + dither)
		qVal := clampInt16(d.Amplitude*math.Sin(d.phase) + dither)

		idx := s * 4
		d.frame[idx] = byte(uint16(iVal))
		d.frame[idx+1] = byte(uint16(iVal) >> 8)
		d.frame[idx+2] = byte(uint16(qVal))
		d.frame[idx+3] = byte(uint16(qVal) >> 8)

		d.phase += phaseStep
		if d.phase > 2*math.Pi {
			d.phase -= 2 * math.Pi
		}
	}
	return Frame{Data: d.frame, Step: 4}, nil
}

func (d *ReplayDevice) Close() error {
	return nil
}

func clampInt16(v float64) int16 {
	if v > 2047 {
		v = 2047
	}
	if v < -2048 {
		v = -2048
	}
	return int16(v)
}
