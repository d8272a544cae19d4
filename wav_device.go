package gsmiq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDevice is a Device that replays a stereo WAV file as synthetic IQ: the
// left channel feeds I, the right channel feeds Q. It exists for offline
// benchmarking and regression capture against cmd/gsmcal-bench, the same
// role a recorded capture plays against a real front end.
//
// Samples are rescaled from the file's native bit depth down to the 12-bit
// ADC count range (+-2048) the rest of the pipeline assumes, matching
// adcScale in constants.go.
type WAVDevice struct {
	path string

	file    *os.File
	decoder *wav.Decoder
	shift   uint

	frame    []byte
	intBuf   *audio.IntBuffer
	capacity int
}

// NewWAVDevice opens path for reading and validates it as a WAV file. The
// file must be stereo; mono files are rejected since there is no Q channel
// to read.
func NewWAVDevice(path string) (*WAVDevice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDeviceUnavailable, path, err)
	}
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrDeviceUnavailable, path)
	}
	format := decoder.Format()
	if format.NumChannels != 2 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has %d channels, want 2 (I=left, Q=right)",
			ErrDeviceUnavailable, path, format.NumChannels)
	}

	shift := uint(0)
	if decoder.BitDepth > 12 {
		shift = uint(decoder.BitDepth) - 12
	}

	return &WAVDevice{path: path, file: f, decoder: decoder, shift: shift}, nil
}

func (d *WAVDevice) SetSampleRate(hz int64) error {
	// The file's rate is fixed by its header; this pipeline resamples
	// whatever InputSampleRate the caller requests down from the file's
	// native rate is not this device's job to perform.
	return nil
}

func (d *WAVDevice) SetGain(db int64) error { return nil }

func (d *WAVDevice) SetLOFrequency(hz int64) error { return nil }

func (d *WAVDevice) CreateRxBuffer(samples int) error {
	d.capacity = samples
	d.frame = make([]byte, samples*4)
	d.intBuf = &audio.IntBuffer{
		Data:   make([]int, samples*2),
		Format: d.decoder.Format(),
	}
	return nil
}

// Refill decodes the next chunk of interleaved stereo samples from the WAV
// file and repacks them as interleaved int16 I/Q, matching the byte layout
// every other Device implementation produces.
func (d *WAVDevice) Refill(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return Frame{}, fmt.Errorf("%w: decode PCM: %v", ErrDeviceUnavailable, err)
	}
	if n == 0 {
		return Frame{}, io.EOF
	}

	samples := n // PCMBuffer reports frames, interleaved two ints per frame
	for s := 0; s < samples; s++ {
		iVal := int16(d.intBuf.Data[s*2] >> d.shift)
		qVal := int16(d.intBuf.Data[s*2+1] >> d.shift)
		idx := s * 4
		d.frame[idx] = byte(uint16(iVal))
		d.frame[idx+1] = byte(uint16(iVal) >> 8)
		d.frame[idx+2] = byte(uint16(qVal))
		d.frame[idx+3] = byte(uint16(qVal) >> 8)
	}

	return Frame{Data: d.frame[:samples*4], Step: 4}, nil
}

func (d *WAVDevice) Close() error {
	return d.file.Close()
}
