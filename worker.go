package gsmiq

import (
	"context"
	"math"
)

// runWorker is the producer loop: it refills the device, normalizes the
// interleaved int16 I/Q frame into complex samples, resamples the batch,
// and tries to hand the result to the ring without ever blocking on a slow
// consumer. This mirrors iio_source.cc's worker_thread exactly, including
// the rationale for the try-lock: the device's refill call must return to
// the driver quickly to keep its DMA queues primed, so blocking on Source's
// mutex here is not an option — a full ring or a held mutex is accounted as
// overrun and dropped, never waited out.
func (s *Source) runWorker(ctx context.Context) {
	defer close(s.workerDone)

	batchI := make([]float32, BatchSize)
	batchQ := make([]float32, BatchSize)
	outCap := BatchSize*13/120 + 64
	outI := make([]float32, outCap)
	outQ := make([]float32, outCap)
	scratch := make([]byte, outCap*sampleSize)

	for s.streaming.Load() {
		frame, err := s.device.Refill(ctx)
		if err != nil {
			return
		}

		for off := 0; off < len(frame.Data) && frame.Step > 0; {
			count := normalizeFrame(Frame{Data: frame.Data[off:], Step: frame.Step}, batchI, batchQ)
			if count == 0 {
				break
			}
			off += count * frame.Step

			produced := s.resampler.Process(batchI[:count], batchQ[:count], outI, outQ)
			if produced == 0 {
				continue
			}
			packSamples(scratch, outI[:produced], outQ[:produced])

			if s.mu.TryLock() {
				written := s.buf.Write(scratch[:produced*sampleSize], produced)
				if written < produced {
					s.overruns.Add(uint64(produced - written))
				}
				s.cond.Broadcast()
				s.mu.Unlock()
			} else {
				s.overruns.Add(uint64(produced))
			}
		}
	}
}

// normalizeFrame converts frame's interleaved int16 (I, Q) pairs, Step
// bytes apart, into the unit-scaled float32 I/Q slices used by the
// resampler, mirroring iio_source.cc's worker_thread conversion loop and
// its scale = 1/2048 12-bit-ADC normalization. Returns the number of
// samples written, capped to BatchSize.
func normalizeFrame(f Frame, outI, outQ []float32) int {
	n := 0
	max := len(outI)
	if len(outQ) < max {
		max = len(outQ)
	}
	for off := 0; off+4 <= len(f.Data) && n < max; off += f.Step {
		i := int16(uint16(f.Data[off]) | uint16(f.Data[off+1])<<8)
		q := int16(uint16(f.Data[off+2]) | uint16(f.Data[off+3])<<8)
		outI[n] = float32(i) * adcScale
		outQ[n] = float32(q) * adcScale
		n++
	}
	return n
}

// packSamples interleaves outI/outQ into dst as little-endian float32 pairs
// matching Sample's in-memory layout, so the ring buffer can store them as
// opaque sampleSize-byte items.
func packSamples(dst []byte, si, sq []float32) {
	for i := range si {
		putFloat32LE(dst[i*sampleSize:], si[i])
		putFloat32LE(dst[i*sampleSize+4:], sq[i])
	}
}

func putFloat32LE(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func getFloat32LE(src []byte) float32 {
	bits := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
	return math.Float32frombits(bits)
}
