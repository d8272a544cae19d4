// Command gsmcal-scope renders a live ASCII power-spectrum display of a
// Source's output stream: Blackman-Harris windowed FFT, dB power spectrum,
// max-hold downsampling to terminal width, and ANSI block-character
// shading, plus a short list of the strongest spectral peaks.
package main

import (
	"flag"
	"fmt"
	"math"
	"sort"
	"syscall"

	"github.com/gsmcal/gsmiq"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	blackmanHarrisA0 = 0.35875
	blackmanHarrisA1 = 0.48829
	blackmanHarrisA2 = 0.14128
	blackmanHarrisA3 = 0.01168

	floorDB = -115.0
	ceilDB  = -45.0

	peakWindowDB  = 40.0
	peakMinDB     = -120.0
	maxPeaksShown = 6
)

var blocks = []string{" ", " ", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

func main() {
	var (
		toneHz = flag.Float64("tone", 67_000.0, "synthetic tone frequency in Hz")
		loHz   = flag.Float64("freq", 935_200_000.0, "local oscillator frequency in Hz")
		fftLen = flag.Int("fft", 16384, "FFT length")
		width  = flag.Int("width", 120, "terminal width to render into")
		sweeps = flag.Int("sweeps", 1, "number of spectrum snapshots to render")
	)
	flag.Parse()

	stop := gsmiq.WatchSignals(syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	device := gsmiq.NewReplayDevice(*toneHz)
	src := gsmiq.NewSource(device)
	if err := src.Open(); err != nil {
		fmt.Println("open:", err)
		return
	}
	if err := src.Tune(*loHz); err != nil {
		fmt.Println("tune:", err)
		return
	}
	if err := src.Start(); err != nil {
		fmt.Println("start:", err)
		return
	}
	defer src.Stop()

	for sweep := 0; sweep < *sweeps; sweep++ {
		if gsmiq.ExitRequested() {
			break
		}

		var overruns uint32
		if err := src.Fill(*fftLen, &overruns); err != nil {
			fmt.Println("fill:", err)
			return
		}
		peeked := gsmiq.PeekSamples(src.GetBuffer().Peek())
		if len(peeked) < *fftLen {
			continue
		}
		drawASCIIFFT(peeked[:*fftLen], *width, src.SampleRate())
		src.GetBuffer().Purge(*fftLen)
	}
}

// drawASCIIFFT windows samples with a 4-term Blackman-Harris window, takes
// their FFT, and renders the resulting power spectrum as a row of ANSI
// block characters plus a list of the strongest local peaks.
func drawASCIIFFT(samples []gsmiq.Sample, width int, sampleRate float64) {
	n := len(samples)
	if n < 2 {
		return
	}

	windowed := make([]complex128, n)
	for i, s := range samples {
		ratio := float64(i) / float64(n-1)
		w := blackmanHarrisA0 -
			blackmanHarrisA1*math.Cos(2*math.Pi*ratio) +
			blackmanHarrisA2*math.Cos(4*math.Pi*ratio) -
			blackmanHarrisA3*math.Cos(6*math.Pi*ratio)
		windowed[i] = complex(float64(s.I)*w, float64(s.Q)*w)
	}

	fft := fourier.NewCmplxFFT(n)
	spectrum := fft.Coefficients(nil, windowed)

	refAmplitude := 1.0 * float64(n) * blackmanHarrisA0
	dbOffset := 20.0 * math.Log10(refAmplitude)

	magDB := make([]float64, n)
	maxDB := -1000.0
	for i := 0; i < n; i++ {
		idx := (i + n/2) % n
		c := spectrum[idx]
		pwr := real(c)*real(c) + imag(c)*imag(c)
		db := 10.0*math.Log10(pwr+1e-12) - dbOffset
		magDB[i] = db
		if db > maxDB {
			maxDB = db
		}
	}

	plotWidth := width - 20
	if plotWidth < 10 {
		plotWidth = 10
	}
	bins := make([]float64, plotWidth)
	for w := 0; w < plotWidth; w++ {
		localMax := -1000.0
		startIdx := w * n / plotWidth
		endIdx := (w + 1) * n / plotWidth
		for j := startIdx; j < endIdx && j < n; j++ {
			if magDB[j] > localMax {
				localMax = magDB[j]
			}
		}
		bins[w] = localMax
	}

	renderRow(bins, maxDB)
	printPeaks(magDB, maxDB, sampleRate, n)
}

func renderRow(bins []float64, maxDB float64) {
	rng := ceilDB - floorDB
	fmt.Print("\033[36m[-BW/2] \033[0m")
	for _, val := range bins {
		norm := (val - floorDB) / rng
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		idx := int(norm * float64(len(blocks)-1))

		switch {
		case norm < 0.20:
			fmt.Print("\033[90m")
		case norm < 0.40:
			fmt.Print("\033[34m")
		case norm < 0.60:
			fmt.Print("\033[36m")
		case norm < 0.80:
			fmt.Print("\033[32m")
		default:
			fmt.Print("\033[91m")
		}
		fmt.Print(blocks[idx])
	}
	fmt.Printf("\033[0m \033[36m[+BW/2]\033[0m Max: %.1fdBFS\n", maxDB)
}

type spectralPeak struct {
	freqHz float64
	db     float64
}

func printPeaks(magDB []float64, maxDB, sampleRate float64, n int) {
	var peaks []spectralPeak
	for i := 1; i < n-1; i++ {
		if magDB[i] > magDB[i-1] && magDB[i] > magDB[i+1] &&
			magDB[i] > maxDB-peakWindowDB && magDB[i] > peakMinDB {
			peaks = append(peaks, spectralPeak{
				freqHz: (float64(i) - float64(n)/2) * (sampleRate / float64(n)),
				db:     magDB[i],
			})
		}
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].db > peaks[j].db })

	fmt.Println("   Peak Detection:")
	for i, p := range peaks {
		if i >= maxPeaksShown {
			break
		}
		fmt.Printf("    #%d: %9.1f Hz  (%6.1f dBFS)\n", i+1, p.freqHz, p.db)
	}
}
