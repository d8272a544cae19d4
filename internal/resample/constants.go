package resample

// Stage 1: anti-alias decimator, 2,500,000 Hz -> 500,000 Hz.
const (
	S1Decimation = 5
	S1Taps       = 61
)

// Stage 2: polyphase rational resampler, 500,000 Hz -> 270,833.333... Hz.
const (
	S2Interp       = 13
	S2Decim        = 24
	S2TapsTotal    = 729
	S2Phases       = 13
	S2TapsPerPhase = 57
)

// InputSampleRate and OutputSampleRate are the fixed rates this pipeline is
// designed for; the resampler does not support retuning to other ratios.
const (
	InputSampleRate  = 2_500_000.0
	OutputSampleRate = InputSampleRate / S1Decimation * S2Interp / S2Decim
)
