package replaygain_test

import (
	"errors"
	"math"
	"testing"

	"aria/internal/replaygain"
)

func sine(sampleRate int, freqHz, amplitude, seconds float64) []float32 {
	frames := int(float64(sampleRate) * seconds)
	samples := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(amplitude * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
		samples[i*2] = v
		samples[i*2+1] = v
	}
	return samples
}

func analyze(t *testing.T, sampleRate int, samples []float32) (gain, peak float64) {
	t.Helper()
	a, err := replaygain.NewAnalyzer(sampleRate, 2)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	a.AddSamples(samples)
	gain, peak, err = a.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return gain, peak
}

func TestNewAnalyzerRejectsNonStereo(t *testing.T) {
	for _, channels := range []int{0, 1, 6} {
		if _, err := replaygain.NewAnalyzer(44100, channels); err == nil {
			t.Fatalf("NewAnalyzer accepted %d channels", channels)
		}
	}
}

func TestNewAnalyzerRejectsOddSampleRates(t *testing.T) {
	for _, rate := range []int{0, -1, 4000, 4_000_000} {
		if _, err := replaygain.NewAnalyzer(rate, 2); err == nil {
			t.Fatalf("NewAnalyzer accepted %d Hz", rate)
		}
	}
}

func TestFinishFailsWithoutSamples(t *testing.T) {
	a, err := replaygain.NewAnalyzer(48000, 2)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	if _, _, err := a.Finish(); !errors.Is(err, replaygain.ErrNoSamples) {
		t.Fatalf("Finish error = %v, want ErrNoSamples", err)
	}
}

// A full-scale 997 Hz stereo sine is the BS.1770 calibration signal; it
// measures close to 0 LUFS, so its gain lands near the -18 dB reference.
func TestReferenceToneGain(t *testing.T) {
	gain, peak := analyze(t, 48000, sine(48000, 997, 1.0, 2))

	if math.Abs(gain-(-18)) > 0.5 {
		t.Fatalf("gain = %.3f dB, want about -18", gain)
	}
	if math.Abs(peak-1.0) > 1e-3 {
		t.Fatalf("peak = %.5f, want about 1.0", peak)
	}
}

func TestHalvingAmplitudeRaisesGainSixDecibels(t *testing.T) {
	full, _ := analyze(t, 48000, sine(48000, 997, 1.0, 2))
	half, halfPeak := analyze(t, 48000, sine(48000, 997, 0.5, 2))

	if diff := half - full; math.Abs(diff-6.02) > 0.3 {
		t.Fatalf("gain difference = %.3f dB, want about 6.02", diff)
	}
	if math.Abs(halfPeak-0.5) > 1e-3 {
		t.Fatalf("peak = %.5f, want about 0.5", halfPeak)
	}
}

func TestSilenceHitsLoudnessFloor(t *testing.T) {
	gain, peak := analyze(t, 44100, make([]float32, 44100*2))

	// Every block falls below the absolute gate, so loudness floors at -70.
	if math.Abs(gain-52) > 1e-6 {
		t.Fatalf("gain = %.3f dB, want 52", gain)
	}
	if peak != 0 {
		t.Fatalf("peak = %v, want 0", peak)
	}
}

func TestAddSamplesCarriesHalfFrames(t *testing.T) {
	samples := sine(44100, 440, 0.8, 1)

	a, err := replaygain.NewAnalyzer(44100, 2)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	// Split mid-frame so a sample is carried between calls.
	a.AddSamples(samples[:4097])
	a.AddSamples(samples[4097:])
	split, _, err := a.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	whole, _ := analyze(t, 44100, samples)
	if math.Abs(split-whole) > 1e-9 {
		t.Fatalf("split feed gain = %v, whole feed gain = %v", split, whole)
	}
}
