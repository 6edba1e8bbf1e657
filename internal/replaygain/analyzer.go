package replaygain

import (
	"errors"
	"fmt"
	"math"
)

const (
	// referenceLUFS is the ReplayGain 2.0 target loudness.
	referenceLUFS = -18.0
	// absoluteGateLUFS is the BS.1770 absolute gate threshold; it also
	// serves as the loudness floor when every block is gated away.
	absoluteGateLUFS = -70.0
	// relativeGateLU is the offset of the relative gate below the
	// absolutely-gated mean loudness.
	relativeGateLU = 10.0

	minSampleRate = 8000
	maxSampleRate = 192000

	stereoChannels = 2
)

// ErrNoSamples is returned by Finish when nothing was ever accumulated.
var ErrNoSamples = errors.New("no samples accumulated")

// Analyzer accumulates interleaved stereo samples and derives track gain and
// peak. Samples are K-weighted per channel, folded into 100ms sub-blocks,
// and gated over overlapping 400ms windows at Finish.
type Analyzer struct {
	sampleRate int
	filters    [stereoChannels]*kWeighting

	peak   float64
	frames uint64

	// subFrames is the sub-block length in frames; subSum and subCount
	// accumulate the current sub-block's squared filtered samples.
	subFrames int
	subSum    float64
	subCount  int
	subBlocks []float64

	carry []float32
}

// NewAnalyzer validates the track parameters and returns an empty analyzer.
// Only stereo input at common PCM rates is supported; anything else fails
// here so the caller can surface it before decoding begins.
func NewAnalyzer(sampleRate, channels int) (*Analyzer, error) {
	if channels != stereoChannels {
		return nil, fmt.Errorf("unsupported channel layout: %d channels, need stereo", channels)
	}
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return nil, fmt.Errorf("unsupported sample rate %d Hz", sampleRate)
	}
	a := &Analyzer{
		sampleRate: sampleRate,
		subFrames:  sampleRate / 10,
	}
	for i := range a.filters {
		a.filters[i] = newKWeighting(sampleRate)
	}
	return a, nil
}

// AddSamples folds interleaved stereo samples into the analysis state. A
// trailing half-frame is carried over to the next call.
func (a *Analyzer) AddSamples(samples []float32) {
	if len(a.carry) > 0 {
		samples = append(a.carry, samples...)
		a.carry = nil
	}
	frames := len(samples) / stereoChannels
	if rest := len(samples) % stereoChannels; rest != 0 {
		a.carry = append([]float32(nil), samples[frames*stereoChannels:]...)
		samples = samples[:frames*stereoChannels]
	}

	for i := 0; i < len(samples); i += stereoChannels {
		for ch := 0; ch < stereoChannels; ch++ {
			raw := float64(samples[i+ch])
			if abs := math.Abs(raw); abs > a.peak {
				a.peak = abs
			}
			weighted := a.filters[ch].process(raw)
			a.subSum += weighted * weighted
		}
		a.subCount++
		if a.subCount == a.subFrames {
			a.subBlocks = append(a.subBlocks, a.subSum/float64(a.subFrames))
			a.subSum = 0
			a.subCount = 0
		}
	}
	a.frames += uint64(frames)
}

// Finish runs the gated-loudness calculation and returns the ReplayGain 2.0
// track gain in decibels and the linear track peak. It fails only when no
// samples were ever accumulated.
func (a *Analyzer) Finish() (gain, peak float64, err error) {
	if a.frames == 0 {
		return 0, 0, ErrNoSamples
	}

	// Energies of overlapping 400ms windows, stepped by one sub-block.
	var energies []float64
	for i := 0; i+4 <= len(a.subBlocks); i++ {
		energies = append(energies, (a.subBlocks[i]+a.subBlocks[i+1]+a.subBlocks[i+2]+a.subBlocks[i+3])/4)
	}

	loudness := gatedLoudness(energies)
	return referenceLUFS - loudness, a.peak, nil
}

func gatedLoudness(energies []float64) float64 {
	var sum float64
	var n int
	for _, e := range energies {
		if energyToLoudness(e) > absoluteGateLUFS {
			sum += e
			n++
		}
	}
	if n == 0 {
		return absoluteGateLUFS
	}

	relativeGate := energyToLoudness(sum/float64(n)) - relativeGateLU
	sum, n = 0, 0
	for _, e := range energies {
		if l := energyToLoudness(e); l > absoluteGateLUFS && l > relativeGate {
			sum += e
			n++
		}
	}
	if n == 0 {
		return absoluteGateLUFS
	}
	return energyToLoudness(sum / float64(n))
}

func energyToLoudness(energy float64) float64 {
	if energy <= 0 {
		return math.Inf(-1)
	}
	return -0.691 + 10*math.Log10(energy)
}
