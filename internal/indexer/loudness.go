package indexer

import (
	"aria/internal/replaygain"
	"aria/internal/tags"
)

// LoudnessState tracks what the pipeline knows about a file's loudness.
type LoudnessState int

const (
	// LoudnessFinished means track gain and peak are known, either parsed
	// from tags or computed from decoded audio.
	LoudnessFinished LoudnessState = iota
	// LoudnessComputing means decoded samples are being accumulated.
	LoudnessComputing
	// LoudnessFailed means loudness is unrecoverable for this file; the
	// file still gets indexed, just without loudness fields.
	LoudnessFailed
)

// Loudness is the per-file loudness state machine. It starts Finished when
// valid tags preempt computation, Computing otherwise, and can only move
// Computing -> Finished (on Resolve) or Computing -> Failed.
type Loudness struct {
	state    LoudnessState
	gain     float64
	peak     float64
	analyzer *replaygain.Analyzer
}

// NewLoudness decides whether the file's embedded tags are authoritative.
// When both track gain and track peak parse, their values win and no
// analyzer is created; otherwise an analyzer is initialized for the track.
// Analyzer construction errors (channel layout, sample rate) propagate.
func NewLoudness(rg tags.RawReplayGain, sampleRate, channels int) (*Loudness, error) {
	if rg.TrackGain != "" && rg.TrackPeak != "" {
		gain, gainErr := replaygain.ParseGain(rg.TrackGain)
		peak, peakErr := replaygain.ParseGain(rg.TrackPeak)
		if gainErr == nil && peakErr == nil {
			return &Loudness{state: LoudnessFinished, gain: gain, peak: peak}, nil
		}
	}

	analyzer, err := replaygain.NewAnalyzer(sampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &Loudness{state: LoudnessComputing, analyzer: analyzer}, nil
}

// State returns the current state.
func (l *Loudness) State() LoudnessState {
	return l.state
}

// Add folds decoded samples into the analyzer. It is a no-op unless the
// machine is still computing.
func (l *Loudness) Add(samples []float32) {
	if l.state == LoudnessComputing {
		l.analyzer.AddSamples(samples)
	}
}

// Fail marks the file's loudness as unrecoverable. Finished values parsed
// from tags are never discarded.
func (l *Loudness) Fail() {
	if l.state == LoudnessComputing {
		l.state = LoudnessFailed
		l.analyzer = nil
	}
}

// Resolve finalizes the machine and reports the result. A computing
// analyzer that accumulated nothing degrades to Failed.
func (l *Loudness) Resolve() (gain, peak float64, ok bool) {
	switch l.state {
	case LoudnessFinished:
		return l.gain, l.peak, true
	case LoudnessComputing:
		gain, peak, err := l.analyzer.Finish()
		if err != nil {
			l.state = LoudnessFailed
			l.analyzer = nil
			return 0, 0, false
		}
		l.state = LoudnessFinished
		l.gain, l.peak = gain, peak
		return gain, peak, true
	default:
		return 0, 0, false
	}
}
