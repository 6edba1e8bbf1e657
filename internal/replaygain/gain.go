// Package replaygain computes and parses ReplayGain 2.0 loudness data.
//
// Computation follows EBU R128: K-weighted, block-gated loudness per
// ITU-R BS.1770, with track gain expressed relative to the -18 LUFS
// reference level. Parsing accepts the free-form decibel strings found in
// REPLAYGAIN_* tags written by other tools.
package replaygain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseGain extracts the numeric value from a decibel-style tag string such
// as "-8.97 dB". Everything except digits, signs, and the decimal point is
// stripped before parsing, so unit labels and surrounding whitespace are
// tolerated. It fails when no number remains.
func ParseGain(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '+', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, fmt.Errorf("no numeric value in %q", raw)
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("parse gain %q: %w", raw, err)
	}
	return value, nil
}

// FormatGain renders a gain value the way ReplayGain taggers write it.
func FormatGain(value float64) string {
	return fmt.Sprintf("%.2f dB", value)
}
