package replaygain_test

import (
	"math"
	"testing"

	"aria/internal/replaygain"
)

func TestParseGainAcceptsDecibelStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"-8.97 dB", -8.97},
		{"  13.12 dB", 13.12},
		{"0.93dB", 0.93},
		{"+2.50 dB", 2.5},
		{"0.988751", 0.988751},
	}
	for _, tc := range cases {
		got, err := replaygain.ParseGain(tc.raw)
		if err != nil {
			t.Fatalf("ParseGain(%q): %v", tc.raw, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseGain(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseGainRejectsNonNumeric(t *testing.T) {
	for _, raw := range []string{"", "🥺", "   DB ", "--", "."} {
		if _, err := replaygain.ParseGain(raw); err == nil {
			t.Fatalf("ParseGain(%q) succeeded, want error", raw)
		}
	}
}

func TestFormatGainRoundTrips(t *testing.T) {
	formatted := replaygain.FormatGain(-6.345)
	got, err := replaygain.ParseGain(formatted)
	if err != nil {
		t.Fatalf("ParseGain(%q): %v", formatted, err)
	}
	if math.Abs(got-(-6.35)) > 1e-9 {
		t.Fatalf("round trip = %v, want -6.35", got)
	}
}
