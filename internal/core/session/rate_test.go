package session

import (
	"errors"
	"testing"
	"time"
)

func TestParseRateTruncatesAndClamps(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{raw: "25.0", expected: 25},
		{raw: "25.7", expected: 25},
		{raw: "25.3", expected: 25},
		{raw: "1.0", expected: 1},
		{raw: "50.0", expected: 50},
		{raw: "10", expected: 10},
		{raw: " 12.5 ", expected: 12},
		{raw: "0.4", expected: 1},
		{raw: "-3", expected: 1},
		{raw: "99.9", expected: 50},
	}

	for _, tc := range tests {
		got, err := ParseRate(tc.raw)
		if err != nil {
			t.Fatalf("ParseRate(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.expected {
			t.Fatalf("ParseRate(%q)=%d, want %d", tc.raw, got, tc.expected)
		}
	}
}

func TestParseRateRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{"", "abc", "12,5", "NaN", "+Inf", "-Inf"} {
		if _, err := ParseRate(raw); !errors.Is(err, ErrInvalidRateFormat) {
			t.Fatalf("ParseRate(%q) error = %v, want ErrInvalidRateFormat", raw, err)
		}
	}
}

func TestClickIntervalKnownRates(t *testing.T) {
	tests := []struct {
		cps      int
		expected time.Duration
	}{
		{cps: 1, expected: time.Second},
		{cps: 10, expected: 100 * time.Millisecond},
		{cps: 50, expected: 20 * time.Millisecond},
	}

	for _, tc := range tests {
		if got := ClickInterval(tc.cps); got != tc.expected {
			t.Fatalf("ClickInterval(%d)=%v, want %v", tc.cps, got, tc.expected)
		}
	}
}

func TestClickIntervalBoundedForAllRates(t *testing.T) {
	for cps := MinCPS; cps <= MaxCPS; cps++ {
		delay := ClickInterval(cps)
		if delay <= 0 || delay > time.Second {
			t.Fatalf("ClickInterval(%d)=%v, want in (0, 1s]", cps, delay)
		}
	}
}
