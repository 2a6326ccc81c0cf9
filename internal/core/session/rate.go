package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseRate converts a raw slider value into a clicks-per-second integer.
// Slider controls report their position as a decimal numeral; the
// fractional part is truncated toward zero ("25.7" parses to 25) and the
// result is clamped into [MinCPS, MaxCPS]. Malformed input yields
// ErrInvalidRateFormat so callers can keep their previous valid rate.
func ParseRate(raw string) (int, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRateFormat, raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRateFormat, raw)
	}
	return clampCPS(int(value)), nil
}

// ClickInterval returns the delay between consecutive clicks at the given
// rate: one second at MinCPS down to 20ms at MaxCPS.
func ClickInterval(cps int) time.Duration {
	return time.Second / time.Duration(clampCPS(cps))
}

func clampCPS(cps int) int {
	if cps < MinCPS {
		return MinCPS
	}
	if cps > MaxCPS {
		return MaxCPS
	}
	return cps
}
