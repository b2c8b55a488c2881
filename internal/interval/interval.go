// Package interval models a half-open time-of-day interval on a single date.
package interval

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the upper bound (exclusive for Start, inclusive for End)
// of a span expressed in minutes from midnight.
const MinutesPerDay = 24 * 60

// Span is a half-open interval [Start, End) in minutes from midnight.
type Span struct {
	Start int
	End   int
}

// Valid reports whether the span lies within a single day and has positive length.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End <= MinutesPerDay && s.Start < s.End
}

// Overlaps reports whether two spans on the same date intersect.
// Boundary-touching spans ([9:00,10:00) and [10:00,11:00)) do not overlap.
func Overlaps(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}

// ParseClock converts an "HH:MM" wall-clock string to minutes from midnight.
func ParseClock(v string) (int, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q, want HH:MM", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", v, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", v)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
