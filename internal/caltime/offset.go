package caltime

import (
	"fmt"
	"strconv"
)

// ParseUTCOffset parses TZOFFSETFROM/TZOFFSETTO values ("+0100", "-053000")
// and returns the offset in seconds.
func ParseUTCOffset(s string) (int, error) {
	if len(s) != 5 && len(s) != 7 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	var sign int
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}

	parts := []string{s[1:3], s[3:5]}
	if len(s) == 7 {
		parts = append(parts, s[5:7])
	}
	limits := []int{24, 60, 60}
	mult := []int{3600, 60, 1}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
		}
		total += n * mult[i]
	}
	return sign * total, nil
}

// FormatUTCOffset writes an offset in seconds as +hhmm or +hhmmss.
func FormatUTCOffset(secs int) string {
	sign := '+'
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	if secs%60 != 0 {
		return fmt.Sprintf("%c%02d%02d%02d", sign, secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%c%02d%02d", sign, secs/3600, secs%3600/60)
}
