package normalization

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts an "HH:MM:SS" time of day into seconds since
// midnight. Malformed input fails fast; the normalizer never attempts
// partial recovery of a bad timestamp.
func ParseClock(ts string) (int64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}

	var fields [3]int64
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
		}
		fields[i] = v
	}

	h, m, s := fields[0], fields[1], fields[2]
	if h > 23 || m > 59 || s > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}

	return h*3600 + m*60 + s, nil
}

// FormatClock converts seconds since midnight back to "HH:MM:SS".
func FormatClock(sec int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}
