package collector

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTimeframe converts an exchange interval such as "5m", "4h", "1d", "1w" or "1M"
// into a duration. Months count as 30 days.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	var unit time.Duration
	switch tf[len(tf)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid timeframe unit in %q", tf)
	}
	return time.Duration(n) * unit, nil
}

// candleWindow returns the [start, end) window covering limit candles of size interval,
// with end aligned to the next candle boundary so the forming candle is included.
func candleWindow(now time.Time, interval time.Duration, limit int) (start, end time.Time) {
	end = now.Truncate(interval).Add(interval)
	start = end.Add(-time.Duration(limit) * interval)
	return start, end
}
