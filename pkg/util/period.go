package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lookback is a calendar lookback window such as "1y", "6mo", "2wk" or "30d".
type Lookback struct {
	Years, Months, Days int
}

// ParseLookback parses a provider-style period string.
func ParseLookback(s string) (Lookback, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, unit := range []string{"mo", "wk", "y", "d"} {
		if !strings.HasSuffix(s, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, unit))
		if err != nil || n <= 0 {
			return Lookback{}, fmt.Errorf("invalid period %q", s)
		}
		switch unit {
		case "y":
			return Lookback{Years: n}, nil
		case "mo":
			return Lookback{Months: n}, nil
		case "wk":
			return Lookback{Days: 7 * n}, nil
		default:
			return Lookback{Days: n}, nil
		}
	}
	return Lookback{}, fmt.Errorf("invalid period %q", s)
}

// Start returns the first instant covered by the window ending at now.
func (l Lookback) Start(now time.Time) time.Time {
	return now.AddDate(-l.Years, -l.Months, -l.Days)
}

// PeriodStart parses period and applies it to now.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	l, err := ParseLookback(period)
	if err != nil {
		return time.Time{}, err
	}
	return l.Start(now), nil
}
