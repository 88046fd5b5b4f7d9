package analytics

import (
	"errors"
	"time"
)

// Period is a preset reporting window ending now.
type Period string

const (
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodYear    Period = "1y"
)

var ErrUnknownPeriod = errors.New("analytics: unknown period")

// ParsePeriod validates a query-string period token. The empty string
// defaults to the 30 day window.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return PeriodMonth, nil
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(raw), nil
	}
	return "", ErrUnknownPeriod
}

// Since returns the inclusive start of the window relative to now.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodQuarter:
		return now.AddDate(0, 0, -90)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

func (p Period) String() string { return string(p) }
