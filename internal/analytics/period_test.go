package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p, "empty period defaults to 30d")

	for _, raw := range []string{"7d", "30d", "90d", "1y"} {
		p, err := ParsePeriod(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, p.String())
	}

	_, err = ParsePeriod("14d")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestPeriodSince(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), PeriodWeek.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -30), PeriodMonth.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -90), PeriodQuarter.Since(now))
	assert.Equal(t, now.AddDate(-1, 0, 0), PeriodYear.Since(now))
}
