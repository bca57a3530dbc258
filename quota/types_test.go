package quota

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerComputesDeadlineOnce(t *testing.T) {
	// GIVEN today and a 30-day window
	today := NewDate(2026, time.March, 10)

	// WHEN opening a ledger
	l, err := NewLedger(1, 20, 30, today, DefaultPolicy())
	require.NoError(t, err)

	// THEN the deadline is start + window and the ledger starts empty
	assert.Equal(t, NewDate(2026, time.April, 9), l.Deadline)
	assert.Equal(t, today, l.StartDate)
	assert.Equal(t, 0, l.CompletedCount)
	assert.False(t, l.Complete)
	assert.Empty(t, l.Allocations)
}

func TestNewLedgerRejectsBadCounts(t *testing.T) {
	today := NewDate(2026, time.March, 10)
	pol := DefaultPolicy()

	cases := []struct {
		name   string
		target int
		window int
		want   error
	}{
		{"zero target", 0, 30, ErrInvalidCount},
		{"negative target", -5, 30, ErrInvalidCount},
		{"target above policy", 101, 30, ErrInvalidCount},
		{"zero window", 20, 0, ErrInvalidWindow},
		{"window above policy", 20, 366, ErrInvalidWindow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLedger(1, tc.target, tc.window, today, pol)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestPolicyBoundsAreInclusive(t *testing.T) {
	today := NewDate(2026, time.March, 10)

	l, err := NewLedger(1, 100, 365, today, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 100, l.TargetCount)
	assert.Equal(t, NewDate(2027, time.March, 10), l.Deadline)
}

func TestApplyCreationDerivesCompletion(t *testing.T) {
	today := NewDate(2026, time.March, 10)
	l, err := NewLedger(1, 2, 30, today, DefaultPolicy())
	require.NoError(t, err)

	l.ApplyCreation()
	assert.Equal(t, 1, l.CompletedCount)
	assert.False(t, l.Complete)

	l.ApplyCreation()
	assert.Equal(t, 2, l.CompletedCount)
	assert.True(t, l.Complete)
}

func TestPercentCompleteRoundsToTwoDecimals(t *testing.T) {
	today := NewDate(2026, time.March, 10)
	l, err := NewLedger(1, 3, 30, today, DefaultPolicy())
	require.NoError(t, err)

	l.ApplyCreation()
	assert.InDelta(t, 33.33, l.PercentComplete(), 0.001)

	l.ApplyCreation()
	assert.InDelta(t, 66.67, l.PercentComplete(), 0.001)
}

func TestContainsDateIsInclusiveOnBothEnds(t *testing.T) {
	today := NewDate(2026, time.March, 10)
	l, err := NewLedger(1, 10, 5, today, DefaultPolicy())
	require.NoError(t, err)

	assert.True(t, l.ContainsDate(today))
	assert.True(t, l.ContainsDate(l.Deadline))
	assert.False(t, l.ContainsDate(today.AddDays(-1)))
	assert.False(t, l.ContainsDate(l.Deadline.AddDays(1)))
}

func TestValidateRejectsCorruptState(t *testing.T) {
	today := NewDate(2026, time.March, 10)

	fresh := func() *Ledger {
		l, err := NewLedger(1, 10, 5, today, DefaultPolicy())
		require.NoError(t, err)
		return l
	}

	t.Run("allocation outside window", func(t *testing.T) {
		l := fresh()
		l.Allocations["2026-05-01"] = 3
		assert.True(t, errors.Is(l.Validate(), ErrInvalidDate))
	})

	t.Run("stored zero entry", func(t *testing.T) {
		l := fresh()
		l.Allocations["2026-03-11"] = 0
		assert.True(t, errors.Is(l.Validate(), ErrInvalidCount))
	})

	t.Run("unparseable key", func(t *testing.T) {
		l := fresh()
		l.Allocations["not-a-date"] = 3
		assert.True(t, errors.Is(l.Validate(), ErrInvalidDate))
	})

	t.Run("planned sum over target", func(t *testing.T) {
		l := fresh()
		l.Allocations["2026-03-11"] = 6
		l.Allocations["2026-03-12"] = 6
		assert.True(t, errors.Is(l.Validate(), ErrQuotaExceeded))
	})

	t.Run("completion flag out of sync", func(t *testing.T) {
		l := fresh()
		l.CompletedCount = 10 // flag never recomputed
		assert.Error(t, l.Validate())
	})

	t.Run("healthy ledger passes", func(t *testing.T) {
		l := fresh()
		l.Allocations["2026-03-11"] = 4
		l.Allocations["2026-03-15"] = 6
		assert.NoError(t, l.Validate())
	})
}

func TestDateOfCollapsesToOperationalDay(t *testing.T) {
	// GIVEN an instant that is already March 11 in UTC
	loc, err := time.LoadLocation("America/Guayaquil")
	require.NoError(t, err)
	at := time.Date(2026, time.March, 11, 3, 30, 0, 0, time.UTC)

	// WHEN collapsing it in the operational timezone (UTC-5)
	day := DateOf(at, loc)

	// THEN it is still the previous operational day
	assert.Equal(t, NewDate(2026, time.March, 10), day)
}

func TestDaysUntil(t *testing.T) {
	a := NewDate(2026, time.March, 10)
	assert.Equal(t, 5, a.DaysUntil(a.AddDays(5)))
	assert.Equal(t, -3, a.DaysUntil(a.AddDays(-3)))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.March, 10), d)

	_, err = ParseDate("10/03/2026")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestSummarize(t *testing.T) {
	today := NewDate(2026, time.March, 10)
	a, _ := NewLedger(1, 10, 30, today, DefaultPolicy())
	b, _ := NewLedger(2, 5, 30, today, DefaultPolicy())
	for i := 0; i < 5; i++ {
		b.ApplyCreation()
	}

	s := Summarize([]*Ledger{a, b})
	assert.Equal(t, 2, s.TotalLedgers)
	assert.Equal(t, 1, s.CompletedLedgers)
	assert.Equal(t, 1, s.PendingLedgers)
	assert.Equal(t, 15, s.TargetTotal)
	assert.Equal(t, 5, s.CompletedTotal)
	assert.InDelta(t, 33.33, s.PercentComplete, 0.001)
}
