package quota_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redviva/quota-engine/quota"
	"github.com/redviva/quota-engine/quota/store"
)

func fixedClock(t *testing.T, year int, month time.Month, day int) *quota.Clock {
	t.Helper()
	at := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return quota.NewFixedClock(at, "UTC")
}

func openLedger(t *testing.T, s *store.Memory, agency quota.AgencyID, target, window int, today quota.Date) *quota.Ledger {
	t.Helper()
	l, err := quota.NewLedger(agency, target, window, today, quota.DefaultPolicy())
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), l))
	return l
}

func TestSetAllocationPlansWithinWindow(t *testing.T) {
	// GIVEN a 20-profile objective opened today
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)

	// WHEN planning 5 profiles three days out
	updated, err := p.SetAllocation(context.Background(), l.ID, clock.Today().AddDays(3), 5)
	require.NoError(t, err)

	// THEN the entry is stored and persisted
	assert.Equal(t, quota.AllocationMap{"2026-03-13": 5}, updated.Allocations)

	got, err := s.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.PlannedSum())
}

func TestSetAllocationIsIdempotent(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	date := clock.Today().AddDays(3)

	_, err := p.SetAllocation(context.Background(), l.ID, date, 5)
	require.NoError(t, err)
	updated, err := p.SetAllocation(context.Background(), l.ID, date, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, updated.PlannedSum())
}

func TestSetAllocationReplacesExistingEntry(t *testing.T) {
	// Re-planning a date replaces the old count, it does not accumulate.
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	date := clock.Today().AddDays(3)

	_, err := p.SetAllocation(context.Background(), l.ID, date, 15)
	require.NoError(t, err)
	updated, err := p.SetAllocation(context.Background(), l.ID, date, 18)
	require.NoError(t, err)

	assert.Equal(t, 18, updated.PlannedSum())
}

func TestSetAllocationZeroRemovesEntry(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	date := clock.Today().AddDays(3)

	_, err := p.SetAllocation(context.Background(), l.ID, date, 5)
	require.NoError(t, err)

	// WHEN setting the same date to zero
	updated, err := p.SetAllocation(context.Background(), l.ID, date, 0)
	require.NoError(t, err)

	// THEN the entry is gone, not stored as zero
	_, ok := updated.Allocations.Get(date)
	assert.False(t, ok)
	assert.Empty(t, updated.Allocations)
}

func TestSetAllocationRejectsDateOutsideWindow(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)

	for _, date := range []quota.Date{
		clock.Today().AddDays(-1), // before start
		clock.Today().AddDays(31), // past deadline
	} {
		_, err := p.SetAllocation(context.Background(), l.ID, date, 5)
		assert.True(t, errors.Is(err, quota.ErrInvalidDate), "date %s: got %v", date, err)
	}
}

func TestSetAllocationRejectsNegativeCount(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)

	_, err := p.SetAllocation(context.Background(), l.ID, clock.Today(), -1)
	assert.True(t, errors.Is(err, quota.ErrInvalidCount))
}

func TestSetAllocationEnforcesSumAgainstTarget(t *testing.T) {
	// GIVEN a 20-profile objective already planned up to 15
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()

	_, err := p.SetAllocation(ctx, l.ID, clock.Today().AddDays(1), 10)
	require.NoError(t, err)
	_, err = p.SetAllocation(ctx, l.ID, clock.Today().AddDays(2), 5)
	require.NoError(t, err)

	// WHEN planning 6 more on a third date
	_, err = p.SetAllocation(ctx, l.ID, clock.Today().AddDays(3), 6)

	// THEN the sum check fires with the remaining capacity
	var qe *quota.QuotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 6, qe.Requested)
	assert.Equal(t, 5, qe.Available)
	assert.Equal(t, 20, qe.Target)

	// AND exactly the remaining capacity still fits
	updated, err := p.SetAllocation(ctx, l.ID, clock.Today().AddDays(3), 5)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.PlannedSum())
}

func TestSetAllocationSumCheckExcludesOwnDate(t *testing.T) {
	// Raising a date's own count must not double-count its old value.
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()
	date := clock.Today().AddDays(1)

	_, err := p.SetAllocation(ctx, l.ID, date, 15)
	require.NoError(t, err)

	updated, err := p.SetAllocation(ctx, l.ID, date, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.PlannedSum())
}

func TestSetAllocationUnknownLedger(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	p := quota.NewPlanner(s, clock)

	_, err := p.SetAllocation(context.Background(), 999, clock.Today(), 5)
	assert.True(t, errors.Is(err, quota.ErrLedgerNotFound))
}

func TestMoveAllocationPreservesPlannedTotal(t *testing.T) {
	// GIVEN plans on two future dates
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()
	from := clock.Today().AddDays(2)
	to := clock.Today().AddDays(5)

	_, err := p.SetAllocation(ctx, l.ID, from, 8)
	require.NoError(t, err)
	_, err = p.SetAllocation(ctx, l.ID, to, 4)
	require.NoError(t, err)

	// WHEN moving the first onto the second
	updated, err := p.MoveAllocation(ctx, l.ID, from, to)
	require.NoError(t, err)

	// THEN the source is gone, the destination merged, the total unchanged
	_, ok := updated.Allocations.Get(from)
	assert.False(t, ok)
	merged, _ := updated.Allocations.Get(to)
	assert.Equal(t, 12, merged)
	assert.Equal(t, 12, updated.PlannedSum())
}

func TestMoveAllocationToEmptyDate(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()
	from := clock.Today().AddDays(2)
	to := clock.Today().AddDays(5)

	_, err := p.SetAllocation(ctx, l.ID, from, 8)
	require.NoError(t, err)

	updated, err := p.MoveAllocation(ctx, l.ID, from, to)
	require.NoError(t, err)

	moved, _ := updated.Allocations.Get(to)
	assert.Equal(t, 8, moved)
	assert.Equal(t, 8, updated.PlannedSum())
}

func TestMoveAllocationRequiresSourceEntry(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)

	_, err := p.MoveAllocation(context.Background(), l.ID,
		clock.Today().AddDays(2), clock.Today().AddDays(5))
	assert.True(t, errors.Is(err, quota.ErrNoAllocation))
}

func TestMoveAllocationRejectsDestinationOutsideWindow(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, clock.Today())
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()
	from := clock.Today().AddDays(2)

	_, err := p.SetAllocation(ctx, l.ID, from, 8)
	require.NoError(t, err)

	_, err = p.MoveAllocation(ctx, l.ID, from, clock.Today().AddDays(31))
	assert.True(t, errors.Is(err, quota.ErrInvalidDate))
}

func TestMoveAllocationRejectsPastDestination(t *testing.T) {
	// GIVEN an objective whose window started five days ago
	start := quota.NewDate(2026, time.March, 5)
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 20, 30, start)
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()
	from := clock.Today().AddDays(2)

	_, err := p.SetAllocation(ctx, l.ID, from, 8)
	require.NoError(t, err)

	// WHEN moving onto yesterday (inside the window, but behind today)
	_, err = p.MoveAllocation(ctx, l.ID, from, clock.Today().AddDays(-1))

	// THEN the calendar check fires
	assert.True(t, errors.Is(err, quota.ErrPastDate))

	// AND moving onto today itself is allowed
	updated, err := p.MoveAllocation(ctx, l.ID, from, clock.Today())
	require.NoError(t, err)
	got, _ := updated.Allocations.Get(clock.Today())
	assert.Equal(t, 8, got)
}
