package quota_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redviva/quota-engine/quota"
	"github.com/redviva/quota-engine/quota/store"
)

func eventsOf(events []quota.CalendarEvent, kind quota.CalendarEventKind) []quota.CalendarEvent {
	var out []quota.CalendarEvent
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestProjectEmitsDeadlinePerLedger(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	a := openLedger(t, s, 1, 10, 15, clock.Today())
	b := openLedger(t, s, 2, 5, 30, clock.Today())

	events, err := quota.NewProjector(s, s, clock).Project(context.Background())
	require.NoError(t, err)

	deadlines := eventsOf(events, quota.EventDeadline)
	require.Len(t, deadlines, 2)
	byLedger := map[quota.LedgerID]quota.CalendarEvent{}
	for _, e := range deadlines {
		byLedger[e.LedgerID] = e
	}
	assert.Equal(t, a.Deadline, byLedger[a.ID].Date)
	assert.Equal(t, 10, byLedger[a.ID].Target)
	assert.Equal(t, b.Deadline, byLedger[b.ID].Date)
}

func TestProjectSequencesCreationsByTime(t *testing.T) {
	// GIVEN three creations on two days, inserted out of order
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 10, 15, clock.Today())

	day1 := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)
	s.AddEvent(quota.CreationEvent{ProfileID: "c", AgencyID: 1, CreatedAt: day2})
	s.AddEvent(quota.CreationEvent{ProfileID: "a", AgencyID: 1, CreatedAt: day1})
	s.AddEvent(quota.CreationEvent{ProfileID: "b", AgencyID: 1, CreatedAt: day1.Add(time.Hour)})

	// WHEN projecting
	events, err := quota.NewProjector(s, s, clock).Project(context.Background())
	require.NoError(t, err)

	// THEN sequence numbers follow creation time, not insertion order
	created := eventsOf(events, quota.EventProfileCreated)
	require.Len(t, created, 3)
	for i, wantProfile := range []string{"a", "b", "c"} {
		assert.Equal(t, i+1, created[i].Sequence)
		assert.Equal(t, wantProfile, created[i].ProfileID)
		assert.Equal(t, fmt.Sprintf("Perfil creado #%d", i+1), created[i].Title)
	}
	assert.Equal(t, l.ID, created[0].LedgerID)
}

func TestProjectAnnotatesPlannedWithFulfilled(t *testing.T) {
	// GIVEN 4 planned on a day with 2 actual creations, 3 planned on an
	// untouched day
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	l := openLedger(t, s, 1, 10, 15, clock.Today())
	p := quota.NewPlanner(s, clock)
	ctx := context.Background()

	covered := clock.Today().AddDays(1)
	empty := clock.Today().AddDays(3)
	_, err := p.SetAllocation(ctx, l.ID, covered, 4)
	require.NoError(t, err)
	_, err = p.SetAllocation(ctx, l.ID, empty, 3)
	require.NoError(t, err)

	at := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	s.AddEvent(quota.CreationEvent{ProfileID: "a", AgencyID: 1, CreatedAt: at})
	s.AddEvent(quota.CreationEvent{ProfileID: "b", AgencyID: 1, CreatedAt: at.Add(time.Hour)})

	// WHEN projecting
	events, err := quota.NewProjector(s, s, clock).Project(ctx)
	require.NoError(t, err)

	// THEN each planned entry reports its own fulfillment
	planned := eventsOf(events, quota.EventPlanned)
	require.Len(t, planned, 2)
	byDate := map[string]quota.CalendarEvent{}
	for _, e := range planned {
		byDate[e.Date.String()] = e
	}
	assert.Equal(t, 4, byDate[covered.String()].Planned)
	assert.Equal(t, 2, byDate[covered.String()].Fulfilled)
	assert.Equal(t, 3, byDate[empty.String()].Planned)
	assert.Equal(t, 0, byDate[empty.String()].Fulfilled)
}

func TestProjectIgnoresCreationsOutsideWindow(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())
	openLedger(t, s, 1, 10, 15, clock.Today())

	before := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)
	s.AddEvent(quota.CreationEvent{ProfileID: "old", AgencyID: 1, CreatedAt: before})

	events, err := quota.NewProjector(s, s, clock).Project(context.Background())
	require.NoError(t, err)
	assert.Empty(t, eventsOf(events, quota.EventProfileCreated))
}

func TestProjectEmptyStore(t *testing.T) {
	clock := fixedClock(t, 2026, time.March, 10)
	s := store.NewMemory(clock.Location())

	events, err := quota.NewProjector(s, s, clock).Project(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}
