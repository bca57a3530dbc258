/*
calendar.go - Calendar projection of ledgers, plans and actual creations

Flattens every ledger into calendar-displayable events from three sources:

  DEADLINE         one per ledger, at the deadline
  PROFILE_CREATED  one per actual creation inside the window, ordered by
                   creation time for stable sequence numbers
  PLANNED          one per allocation entry, annotated with how many of that
                   day's planned count were actually fulfilled

The projection is read-only and order-independent as a whole; only sequence
numbers inside one ledger depend on event order.
*/
package quota

import (
	"context"
	"fmt"
)

type CalendarEventKind string

const (
	EventDeadline       CalendarEventKind = "DEADLINE"
	EventProfileCreated CalendarEventKind = "PROFILE_CREATED"
	EventPlanned        CalendarEventKind = "PLANNED"
)

// CalendarEvent is one displayable record. Fields beyond Kind/Date/ids are
// populated per kind.
type CalendarEvent struct {
	Kind     CalendarEventKind
	Date     Date
	LedgerID LedgerID
	AgencyID AgencyID
	Title    string

	// DEADLINE
	Target    int
	Completed int

	// PROFILE_CREATED
	Sequence  int // 1-based within the ledger, by creation time
	ProfileID string

	// PLANNED
	Planned   int
	Fulfilled int
}

// Projector builds the calendar view.
type Projector struct {
	Store  ObjectiveStore
	Source EventSource
	Clock  *Clock
}

func NewProjector(store ObjectiveStore, source EventSource, clock *Clock) *Projector {
	return &Projector{Store: store, Source: source, Clock: clock}
}

// Project flattens all ledgers into calendar events. It never mutates state.
func (p *Projector) Project(ctx context.Context) ([]CalendarEvent, error) {
	ledgers, err := p.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]CalendarEvent, 0)
	for _, l := range ledgers {
		events = append(events, CalendarEvent{
			Kind:      EventDeadline,
			Date:      l.Deadline,
			LedgerID:  l.ID,
			AgencyID:  l.AgencyID,
			Title:     fmt.Sprintf("Fecha limite: %d/%d perfiles", l.CompletedCount, l.TargetCount),
			Target:    l.TargetCount,
			Completed: l.CompletedCount,
		})

		created, err := p.Source.CreatedInRange(ctx, l.AgencyID, l.StartDate, l.Deadline)
		if err != nil {
			return nil, err
		}

		perDay := make(map[string]int, len(created))
		for i, ev := range created {
			day := DateOf(ev.CreatedAt, p.Clock.Location())
			perDay[day.String()]++
			events = append(events, CalendarEvent{
				Kind:      EventProfileCreated,
				Date:      day,
				LedgerID:  l.ID,
				AgencyID:  l.AgencyID,
				Title:     fmt.Sprintf("Perfil creado #%d", i+1),
				Sequence:  i + 1,
				ProfileID: ev.ProfileID,
			})
		}

		for _, d := range l.Allocations.Dates() {
			planned, _ := l.Allocations.Get(d)
			events = append(events, CalendarEvent{
				Kind:      EventPlanned,
				Date:      d,
				LedgerID:  l.ID,
				AgencyID:  l.AgencyID,
				Title:     fmt.Sprintf("Planificado: %d perfiles", planned),
				Planned:   planned,
				Fulfilled: perDay[d.String()],
			})
		}
	}
	return events, nil
}
