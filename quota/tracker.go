/*
tracker.go - Completion tracking from real creation events

Each profile creation counts against the most urgent open ledger of the
profile's agency: earliest deadline first, lowest id on ties. The increment
itself happens inside the store (single atomic read-modify-write), so
overlapping creations cannot lose updates.

The profile-creation workflow calls RecordCreation explicitly. There is no
implicit event hook between the two.
*/
package quota

import (
	"context"

	"github.com/rs/zerolog"
)

// Tracker applies creation events to quota ledgers.
type Tracker struct {
	Store ObjectiveStore
	Log   zerolog.Logger
}

func NewTracker(store ObjectiveStore, log zerolog.Logger) *Tracker {
	return &Tracker{Store: store, Log: log.With().Str("component", "tracker").Logger()}
}

// RecordCreation increments the most urgent open ledger for the agency and
// returns the updated ledger. When the agency has no open ledger the event
// is a deliberate no-op and (nil, nil) is returned.
func (t *Tracker) RecordCreation(ctx context.Context, agency AgencyID) (*Ledger, error) {
	l, err := t.Store.MostUrgentOpen(ctx, agency)
	if err != nil {
		return nil, err
	}
	if l == nil {
		t.Log.Debug().Int64("agency", int64(agency)).Msg("creation with no open objective")
		return nil, nil
	}

	updated, err := t.Store.IncrementCompleted(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	evt := t.Log.Info().
		Int64("objective", int64(updated.ID)).
		Int64("agency", int64(agency)).
		Int("completed", updated.CompletedCount).
		Int("target", updated.TargetCount)
	if updated.Complete {
		evt.Msg("objective completed")
	} else {
		evt.Msg("objective progressed")
	}
	return updated, nil
}
