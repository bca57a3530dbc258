/*
alerts.go - Time-sensitive alert derivation

Given "now" in the operational timezone and the open ledgers, derive typed
advisory alerts. Alerts are computed on demand and never stored; staleness of
one write cycle is acceptable.

Per ledger, per evaluation:
  UNPLANNED      planned sum short of the target
  DUE_TODAY      today's plan not yet covered by actual creations
  DUE_TOMORROW   tomorrow has a plan (no actuals to compare yet)
  OVERDUE        deadline passed with profiles remaining
  DUE_IN_N_DAYS  deadline in exactly N days (N = 1..3) with profiles remaining

OVERDUE and DUE_IN_N_DAYS are mutually exclusive: both derive from the same
day delta, computed once.
*/
package quota

import (
	"context"
	"fmt"
)

// =============================================================================
// ALERT TYPES
// =============================================================================

type AlertKind string

const (
	AlertUnplanned   AlertKind = "UNPLANNED"
	AlertDueToday    AlertKind = "DUE_TODAY"
	AlertDueTomorrow AlertKind = "DUE_TOMORROW"
	AlertOverdue     AlertKind = "OVERDUE"
	AlertDueInDays   AlertKind = "DUE_IN_N_DAYS"
)

// Alert is one advisory finding for one ledger. Only the fields relevant to
// the kind are populated.
type Alert struct {
	Kind     AlertKind
	LedgerID LedgerID
	AgencyID AgencyID

	Date        *Date // due date for DUE_TODAY / DUE_TOMORROW
	Missing     int   // UNPLANNED: target - planned sum
	Planned     int   // DUE_TODAY / DUE_TOMORROW: planned count for the day
	Pending     int   // DUE_TODAY: planned - created so far today
	Remaining   int   // OVERDUE / DUE_IN_N_DAYS: target - completed
	DaysOverdue int   // OVERDUE
	DaysLeft    int   // DUE_IN_N_DAYS

	Message string
}

// AlertHorizonDays is how far before the deadline the countdown alerts fire.
const AlertHorizonDays = 3

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator derives alerts from the open ledgers and the actual creation
// events, against an injected clock.
type Evaluator struct {
	Store  ObjectiveStore
	Source EventSource
	Clock  *Clock
}

func NewEvaluator(store ObjectiveStore, source EventSource, clock *Clock) *Evaluator {
	return &Evaluator{Store: store, Source: source, Clock: clock}
}

// Evaluate runs one pass over all open ledgers, in deadline order.
func (e *Evaluator) Evaluate(ctx context.Context) ([]Alert, error) {
	ledgers, err := e.Store.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	today := e.Clock.Today()
	tomorrow := today.AddDays(1)

	alerts := make([]Alert, 0)
	for _, l := range ledgers {
		if planned := l.PlannedSum(); planned < l.TargetCount {
			missing := l.TargetCount - planned
			alerts = append(alerts, Alert{
				Kind:     AlertUnplanned,
				LedgerID: l.ID,
				AgencyID: l.AgencyID,
				Missing:  missing,
				Message:  fmt.Sprintf("Quedan %d perfiles sin planificar de un objetivo de %d", missing, l.TargetCount),
			})
		}

		if planned, ok := l.Allocations.Get(today); ok {
			created, err := e.Source.CountCreatedOn(ctx, l.AgencyID, today)
			if err != nil {
				return nil, err
			}
			if created < planned {
				d := today
				alerts = append(alerts, Alert{
					Kind:     AlertDueToday,
					LedgerID: l.ID,
					AgencyID: l.AgencyID,
					Date:     &d,
					Planned:  planned,
					Pending:  planned - created,
					Message:  fmt.Sprintf("Hoy deben crearse %d perfiles; faltan %d", planned, planned-created),
				})
			}
		}

		if planned, ok := l.Allocations.Get(tomorrow); ok {
			d := tomorrow
			alerts = append(alerts, Alert{
				Kind:     AlertDueTomorrow,
				LedgerID: l.ID,
				AgencyID: l.AgencyID,
				Date:     &d,
				Planned:  planned,
				Message:  fmt.Sprintf("Manana estan planificados %d perfiles", planned),
			})
		}

		// Deadline proximity: a single day delta decides between OVERDUE and
		// the countdown, so at most one of them fires.
		if remaining := l.Remaining(); remaining > 0 {
			delta := today.DaysUntil(l.Deadline)
			switch {
			case delta < 0:
				alerts = append(alerts, Alert{
					Kind:        AlertOverdue,
					LedgerID:    l.ID,
					AgencyID:    l.AgencyID,
					Remaining:   remaining,
					DaysOverdue: -delta,
					Message:     fmt.Sprintf("Objetivo vencido hace %d dias con %d perfiles pendientes", -delta, remaining),
				})
			case delta >= 1 && delta <= AlertHorizonDays:
				alerts = append(alerts, Alert{
					Kind:      AlertDueInDays,
					LedgerID:  l.ID,
					AgencyID:  l.AgencyID,
					Remaining: remaining,
					DaysLeft:  delta,
					Message:   fmt.Sprintf("Quedan %d dias para crear %d perfiles", delta, remaining),
				})
			}
		}
	}
	return alerts, nil
}
