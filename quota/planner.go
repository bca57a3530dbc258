/*
planner.go - Allocation planning over a quota ledger

The planner is the only writer of the allocation map. It enforces two
invariants on every set:

  sum-vs-target:  sum(allocations) <= target count
  date-range:     every allocation date inside [start, deadline]

Move is intentionally asymmetric: it redistributes a quantity that the sum
invariant already accounts for, so it re-checks the window and the calendar
("not into the past") but not the global sum.
*/
package quota

import "context"

// Planner validates and mutates a ledger's allocation map.
type Planner struct {
	Store ObjectiveStore
	Clock *Clock
}

func NewPlanner(store ObjectiveStore, clock *Clock) *Planner {
	return &Planner{Store: store, Clock: clock}
}

// SetAllocation plans `count` profile creations on `date`. A count of zero
// removes the entry (absence, not a stored zero). The operation is
// idempotent: repeating it with the same arguments leaves the same state.
func (p *Planner) SetAllocation(ctx context.Context, id LedgerID, date Date, count int) (*Ledger, error) {
	l, err := p.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !l.ContainsDate(date) {
		return nil, &InvalidDateError{Date: date, Start: l.StartDate, Deadline: l.Deadline}
	}
	if count < 0 {
		return nil, &InvalidCountError{Count: count}
	}

	otherSum := l.Allocations.SumExcluding(date)
	if count > 0 && otherSum+count > l.TargetCount {
		return nil, &QuotaExceededError{
			Date:      date,
			Requested: count,
			Available: l.TargetCount - otherSum,
			Target:    l.TargetCount,
		}
	}

	if count == 0 {
		l.Allocations.Remove(date)
	} else {
		l.Allocations.Set(date, count)
	}

	if err := p.Store.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// MoveAllocation moves the planned count from one date onto another. If the
// destination already has an entry the counts merge; the planned total never
// changes.
func (p *Planner) MoveAllocation(ctx context.Context, id LedgerID, from, to Date) (*Ledger, error) {
	l, err := p.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	qty, ok := l.Allocations.Get(from)
	if !ok {
		return nil, &NoAllocationError{Date: from}
	}
	if !l.ContainsDate(to) {
		return nil, &InvalidDateError{Date: to, Start: l.StartDate, Deadline: l.Deadline}
	}
	if today := p.Clock.Today(); to.Before(today) {
		return nil, &PastDateError{Date: to, Today: today}
	}

	l.Allocations.Remove(from)
	existing, _ := l.Allocations.Get(to)
	l.Allocations.Set(to, existing+qty)

	if err := p.Store.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
