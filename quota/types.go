/*
Package quota provides the profile-creation objective engine.

PURPOSE:
  An agency opens a Ledger: a fixed quota of betting profiles to create
  within a bounded date window. The ledger carries a per-date allocation
  plan, a completed counter fed by real creation events, and derives
  completion automatically. Everything else in the platform (agencies,
  houses, profiles, money) supplies or consumes this data.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: a calendar day (the engine never reasons below day granularity)
  - AllocationMap: planned creation counts keyed by ISO date
  - Ledger: the quota entity with its invariants
  - CreationEvent: an actual profile creation, produced elsewhere

INVARIANTS:
  1. TargetCount > 0
  2. CompletedCount >= 0, monotonically non-decreasing
  3. sum(Allocations) <= TargetCount at all times
  4. every allocation date lies within [StartDate, Deadline]
  5. Complete == (CompletedCount >= TargetCount), recomputed on every mutation
  6. a planned count of zero is absence, never a stored zero entry

SEE ALSO:
  - planner.go: set/move allocation operations
  - tracker.go: completed-count increments from creation events
  - alerts.go: time-sensitive alert derivation
  - calendar.go: read-only calendar projection
*/
package quota

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type LedgerID int64
type AgencyID int64

// =============================================================================
// DATE - Calendar day, timezone already resolved
// =============================================================================

// Date is a calendar day. All instants are collapsed to a day in the
// operational timezone before they reach the engine, so Date itself is
// zone-free and compares by year/month/day only.
type Date struct {
	t time.Time // midnight UTC
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q (use YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// DateOf collapses an instant to its calendar day in loc.
func DateOf(at time.Time, loc *time.Location) Date {
	local := at.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.t.After(o.t) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.t.Before(o.t) }
func (d Date) IsZero() bool              { return d.t.IsZero() }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the whole-day distance to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int { return int(o.t.Sub(d.t).Hours() / 24) }

func (d Date) Time() time.Time { return d.t }
func (d Date) String() string  { return d.t.Format("2006-01-02") }

// =============================================================================
// ALLOCATION MAP - Planned creation counts per date
// =============================================================================

// AllocationMap maps ISO date strings to positive planned counts.
// It is stored as a JSON object, so its shape is re-validated on every load.
type AllocationMap map[string]int

func (m AllocationMap) Sum() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// SumExcluding totals all entries except the one for d, if present.
func (m AllocationMap) SumExcluding(d Date) int {
	total := 0
	key := d.String()
	for k, n := range m {
		if k != key {
			total += n
		}
	}
	return total
}

func (m AllocationMap) Get(d Date) (int, bool) {
	n, ok := m[d.String()]
	return n, ok
}

func (m AllocationMap) Set(d Date, count int) { m[d.String()] = count }
func (m AllocationMap) Remove(d Date)         { delete(m, d.String()) }

// Dates returns the allocation dates in ascending order.
func (m AllocationMap) Dates() []Date {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	dates := make([]Date, 0, len(keys))
	for _, k := range keys {
		d, err := ParseDate(k)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// Validate checks stored shape: parseable keys inside [start, deadline] and
// strictly positive counts.
func (m AllocationMap) Validate(start, deadline Date) error {
	for k, n := range m {
		d, err := ParseDate(k)
		if err != nil {
			return err
		}
		if d.Before(start) || d.After(deadline) {
			return &InvalidDateError{Date: d, Start: start, Deadline: deadline}
		}
		if n <= 0 {
			return &InvalidCountError{Count: n}
		}
	}
	return nil
}

func (m AllocationMap) clone() AllocationMap {
	out := make(AllocationMap, len(m))
	for k, n := range m {
		out[k] = n
	}
	return out
}

// =============================================================================
// POLICY - Creation-time limits (configurable, not hardcoded)
// =============================================================================

type Policy struct {
	MaxTargetCount int
	MaxWindowDays  int
}

func DefaultPolicy() Policy {
	return Policy{MaxTargetCount: 100, MaxWindowDays: 365}
}

// =============================================================================
// LEDGER - The quota entity
// =============================================================================

type Ledger struct {
	ID             LedgerID
	AgencyID       AgencyID
	TargetCount    int
	CompletedCount int
	WindowDays     int
	StartDate      Date
	Deadline       Date // StartDate + WindowDays, immutable after creation
	Complete       bool // derived: CompletedCount >= TargetCount
	Allocations    AllocationMap

	// Version supports optimistic concurrency on Update.
	Version   int64
	CreatedAt time.Time
}

// NewLedger opens a quota for an agency. The deadline is computed once, here,
// and never recomputed.
func NewLedger(agency AgencyID, target, windowDays int, today Date, pol Policy) (*Ledger, error) {
	if target <= 0 || (pol.MaxTargetCount > 0 && target > pol.MaxTargetCount) {
		return nil, &InvalidCountError{Count: target, Max: pol.MaxTargetCount}
	}
	if windowDays <= 0 || (pol.MaxWindowDays > 0 && windowDays > pol.MaxWindowDays) {
		return nil, fmt.Errorf("%w: %d days (1..%d)", ErrInvalidWindow, windowDays, pol.MaxWindowDays)
	}
	return &Ledger{
		AgencyID:    agency,
		TargetCount: target,
		WindowDays:  windowDays,
		StartDate:   today,
		Deadline:    today.AddDays(windowDays),
		Allocations: make(AllocationMap),
	}, nil
}

// ContainsDate reports whether d lies inside [StartDate, Deadline].
func (l *Ledger) ContainsDate(d Date) bool {
	return d.AfterOrEqual(l.StartDate) && d.BeforeOrEqual(l.Deadline)
}

func (l *Ledger) PlannedSum() int { return l.Allocations.Sum() }

func (l *Ledger) Remaining() int {
	if r := l.TargetCount - l.CompletedCount; r > 0 {
		return r
	}
	return 0
}

// PercentComplete returns completion as a percentage rounded to two decimals.
func (l *Ledger) PercentComplete() float64 {
	if l.TargetCount == 0 {
		return 0
	}
	pct := 100 * float64(l.CompletedCount) / float64(l.TargetCount)
	return math.Round(pct*100) / 100
}

// recompute keeps the derived completion flag in sync. Every mutation of
// CompletedCount must go through this.
func (l *Ledger) recompute() {
	l.Complete = l.CompletedCount >= l.TargetCount
}

// ApplyCreation records one real profile creation against this ledger.
func (l *Ledger) ApplyCreation() {
	l.CompletedCount++
	l.recompute()
}

// Validate re-checks every invariant. Stores call this after loading the
// JSON allocation column rather than trusting stored shape.
func (l *Ledger) Validate() error {
	if l.TargetCount <= 0 {
		return &InvalidCountError{Count: l.TargetCount}
	}
	if l.CompletedCount < 0 {
		return &InvalidCountError{Count: l.CompletedCount}
	}
	if err := l.Allocations.Validate(l.StartDate, l.Deadline); err != nil {
		return err
	}
	if l.Allocations.Sum() > l.TargetCount {
		return &QuotaExceededError{Requested: l.Allocations.Sum(), Available: 0, Target: l.TargetCount}
	}
	if l.Complete != (l.CompletedCount >= l.TargetCount) {
		return fmt.Errorf("completion flag out of sync: completed=%d target=%d complete=%v",
			l.CompletedCount, l.TargetCount, l.Complete)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing the
// store's snapshot.
func (l *Ledger) Clone() *Ledger {
	out := *l
	out.Allocations = l.Allocations.clone()
	return &out
}

// =============================================================================
// CREATION EVENT - Produced by the profile workflow, consumed here
// =============================================================================

type CreationEvent struct {
	ProfileID string
	AgencyID  AgencyID
	CreatedAt time.Time
}

// =============================================================================
// STATS - Aggregate view across ledgers
// =============================================================================

type Stats struct {
	TotalLedgers     int
	CompletedLedgers int
	PendingLedgers   int
	TargetTotal      int
	CompletedTotal   int
	PercentComplete  float64
}

func Summarize(ledgers []*Ledger) Stats {
	s := Stats{TotalLedgers: len(ledgers)}
	for _, l := range ledgers {
		if l.Complete {
			s.CompletedLedgers++
		} else {
			s.PendingLedgers++
		}
		s.TargetTotal += l.TargetCount
		s.CompletedTotal += l.CompletedCount
	}
	if s.TargetTotal > 0 {
		pct := 100 * float64(s.CompletedTotal) / float64(s.TargetTotal)
		s.PercentComplete = math.Round(pct*100) / 100
	}
	return s
}
