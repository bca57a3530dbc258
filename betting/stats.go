/*
stats.go - Read-time derived figures

The platform stores no aggregate columns: GGR, stake averages and operation
counts are always computed from the raw operations at read time, so they can
never drift from the data.

GGR (gross gaming revenue) is taken from the house's perspective: total stake
minus total payout over settled operations. A positive GGR means the profiles
lost money to the house.
*/
package betting

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfileStats summarizes one profile's betting activity.
type ProfileStats struct {
	OpsTotal     int
	OpsWeek      int
	OpsMonth     int
	StakeAverage decimal.Decimal
	GGR          decimal.Decimal
	NetPL        decimal.Decimal // profiles' net result, = -GGR
}

// GGR computes stake minus payout over settled operations.
func GGR(ops []Operation) decimal.Decimal {
	total := decimal.Zero
	for _, o := range ops {
		if !o.Status.Settled() {
			continue
		}
		total = total.Add(o.Stake).Sub(o.Payout)
	}
	return total
}

// StakeAverage is the mean stake across all operations, two decimals.
func StakeAverage(ops []Operation) decimal.Decimal {
	if len(ops) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, o := range ops {
		total = total.Add(o.Stake)
	}
	return total.Div(decimal.NewFromInt(int64(len(ops)))).Round(2)
}

// Summarize derives all read-time figures for one profile's operations.
// now/loc decide the week and month buckets.
func Summarize(ops []Operation, now time.Time, loc *time.Location) ProfileStats {
	local := now.In(loc)
	weekStart := startOfWeek(local)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	s := ProfileStats{
		OpsTotal:     len(ops),
		StakeAverage: StakeAverage(ops),
		GGR:          GGR(ops),
	}
	s.NetPL = s.GGR.Neg()

	for _, o := range ops {
		at := o.RecordedAt.In(loc)
		if !at.Before(weekStart) {
			s.OpsWeek++
		}
		if !at.Before(monthStart) {
			s.OpsMonth++
		}
	}
	return s
}

// startOfWeek returns Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}

// =============================================================================
// OPERATIONAL SNAPSHOT - Platform-wide daily figures
// =============================================================================

// Snapshot is the platform-wide operational picture, computed on demand.
// It replaces a stored metrics row: nothing here persists.
type Snapshot struct {
	ActiveProfiles int
	TotalCapital   decimal.Decimal
	ActiveCapital  decimal.Decimal
	VolumeToday    decimal.Decimal
	VolumeTarget   decimal.Decimal
	TargetMet      bool
	AsOf           time.Time
}

// BuildSnapshot aggregates houses, profiles and today's operations against
// the configured daily volume target.
func BuildSnapshot(houses []House, profiles []Profile, todayOps []Operation, volumeTarget decimal.Decimal, now time.Time) Snapshot {
	s := Snapshot{VolumeTarget: volumeTarget, AsOf: now}
	for _, h := range houses {
		s.TotalCapital = s.TotalCapital.Add(h.TotalCapital)
		s.ActiveCapital = s.ActiveCapital.Add(h.ActiveCapital)
	}
	for _, p := range profiles {
		if p.Active {
			s.ActiveProfiles++
		}
	}
	for _, o := range todayOps {
		s.VolumeToday = s.VolumeToday.Add(o.Stake)
	}
	s.TargetMet = s.VolumeToday.GreaterThanOrEqual(volumeTarget)
	return s
}
