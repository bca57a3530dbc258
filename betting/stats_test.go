package betting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSettle(t *testing.T) {
	cases := []struct {
		name       string
		stake      string
		payout     string
		wantStatus OperationStatus
		wantPL     string
	}{
		{"loss on zero payout", "50", "0", OpLost, "-50"},
		{"void on exact stake back", "50", "50", OpVoid, "0"},
		{"win above stake", "50", "92.50", OpWon, "42.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Operation{Stake: dec(tc.stake), Status: OpPending}
			o.Settle(dec(tc.payout))

			assert.Equal(t, tc.wantStatus, o.Status)
			assert.True(t, o.ProfitLoss.Equal(dec(tc.wantPL)),
				"P&L = %s", o.ProfitLoss)
			assert.True(t, o.Status.Settled())
		})
	}
}

func TestGGRCountsOnlySettledOperations(t *testing.T) {
	// GIVEN a lost bet, a won bet and a pending one
	lost := Operation{Stake: dec("100"), Status: OpPending}
	lost.Settle(dec("0"))
	won := Operation{Stake: dec("40"), Status: OpPending}
	won.Settle(dec("70"))
	pending := Operation{Stake: dec("500"), Status: OpPending}

	// WHEN computing GGR
	got := GGR([]Operation{lost, won, pending})

	// THEN the pending stake is excluded: 100 - 0 + 40 - 70 = 70
	assert.True(t, got.Equal(dec("70")), "GGR = %s", got)
}

func TestStakeAverage(t *testing.T) {
	ops := []Operation{
		{Stake: dec("10")},
		{Stake: dec("20")},
		{Stake: dec("25")},
	}
	got := StakeAverage(ops)
	assert.True(t, got.Equal(dec("18.33")), "avg = %s", got)

	assert.True(t, StakeAverage(nil).IsZero())
}

func TestSummarizeBucketsByWeekAndMonth(t *testing.T) {
	loc, err := time.LoadLocation("America/Guayaquil")
	require.NoError(t, err)
	// Wednesday March 18, 2026: week starts Monday March 16.
	now := time.Date(2026, time.March, 18, 15, 0, 0, 0, loc)

	ops := []Operation{
		{Stake: dec("10"), RecordedAt: time.Date(2026, time.March, 17, 10, 0, 0, 0, loc)},  // this week
		{Stake: dec("10"), RecordedAt: time.Date(2026, time.March, 16, 0, 0, 0, 0, loc)},   // Monday boundary
		{Stake: dec("10"), RecordedAt: time.Date(2026, time.March, 3, 10, 0, 0, 0, loc)},   // this month only
		{Stake: dec("10"), RecordedAt: time.Date(2026, time.February, 20, 10, 0, 0, 0, loc)}, // older
	}

	s := Summarize(ops, now, loc)
	assert.Equal(t, 4, s.OpsTotal)
	assert.Equal(t, 2, s.OpsWeek)
	assert.Equal(t, 3, s.OpsMonth)
}

func TestSummarizeNetPLMirrorsGGR(t *testing.T) {
	lost := Operation{Stake: dec("100")}
	lost.Settle(dec("0"))

	s := Summarize([]Operation{lost}, time.Now(), time.UTC)
	assert.True(t, s.GGR.Equal(dec("100")))
	assert.True(t, s.NetPL.Equal(dec("-100")))
}

func TestBuildSnapshot(t *testing.T) {
	houses := []House{
		{TotalCapital: dec("5000"), ActiveCapital: dec("3000")},
		{TotalCapital: dec("2000"), ActiveCapital: dec("500")},
	}
	profiles := []Profile{{Active: true}, {Active: true}, {Active: false}}
	ops := []Operation{{Stake: dec("4000")}, {Stake: dec("2500")}}

	s := BuildSnapshot(houses, profiles, ops, dec("6000"), time.Now())

	assert.Equal(t, 2, s.ActiveProfiles)
	assert.True(t, s.TotalCapital.Equal(dec("7000")))
	assert.True(t, s.ActiveCapital.Equal(dec("3500")))
	assert.True(t, s.VolumeToday.Equal(dec("6500")))
	assert.True(t, s.TargetMet)

	short := BuildSnapshot(houses, profiles, ops[:1], dec("6000"), time.Now())
	assert.False(t, short.TargetMet)
}
