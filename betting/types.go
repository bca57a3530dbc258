/*
Package betting holds the operational entities surrounding the quota engine:
distributors, betting houses, agencies, operator profiles, bets and money
movements. The quota engine only sees two things from here: agency ids and
profile-creation events.

Money is decimal.Decimal everywhere. Floats never touch stakes, payouts or
capital.
*/
package betting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/redviva/quota-engine/quota"
)

// =============================================================================
// CATALOG ENTITIES
// =============================================================================

type Distributor struct {
	ID        int64
	Name      string
	Active    bool
	CreatedAt time.Time
}

// House is a betting house operated through a distributor.
type House struct {
	ID            int64
	DistributorID int64
	Name          string
	ProfileCount  int
	ActiveCapital decimal.Decimal
	TotalCapital  decimal.Decimal
	MinProfiles   int
	Active        bool
}

// Agency is a physical agency where profiles are opened. Its id doubles as
// the quota engine's AgencyID.
type Agency struct {
	ID          int64
	Name        string
	Manager     string
	Contact     string
	HouseID     int64 // mother house
	RakePercent decimal.Decimal
	MinProfiles int
	Active      bool
	CreatedAt   time.Time
}

func (a Agency) QuotaAgency() quota.AgencyID { return quota.AgencyID(a.ID) }

// =============================================================================
// OPERATOR PROFILE
// =============================================================================

// Profile is an account created in a betting house for an agency. Creating
// one is the event the quota tracker counts.
type Profile struct {
	ID           string // uuid
	AgencyID     int64
	HouseID      int64
	Username     string
	PlayerType   string
	AccountLevel string
	WeeklyTarget int
	Active       bool
	CreatedAt    time.Time
}

// CreationEvent adapts the profile into the quota engine's event shape.
func (p Profile) CreationEvent() quota.CreationEvent {
	return quota.CreationEvent{
		ProfileID: p.ID,
		AgencyID:  quota.AgencyID(p.AgencyID),
		CreatedAt: p.CreatedAt,
	}
}

// =============================================================================
// OPERATIONS (BETS)
// =============================================================================

// Wire values are the platform's Spanish states.
type OperationStatus string

const (
	OpPending OperationStatus = "PENDIENTE"
	OpWon     OperationStatus = "GANADA"
	OpLost    OperationStatus = "PERDIDA"
	OpVoid    OperationStatus = "ANULADA"
)

func (s OperationStatus) Settled() bool { return s != OpPending }

// Operation is a single bet placed by a profile.
type Operation struct {
	ID         int64
	ProfileID  string
	Stake      decimal.Decimal
	Odds       decimal.Decimal
	Status     OperationStatus
	Payout     decimal.Decimal // stake + profit, zero until settled
	ProfitLoss decimal.Decimal // payout - stake, zero until settled
	Market     string
	RecordedAt time.Time
}

// Settle records the final payout and derives net P&L and status.
func (o *Operation) Settle(payout decimal.Decimal) {
	o.Payout = payout
	o.ProfitLoss = payout.Sub(o.Stake)
	switch {
	case payout.IsZero():
		o.Status = OpLost
	case payout.Equal(o.Stake):
		o.Status = OpVoid
	default:
		o.Status = OpWon
	}
}

// =============================================================================
// FINANCIAL TRANSACTIONS
// =============================================================================

type TransactionKind string

const (
	TxDeposit    TransactionKind = "DEPOSITO"
	TxWithdrawal TransactionKind = "RETIRO"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDIENTE"
	TxConfirmed TransactionStatus = "CONFIRMADA"
	TxRejected  TransactionStatus = "RECHAZADA"
)

// Transaction is a money movement (deposit/withdrawal) on a profile.
type Transaction struct {
	ID        int64
	ProfileID string
	Kind      TransactionKind
	Amount    decimal.Decimal
	Method    string
	Status    TransactionStatus
	Reference string
	At        time.Time
}
