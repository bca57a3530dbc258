/*
store.go - Persistence interfaces for the quota engine

The engine never talks to a database directly. Two small interfaces cover it:

  ObjectiveStore: ledger persistence. Writes are serialized per store and
                  Update enforces an optimistic version check, so overlapping
                  requests can never lose a completed-count increment or an
                  allocation write.
  EventSource:    read-only access to real profile-creation events, used by
                  the alert evaluator and the calendar projector.

IMPLEMENTATIONS:
  - store/sqlite: production store over SQLite (profiles table doubles as
    the event source)
  - quota/store:  in-memory store for tests and dev
*/
package quota

import "context"

// ObjectiveStore persists quota ledgers.
type ObjectiveStore interface {
	// Create assigns an ID and persists a new ledger.
	Create(ctx context.Context, l *Ledger) error

	// Get returns a ledger snapshot or ErrLedgerNotFound.
	Get(ctx context.Context, id LedgerID) (*Ledger, error)

	// Update persists allocation/completion changes. Fails with
	// ErrConcurrentModification if l.Version is stale.
	Update(ctx context.Context, l *Ledger) error

	// List returns all ledgers, newest first.
	List(ctx context.Context) ([]*Ledger, error)

	// ListOpen returns incomplete ledgers ordered by deadline ascending,
	// then by id ascending.
	ListOpen(ctx context.Context) ([]*Ledger, error)

	// ListByAgency returns all ledgers for one agency, newest first.
	ListByAgency(ctx context.Context, agency AgencyID) ([]*Ledger, error)

	// MostUrgentOpen returns the open ledger with the earliest deadline for
	// the agency (ties broken by lowest id), or nil when none exists.
	MostUrgentOpen(ctx context.Context, agency AgencyID) (*Ledger, error)

	// IncrementCompleted atomically applies one creation to the ledger and
	// recomputes completion. A ledger that is already complete is returned
	// unchanged.
	IncrementCompleted(ctx context.Context, id LedgerID) (*Ledger, error)

	// Delete removes a ledger. Deletion is always an explicit external
	// operation, never automatic.
	Delete(ctx context.Context, id LedgerID) error
}

// EventSource reads actual profile-creation events.
type EventSource interface {
	// CountCreatedOn counts events for the agency on one operational day.
	CountCreatedOn(ctx context.Context, agency AgencyID, day Date) (int, error)

	// CreatedInRange returns events for the agency with a creation day in
	// [from, to], ordered by creation time ascending.
	CreatedInRange(ctx context.Context, agency AgencyID, from, to Date) ([]CreationEvent, error)
}
