// Package store provides an in-memory ObjectiveStore/EventSource for tests
// and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/redviva/quota-engine/quota"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	ledgers map[quota.LedgerID]*quota.Ledger
	events  []quota.CreationEvent
	nextID  quota.LedgerID
	loc     *time.Location
}

// NewMemory builds an empty store. Event days are resolved in loc; pass the
// operational clock's location.
func NewMemory(loc *time.Location) *Memory {
	if loc == nil {
		loc = time.UTC
	}
	return &Memory{
		ledgers: make(map[quota.LedgerID]*quota.Ledger),
		nextID:  1,
		loc:     loc,
	}
}

func (m *Memory) Create(_ context.Context, l *quota.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.ID = m.nextID
	m.nextID++
	l.Version = 1
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	m.ledgers[l.ID] = l.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id quota.LedgerID) (*quota.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.ledgers[id]
	if !ok {
		return nil, quota.ErrLedgerNotFound
	}
	return l.Clone(), nil
}

func (m *Memory) Update(_ context.Context, l *quota.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.ledgers[l.ID]
	if !ok {
		return quota.ErrLedgerNotFound
	}
	if current.Version != l.Version {
		return quota.ErrConcurrentModification
	}
	l.Version++
	m.ledgers[l.ID] = l.Clone()
	return nil
}

func (m *Memory) List(_ context.Context) ([]*quota.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(*quota.Ledger) bool { return true }, byNewest), nil
}

func (m *Memory) ListOpen(_ context.Context) ([]*quota.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(l *quota.Ledger) bool { return !l.Complete }, byUrgency), nil
}

func (m *Memory) ListByAgency(_ context.Context, agency quota.AgencyID) ([]*quota.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(l *quota.Ledger) bool { return l.AgencyID == agency }, byNewest), nil
}

func (m *Memory) MostUrgentOpen(_ context.Context, agency quota.AgencyID) (*quota.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	open := m.collect(func(l *quota.Ledger) bool {
		return l.AgencyID == agency && !l.Complete
	}, byUrgency)
	if len(open) == 0 {
		return nil, nil
	}
	return open[0], nil
}

func (m *Memory) IncrementCompleted(_ context.Context, id quota.LedgerID) (*quota.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.ledgers[id]
	if !ok {
		return nil, quota.ErrLedgerNotFound
	}
	if !l.Complete {
		l.ApplyCreation()
		l.Version++
	}
	return l.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id quota.LedgerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ledgers[id]; !ok {
		return quota.ErrLedgerNotFound
	}
	delete(m.ledgers, id)
	return nil
}

func (m *Memory) collect(keep func(*quota.Ledger) bool, order func([]*quota.Ledger)) []*quota.Ledger {
	out := make([]*quota.Ledger, 0, len(m.ledgers))
	for _, l := range m.ledgers {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	order(out)
	return out
}

func byNewest(ls []*quota.Ledger) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].ID > ls[j].ID })
}

// byUrgency sorts deadline ascending, id ascending on equal deadlines.
func byUrgency(ls []*quota.Ledger) {
	sort.Slice(ls, func(i, j int) bool {
		if !ls[i].Deadline.Equal(ls[j].Deadline) {
			return ls[i].Deadline.Before(ls[j].Deadline)
		}
		return ls[i].ID < ls[j].ID
	})
}

// =============================================================================
// EVENT SOURCE
// =============================================================================

// AddEvent records a creation event. Test helper; the production event
// source is the profiles table.
func (m *Memory) AddEvent(ev quota.CreationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *Memory) CountCreatedOn(_ context.Context, agency quota.AgencyID, day quota.Date) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ev := range m.events {
		if ev.AgencyID == agency && quota.DateOf(ev.CreatedAt, m.loc).Equal(day) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CreatedInRange(_ context.Context, agency quota.AgencyID, from, to quota.Date) ([]quota.CreationEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []quota.CreationEvent
	for _, ev := range m.events {
		if ev.AgencyID != agency {
			continue
		}
		day := quota.DateOf(ev.CreatedAt, m.loc)
		if day.AfterOrEqual(from) && day.BeforeOrEqual(to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
