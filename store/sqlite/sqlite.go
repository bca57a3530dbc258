/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

INTERFACES IMPLEMENTED:
  quota.ObjectiveStore: ledger persistence with optimistic versioning
  quota.EventSource:    the profiles table doubles as the creation-event feed

CONCURRENCY:
  A store-level write mutex serializes all mutations, and every objective
  UPDATE carries a version check. The completed-count increment is a single
  read-modify-write inside the lock, so concurrent profile creations cannot
  lose updates.

SHAPE VALIDATION:
  The allocation map is stored as a JSON column. It is unmarshalled and
  re-validated against the ledger's window on every load; a corrupted row
  surfaces as an error instead of silently skewing the planner.

WAL MODE:
  The database is opened with WAL so readers don't block the single writer.

TIMESTAMPS:
  Instants are stored as RFC3339 UTC strings, which makes range queries
  plain lexicographic comparisons. Calendar dates (start/deadline) are
  stored as YYYY-MM-DD.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/redviva/quota-engine/betting"
	"github.com/redviva/quota-engine/quota"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	loc *time.Location
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database. Event days are resolved in loc.
func New(dbPath string, loc *time.Location) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	store := &Store{db: db, loc: loc}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS objectives (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agency_id INTEGER NOT NULL,
		target_count INTEGER NOT NULL,
		completed_count INTEGER NOT NULL DEFAULT 0,
		window_days INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		deadline TEXT NOT NULL,
		complete INTEGER NOT NULL DEFAULT 0,
		allocations TEXT NOT NULL DEFAULT '{}',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_objectives_agency_open
		ON objectives(agency_id, complete, deadline);

	CREATE TABLE IF NOT EXISTS distributors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS houses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		distributor_id INTEGER NOT NULL REFERENCES distributors(id),
		name TEXT NOT NULL,
		profile_count INTEGER NOT NULL DEFAULT 0,
		active_capital TEXT NOT NULL DEFAULT '0',
		total_capital TEXT NOT NULL DEFAULT '0',
		min_profiles INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS agencies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		manager TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		house_id INTEGER NOT NULL DEFAULT 0,
		rake_percent TEXT NOT NULL DEFAULT '0',
		min_profiles INTEGER NOT NULL DEFAULT 5,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		agency_id INTEGER NOT NULL,
		house_id INTEGER NOT NULL DEFAULT 0,
		username TEXT NOT NULL,
		player_type TEXT NOT NULL DEFAULT '',
		account_level TEXT NOT NULL DEFAULT '',
		weekly_target INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_agency_created
		ON profiles(agency_id, created_at);

	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id TEXT NOT NULL REFERENCES profiles(id),
		stake TEXT NOT NULL,
		odds TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDIENTE',
		payout TEXT NOT NULL DEFAULT '0',
		profit_loss TEXT NOT NULL DEFAULT '0',
		market TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_operations_profile
		ON operations(profile_id, recorded_at);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id TEXT NOT NULL REFERENCES profiles(id),
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDIENTE',
		reference TEXT NOT NULL DEFAULT '',
		at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TIME HELPERS
// =============================================================================

func formatInstant(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseInstant(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// dayBounds returns the UTC instants covering one operational day, as stored
// strings. RFC3339 UTC strings compare lexicographically.
func (s *Store) dayBounds(d quota.Date) (string, string) {
	start := time.Date(d.Time().Year(), d.Time().Month(), d.Time().Day(), 0, 0, 0, 0, s.loc)
	return formatInstant(start), formatInstant(start.AddDate(0, 0, 1))
}

// =============================================================================
// OBJECTIVE STORE (quota.ObjectiveStore)
// =============================================================================

const objectiveCols = `id, agency_id, target_count, completed_count, window_days,
	start_date, deadline, complete, allocations, version, created_at`

func (s *Store) Create(ctx context.Context, l *quota.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	alloc, err := json.Marshal(l.Allocations)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO objectives (agency_id, target_count, completed_count, window_days,
			start_date, deadline, complete, allocations, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		int64(l.AgencyID), l.TargetCount, l.CompletedCount, l.WindowDays,
		l.StartDate.String(), l.Deadline.String(), boolToInt(l.Complete),
		string(alloc), formatInstant(l.CreatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = quota.LedgerID(id)
	l.Version = 1
	return nil
}

func (s *Store) Get(ctx context.Context, id quota.LedgerID) (*quota.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(ctx, id)
}

func (s *Store) getLocked(ctx context.Context, id quota.LedgerID) (*quota.Ledger, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+objectiveCols+` FROM objectives WHERE id = ?`, int64(id))
	l, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, quota.ErrLedgerNotFound
	}
	return l, err
}

func (s *Store) Update(ctx context.Context, l *quota.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alloc, err := json.Marshal(l.Allocations)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE objectives
		SET completed_count = ?, complete = ?, allocations = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		l.CompletedCount, boolToInt(l.Complete), string(alloc),
		int64(l.ID), l.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.getLocked(ctx, l.ID); err != nil {
			return err
		}
		return quota.ErrConcurrentModification
	}
	l.Version++
	return nil
}

func (s *Store) List(ctx context.Context) ([]*quota.Ledger, error) {
	return s.queryLedgers(ctx,
		`SELECT `+objectiveCols+` FROM objectives ORDER BY id DESC`)
}

func (s *Store) ListOpen(ctx context.Context) ([]*quota.Ledger, error) {
	return s.queryLedgers(ctx,
		`SELECT `+objectiveCols+` FROM objectives WHERE complete = 0
		 ORDER BY deadline ASC, id ASC`)
}

func (s *Store) ListByAgency(ctx context.Context, agency quota.AgencyID) ([]*quota.Ledger, error) {
	return s.queryLedgers(ctx,
		`SELECT `+objectiveCols+` FROM objectives WHERE agency_id = ? ORDER BY id DESC`,
		int64(agency))
}

func (s *Store) MostUrgentOpen(ctx context.Context, agency quota.AgencyID) (*quota.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+objectiveCols+` FROM objectives
		WHERE agency_id = ? AND complete = 0
		ORDER BY deadline ASC, id ASC LIMIT 1`, int64(agency))
	l, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

// IncrementCompleted applies one creation atomically. The read-modify-write
// runs under the store write lock; an already-complete ledger comes back
// unchanged.
func (s *Store) IncrementCompleted(ctx context.Context, id quota.LedgerID) (*quota.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.getLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Complete {
		return l, nil
	}

	l.ApplyCreation()
	_, err = s.db.ExecContext(ctx, `
		UPDATE objectives
		SET completed_count = ?, complete = ?, version = version + 1
		WHERE id = ?`,
		l.CompletedCount, boolToInt(l.Complete), int64(id))
	if err != nil {
		return nil, err
	}
	l.Version++
	return l, nil
}

func (s *Store) Delete(ctx context.Context, id quota.LedgerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM objectives WHERE id = ?`, int64(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return quota.ErrLedgerNotFound
	}
	return nil
}

func (s *Store) queryLedgers(ctx context.Context, query string, args ...any) ([]*quota.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*quota.Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLedger(row scannable) (*quota.Ledger, error) {
	var (
		l          quota.Ledger
		ledgerID   int64
		agencyID   int64
		start      string
		deadline   string
		complete   int
		allocJSON  string
		createdRaw string
	)
	err := row.Scan(&ledgerID, &agencyID, &l.TargetCount, &l.CompletedCount,
		&l.WindowDays, &start, &deadline, &complete, &allocJSON, &l.Version, &createdRaw)
	if err != nil {
		return nil, err
	}

	l.ID = quota.LedgerID(ledgerID)
	l.AgencyID = quota.AgencyID(agencyID)
	l.Complete = complete != 0
	l.CreatedAt = parseInstant(createdRaw)

	if l.StartDate, err = quota.ParseDate(start); err != nil {
		return nil, fmt.Errorf("objective %d: bad start_date: %w", ledgerID, err)
	}
	if l.Deadline, err = quota.ParseDate(deadline); err != nil {
		return nil, fmt.Errorf("objective %d: bad deadline: %w", ledgerID, err)
	}

	l.Allocations = make(quota.AllocationMap)
	if err := json.Unmarshal([]byte(allocJSON), &l.Allocations); err != nil {
		return nil, fmt.Errorf("objective %d: bad allocation column: %w", ledgerID, err)
	}
	// Stored JSON is never trusted.
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("objective %d: %w", ledgerID, err)
	}
	return &l, nil
}

// =============================================================================
// EVENT SOURCE (quota.EventSource) - profiles are the creation events
// =============================================================================

func (s *Store) CountCreatedOn(ctx context.Context, agency quota.AgencyID, day quota.Date) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := s.dayBounds(day)
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM profiles
		WHERE agency_id = ? AND created_at >= ? AND created_at < ?`,
		int64(agency), from, to).Scan(&count)
	return count, err
}

func (s *Store) CreatedInRange(ctx context.Context, agency quota.AgencyID, from, to quota.Date) ([]quota.CreationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, _ := s.dayBounds(from)
	_, hi := s.dayBounds(to)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agency_id, created_at FROM profiles
		WHERE agency_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at ASC`, int64(agency), lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quota.CreationEvent
	for rows.Next() {
		var (
			ev       quota.CreationEvent
			agencyID int64
			raw      string
		)
		if err := rows.Scan(&ev.ProfileID, &agencyID, &raw); err != nil {
			return nil, err
		}
		ev.AgencyID = quota.AgencyID(agencyID)
		ev.CreatedAt = parseInstant(raw)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// =============================================================================
// DISTRIBUTORS / HOUSES / AGENCIES
// =============================================================================

func (s *Store) SaveDistributor(ctx context.Context, d *betting.Distributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO distributors (name, active, created_at) VALUES (?, ?, ?)`,
		d.Name, boolToInt(d.Active), formatInstant(d.CreatedAt))
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListDistributors(ctx context.Context) ([]betting.Distributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active, created_at FROM distributors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Distributor
	for rows.Next() {
		var (
			d      betting.Distributor
			active int
			raw    string
		)
		if err := rows.Scan(&d.ID, &d.Name, &active, &raw); err != nil {
			return nil, err
		}
		d.Active = active != 0
		d.CreatedAt = parseInstant(raw)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) SaveHouse(ctx context.Context, h *betting.House) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO houses (distributor_id, name, profile_count, active_capital,
			total_capital, min_profiles, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.DistributorID, h.Name, h.ProfileCount, h.ActiveCapital.String(),
		h.TotalCapital.String(), h.MinProfiles, boolToInt(h.Active))
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListHouses(ctx context.Context, distributorID int64) ([]betting.House, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, distributor_id, name, profile_count, active_capital,
		total_capital, min_profiles, active FROM houses`
	var args []any
	if distributorID != 0 {
		query += ` WHERE distributor_id = ?`
		args = append(args, distributorID)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.House
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHouse(row scannable) (betting.House, error) {
	var (
		h             betting.House
		activeCapital string
		totalCapital  string
		active        int
	)
	err := row.Scan(&h.ID, &h.DistributorID, &h.Name, &h.ProfileCount,
		&activeCapital, &totalCapital, &h.MinProfiles, &active)
	if err != nil {
		return h, err
	}
	h.ActiveCapital = mustDecimal(activeCapital)
	h.TotalCapital = mustDecimal(totalCapital)
	h.Active = active != 0
	return h, nil
}

func (s *Store) SaveAgency(ctx context.Context, a *betting.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO agencies (name, manager, contact, house_id, rake_percent,
			min_profiles, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Manager, a.Contact, a.HouseID, a.RakePercent.String(),
		a.MinProfiles, boolToInt(a.Active), formatInstant(a.CreatedAt))
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetAgency(ctx context.Context, id int64) (*betting.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, manager, contact, house_id, rake_percent, min_profiles,
			active, created_at
		FROM agencies WHERE id = ?`, id)
	a, err := scanAgency(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAgencies(ctx context.Context) ([]betting.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, manager, contact, house_id, rake_percent, min_profiles,
			active, created_at
		FROM agencies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAgency(row scannable) (betting.Agency, error) {
	var (
		a      betting.Agency
		rake   string
		active int
		raw    string
	)
	err := row.Scan(&a.ID, &a.Name, &a.Manager, &a.Contact, &a.HouseID,
		&rake, &a.MinProfiles, &active, &raw)
	if err != nil {
		return a, err
	}
	a.RakePercent = mustDecimal(rake)
	a.Active = active != 0
	a.CreatedAt = parseInstant(raw)
	return a, nil
}

// =============================================================================
// PROFILES
// =============================================================================

func (s *Store) SaveProfile(ctx context.Context, p *betting.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, agency_id, house_id, username, player_type,
			account_level, weekly_target, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AgencyID, p.HouseID, p.Username, p.PlayerType,
		p.AccountLevel, p.WeeklyTarget, boolToInt(p.Active), formatInstant(p.CreatedAt))
	return err
}

func (s *Store) ListProfiles(ctx context.Context, agencyID int64) ([]betting.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, agency_id, house_id, username, player_type, account_level,
		weekly_target, active, created_at FROM profiles`
	var args []any
	if agencyID != 0 {
		query += ` WHERE agency_id = ?`
		args = append(args, agencyID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProfile(ctx context.Context, id string) (*betting.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, agency_id, house_id, username, player_type, account_level,
			weekly_target, active, created_at
		FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProfile(row scannable) (betting.Profile, error) {
	var (
		p      betting.Profile
		active int
		raw    string
	)
	err := row.Scan(&p.ID, &p.AgencyID, &p.HouseID, &p.Username, &p.PlayerType,
		&p.AccountLevel, &p.WeeklyTarget, &active, &raw)
	if err != nil {
		return p, err
	}
	p.Active = active != 0
	p.CreatedAt = parseInstant(raw)
	return p, nil
}

// =============================================================================
// OPERATIONS (BETS)
// =============================================================================

const operationCols = `id, profile_id, stake, odds, status, payout, profit_loss,
	market, recorded_at`

func (s *Store) SaveOperation(ctx context.Context, o *betting.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.RecordedAt.IsZero() {
		o.RecordedAt = time.Now()
	}
	if o.Status == "" {
		o.Status = betting.OpPending
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO operations (profile_id, stake, odds, status, payout,
			profit_loss, market, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ProfileID, o.Stake.String(), o.Odds.String(), string(o.Status),
		o.Payout.String(), o.ProfitLoss.String(), o.Market, formatInstant(o.RecordedAt))
	if err != nil {
		return err
	}
	o.ID, err = res.LastInsertId()
	return err
}

// UpdateOperation persists settlement fields.
func (s *Store) UpdateOperation(ctx context.Context, o *betting.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE operations SET status = ?, payout = ?, profit_loss = ? WHERE id = ?`,
		string(o.Status), o.Payout.String(), o.ProfitLoss.String(), o.ID)
	return err
}

func (s *Store) GetOperation(ctx context.Context, id int64) (*betting.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+operationCols+` FROM operations WHERE id = ?`, id)
	o, err := scanOperation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOperations(ctx context.Context, profileID string) ([]betting.Operation, error) {
	query := `SELECT ` + operationCols + ` FROM operations`
	var args []any
	if profileID != "" {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY recorded_at DESC`
	return s.queryOperations(ctx, query, args...)
}

// ListOperationsOn returns the operations recorded on one operational day.
func (s *Store) ListOperationsOn(ctx context.Context, day quota.Date) ([]betting.Operation, error) {
	from, to := s.dayBounds(day)
	return s.queryOperations(ctx, `
		SELECT `+operationCols+` FROM operations
		WHERE recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at ASC`, from, to)
}

func (s *Store) queryOperations(ctx context.Context, query string, args ...any) ([]betting.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOperation(row scannable) (betting.Operation, error) {
	var (
		o      betting.Operation
		stake  string
		odds   string
		status string
		payout string
		pl     string
		raw    string
	)
	err := row.Scan(&o.ID, &o.ProfileID, &stake, &odds, &status, &payout, &pl,
		&o.Market, &raw)
	if err != nil {
		return o, err
	}
	o.Stake = mustDecimal(stake)
	o.Odds = mustDecimal(odds)
	o.Status = betting.OperationStatus(status)
	o.Payout = mustDecimal(payout)
	o.ProfitLoss = mustDecimal(pl)
	o.RecordedAt = parseInstant(raw)
	return o, nil
}

// =============================================================================
// FINANCIAL TRANSACTIONS
// =============================================================================

func (s *Store) SaveTransaction(ctx context.Context, t *betting.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.At.IsZero() {
		t.At = time.Now()
	}
	if t.Status == "" {
		t.Status = betting.TxPending
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (profile_id, kind, amount, method, status, reference, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ProfileID, string(t.Kind), t.Amount.String(), t.Method,
		string(t.Status), t.Reference, formatInstant(t.At))
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListTransactions(ctx context.Context, profileID string) ([]betting.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, profile_id, kind, amount, method, status, reference, at
		FROM transactions`
	var args []any
	if profileID != "" {
		query += ` WHERE profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Transaction
	for rows.Next() {
		var (
			t      betting.Transaction
			kind   string
			amount string
			status string
			raw    string
		)
		if err := rows.Scan(&t.ID, &t.ProfileID, &kind, &amount, &t.Method,
			&status, &t.Reference, &raw); err != nil {
			return nil, err
		}
		t.Kind = betting.TransactionKind(kind)
		t.Amount = mustDecimal(amount)
		t.Status = betting.TransactionStatus(status)
		t.At = parseInstant(raw)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
