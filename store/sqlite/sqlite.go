/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the ledger persistence surface (EntryStore, SnapshotStore,
  CardStore, TxStore) using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements exist for the transactions table.
  Corrections are reversal entries. Snapshots are the only deletable data.

KEY TABLES:
  cards:             Card registry with the cached current balance
  transactions:      Immutable ledger of all balance changes
  balance_snapshots: Precomputed daily aggregates, keyed (card_id, date)

INDEXES:
  - idx_transactions_card_date: range scans and balance reconstruction (hot path)
  - idx_transactions_card_kind: kind-filtered history queries
  - balance_snapshots primary key (card_id, snapshot_date): monthly rollups

DECIMAL HANDLING:
  Currency values are stored as decimal strings and aggregated in Go with
  decimal.Decimal. SQLite's SUM would coerce to float and introduce drift.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/FlameXS01/Viajex-sub000/ledger"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent (each new
	// connection would otherwise see a fresh empty database) and avoids
	// SQLITE_BUSY under write contention.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Cards (registry + cached current balance)
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		balance TEXT NOT NULL DEFAULT '0',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Transactions (append-only ledger)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		previous_balance TEXT NOT NULL,
		new_balance TEXT NOT NULL,
		operation_date TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		reference_kind TEXT,
		reference_id TEXT,
		notes TEXT
	);

	-- Range scans and balance reconstruction (hot path)
	CREATE INDEX IF NOT EXISTS idx_transactions_card_date
		ON transactions(card_id, operation_date DESC);

	-- Kind-filtered history queries
	CREATE INDEX IF NOT EXISTS idx_transactions_card_kind
		ON transactions(card_id, kind);

	-- External reference lookups (liquidations, recharge orders)
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_id) WHERE reference_id IS NOT NULL;

	-- Daily snapshots (derived data, safely recomputable)
	CREATE TABLE IF NOT EXISTS balance_snapshots (
		card_id TEXT NOT NULL,
		snapshot_date TEXT NOT NULL,
		opening_balance TEXT NOT NULL,
		closing_balance TEXT NOT NULL,
		total_credits TEXT NOT NULL,
		total_debits TEXT NOT NULL,
		transaction_count INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (card_id, snapshot_date)
	);

	-- Retention cleanup scans by date alone
	CREATE INDEX IF NOT EXISTS idx_snapshots_date
		ON balance_snapshots(snapshot_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is the subset of *sql.DB and *sql.Tx the unexported query paths
// run on. Exported methods lock and pass s.db; txStore passes its open
// transaction, so callbacks inside WithTx never re-acquire the mutex and
// always observe the transaction's uncommitted writes.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ENTRY STORE (ledger.EntryStore interface)
// =============================================================================

// Append adds an entry to the ledger.
func (s *Store) Append(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendEntry(ctx, s.db, e)
}

func (s *Store) appendEntry(ctx context.Context, db dbtx, e ledger.Entry) error {
	query := `
		INSERT INTO transactions
		(id, card_id, kind, amount, previous_balance, new_balance,
		 operation_date, recorded_at, reference_kind, reference_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.CardID,
		e.Kind,
		e.Amount.String(),
		e.PreviousBalance.String(),
		e.NewBalance.String(),
		e.OperationDate.UTC().Format(time.RFC3339),
		e.RecordedAt.UTC().Format(time.RFC3339),
		nullString(e.ReferenceKind),
		nullString(e.ReferenceID),
		nullString(e.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

const entryColumns = `id, card_id, kind, amount, previous_balance, new_balance,
	operation_date, recorded_at, reference_kind, reference_id, notes`

// filterClause builds the WHERE clause shared by Query, Count and Summarize.
func filterClause(f ledger.EntryFilter) (string, []any) {
	conds := []string{"card_id = ?"}
	args := []any{f.CardID}

	if f.From != nil {
		conds = append(conds, "operation_date >= ?")
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		conds = append(conds, "operation_date <= ?")
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if f.Kind != nil {
		conds = append(conds, "kind = ?")
		args = append(args, *f.Kind)
	}
	return strings.Join(conds, " AND "), args
}

// Query returns entries matching the filter, ordered by operation date.
func (s *Store) Query(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryFiltered(ctx, s.db, f)
}

func (s *Store) queryFiltered(ctx context.Context, db dbtx, f ledger.EntryFilter) ([]ledger.Entry, error) {
	where, args := filterClause(f)
	order := "operation_date ASC, recorded_at ASC"
	if f.Descending {
		order = "operation_date DESC, recorded_at DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY %s",
		entryColumns, where, order)
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	return s.queryEntries(ctx, db, query, args...)
}

// Count returns the number of matching entries. Limit and Offset are ignored.
func (s *Store) Count(ctx context.Context, f ledger.EntryFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countEntries(ctx, s.db, f)
}

func (s *Store) countEntries(ctx context.Context, db dbtx, f ledger.EntryFilter) (int, error) {
	where, args := filterClause(f)
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+where, args...,
	).Scan(&count)
	return count, err
}

// Summarize aggregates the matching entries by sign of amount. The sums run
// in Go over decimal values; SQLite SUM over the text column would go
// through float and drift.
func (s *Store) Summarize(ctx context.Context, f ledger.EntryFilter) (ledger.EntrySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.summarize(ctx, s.db, f)
}

func (s *Store) summarize(ctx context.Context, db dbtx, f ledger.EntryFilter) (ledger.EntrySummary, error) {
	where, args := filterClause(f)
	rows, err := db.QueryContext(ctx,
		"SELECT amount FROM transactions WHERE "+where, args...)
	if err != nil {
		return ledger.EntrySummary{}, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	defer rows.Close()

	summary := ledger.EntrySummary{
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
	}
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return ledger.EntrySummary{}, err
		}
		amount := ledger.MustParseDecimal(amountStr)
		if amount.IsPositive() {
			summary.TotalCredits = summary.TotalCredits.Add(amount)
		} else {
			summary.TotalDebits = summary.TotalDebits.Add(amount.Neg())
		}
		summary.TransactionCount++
	}
	return summary, rows.Err()
}

// LastOnOrBefore returns the chronologically last entry at or before `at`,
// or nil when the card has no history that old.
func (s *Store) LastOnOrBefore(ctx context.Context, cardID ledger.CardID, at time.Time) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastOnOrBefore(ctx, s.db, cardID, at)
}

func (s *Store) lastOnOrBefore(ctx context.Context, db dbtx, cardID ledger.CardID, at time.Time) (*ledger.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE card_id = ? AND operation_date <= ?
		ORDER BY operation_date DESC, recorded_at DESC
		LIMIT 1
	`, entryColumns)

	entries, err := s.queryEntries(ctx, db, query, cardID, at.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *Store) queryEntries(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e             ledger.Entry
		amount        string
		previous      string
		newBalance    string
		operationDate string
		recordedAt    string
		referenceKind sql.NullString
		referenceID   sql.NullString
		notes         sql.NullString
	)

	err := rows.Scan(
		&e.ID, &e.CardID, &e.Kind, &amount, &previous, &newBalance,
		&operationDate, &recordedAt, &referenceKind, &referenceID, &notes,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan transaction: %w", err)
	}

	e.Amount = ledger.MustParseDecimal(amount)
	e.PreviousBalance = ledger.MustParseDecimal(previous)
	e.NewBalance = ledger.MustParseDecimal(newBalance)
	e.OperationDate, _ = time.Parse(time.RFC3339, operationDate)
	e.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
	e.ReferenceKind = referenceKind.String
	e.ReferenceID = referenceID.String
	e.Notes = notes.String

	return e, nil
}

// =============================================================================
// SNAPSHOT STORE (ledger.SnapshotStore interface)
// =============================================================================

// UpsertSnapshot creates or overwrites the snapshot for (card, day).
func (s *Store) UpsertSnapshot(ctx context.Context, snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsertSnapshot(ctx, s.db, snap)
}

func (s *Store) upsertSnapshot(ctx context.Context, db dbtx, snap ledger.Snapshot) error {
	query := `
		INSERT INTO balance_snapshots
		(card_id, snapshot_date, opening_balance, closing_balance,
		 total_credits, total_debits, transaction_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id, snapshot_date) DO UPDATE SET
			opening_balance = excluded.opening_balance,
			closing_balance = excluded.closing_balance,
			total_credits = excluded.total_credits,
			total_debits = excluded.total_debits,
			transaction_count = excluded.transaction_count,
			created_at = excluded.created_at
	`

	_, err := db.ExecContext(ctx, query,
		snap.CardID,
		ledger.DayOf(snap.SnapshotDate).Format(ledger.DateLayout),
		snap.OpeningBalance.String(),
		snap.ClosingBalance.String(),
		snap.TotalCredits.String(),
		snap.TotalDebits.String(),
		snap.TransactionCount,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetSnapshot retrieves the snapshot for a card and day, or nil.
func (s *Store) GetSnapshot(ctx context.Context, cardID ledger.CardID, day time.Time) (*ledger.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getSnapshot(ctx, s.db, cardID, day)
}

func (s *Store) getSnapshot(ctx context.Context, db dbtx, cardID ledger.CardID, day time.Time) (*ledger.Snapshot, error) {
	row := db.QueryRowContext(ctx, `
		SELECT card_id, snapshot_date, opening_balance, closing_balance,
		       total_credits, total_debits, transaction_count
		FROM balance_snapshots
		WHERE card_id = ? AND snapshot_date = ?`,
		cardID, ledger.DayOf(day).Format(ledger.DateLayout),
	)

	snap, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SnapshotsInRange returns a card's snapshots within [from, to] by date.
func (s *Store) SnapshotsInRange(ctx context.Context, cardID ledger.CardID, from, to time.Time) ([]ledger.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotsInRange(ctx, s.db, cardID, from, to)
}

func (s *Store) snapshotsInRange(ctx context.Context, db dbtx, cardID ledger.CardID, from, to time.Time) ([]ledger.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT card_id, snapshot_date, opening_balance, closing_balance,
		       total_credits, total_debits, transaction_count
		FROM balance_snapshots
		WHERE card_id = ? AND snapshot_date >= ? AND snapshot_date <= ?
		ORDER BY snapshot_date ASC`,
		cardID,
		ledger.DayOf(from).Format(ledger.DateLayout),
		ledger.DayOf(to).Format(ledger.DateLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []ledger.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// DeleteSnapshotsBefore removes snapshots older than the cutoff day and
// reports how many were deleted.
func (s *Store) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteSnapshotsBefore(ctx, s.db, cutoff)
}

func (s *Store) deleteSnapshotsBefore(ctx context.Context, db dbtx, cutoff time.Time) (int, error) {
	res, err := db.ExecContext(ctx,
		"DELETE FROM balance_snapshots WHERE snapshot_date < ?",
		ledger.DayOf(cutoff).Format(ledger.DateLayout),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanSnapshot(scan func(...any) error) (*ledger.Snapshot, error) {
	var (
		snap    ledger.Snapshot
		date    string
		opening string
		closing string
		credits string
		debits  string
	)

	err := scan(&snap.CardID, &date, &opening, &closing, &credits, &debits, &snap.TransactionCount)
	if err != nil {
		return nil, err
	}

	snap.SnapshotDate, _ = time.Parse(ledger.DateLayout, date)
	snap.OpeningBalance = ledger.MustParseDecimal(opening)
	snap.ClosingBalance = ledger.MustParseDecimal(closing)
	snap.TotalCredits = ledger.MustParseDecimal(credits)
	snap.TotalDebits = ledger.MustParseDecimal(debits)
	return &snap, nil
}

// =============================================================================
// CARD STORE (ledger.CardStore interface)
// =============================================================================

// GetCard retrieves a card by id, or nil when the card does not exist.
func (s *Store) GetCard(ctx context.Context, id ledger.CardID) (*ledger.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getCard(ctx, s.db, id)
}

func (s *Store) getCard(ctx context.Context, db dbtx, id ledger.CardID) (*ledger.Card, error) {
	var (
		c         ledger.Card
		balance   string
		createdAt string
	)

	err := db.QueryRowContext(ctx,
		"SELECT id, label, balance, active, created_at FROM cards WHERE id = ?", id,
	).Scan(&c.ID, &c.Label, &balance, &c.Active, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Balance = ledger.MustParseDecimal(balance)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// ListCards returns all cards ordered by id.
func (s *Store) ListCards(ctx context.Context) ([]ledger.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listCards(ctx, s.db)
}

func (s *Store) listCards(ctx context.Context, db dbtx) ([]ledger.Card, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, label, balance, active, created_at FROM cards ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []ledger.Card
	for rows.Next() {
		var (
			c         ledger.Card
			balance   string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Label, &balance, &c.Active, &createdAt); err != nil {
			return nil, err
		}
		c.Balance = ledger.MustParseDecimal(balance)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// SaveCard inserts or updates a card record. The balance of an existing
// card is not touched; only the recorder moves balances.
func (s *Store) SaveCard(ctx context.Context, c ledger.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveCard(ctx, s.db, c)
}

func (s *Store) saveCard(ctx context.Context, db dbtx, c ledger.Card) error {
	query := `
		INSERT INTO cards (id, label, balance, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			active = excluded.active
	`

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		c.ID, c.Label, c.Balance.String(), c.Active,
		createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

// UpdateCardBalance sets the cached current balance.
func (s *Store) UpdateCardBalance(ctx context.Context, id ledger.CardID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCardBalance(ctx, s.db, id, balance)
}

func (s *Store) updateCardBalance(ctx context.Context, db dbtx, id ledger.CardID, balance decimal.Decimal) error {
	res, err := db.ExecContext(ctx,
		"UPDATE cards SET balance = ? WHERE id = ?", balance.String(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrCardNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txStore{tx: sqlTx, parent: s}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation on the open transaction: reads observe the
// transaction's uncommitted writes and nothing re-acquires the parent's
// mutex, which WithTx already holds.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) Append(ctx context.Context, e ledger.Entry) error {
	return ts.parent.appendEntry(ctx, ts.tx, e)
}

func (ts *txStore) Query(ctx context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	return ts.parent.queryFiltered(ctx, ts.tx, f)
}

func (ts *txStore) Count(ctx context.Context, f ledger.EntryFilter) (int, error) {
	return ts.parent.countEntries(ctx, ts.tx, f)
}

func (ts *txStore) Summarize(ctx context.Context, f ledger.EntryFilter) (ledger.EntrySummary, error) {
	return ts.parent.summarize(ctx, ts.tx, f)
}

func (ts *txStore) LastOnOrBefore(ctx context.Context, cardID ledger.CardID, at time.Time) (*ledger.Entry, error) {
	return ts.parent.lastOnOrBefore(ctx, ts.tx, cardID, at)
}

func (ts *txStore) UpsertSnapshot(ctx context.Context, snap ledger.Snapshot) error {
	return ts.parent.upsertSnapshot(ctx, ts.tx, snap)
}

func (ts *txStore) GetSnapshot(ctx context.Context, cardID ledger.CardID, day time.Time) (*ledger.Snapshot, error) {
	return ts.parent.getSnapshot(ctx, ts.tx, cardID, day)
}

func (ts *txStore) SnapshotsInRange(ctx context.Context, cardID ledger.CardID, from, to time.Time) ([]ledger.Snapshot, error) {
	return ts.parent.snapshotsInRange(ctx, ts.tx, cardID, from, to)
}

func (ts *txStore) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return ts.parent.deleteSnapshotsBefore(ctx, ts.tx, cutoff)
}

func (ts *txStore) GetCard(ctx context.Context, id ledger.CardID) (*ledger.Card, error) {
	return ts.parent.getCard(ctx, ts.tx, id)
}

func (ts *txStore) ListCards(ctx context.Context) ([]ledger.Card, error) {
	return ts.parent.listCards(ctx, ts.tx)
}

func (ts *txStore) SaveCard(ctx context.Context, c ledger.Card) error {
	return ts.parent.saveCard(ctx, ts.tx, c)
}

func (ts *txStore) UpdateCardBalance(ctx context.Context, id ledger.CardID, balance decimal.Decimal) error {
	return ts.parent.updateCardBalance(ctx, ts.tx, id, balance)
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
