/*
store.go - Persistence interfaces for entries, snapshots and cards

PURPOSE:
  Defines the interface between the engine and the database. The core logic
  depends only on these interfaces; SQLite and in-memory implementations
  are provided elsewhere.

KEY INTERFACES:
  EntryStore:    Append-only transaction persistence and range queries
  SnapshotStore: Upsertable daily aggregates, purgeable by age
  CardStore:     Card lookup and the cached-balance update
  TxStore:       Adds atomic multi-write support (append + balance update)

APPEND-ONLY CONTRACT:
  EntryStore has no update or delete. Corrections are new entries.
  Snapshots, by contrast, are disposable derived data: they may be
  overwritten by the generator and deleted by retention cleanup.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite store
  - ledger/store/memory.go: In-memory store for tests

SEE ALSO:
  - recorder.go: The only caller of Append
  - snapshot.go: The only caller of UpsertSnapshot/DeleteSnapshotsBefore
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY STORE - Append-only ledger persistence
// =============================================================================

// EntryFilter selects entries of one card, optionally narrowed by an
// inclusive date range and a kind. Limit/Offset apply only to Query;
// Count and Summarize always cover the whole filtered set.
type EntryFilter struct {
	CardID CardID
	From   *time.Time
	To     *time.Time
	Kind   *Kind

	Limit  int
	Offset int

	// Descending orders by OperationDate descending (most recent first).
	// The default is chronological order.
	Descending bool
}

// EntrySummary aggregates a filtered entry set by sign of Amount.
type EntrySummary struct {
	TotalCredits     decimal.Decimal
	TotalDebits      decimal.Decimal
	TransactionCount int
}

// NetMovement is TotalCredits - TotalDebits.
func (s EntrySummary) NetMovement() decimal.Decimal {
	return s.TotalCredits.Sub(s.TotalDebits)
}

// EntryStore handles persistence of ledger entries.
// IMPORTANT: append-only. No Update, No Delete. Ever.
type EntryStore interface {
	// Append persists one entry. This is the ONLY write operation.
	Append(ctx context.Context, e Entry) error

	// Query returns entries matching the filter. Ordered by OperationDate
	// (ties broken by RecordedAt), direction per filter.
	Query(ctx context.Context, f EntryFilter) ([]Entry, error)

	// Count returns the number of entries matching the filter,
	// ignoring Limit/Offset.
	Count(ctx context.Context, f EntryFilter) (int, error)

	// Summarize aggregates the filtered set by sign of Amount,
	// ignoring Limit/Offset.
	Summarize(ctx context.Context, f EntryFilter) (EntrySummary, error)

	// LastOnOrBefore returns the chronologically last entry for the card
	// with OperationDate <= at, or nil if none exists.
	LastOnOrBefore(ctx context.Context, cardID CardID, at time.Time) (*Entry, error)
}

// =============================================================================
// SNAPSHOT STORE - Derived daily aggregates
// =============================================================================

type SnapshotStore interface {
	// UpsertSnapshot creates or overwrites the snapshot for
	// (CardID, SnapshotDate).
	UpsertSnapshot(ctx context.Context, s Snapshot) error

	// GetSnapshot returns the snapshot for a card and day, or nil.
	GetSnapshot(ctx context.Context, cardID CardID, day time.Time) (*Snapshot, error)

	// SnapshotsInRange returns snapshots for a card with
	// from <= SnapshotDate <= to, ordered by date.
	SnapshotsInRange(ctx context.Context, cardID CardID, from, to time.Time) ([]Snapshot, error)

	// DeleteSnapshotsBefore removes every snapshot with SnapshotDate < cutoff
	// and returns how many were deleted. Entries are never touched.
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// =============================================================================
// CARD STORE - Card registry and the cached balance
// =============================================================================

type CardStore interface {
	// GetCard returns the card or nil if it does not exist.
	GetCard(ctx context.Context, id CardID) (*Card, error)

	// ListCards returns all known cards.
	ListCards(ctx context.Context) ([]Card, error)

	// SaveCard inserts or updates a card record.
	SaveCard(ctx context.Context, c Card) error

	// UpdateCardBalance sets the cached current balance. Only the Recorder
	// may call this, and only after the ledger entry is durably appended.
	UpdateCardBalance(ctx context.Context, id CardID, balance decimal.Decimal) error
}

// =============================================================================
// COMBINED STORE
// =============================================================================

// Store is the full persistence surface the engine depends on.
type Store interface {
	EntryStore
	SnapshotStore
	CardStore
}

// TxStore wraps Store with transaction support. Use this when a write must
// be atomic across tables (appending an entry and updating the card balance).
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
