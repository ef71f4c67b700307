/*
Package ledger provides the card transaction ledger and balance-snapshot engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking prepaid
  card balances: an append-only log of signed balance-affecting events, a
  point-in-time balance reconstructor, daily snapshot aggregates, and the
  monthly/annual summary engine built on top of them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: An immutable ledger record of one balance change
  - Snapshot: A precomputed daily aggregate for one card
  - Card: The prepaid instrument whose balance is tracked
  - Kind: Open category tag for entries (recharge, payment, ...)

DESIGN PRINCIPLES:
  1. Immutability: Entries are never modified, corrections are new entries
  2. Precision: Uses decimal.Decimal to avoid floating-point drift
  3. Derivability: Snapshots are caches; the ledger is the source of truth
  4. Auditability: Every entry carries previous/new balance and a reference

SEE ALSO:
  - store.go: Persistence interfaces
  - recorder.go: The only writer of entries
  - snapshot.go: Batch snapshot generation
*/
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CardID string
type EntryID string

// Kind categorizes a ledger entry. It is an open set: collaborators
// (liquidation settlement, card management) may define new kinds freely.
type Kind string

const (
	KindRecharge   Kind = "RECHARGE"   // Funds loaded onto the card
	KindRefund     Kind = "REFUND"     // Money returned to the card
	KindPayment    Kind = "PAYMENT"    // Purchase/discount against the card
	KindAdjustment Kind = "ADJUSTMENT" // Manual admin correction
)

// =============================================================================
// MONEY
// =============================================================================

// Tolerance is the rounding tolerance for balance invariants: one cent,
// the smallest currency unit.
var Tolerance = decimal.New(1, -2)

// MustParseDecimal parses a decimal string, panicking on failure. It is
// only for values read back from storage, which were written by us: a
// malformed amount there is corruption, and surfacing it beats silently
// reading it as zero.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("malformed stored decimal %q: %v", s, err))
	}
	return d
}

// =============================================================================
// ENTRY - Immutable record of one balance change
// =============================================================================

// Entry is one signed balance-affecting event for a card.
//
// INVARIANTS:
//   - Append-only: once written an entry is never updated or deleted.
//   - NewBalance == PreviousBalance + Amount (within Tolerance).
//   - Amount is never zero. Positive = credit, negative = debit.
type Entry struct {
	ID              EntryID
	CardID          CardID
	Kind            Kind
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal

	// OperationDate is the business timestamp the event is attributed to.
	// It may be backdated for corrections and migrations.
	OperationDate time.Time

	// RecordedAt is the system timestamp of the durable write.
	RecordedAt time.Time

	// Optional pointer to the external entity that caused the event,
	// e.g. a per-diem liquidation.
	ReferenceKind string
	ReferenceID   string

	Notes string
}

// Validate checks the entry invariant: NewBalance = PreviousBalance + Amount.
func (e Entry) Validate() error {
	if e.Amount.IsZero() {
		return ErrZeroAmount
	}
	drift := e.NewBalance.Sub(e.PreviousBalance.Add(e.Amount)).Abs()
	if drift.GreaterThan(Tolerance) {
		return fmt.Errorf("entry %s: new balance %s != previous %s + amount %s: %w",
			e.ID, e.NewBalance, e.PreviousBalance, e.Amount, ErrBalanceMismatch)
	}
	return nil
}

// IsCredit reports whether the entry increases the card balance.
func (e Entry) IsCredit() bool { return e.Amount.IsPositive() }

// =============================================================================
// SNAPSHOT - Precomputed daily aggregate
// =============================================================================

// Snapshot is a daily balance aggregate for one card. It is derived data:
// it can always be rebuilt from the entries of that card/day and is never
// authoritative over the ledger.
type Snapshot struct {
	CardID       CardID
	SnapshotDate time.Time // Midnight UTC of the day covered

	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal

	// Both totals are non-negative.
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal

	TransactionCount int
}

// Validate checks Closing = Opening + Credits - Debits within Tolerance.
func (s Snapshot) Validate() error {
	if s.TotalCredits.IsNegative() || s.TotalDebits.IsNegative() || s.TransactionCount < 0 {
		return fmt.Errorf("snapshot %s/%s: negative totals: %w",
			s.CardID, s.SnapshotDate.Format(DateLayout), ErrBalanceMismatch)
	}
	want := s.OpeningBalance.Add(s.TotalCredits).Sub(s.TotalDebits)
	if s.ClosingBalance.Sub(want).Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("snapshot %s/%s: closing %s != opening %s + credits %s - debits %s: %w",
			s.CardID, s.SnapshotDate.Format(DateLayout),
			s.ClosingBalance, s.OpeningBalance, s.TotalCredits, s.TotalDebits, ErrBalanceMismatch)
	}
	return nil
}

// =============================================================================
// CARD - The tracked prepaid instrument
// =============================================================================

// Card is owned by the external card-management collaborator; the ledger
// references it by id. Balance is a denormalized cache of the latest entry's
// NewBalance, written only by the Recorder.
type Card struct {
	ID        CardID
	Label     string
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
}

// =============================================================================
// TIME HELPERS
// =============================================================================

// DateLayout is the storage format for snapshot dates.
const DateLayout = "2006-01-02"

// DayOf truncates a timestamp to midnight UTC of its calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return DayOf(t).Add(24*time.Hour - time.Nanosecond)
}

// MonthRange returns the first and last day (midnight UTC) of a month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
