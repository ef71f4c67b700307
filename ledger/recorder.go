/*
recorder.go - The single writer of ledger entries

PURPOSE:
  Validates and appends a new ledger entry for a card, atomically updating
  the card's cached current balance in the same storage transaction.

CRITICAL INVARIANTS:
  1. Exactly one entry and one balance update per Record call, or neither.
  2. NewBalance = PreviousBalance + Amount (checked before write).
  3. A debit may never drive the balance negative.
  4. Per-card serialization: two concurrent Record calls for the SAME card
     never interleave their read-modify-write. Different cards proceed in
     parallel.

ORDERING:
  The ledger append and the balance update commit together; the balance is
  never written without the entry. If the process crashes mid-operation the
  ledger remains the recoverable source of truth.

SEE ALSO:
  - store.go: TxStore used for the atomic write
  - reconstruct.go: Read-side counterpart
*/
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDER
// =============================================================================

// RecordInput describes one balance-affecting event to append.
type RecordInput struct {
	CardID CardID
	Kind   Kind

	// Amount is signed: positive = credit, negative = debit. Never zero.
	Amount decimal.Decimal

	// OperationDate defaults to now when zero. Backdating is allowed for
	// corrections and migrations.
	OperationDate time.Time

	ReferenceKind string
	ReferenceID   string
	Notes         string
}

// Recorder is the only component that writes ledger entries and the only
// writer of the card's cached balance.
type Recorder struct {
	store TxStore

	// Per-card locks serialize the read-modify-write on a card's balance.
	mu    sync.Mutex
	locks map[CardID]*sync.Mutex
}

func NewRecorder(store TxStore) *Recorder {
	return &Recorder{
		store: store,
		locks: make(map[CardID]*sync.Mutex),
	}
}

// lockCard acquires the per-card mutex, creating it on first use.
// Returns the unlock function.
func (r *Recorder) lockCard(id CardID) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Record validates the input, appends the entry and updates the card's
// cached balance atomically. Returns the persisted entry.
//
// Errors:
//   - ErrZeroAmount for a zero amount
//   - ErrCardNotFound for an unknown card
//   - *InsufficientBalanceError when a debit exceeds the current balance
//   - storage errors, unmodified
func (r *Recorder) Record(ctx context.Context, in RecordInput) (*Entry, error) {
	if in.Amount.IsZero() {
		return nil, ErrZeroAmount
	}

	unlock := r.lockCard(in.CardID)
	defer unlock()

	card, err := r.store.GetCard(ctx, in.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	previous := card.Balance
	if in.Amount.IsNegative() && in.Amount.Neg().GreaterThan(previous) {
		return nil, &InsufficientBalanceError{
			CardID:    in.CardID,
			Available: previous.String(),
			Requested: in.Amount.Neg().String(),
		}
	}

	now := time.Now().UTC()
	operationDate := in.OperationDate
	if operationDate.IsZero() {
		operationDate = now
	}

	entry := Entry{
		ID:              EntryID(uuid.NewString()),
		CardID:          in.CardID,
		Kind:            in.Kind,
		Amount:          in.Amount,
		PreviousBalance: previous,
		NewBalance:      previous.Add(in.Amount),
		OperationDate:   operationDate.UTC(),
		RecordedAt:      now,
		ReferenceKind:   in.ReferenceKind,
		ReferenceID:     in.ReferenceID,
		Notes:           in.Notes,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	// Ledger append and balance update commit together: no partial writes
	// are visible to readers.
	err = r.store.WithTx(ctx, func(s Store) error {
		if err := s.Append(ctx, entry); err != nil {
			return err
		}
		return s.UpdateCardBalance(ctx, entry.CardID, entry.NewBalance)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}
