/*
reconstruct.go - Point-in-time balance reconstruction

PURPOSE:
  Answers "what was the balance of card C at time T" by consulting the
  ledger. Pure read, no side effects.

FALLBACK SEMANTICS:
  Cards that pre-date ledger adoption (migrated from a balance-only system)
  may have no entries at or before T. For those the card's currently stored
  balance is returned as a best-effort answer, and the result is explicitly
  tagged with Source = SourceCardBalance so callers never mistake the
  approximation for an exact reconstruction.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECONSTRUCTOR
// =============================================================================

// BalanceSource tells the caller how a reconstructed balance was derived.
type BalanceSource string

const (
	// SourceLedger means the balance is exact: the NewBalance of the
	// chronologically last entry at or before the requested instant.
	SourceLedger BalanceSource = "ledger"

	// SourceCardBalance means no ledger history exists at or before the
	// requested instant and the card's current cached balance was returned
	// as a best-effort approximation.
	SourceCardBalance BalanceSource = "card_balance"
)

// BalanceAt is a reconstructed balance for a card at an instant.
type BalanceAt struct {
	CardID CardID
	AsOf   time.Time
	Amount decimal.Decimal
	Source BalanceSource
}

// Exact reports whether the balance was derived from ledger history.
func (b BalanceAt) Exact() bool { return b.Source == SourceLedger }

// Reconstructor derives balances as of arbitrary past instants.
type Reconstructor struct {
	store Store
}

func NewReconstructor(store Store) *Reconstructor {
	return &Reconstructor{store: store}
}

// BalanceAt returns the balance of the card as of the given instant.
//
// Errors:
//   - ErrFutureTimestamp when at is in the future
//   - ErrCardNotFound for an unknown card
func (rc *Reconstructor) BalanceAt(ctx context.Context, cardID CardID, at time.Time) (*BalanceAt, error) {
	if at.After(time.Now().UTC()) {
		return nil, ErrFutureTimestamp
	}

	card, err := rc.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	last, err := rc.store.LastOnOrBefore(ctx, cardID, at)
	if err != nil {
		return nil, err
	}
	if last != nil {
		return &BalanceAt{
			CardID: cardID,
			AsOf:   at,
			Amount: last.NewBalance,
			Source: SourceLedger,
		}, nil
	}

	// No history at or before the target: pre-ledger card or a card that
	// never transacted. Best-effort answer from the cached balance.
	return &BalanceAt{
		CardID: cardID,
		AsOf:   at,
		Amount: card.Balance,
		Source: SourceCardBalance,
	}, nil
}
