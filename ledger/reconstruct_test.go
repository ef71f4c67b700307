package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameXS01/Viajex-sub000/ledger"
)

// recordAt appends an entry with a backdated operation date.
func recordAt(t *testing.T, r *ledger.Recorder, cardID string, kind ledger.Kind, amount string, at time.Time) *ledger.Entry {
	entry, err := r.Record(context.Background(), ledger.RecordInput{
		CardID:        ledger.CardID(cardID),
		Kind:          kind,
		Amount:        dec(amount),
		OperationDate: at,
	})
	require.NoError(t, err)
	return entry
}

func TestBalanceAt_UsesLastEntryOnOrBefore(t *testing.T) {
	// GIVEN: Recharge of 100 on day -5, payment of 30 on day -2
	// WHEN: Asking for the balance between and after the entries
	// THEN: The NewBalance of the chronologically last entry <= T wins

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	recorder := ledger.NewRecorder(store)
	rc := ledger.NewReconstructor(store)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	recordAt(t, recorder, "card-1", ledger.KindRecharge, "100", now.AddDate(0, 0, -5))
	recordAt(t, recorder, "card-1", ledger.KindPayment, "-30", now.AddDate(0, 0, -2))

	// Between the two entries
	mid, err := rc.BalanceAt(ctx, "card-1", now.AddDate(0, 0, -3))
	require.NoError(t, err)
	assert.True(t, mid.Amount.Equal(dec("100")))
	assert.Equal(t, ledger.SourceLedger, mid.Source)
	assert.True(t, mid.Exact())

	// After both
	after, err := rc.BalanceAt(ctx, "card-1", now)
	require.NoError(t, err)
	assert.True(t, after.Amount.Equal(dec("70")))
	assert.Equal(t, ledger.SourceLedger, after.Source)

	// At the exact instant of the second entry (inclusive boundary)
	at, err := rc.BalanceAt(ctx, "card-1", now.AddDate(0, 0, -2))
	require.NoError(t, err)
	assert.True(t, at.Amount.Equal(dec("70")))
}

func TestBalanceAt_FutureTimestamp_Rejected(t *testing.T) {
	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	rc := ledger.NewReconstructor(store)

	_, err := rc.BalanceAt(context.Background(), "card-1", time.Now().UTC().Add(time.Hour))

	assert.ErrorIs(t, err, ledger.ErrFutureTimestamp)
	assert.True(t, ledger.IsClientError(err))
}

func TestBalanceAt_UnknownCard_Rejected(t *testing.T) {
	store := newTestStore(t)
	rc := ledger.NewReconstructor(store)

	_, err := rc.BalanceAt(context.Background(), "ghost", time.Now().UTC())

	assert.ErrorIs(t, err, ledger.ErrCardNotFound)
}

func TestBalanceAt_NoHistory_FallsBackToCardBalance(t *testing.T) {
	// GIVEN: A pre-ledger card with a stored balance but no entries
	// WHEN: Asking for any past balance
	// THEN: The cached balance is returned, tagged as an approximation

	store := newTestStore(t)
	seedCard(t, store, "legacy", "25.40")
	rc := ledger.NewReconstructor(store)

	b, err := rc.BalanceAt(context.Background(), "legacy", time.Now().UTC().AddDate(-1, 0, 0))
	require.NoError(t, err)

	assert.True(t, b.Amount.Equal(dec("25.40")))
	assert.Equal(t, ledger.SourceCardBalance, b.Source)
	assert.False(t, b.Exact())
}

func TestBalanceAt_BeforeFirstEntry_FallsBackToCardBalance(t *testing.T) {
	// A card WITH history, queried before its first entry, also falls back:
	// nothing in the ledger answers that instant.

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	recorder := ledger.NewRecorder(store)
	rc := ledger.NewReconstructor(store)

	now := time.Now().UTC().Truncate(time.Second)
	recordAt(t, recorder, "card-1", ledger.KindRecharge, "80", now.AddDate(0, 0, -2))

	b, err := rc.BalanceAt(context.Background(), "card-1", now.AddDate(0, 0, -10))
	require.NoError(t, err)

	assert.Equal(t, ledger.SourceCardBalance, b.Source)
	assert.True(t, b.Amount.Equal(dec("80")), "falls back to the current cached balance")
}
