package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameXS01/Viajex-sub000/ledger"
	"github.com/FlameXS01/Viajex-sub000/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedCard(t *testing.T, s ledger.Store, id string, balance string) {
	err := s.SaveCard(context.Background(), ledger.Card{
		ID:        ledger.CardID(id),
		Label:     "card " + id,
		Balance:   dec(balance),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func cardBalance(t *testing.T, s ledger.Store, id string) decimal.Decimal {
	card, err := s.GetCard(context.Background(), ledger.CardID(id))
	require.NoError(t, err)
	require.NotNil(t, card)
	return card.Balance
}

// =============================================================================
// RECORD TESTS
// =============================================================================

func TestRecord_Credit_AppendsEntryAndUpdatesBalance(t *testing.T) {
	// GIVEN: A card with zero balance
	// WHEN: Recording a recharge of 100
	// THEN: An entry with the correct chain is appended and the cached
	//       balance becomes 100

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	entry, err := recorder.Record(ctx, ledger.RecordInput{
		CardID: "card-1",
		Kind:   ledger.KindRecharge,
		Amount: dec("100"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.True(t, entry.PreviousBalance.Equal(dec("0")))
	assert.True(t, entry.NewBalance.Equal(dec("100")))
	assert.True(t, entry.IsCredit())

	assert.True(t, cardBalance(t, store, "card-1").Equal(dec("100")))
}

func TestRecord_Debit_ChainsFromPreviousEntry(t *testing.T) {
	// GIVEN: A card that was recharged with 100
	// WHEN: Recording a payment of 30
	// THEN: The new entry chains previous=100 -> new=70

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	_, err := recorder.Record(ctx, ledger.RecordInput{
		CardID: "card-1", Kind: ledger.KindRecharge, Amount: dec("100"),
	})
	require.NoError(t, err)

	entry, err := recorder.Record(ctx, ledger.RecordInput{
		CardID: "card-1", Kind: ledger.KindPayment, Amount: dec("-30"),
	})
	require.NoError(t, err)

	assert.True(t, entry.PreviousBalance.Equal(dec("100")))
	assert.True(t, entry.NewBalance.Equal(dec("70")))
	assert.False(t, entry.IsCredit())
	assert.True(t, cardBalance(t, store, "card-1").Equal(dec("70")))
}

func TestRecord_ZeroAmount_Rejected(t *testing.T) {
	store := newTestStore(t)
	seedCard(t, store, "card-1", "10")
	recorder := ledger.NewRecorder(store)

	_, err := recorder.Record(context.Background(), ledger.RecordInput{
		CardID: "card-1", Kind: ledger.KindAdjustment, Amount: dec("0"),
	})

	assert.ErrorIs(t, err, ledger.ErrZeroAmount)
}

func TestRecord_UnknownCard_Rejected(t *testing.T) {
	store := newTestStore(t)
	recorder := ledger.NewRecorder(store)

	_, err := recorder.Record(context.Background(), ledger.RecordInput{
		CardID: "ghost", Kind: ledger.KindRecharge, Amount: dec("10"),
	})

	assert.ErrorIs(t, err, ledger.ErrCardNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

func TestRecord_InsufficientBalance_LeavesLedgerUntouched(t *testing.T) {
	// GIVEN: A card with balance 50
	// WHEN: Attempting a debit of 100
	// THEN: The debit is rejected, no entry is written, and the balance
	//       is unchanged

	store := newTestStore(t)
	seedCard(t, store, "card-1", "50")
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	_, err := recorder.Record(ctx, ledger.RecordInput{
		CardID: "card-1", Kind: ledger.KindPayment, Amount: dec("-100"),
	})

	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	var insErr *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, "50", insErr.Available)
	assert.Equal(t, "100", insErr.Requested)

	count, err := store.Count(ctx, ledger.EntryFilter{CardID: "card-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.True(t, cardBalance(t, store, "card-1").Equal(dec("50")))
}

func TestRecord_ExactBalanceDebit_Allowed(t *testing.T) {
	// Debiting the full balance down to exactly zero is valid.

	store := newTestStore(t)
	seedCard(t, store, "card-1", "25.50")
	recorder := ledger.NewRecorder(store)

	entry, err := recorder.Record(context.Background(), ledger.RecordInput{
		CardID: "card-1", Kind: ledger.KindPayment, Amount: dec("-25.50"),
	})

	require.NoError(t, err)
	assert.True(t, entry.NewBalance.IsZero())
}

func TestRecord_Backdating_Allowed(t *testing.T) {
	// GIVEN: A migration entry dated three days ago
	// WHEN: Recording it
	// THEN: The operation date is preserved while RecordedAt is now

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	recorder := ledger.NewRecorder(store)

	past := time.Now().UTC().AddDate(0, 0, -3).Truncate(time.Second)
	entry, err := recorder.Record(context.Background(), ledger.RecordInput{
		CardID:        "card-1",
		Kind:          ledger.KindRecharge,
		Amount:        dec("40"),
		OperationDate: past,
		ReferenceKind: "migration",
		ReferenceID:   "batch-7",
	})
	require.NoError(t, err)

	assert.True(t, entry.OperationDate.Equal(past))
	assert.True(t, entry.RecordedAt.After(past))
	assert.Equal(t, "migration", entry.ReferenceKind)
}

func TestRecord_ConcurrentDebits_NeverOverdraw(t *testing.T) {
	// GIVEN: A card with balance 50
	// WHEN: 20 goroutines each try to debit 10 concurrently
	// THEN: Exactly 5 succeed and the final balance is exactly 0

	store := newTestStore(t)
	seedCard(t, store, "card-1", "50")
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.Record(ctx, ledger.RecordInput{
				CardID: "card-1", Kind: ledger.KindPayment, Amount: dec("-10"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 15, rejected)
	assert.True(t, cardBalance(t, store, "card-1").IsZero())

	count, err := store.Count(ctx, ledger.EntryFilter{CardID: "card-1"})
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRecord_ChainReplay_MatchesCachedBalance(t *testing.T) {
	// Replaying every entry from zero must land on the cached balance.

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	recorder := ledger.NewRecorder(store)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	amounts := []string{"100", "-30", "12.75", "-0.25", "-50"}
	for i, a := range amounts {
		kind := ledger.KindRecharge
		if a[0] == '-' {
			kind = ledger.KindPayment
		}
		_, err := recorder.Record(ctx, ledger.RecordInput{
			CardID:        "card-1",
			Kind:          kind,
			Amount:        dec(a),
			OperationDate: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := store.Query(ctx, ledger.EntryFilter{CardID: "card-1"})
	require.NoError(t, err)
	require.Len(t, entries, len(amounts))

	replayed := decimal.Zero
	for _, e := range entries {
		require.NoError(t, e.Validate())
		assert.True(t, e.PreviousBalance.Equal(replayed), "chain must be gapless")
		replayed = replayed.Add(e.Amount)
	}
	assert.True(t, replayed.Equal(cardBalance(t, store, "card-1")))
}
