package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlameXS01/Viajex-sub000/ledger"
)

// seedHistory records five entries at one-hour intervals and returns the
// base timestamp.
func seedHistory(t *testing.T, r *ledger.Recorder) time.Time {
	base := time.Now().UTC().AddDate(0, 0, -1).Truncate(time.Second)
	recordAt(t, r, "card-1", ledger.KindRecharge, "100", base)
	recordAt(t, r, "card-1", ledger.KindPayment, "-10", base.Add(1*time.Hour))
	recordAt(t, r, "card-1", ledger.KindPayment, "-20", base.Add(2*time.Hour))
	recordAt(t, r, "card-1", ledger.KindRefund, "5", base.Add(3*time.Hour))
	recordAt(t, r, "card-1", ledger.KindPayment, "-15", base.Add(4*time.Hour))
	return base
}

func TestListTransactions_MostRecentFirst(t *testing.T) {
	// GIVEN: Five entries recorded an hour apart
	// WHEN: Listing the first page
	// THEN: Entries come back newest first

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	base := seedHistory(t, ledger.NewRecorder(store))

	q := ledger.NewTransactionQuery(store)
	page, err := q.ListTransactions(context.Background(), ledger.ListInput{
		CardID: "card-1", Page: 1,
	})
	require.NoError(t, err)

	require.Len(t, page.Entries, 5)
	assert.True(t, page.Entries[0].OperationDate.Equal(base.Add(4*time.Hour)))
	assert.True(t, page.Entries[4].OperationDate.Equal(base))
	for i := 1; i < len(page.Entries); i++ {
		assert.False(t, page.Entries[i].OperationDate.After(page.Entries[i-1].OperationDate))
	}
}

func TestListTransactions_PaginationMetadata(t *testing.T) {
	// GIVEN: Five entries and a page size of 2
	// WHEN: Requesting page 2
	// THEN: The middle slice with correct totals and navigation flags

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	base := seedHistory(t, ledger.NewRecorder(store))

	q := ledger.NewTransactionQuery(store)
	page, err := q.ListTransactions(context.Background(), ledger.ListInput{
		CardID: "card-1", Page: 2, PageSize: 2,
	})
	require.NoError(t, err)

	require.Len(t, page.Entries, 2)
	assert.True(t, page.Entries[0].OperationDate.Equal(base.Add(2*time.Hour)))
	assert.True(t, page.Entries[1].OperationDate.Equal(base.Add(1*time.Hour)))

	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 5, page.Pagination.TotalCount)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrevious)
}

func TestListTransactions_SummaryCoversWholeFilteredSet(t *testing.T) {
	// The summary must be identical on every page: it describes the filtered
	// set, not the page.

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	seedHistory(t, ledger.NewRecorder(store))

	q := ledger.NewTransactionQuery(store)
	ctx := context.Background()

	p1, err := q.ListTransactions(ctx, ledger.ListInput{CardID: "card-1", Page: 1, PageSize: 2})
	require.NoError(t, err)
	p3, err := q.ListTransactions(ctx, ledger.ListInput{CardID: "card-1", Page: 3, PageSize: 2})
	require.NoError(t, err)

	for _, p := range []*ledger.TransactionPage{p1, p3} {
		assert.True(t, p.Summary.TotalCredits.Equal(dec("105")))
		assert.True(t, p.Summary.TotalDebits.Equal(dec("45")))
		assert.True(t, p.Summary.NetMovement().Equal(dec("60")))
		assert.Equal(t, 5, p.Summary.TransactionCount)
	}
}

func TestListTransactions_KindFilter(t *testing.T) {
	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	seedHistory(t, ledger.NewRecorder(store))

	kind := ledger.KindPayment
	q := ledger.NewTransactionQuery(store)
	page, err := q.ListTransactions(context.Background(), ledger.ListInput{
		CardID: "card-1", Kind: &kind, Page: 1,
	})
	require.NoError(t, err)

	require.Len(t, page.Entries, 3)
	for _, e := range page.Entries {
		assert.Equal(t, ledger.KindPayment, e.Kind)
	}
	assert.True(t, page.Summary.TotalDebits.Equal(dec("45")))
	assert.True(t, page.Summary.TotalCredits.IsZero())
}

func TestListTransactions_DateRangeFilter(t *testing.T) {
	// GIVEN: Five entries across four hours
	// WHEN: Filtering to the middle two hours
	// THEN: Only entries inside the inclusive window appear

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	base := seedHistory(t, ledger.NewRecorder(store))

	from := base.Add(1 * time.Hour)
	to := base.Add(2 * time.Hour)
	q := ledger.NewTransactionQuery(store)
	page, err := q.ListTransactions(context.Background(), ledger.ListInput{
		CardID: "card-1", From: &from, To: &to, Page: 1,
	})
	require.NoError(t, err)

	require.Len(t, page.Entries, 2)
	assert.Equal(t, 2, page.Pagination.TotalCount)
	assert.True(t, page.Summary.TotalDebits.Equal(dec("30")))
}

func TestListTransactions_InvalidPaging(t *testing.T) {
	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	q := ledger.NewTransactionQuery(store)
	ctx := context.Background()

	_, err := q.ListTransactions(ctx, ledger.ListInput{CardID: "card-1", Page: 0})
	assert.ErrorIs(t, err, ledger.ErrInvalidPage)

	_, err = q.ListTransactions(ctx, ledger.ListInput{CardID: "card-1", Page: 1, PageSize: 500})
	assert.ErrorIs(t, err, ledger.ErrInvalidPage)

	_, err = q.ListTransactions(ctx, ledger.ListInput{CardID: "card-1", Page: -3, PageSize: 10})
	assert.ErrorIs(t, err, ledger.ErrInvalidPage)
}

func TestListTransactions_UnknownCard(t *testing.T) {
	store := newTestStore(t)
	q := ledger.NewTransactionQuery(store)

	_, err := q.ListTransactions(context.Background(), ledger.ListInput{CardID: "ghost", Page: 1})

	assert.ErrorIs(t, err, ledger.ErrCardNotFound)
}

func TestListTransactions_EmptyHistory(t *testing.T) {
	// An empty result is an empty page, not an error and not a nil slice.

	store := newTestStore(t)
	seedCard(t, store, "card-1", "0")
	q := ledger.NewTransactionQuery(store)

	page, err := q.ListTransactions(context.Background(), ledger.ListInput{CardID: "card-1", Page: 1})
	require.NoError(t, err)

	assert.NotNil(t, page.Entries)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 0, page.Pagination.TotalCount)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrevious)
}
