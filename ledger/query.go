/*
query.go - Paginated transaction history

PURPOSE:
  Read API for external reports: filtered, paginated entry listings with a
  summary over the whole filtered set.

ORDERING CONTRACT:
  Entries are returned by OperationDate descending (most recent first).
  Downstream reports (balance history, exports) depend on this ordering;
  it is part of the contract, not an implementation detail.
*/
package ledger

import (
	"context"
	"time"
)

// MaxPageSize bounds a single page of results.
const MaxPageSize = 200

// DefaultPageSize is used when the caller does not specify one.
const DefaultPageSize = 50

// ListInput selects a card's transaction history.
type ListInput struct {
	CardID CardID
	From   *time.Time
	To     *time.Time
	Kind   *Kind

	Page     int // 1-based
	PageSize int
}

// Pagination describes the position of a page within the filtered set.
// TotalCount comes from a separate count query over the same filter.
type Pagination struct {
	Page        int
	PageSize    int
	TotalCount  int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// TransactionPage is one page of entries plus the summary over the ENTIRE
// filtered set (not just this page).
type TransactionPage struct {
	Entries    []Entry
	Pagination Pagination
	Summary    EntrySummary
}

// TransactionQuery serves paginated history reads.
type TransactionQuery struct {
	store Store
}

func NewTransactionQuery(store Store) *TransactionQuery {
	return &TransactionQuery{store: store}
}

// ListTransactions returns one page of a card's history, most recent first.
//
// Errors:
//   - ErrCardNotFound for an unknown card
//   - ErrInvalidPage for page < 1 or page size outside 1..MaxPageSize
func (q *TransactionQuery) ListTransactions(ctx context.Context, in ListInput) (*TransactionPage, error) {
	if in.PageSize == 0 {
		in.PageSize = DefaultPageSize
	}
	if in.Page < 1 || in.PageSize < 1 || in.PageSize > MaxPageSize {
		return nil, ErrInvalidPage
	}

	card, err := q.store.GetCard(ctx, in.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	// Count and summary run over the whole filtered set, without the
	// page window.
	filter := EntryFilter{
		CardID: in.CardID,
		From:   in.From,
		To:     in.To,
		Kind:   in.Kind,
	}

	pageFilter := filter
	pageFilter.Descending = true
	pageFilter.Limit = in.PageSize
	pageFilter.Offset = (in.Page - 1) * in.PageSize

	entries, err := q.store.Query(ctx, pageFilter)
	if err != nil {
		return nil, err
	}

	total, err := q.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary, err := q.store.Summarize(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + in.PageSize - 1) / in.PageSize

	if entries == nil {
		entries = []Entry{}
	}
	return &TransactionPage{
		Entries: entries,
		Pagination: Pagination{
			Page:        in.Page,
			PageSize:    in.PageSize,
			TotalCount:  total,
			TotalPages:  totalPages,
			HasNext:     in.Page < totalPages,
			HasPrevious: in.Page > 1 && total > 0,
		},
		Summary: summary,
	}, nil
}
