/*
summary.go - Monthly and annual aggregate queries

PURPOSE:
  Answers monthly/annual credit/debit rollups for a card, preferring the
  precomputed daily snapshots and falling back to a direct ledger scan when
  no snapshot covers the period.

CACHE CONTRACT:
  Snapshots only ever make the query faster, never different. A month is
  summed from snapshots only for the days they actually cover; from the
  first uncovered day onward the totals come from a ledger scan, so a
  partially snapshotted month (today under the nightly schedule, or a day
  lost to a per-card generation error) still yields exact totals. An absent
  snapshot is a cache miss, not an error.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// SummarySource tells the caller which path produced the numbers.
type SummarySource string

const (
	SummaryFromSnapshots SummarySource = "snapshots"
	SummaryFromLedger    SummarySource = "ledger"
)

// MonthSummary aggregates one card's movements for a single month.
type MonthSummary struct {
	Year  int
	Month int

	TotalCredits     decimal.Decimal
	TotalDebits      decimal.Decimal
	NetMovement      decimal.Decimal
	TransactionCount int

	Source SummarySource
}

// YearSummary holds twelve MonthSummary values plus totals across them.
type YearSummary struct {
	Year   int
	Months []MonthSummary

	TotalCredits     decimal.Decimal
	TotalDebits      decimal.Decimal
	NetMovement      decimal.Decimal
	TransactionCount int
}

// =============================================================================
// SUMMARY ENGINE
// =============================================================================

type SummaryEngine struct {
	store Store
}

func NewSummaryEngine(store Store) *SummaryEngine {
	return &SummaryEngine{store: store}
}

const (
	minSummaryYear = 2000
	maxSummaryYear = 2100
)

func validateYear(year int) error {
	if year < minSummaryYear || year > maxSummaryYear {
		return ErrYearOutOfRange
	}
	return nil
}

// MonthlySummary returns the aggregate for a single month.
//
// Errors:
//   - ErrCardNotFound for an unknown card
//   - ErrYearOutOfRange / ErrMonthOutOfRange for invalid periods
func (se *SummaryEngine) MonthlySummary(ctx context.Context, cardID CardID, year, month int) (*MonthSummary, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, ErrMonthOutOfRange
	}

	card, err := se.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	return se.monthSummary(ctx, cardID, year, time.Month(month))
}

// AnnualSummary returns one entry per month (1..12) plus totals across
// the year.
func (se *SummaryEngine) AnnualSummary(ctx context.Context, cardID CardID, year int) (*YearSummary, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	card, err := se.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	summary := &YearSummary{
		Year:         year,
		Months:       make([]MonthSummary, 0, 12),
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		NetMovement:  decimal.Zero,
	}

	for month := time.January; month <= time.December; month++ {
		ms, err := se.monthSummary(ctx, cardID, year, month)
		if err != nil {
			return nil, err
		}
		summary.Months = append(summary.Months, *ms)
		summary.TotalCredits = summary.TotalCredits.Add(ms.TotalCredits)
		summary.TotalDebits = summary.TotalDebits.Add(ms.TotalDebits)
		summary.NetMovement = summary.NetMovement.Add(ms.NetMovement)
		summary.TransactionCount += ms.TransactionCount
	}

	return summary, nil
}

// monthSummary resolves one month. Snapshots are used only for the
// contiguous run of covered days from the start of the month; everything
// from the first uncovered day onward comes from a single ledger scan.
// Card existence has already been checked by the caller.
//
// A month is rarely fully covered: the nightly job only snapshots through
// yesterday, and a per-card generation error leaves a hole. Falling back to
// the ledger at the first gap keeps the totals identical to a full ledger
// scan in every case, with each entry counted exactly once (snapshots past
// the gap are simply not used).
func (se *SummaryEngine) monthSummary(ctx context.Context, cardID CardID, year int, month time.Month) (*MonthSummary, error) {
	firstDay, lastDay := MonthRange(year, month)

	snaps, err := se.store.SnapshotsInRange(ctx, cardID, firstDay, lastDay)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]Snapshot, len(snaps))
	for _, s := range snaps {
		byDay[s.SnapshotDate.Format(DateLayout)] = s
	}

	summary := &MonthSummary{
		Year:         year,
		Month:        int(month),
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		NetMovement:  decimal.Zero,
	}

	fullCover := true
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		s, ok := byDay[day.Format(DateLayout)]
		if !ok {
			fullCover = false
			from := day
			to := EndOfDay(lastDay)
			agg, err := se.store.Summarize(ctx, EntryFilter{CardID: cardID, From: &from, To: &to})
			if err != nil {
				return nil, err
			}
			summary.TotalCredits = summary.TotalCredits.Add(agg.TotalCredits)
			summary.TotalDebits = summary.TotalDebits.Add(agg.TotalDebits)
			summary.TransactionCount += agg.TransactionCount
			break
		}
		summary.TotalCredits = summary.TotalCredits.Add(s.TotalCredits)
		summary.TotalDebits = summary.TotalDebits.Add(s.TotalDebits)
		summary.TransactionCount += s.TransactionCount
	}

	summary.NetMovement = summary.TotalCredits.Sub(summary.TotalDebits)
	if fullCover && len(snaps) > 0 {
		summary.Source = SummaryFromSnapshots
	} else {
		summary.Source = SummaryFromLedger
	}
	return summary, nil
}
