/*
snapshot.go - Batch snapshot generation and retention cleanup

PURPOSE:
  For a target date, computes and upserts one daily snapshot per card from
  the ledger. Runs nightly (or on demand) and backs the summary engine's
  fast path.

PARTIAL-FAILURE ISOLATION:
  A failure processing one card is caught, counted, and logged; processing
  continues with the next card. A single card's failure never aborts the
  batch. The only error GenerateForDate itself returns is a failure to
  enumerate the cards at all.

IDEMPOTENCE:
  With forceRegenerate=false, cards that already have a snapshot for the
  date are skipped, so an interrupted run can simply be restarted.
*/
package ledger

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BATCH STATS
// =============================================================================

// GenerateStats reports the outcome of one batch run.
type GenerateStats struct {
	Date       time.Time
	TotalCards int
	Created    int
	Updated    int
	Skipped    int
	Errors     int
}

// CleanupStats reports the outcome of a retention cleanup.
type CleanupStats struct {
	CutoffDate   time.Time
	DeletedCount int
}

// =============================================================================
// SNAPSHOT GENERATOR
// =============================================================================

type SnapshotGenerator struct {
	store Store
}

func NewSnapshotGenerator(store Store) *SnapshotGenerator {
	return &SnapshotGenerator{store: store}
}

// GenerateForDate computes and upserts a snapshot per card for the given
// calendar day. Per-card failures are counted in the stats, never raised.
//
// Errors:
//   - ErrFutureTimestamp when the date is after today
//   - a storage error only if the card list itself cannot be obtained
func (g *SnapshotGenerator) GenerateForDate(ctx context.Context, date time.Time, forceRegenerate bool) (*GenerateStats, error) {
	day := DayOf(date)
	if day.After(DayOf(time.Now().UTC())) {
		return nil, ErrFutureTimestamp
	}

	cards, err := g.store.ListCards(ctx)
	if err != nil {
		return nil, err
	}

	stats := &GenerateStats{Date: day, TotalCards: len(cards)}
	for _, card := range cards {
		outcome, err := g.generateForCard(ctx, card.ID, day, forceRegenerate)
		if err != nil {
			stats.Errors++
			log.Printf("[SnapshotJob] card %s date %s: %v", card.ID, day.Format(DateLayout), err)
			continue
		}
		switch outcome {
		case outcomeCreated:
			stats.Created++
		case outcomeUpdated:
			stats.Updated++
		case outcomeSkipped:
			stats.Skipped++
		}
	}

	log.Printf("[SnapshotJob] date %s: %d cards, %d created, %d updated, %d skipped, %d errors",
		day.Format(DateLayout), stats.TotalCards, stats.Created, stats.Updated, stats.Skipped, stats.Errors)

	return stats, nil
}

type cardOutcome int

const (
	outcomeCreated cardOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

func (g *SnapshotGenerator) generateForCard(ctx context.Context, cardID CardID, day time.Time, force bool) (cardOutcome, error) {
	existing, err := g.store.GetSnapshot(ctx, cardID, day)
	if err != nil {
		return 0, err
	}
	if existing != nil && !force {
		return outcomeSkipped, nil
	}

	from := day
	to := EndOfDay(day)
	agg, err := g.store.Summarize(ctx, EntryFilter{CardID: cardID, From: &from, To: &to})
	if err != nil {
		return 0, err
	}

	opening, err := g.openingBalance(ctx, cardID, day)
	if err != nil {
		return 0, err
	}

	snap := Snapshot{
		CardID:           cardID,
		SnapshotDate:     day,
		OpeningBalance:   opening,
		ClosingBalance:   opening.Add(agg.TotalCredits).Sub(agg.TotalDebits),
		TotalCredits:     agg.TotalCredits,
		TotalDebits:      agg.TotalDebits,
		TransactionCount: agg.TransactionCount,
	}
	if err := snap.Validate(); err != nil {
		return 0, err
	}

	if err := g.store.UpsertSnapshot(ctx, snap); err != nil {
		return 0, err
	}

	if existing != nil {
		return outcomeUpdated, nil
	}
	return outcomeCreated, nil
}

// openingBalance is the balance the instant before the day starts, so
// midnight entries land in the day's totals, not the opening.
//
// Resolution order:
//  1. NewBalance of the last entry strictly before the day
//  2. PreviousBalance of the day's first entry (ledger-native card whose
//     history starts on this day)
//  3. The card's cached balance, the best-effort answer for pre-ledger
//     cards that never transacted
func (g *SnapshotGenerator) openingBalance(ctx context.Context, cardID CardID, day time.Time) (decimal.Decimal, error) {
	prior, err := g.store.LastOnOrBefore(ctx, cardID, day.Add(-time.Nanosecond))
	if err != nil {
		return decimal.Zero, err
	}
	if prior != nil {
		return prior.NewBalance, nil
	}

	from := day
	to := EndOfDay(day)
	first, err := g.store.Query(ctx, EntryFilter{CardID: cardID, From: &from, To: &to, Limit: 1})
	if err != nil {
		return decimal.Zero, err
	}
	if len(first) > 0 {
		return first[0].PreviousBalance, nil
	}

	card, err := g.store.GetCard(ctx, cardID)
	if err != nil {
		return decimal.Zero, err
	}
	if card == nil {
		return decimal.Zero, ErrCardNotFound
	}
	return card.Balance, nil
}

// CleanupOlderThan deletes every snapshot older than the retention window.
// Irreversible, but snapshots are disposable caches; ledger entries are
// never deleted by this operation.
func (g *SnapshotGenerator) CleanupOlderThan(ctx context.Context, retentionDays int) (*CleanupStats, error) {
	if retentionDays < 0 {
		return nil, ErrInvalidRetention
	}

	cutoff := DayOf(time.Now().UTC()).AddDate(0, 0, -retentionDays)
	deleted, err := g.store.DeleteSnapshotsBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	log.Printf("[SnapshotJob] cleanup: deleted %d snapshots older than %s",
		deleted, cutoff.Format(DateLayout))

	return &CleanupStats{CutoffDate: cutoff, DeletedCount: deleted}, nil
}
