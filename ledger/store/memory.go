// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FlameXS01/Viajex-sub000/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	entries   map[ledger.CardID][]ledger.Entry
	snapshots map[snapKey]ledger.Snapshot
	cards     map[ledger.CardID]ledger.Card
}

type snapKey struct {
	CardID ledger.CardID
	Date   string
}

func NewMemory() *Memory {
	return &Memory{
		entries:   make(map[ledger.CardID][]ledger.Entry),
		snapshots: make(map[snapKey]ledger.Snapshot),
		cards:     make(map[ledger.CardID]ledger.Card),
	}
}

// -----------------------------------------------------------------------------
// EntryStore
// -----------------------------------------------------------------------------

// Append adds a single entry. Append-only.
func (m *Memory) Append(_ context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(e)
	return nil
}

func (m *Memory) appendLocked(e ledger.Entry) {
	list := m.entries[e.CardID]

	// Binary search keeps the slice in chronological order on insert,
	// ties resolved by RecordedAt.
	i := sort.Search(len(list), func(i int) bool {
		if list[i].OperationDate.Equal(e.OperationDate) {
			return list[i].RecordedAt.After(e.RecordedAt)
		}
		return list[i].OperationDate.After(e.OperationDate)
	})

	list = append(list, ledger.Entry{})
	copy(list[i+1:], list[i:])
	list[i] = e
	m.entries[e.CardID] = list
}

func matchesFilter(e ledger.Entry, f ledger.EntryFilter) bool {
	if f.From != nil && e.OperationDate.Before(*f.From) {
		return false
	}
	if f.To != nil && e.OperationDate.After(*f.To) {
		return false
	}
	if f.Kind != nil && e.Kind != *f.Kind {
		return false
	}
	return true
}

func (m *Memory) filteredLocked(f ledger.EntryFilter) []ledger.Entry {
	var result []ledger.Entry
	for _, e := range m.entries[f.CardID] {
		if matchesFilter(e, f) {
			result = append(result, e)
		}
	}
	if f.Descending {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result
}

func (m *Memory) Query(_ context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := m.filteredLocked(f)
	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return nil, nil
		}
		result = result[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(result) {
		result = result[:f.Limit]
	}

	out := make([]ledger.Entry, len(result))
	copy(out, result)
	return out, nil
}

func (m *Memory) Count(_ context.Context, f ledger.EntryFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filteredLocked(f)), nil
}

func (m *Memory) Summarize(_ context.Context, f ledger.EntryFilter) (ledger.EntrySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := ledger.EntrySummary{
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
	}
	for _, e := range m.filteredLocked(f) {
		if e.Amount.IsPositive() {
			summary.TotalCredits = summary.TotalCredits.Add(e.Amount)
		} else {
			summary.TotalDebits = summary.TotalDebits.Add(e.Amount.Neg())
		}
		summary.TransactionCount++
	}
	return summary, nil
}

func (m *Memory) LastOnOrBefore(_ context.Context, cardID ledger.CardID, at time.Time) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.entries[cardID]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].OperationDate.After(at) {
			e := list[i]
			return &e, nil
		}
	}
	return nil, nil
}

// -----------------------------------------------------------------------------
// SnapshotStore
// -----------------------------------------------------------------------------

func (m *Memory) UpsertSnapshot(_ context.Context, s ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.SnapshotDate = ledger.DayOf(s.SnapshotDate)
	m.snapshots[snapKey{CardID: s.CardID, Date: s.SnapshotDate.Format(ledger.DateLayout)}] = s
	return nil
}

func (m *Memory) GetSnapshot(_ context.Context, cardID ledger.CardID, day time.Time) (*ledger.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[snapKey{CardID: cardID, Date: ledger.DayOf(day).Format(ledger.DateLayout)}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) SnapshotsInRange(_ context.Context, cardID ledger.CardID, from, to time.Time) ([]ledger.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fromDay, toDay := ledger.DayOf(from), ledger.DayOf(to)
	var result []ledger.Snapshot
	for _, s := range m.snapshots {
		if s.CardID != cardID {
			continue
		}
		if s.SnapshotDate.Before(fromDay) || s.SnapshotDate.After(toDay) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapshotDate.Before(result[j].SnapshotDate)
	})
	return result, nil
}

func (m *Memory) DeleteSnapshotsBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoffDay := ledger.DayOf(cutoff)
	deleted := 0
	for k, s := range m.snapshots {
		if s.SnapshotDate.Before(cutoffDay) {
			delete(m.snapshots, k)
			deleted++
		}
	}
	return deleted, nil
}

// -----------------------------------------------------------------------------
// CardStore
// -----------------------------------------------------------------------------

func (m *Memory) GetCard(_ context.Context, id ledger.CardID) (*ledger.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cards[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) ListCards(_ context.Context) ([]ledger.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Card, 0, len(m.cards))
	for _, c := range m.cards {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveCard(_ context.Context, c ledger.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[c.ID] = c
	return nil
}

func (m *Memory) UpdateCardBalance(_ context.Context, id ledger.CardID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return ledger.ErrCardNotFound
	}
	c.Balance = balance
	m.cards[id] = c
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support, simulated with a
// snapshot of the maps and a restore on error.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

func (tm *TxMemory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	saved := tm.snapshotLocked()
	view := &txMemoryView{parent: tm}

	if err := fn(view); err != nil {
		tm.restoreLocked(saved)
		return err
	}
	return nil
}

type memoryState struct {
	entries   map[ledger.CardID][]ledger.Entry
	snapshots map[snapKey]ledger.Snapshot
	cards     map[ledger.CardID]ledger.Card
}

func (tm *TxMemory) snapshotLocked() memoryState {
	entries := make(map[ledger.CardID][]ledger.Entry, len(tm.entries))
	for k, v := range tm.entries {
		entries[k] = append([]ledger.Entry{}, v...)
	}
	snapshots := make(map[snapKey]ledger.Snapshot, len(tm.snapshots))
	for k, v := range tm.snapshots {
		snapshots[k] = v
	}
	cards := make(map[ledger.CardID]ledger.Card, len(tm.cards))
	for k, v := range tm.cards {
		cards[k] = v
	}
	return memoryState{entries: entries, snapshots: snapshots, cards: cards}
}

func (tm *TxMemory) restoreLocked(s memoryState) {
	tm.entries = s.entries
	tm.snapshots = s.snapshots
	tm.cards = s.cards
}

// txMemoryView performs writes directly on the already-locked parent.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) Append(_ context.Context, e ledger.Entry) error {
	tv.parent.appendLocked(e)
	return nil
}

func (tv *txMemoryView) Query(_ context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	return tv.parent.filteredLocked(f), nil
}

func (tv *txMemoryView) Count(_ context.Context, f ledger.EntryFilter) (int, error) {
	return len(tv.parent.filteredLocked(f)), nil
}

func (tv *txMemoryView) Summarize(ctx context.Context, f ledger.EntryFilter) (ledger.EntrySummary, error) {
	summary := ledger.EntrySummary{TotalCredits: decimal.Zero, TotalDebits: decimal.Zero}
	for _, e := range tv.parent.filteredLocked(f) {
		if e.Amount.IsPositive() {
			summary.TotalCredits = summary.TotalCredits.Add(e.Amount)
		} else {
			summary.TotalDebits = summary.TotalDebits.Add(e.Amount.Neg())
		}
		summary.TransactionCount++
	}
	return summary, nil
}

func (tv *txMemoryView) LastOnOrBefore(_ context.Context, cardID ledger.CardID, at time.Time) (*ledger.Entry, error) {
	list := tv.parent.entries[cardID]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].OperationDate.After(at) {
			e := list[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (tv *txMemoryView) UpsertSnapshot(_ context.Context, s ledger.Snapshot) error {
	s.SnapshotDate = ledger.DayOf(s.SnapshotDate)
	tv.parent.snapshots[snapKey{CardID: s.CardID, Date: s.SnapshotDate.Format(ledger.DateLayout)}] = s
	return nil
}

func (tv *txMemoryView) GetSnapshot(_ context.Context, cardID ledger.CardID, day time.Time) (*ledger.Snapshot, error) {
	s, ok := tv.parent.snapshots[snapKey{CardID: cardID, Date: ledger.DayOf(day).Format(ledger.DateLayout)}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (tv *txMemoryView) SnapshotsInRange(_ context.Context, cardID ledger.CardID, from, to time.Time) ([]ledger.Snapshot, error) {
	fromDay, toDay := ledger.DayOf(from), ledger.DayOf(to)
	var result []ledger.Snapshot
	for _, s := range tv.parent.snapshots {
		if s.CardID == cardID && !s.SnapshotDate.Before(fromDay) && !s.SnapshotDate.After(toDay) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapshotDate.Before(result[j].SnapshotDate)
	})
	return result, nil
}

func (tv *txMemoryView) DeleteSnapshotsBefore(_ context.Context, cutoff time.Time) (int, error) {
	cutoffDay := ledger.DayOf(cutoff)
	deleted := 0
	for k, s := range tv.parent.snapshots {
		if s.SnapshotDate.Before(cutoffDay) {
			delete(tv.parent.snapshots, k)
			deleted++
		}
	}
	return deleted, nil
}

func (tv *txMemoryView) GetCard(_ context.Context, id ledger.CardID) (*ledger.Card, error) {
	c, ok := tv.parent.cards[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (tv *txMemoryView) ListCards(_ context.Context) ([]ledger.Card, error) {
	result := make([]ledger.Card, 0, len(tv.parent.cards))
	for _, c := range tv.parent.cards {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txMemoryView) SaveCard(_ context.Context, c ledger.Card) error {
	tv.parent.cards[c.ID] = c
	return nil
}

func (tv *txMemoryView) UpdateCardBalance(_ context.Context, id ledger.CardID, balance decimal.Decimal) error {
	c, ok := tv.parent.cards[id]
	if !ok {
		return ledger.ErrCardNotFound
	}
	c.Balance = balance
	tv.parent.cards[id] = c
	return nil
}
