/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY REPRESENTATION:
  All currency fields are JSON strings ("70.50", not 70.5). Floats lose
  precision and clients are expected to treat amounts as opaque decimals.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/FlameXS01/Viajex-sub000/ledger"
)

// =============================================================================
// CARD TYPES
// =============================================================================

// CardDTO represents a card in API responses.
type CardDTO struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Balance   string `json:"balance"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateCardRequest is the request to register a card.
type CreateCardRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// RecordTransactionRequest is the request to record a ledger entry.
// Amount is a signed decimal string: positive credits, negative debits.
type RecordTransactionRequest struct {
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	OperationDate string `json:"operation_date,omitempty"` // RFC3339, defaults to now
	ReferenceKind string `json:"reference_kind,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// EntryDTO represents a ledger entry.
type EntryDTO struct {
	ID              string `json:"id"`
	CardID          string `json:"card_id"`
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	PreviousBalance string `json:"previous_balance"`
	NewBalance      string `json:"new_balance"`
	OperationDate   string `json:"operation_date"`
	RecordedAt      string `json:"recorded_at"`
	ReferenceKind   string `json:"reference_kind,omitempty"`
	ReferenceID     string `json:"reference_id,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// PaginationDTO describes the position of a page within the result set.
type PaginationDTO struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// TransactionPageDTO is one page of entries plus the whole-set summary.
type TransactionPageDTO struct {
	Entries    []EntryDTO    `json:"entries"`
	Pagination PaginationDTO `json:"pagination"`
	Summary    SummaryDTO    `json:"summary"`
}

// SummaryDTO aggregates credits and debits over a set of entries.
type SummaryDTO struct {
	TotalCredits     string `json:"total_credits"`
	TotalDebits      string `json:"total_debits"`
	NetMovement      string `json:"net_movement"`
	TransactionCount int    `json:"transaction_count"`
}

// =============================================================================
// BALANCE AND SUMMARY TYPES
// =============================================================================

// BalanceDTO is a point-in-time balance answer.
type BalanceDTO struct {
	CardID string `json:"card_id"`
	AsOf   string `json:"as_of"`
	Amount string `json:"amount"`
	Source string `json:"source"` // "ledger" or "card_balance"
}

// MonthSummaryDTO is the aggregate for one month.
type MonthSummaryDTO struct {
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	TotalCredits     string `json:"total_credits"`
	TotalDebits      string `json:"total_debits"`
	NetMovement      string `json:"net_movement"`
	TransactionCount int    `json:"transaction_count"`
	Source           string `json:"source"` // "snapshots" or "ledger"
}

// YearSummaryDTO is twelve months plus totals across them.
type YearSummaryDTO struct {
	Year             int               `json:"year"`
	Months           []MonthSummaryDTO `json:"months"`
	TotalCredits     string            `json:"total_credits"`
	TotalDebits      string            `json:"total_debits"`
	NetMovement      string            `json:"net_movement"`
	TransactionCount int               `json:"transaction_count"`
}

// =============================================================================
// ADMIN TYPES
// =============================================================================

// GenerateSnapshotsRequest triggers a batch snapshot run.
type GenerateSnapshotsRequest struct {
	Date            string `json:"date"` // YYYY-MM-DD, defaults to yesterday
	ForceRegenerate bool   `json:"force_regenerate"`
}

// GenerateSnapshotsResponse reports the outcome of a batch run.
type GenerateSnapshotsResponse struct {
	Date       string `json:"date"`
	TotalCards int    `json:"total_cards"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Errors     int    `json:"errors"`
}

// CleanupSnapshotsRequest triggers retention cleanup.
type CleanupSnapshotsRequest struct {
	RetentionDays int `json:"retention_days"`
}

// CleanupSnapshotsResponse reports the outcome of a cleanup.
type CleanupSnapshotsResponse struct {
	CutoffDate   string `json:"cutoff_date"`
	DeletedCount int    `json:"deleted_count"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCardDTO(c ledger.Card) CardDTO {
	return CardDTO{
		ID:        string(c.ID),
		Label:     c.Label,
		Balance:   c.Balance.String(),
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:              string(e.ID),
		CardID:          string(e.CardID),
		Kind:            string(e.Kind),
		Amount:          e.Amount.String(),
		PreviousBalance: e.PreviousBalance.String(),
		NewBalance:      e.NewBalance.String(),
		OperationDate:   e.OperationDate.Format(time.RFC3339),
		RecordedAt:      e.RecordedAt.Format(time.RFC3339),
		ReferenceKind:   e.ReferenceKind,
		ReferenceID:     e.ReferenceID,
		Notes:           e.Notes,
	}
}

func toEntryDTOs(entries []ledger.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toSummaryDTO(s ledger.EntrySummary) SummaryDTO {
	return SummaryDTO{
		TotalCredits:     s.TotalCredits.String(),
		TotalDebits:      s.TotalDebits.String(),
		NetMovement:      s.NetMovement().String(),
		TransactionCount: s.TransactionCount,
	}
}

func toMonthSummaryDTO(m ledger.MonthSummary) MonthSummaryDTO {
	return MonthSummaryDTO{
		Year:             m.Year,
		Month:            m.Month,
		TotalCredits:     m.TotalCredits.String(),
		TotalDebits:      m.TotalDebits.String(),
		NetMovement:      m.NetMovement.String(),
		TransactionCount: m.TransactionCount,
		Source:           string(m.Source),
	}
}
