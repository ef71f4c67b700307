/*
handlers.go - HTTP API handlers for the card ledger service

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Cards:
    GET    /api/cards                       List all cards
    POST   /api/cards                       Register a card
    GET    /api/cards/{id}                  Get card details
    GET    /api/cards/{id}/balance          Point-in-time balance (?at=RFC3339)
    GET    /api/cards/{id}/transactions     Paginated history
    POST   /api/cards/{id}/transactions     Record a transaction
    GET    /api/cards/{id}/summary          Monthly/annual summary (?year=&month=)

  Admin:
    POST   /api/admin/snapshots/generate    Run the batch snapshot job
    POST   /api/admin/snapshots/cleanup     Delete snapshots past retention

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (recorder, reconstructor, summary engine, ...)
  4. Serialize response
  5. Map domain errors to HTTP status

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Card not found
  - 409: Insufficient balance
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/FlameXS01/Viajex-sub000/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store ledger.TxStore

	Recorder      *ledger.Recorder
	Reconstructor *ledger.Reconstructor
	Summaries     *ledger.SummaryEngine
	Query         *ledger.TransactionQuery
	Snapshots     *ledger.SnapshotGenerator
}

// NewHandler creates a new handler with the given store.
func NewHandler(store ledger.TxStore) *Handler {
	return &Handler{
		Store:         store,
		Recorder:      ledger.NewRecorder(store),
		Reconstructor: ledger.NewReconstructor(store),
		Summaries:     ledger.NewSummaryEngine(store),
		Query:         ledger.NewTransactionQuery(store),
		Snapshots:     ledger.NewSnapshotGenerator(store),
	}
}

// =============================================================================
// CARD HANDLERS
// =============================================================================

// ListCards returns all registered cards.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Store.ListCards(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cards", err)
		return
	}

	dtos := make([]CardDTO, len(cards))
	for i, c := range cards {
		dtos[i] = toCardDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCard returns a single card.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := ledger.CardID(chi.URLParam(r, "id"))

	card, err := h.Store.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get card", err)
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "Card not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toCardDTO(*card))
}

// CreateCard registers a card.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Card id is required", nil)
		return
	}

	// SaveCard upserts, which would silently keep the existing card's
	// balance while this handler reports a fresh zero-balance card.
	// Duplicate registration is a conflict instead.
	existing, err := h.Store.GetCard(r.Context(), ledger.CardID(req.ID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create card", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Card already exists", nil)
		return
	}

	card := ledger.Card{
		ID:        ledger.CardID(req.ID),
		Label:     req.Label,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.Store.SaveCard(r.Context(), card); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create card", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardDTO(card))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// RecordTransaction appends a ledger entry for a card.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	cardID := ledger.CardID(chi.URLParam(r, "id"))

	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount (use a decimal string)", err)
		return
	}

	var operationDate time.Time
	if req.OperationDate != "" {
		operationDate, err = time.Parse(time.RFC3339, req.OperationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid operation_date (use RFC3339)", err)
			return
		}
	}

	entry, err := h.Recorder.Record(r.Context(), ledger.RecordInput{
		CardID:        cardID,
		Kind:          ledger.Kind(req.Kind),
		Amount:        amount,
		OperationDate: operationDate,
		ReferenceKind: req.ReferenceKind,
		ReferenceID:   req.ReferenceID,
		Notes:         req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(*entry))
}

// ListTransactions returns a page of a card's history, most recent first.
//
// Query parameters:
//   page, page_size        pagination (defaults 1 and 50)
//   from, to               RFC3339 bounds on operation date
//   kind                   filter by transaction kind
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	cardID := ledger.CardID(chi.URLParam(r, "id"))
	q := r.URL.Query()

	in := ledger.ListInput{CardID: cardID, Page: 1}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid page", err)
			return
		}
		in.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid page_size", err)
			return
		}
		in.PageSize = size
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from (use RFC3339)", err)
			return
		}
		in.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to (use RFC3339)", err)
			return
		}
		in.To = &t
	}
	if v := q.Get("kind"); v != "" {
		kind := ledger.Kind(v)
		in.Kind = &kind
	}

	page, err := h.Query.ListTransactions(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TransactionPageDTO{
		Entries: toEntryDTOs(page.Entries),
		Pagination: PaginationDTO{
			Page:        page.Pagination.Page,
			PageSize:    page.Pagination.PageSize,
			TotalCount:  page.Pagination.TotalCount,
			TotalPages:  page.Pagination.TotalPages,
			HasNext:     page.Pagination.HasNext,
			HasPrevious: page.Pagination.HasPrevious,
		},
		Summary: toSummaryDTO(page.Summary),
	})
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance answers "what was the balance at instant T".
// The ?at= parameter is RFC3339 and defaults to now.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	cardID := ledger.CardID(chi.URLParam(r, "id"))

	at := time.Now().UTC()
	if v := r.URL.Query().Get("at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid at (use RFC3339)", err)
			return
		}
		at = t
	}

	balance, err := h.Reconstructor.BalanceAt(r.Context(), cardID, at)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		CardID: string(balance.CardID),
		AsOf:   balance.AsOf.Format(time.RFC3339),
		Amount: balance.Amount.String(),
		Source: string(balance.Source),
	})
}

// GetSummary returns a monthly or annual rollup for a card.
// ?year= is required; ?month= narrows to a single month.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	cardID := ledger.CardID(chi.URLParam(r, "id"))
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing year", err)
		return
	}

	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}

		summary, err := h.Summaries.MonthlySummary(r.Context(), cardID, year, month)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMonthSummaryDTO(*summary))
		return
	}

	summary, err := h.Summaries.AnnualSummary(r.Context(), cardID, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	months := make([]MonthSummaryDTO, len(summary.Months))
	for i, m := range summary.Months {
		months[i] = toMonthSummaryDTO(m)
	}
	writeJSON(w, http.StatusOK, YearSummaryDTO{
		Year:             summary.Year,
		Months:           months,
		TotalCredits:     summary.TotalCredits.String(),
		TotalDebits:      summary.TotalDebits.String(),
		NetMovement:      summary.NetMovement.String(),
		TransactionCount: summary.TransactionCount,
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// GenerateSnapshots runs the batch snapshot job for a date.
// An empty date means yesterday, matching the nightly schedule.
func (h *Handler) GenerateSnapshots(w http.ResponseWriter, r *http.Request) {
	var req GenerateSnapshotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date := time.Now().UTC().AddDate(0, 0, -1)
	if req.Date != "" {
		t, err := time.Parse(ledger.DateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		date = t
	}

	stats, err := h.Snapshots.GenerateForDate(r.Context(), date, req.ForceRegenerate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateSnapshotsResponse{
		Date:       stats.Date.Format(ledger.DateLayout),
		TotalCards: stats.TotalCards,
		Created:    stats.Created,
		Updated:    stats.Updated,
		Skipped:    stats.Skipped,
		Errors:     stats.Errors,
	})
}

// CleanupSnapshots deletes snapshots older than the retention window.
func (h *Handler) CleanupSnapshots(w http.ResponseWriter, r *http.Request) {
	var req CleanupSnapshotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stats, err := h.Snapshots.CleanupOlderThan(r.Context(), req.RetentionDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CleanupSnapshotsResponse{
		CutoffDate:   stats.CutoffDate.Format(ledger.DateLayout),
		DeletedCount: stats.DeletedCount,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps ledger errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Card not found", err)
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "Insufficient balance", err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
