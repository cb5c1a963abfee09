package httpapi

import (
	"errors"
	"net/http"
	"time"

	"dashcomm.org/internal/audit"
	"dashcomm.org/internal/feed"
	"dashcomm.org/internal/finance"
	"dashcomm.org/internal/ids"
)

type entryRequest struct {
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	AmountGross int64     `json:"amount_gross"`
	AmountNet   int64     `json:"amount_net"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.requireTenant(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		entries, err := a.records.ListEntries(r.Context(), tenantID)
		if err != nil {
			a.writeFinanceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": entries})
	case http.MethodPost:
		var req entryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		entry := &finance.LedgerEntry{
			ID:          ids.New(),
			TenantID:    tenantID,
			Date:        req.Date.UTC(),
			Kind:        req.Kind,
			AmountGross: req.AmountGross,
			AmountNet:   req.AmountNet,
			Status:      req.Status,
			Description: req.Description,
			CreatedAt:   a.now().UTC(),
		}
		if entry.AmountNet == 0 {
			entry.AmountNet = entry.AmountGross
		}
		if err := a.records.CreateEntry(r.Context(), entry); err != nil {
			a.writeFinanceError(w, r, err)
			return
		}
		a.publish(feed.Event{
			TenantID:   tenantID,
			Kind:       feed.EventEntryRecorded,
			RecordID:   entry.ID,
			Summary:    entry.Description,
			Amount:     entry.AmountNet,
			OccurredAt: entry.CreatedAt,
		})
		_ = audit.LogEvent(a.auditCtx(r), "record.entry_created", map[string]any{
			"tenant_id": tenantID,
			"entry_id":  entry.ID,
		})
		writeJSON(w, http.StatusCreated, entry)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type billRequest struct {
	DueDate      time.Time `json:"due_date"`
	TotalAmount  int64     `json:"total_amount"`
	Status       string    `json:"status,omitempty"`
	Board        string    `json:"board"`
	Installments int       `json:"installments,omitempty"`
	Description  string    `json:"description,omitempty"`
}

func (a *API) handleBills(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.requireTenant(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		bills, err := a.records.ListBills(r.Context(), tenantID)
		if err != nil {
			a.writeFinanceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
	case http.MethodPost:
		var req billRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Status == "" {
			req.Status = finance.BillPending
		}
		bill := &finance.Bill{
			ID:           ids.New(),
			TenantID:     tenantID,
			DueDate:      req.DueDate.UTC(),
			TotalAmount:  req.TotalAmount,
			Status:       req.Status,
			Board:        req.Board,
			Installments: req.Installments,
			Description:  req.Description,
			CreatedAt:    a.now().UTC(),
		}
		if err := a.records.CreateBill(r.Context(), bill); err != nil {
			a.writeFinanceError(w, r, err)
			return
		}
		a.publish(feed.Event{
			TenantID:   tenantID,
			Kind:       feed.EventBillRecorded,
			RecordID:   bill.ID,
			Summary:    bill.Description,
			Amount:     bill.TotalAmount,
			OccurredAt: bill.CreatedAt,
		})
		_ = audit.LogEvent(a.auditCtx(r), "record.bill_created", map[string]any{
			"tenant_id": tenantID,
			"bill_id":   bill.ID,
		})
		writeJSON(w, http.StatusCreated, bill)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type contactRequest struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (a *API) handleContacts(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.requireTenant(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		contacts, err := a.records.ListContacts(r.Context(), tenantID)
		if err != nil {
			a.writeFinanceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
	case http.MethodPost:
		var req contactRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		contact := &finance.Contact{
			ID:        ids.New(),
			TenantID:  tenantID,
			Type:      req.Type,
			Name:      req.Name,
			Email:     req.Email,
			CreatedAt: a.now().UTC(),
		}
		if err := a.records.CreateContact(r.Context(), contact); err != nil {
			a.writeFinanceError(w, r, err)
			return
		}
		a.publish(feed.Event{
			TenantID:   tenantID,
			Kind:       feed.EventContactCreated,
			RecordID:   contact.ID,
			Summary:    contact.Name,
			OccurredAt: contact.CreatedAt,
		})
		_ = audit.LogEvent(a.auditCtx(r), "record.contact_created", map[string]any{
			"tenant_id":  tenantID,
			"contact_id": contact.ID,
		})
		writeJSON(w, http.StatusCreated, contact)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) publish(evt feed.Event) {
	if a.feed != nil {
		a.feed.Publish(evt)
	}
}

func (a *API) writeFinanceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, finance.ErrInvalidAmount),
		errors.Is(err, finance.ErrInvalidKind),
		errors.Is(err, finance.ErrInvalidStatus),
		errors.Is(err, finance.ErrInvalidBoard),
		errors.Is(err, finance.ErrInvalidType),
		errors.Is(err, finance.ErrMissingTenant):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, finance.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
