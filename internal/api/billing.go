package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/trego/provider/internal/billing"
	"github.com/trego/provider/internal/validate"
)

type BillingHandlers struct {
	store *billing.Store
	log   logrus.FieldLogger
}

func NewBillingHandlers(store *billing.Store, log logrus.FieldLogger) *BillingHandlers {
	return &BillingHandlers{store: store, log: log}
}

type InvoiceStatusRequest struct {
	Status billing.InvoiceStatus `json:"status" validate:"required"`
}

func (h *BillingHandlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.store.Invoices()
	if err != nil {
		h.log.WithError(err).Error("list invoices")
		writeError(w, http.StatusInternalServerError, "failed to load invoices")
		return
	}
	if status := billing.InvoiceStatus(r.URL.Query().Get("status")); status != "" {
		filtered := invoices[:0]
		for _, inv := range invoices {
			if inv.Status == status {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices, "count": len(invoices)})
}

func (h *BillingHandlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Invoice(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "failed to load invoice")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *BillingHandlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv billing.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.CreateInvoice(&inv); err != nil {
		h.writeError(w, err, "failed to save invoice")
		return
	}
	h.log.WithFields(logrus.Fields{"invoice_id": inv.ID, "number": inv.Number}).Info("invoice created")
	writeJSON(w, http.StatusCreated, inv)
}

func (h *BillingHandlers) SetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req InvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.writeError(w, err, "invalid request")
		return
	}
	inv, err := h.store.SetInvoiceStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, err, "failed to update invoice")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *BillingHandlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.Expenses()
	if err != nil {
		h.log.WithError(err).Error("list expenses")
		writeError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses, "count": len(expenses)})
}

func (h *BillingHandlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var e billing.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.CreateExpense(&e); err != nil {
		h.writeError(w, err, "failed to save expense")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Summary reports earnings for ?month=YYYY-MM, defaulting to the current month.
func (h *BillingHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	} else if _, err := time.Parse("2006-01", month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	sum, err := h.store.Summary(month)
	if err != nil {
		h.log.WithError(err).Error("billing summary")
		writeError(w, http.StatusInternalServerError, "failed to load billing data")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *BillingHandlers) writeError(w http.ResponseWriter, err error, msg string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, billing.ErrNotFound):
		writeError(w, http.StatusNotFound, "invoice not found")
	case errors.Is(err, billing.ErrDuplicate), errors.Is(err, billing.ErrVoid):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.WithError(err).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
