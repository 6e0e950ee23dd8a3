package billing

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/trego/provider/internal/kv"
	"github.com/trego/provider/internal/validate"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
	ErrVoid      = errors.New("invoice is void")
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "DRAFT"
	InvoiceIssued  InvoiceStatus = "ISSUED"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
	InvoiceVoid    InvoiceStatus = "VOID"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceIssued, InvoicePaid, InvoiceOverdue, InvoiceVoid:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCard       PaymentMethod = "card"
	PaymentMBWay      PaymentMethod = "mbway"
	PaymentTransfer   PaymentMethod = "transfer"
	PaymentMultibanco PaymentMethod = "multibanco"
	PaymentOther      PaymentMethod = "other"
)

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number,omitempty"`
	Floor      string `json:"floor,omitempty"`
	PostalCode string `json:"postalCode"`
	Locality   string `json:"locality"`
	District   string `json:"district"`
	Country    string `json:"country"`
}

type Client struct {
	ID      string  `json:"id"`
	Name    string  `json:"name" validate:"required"`
	NIF     string  `json:"nif"`
	Email   string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

type InvoiceLine struct {
	ID          string  `json:"id"`
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	VATRate     float64 `json:"vatRate" validate:"gte=0,lte=100"`
	NetAmount   float64 `json:"netAmount"`
	VATAmount   float64 `json:"vatAmount"`
	TotalAmount float64 `json:"totalAmount"`
}

type Invoice struct {
	ID       string        `json:"id"`
	Number   string        `json:"number" validate:"required"`
	Series   string        `json:"series"`
	Date     string        `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate  string        `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status   InvoiceStatus `json:"status" validate:"omitempty,oneof=DRAFT ISSUED PAID OVERDUE VOID"`
	Client   Client        `json:"client"`
	Lines    []InvoiceLine `json:"lines" validate:"min=1,dive"`
	NetTotal float64       `json:"netTotal"`
	VATTotal float64       `json:"vatTotal"`
	Total    float64       `json:"total"`
	ATCUD    string        `json:"atcud,omitempty"`
	Notes    string        `json:"notes,omitempty"`
}

// price fills in every derived amount from quantities, prices and rates.
// Amounts sent by the caller are ignored.
func (inv *Invoice) price() {
	for i := range inv.Lines {
		l := &inv.Lines[i]
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		a := LineAmounts(l.Quantity, l.UnitPrice, l.VATRate)
		l.NetAmount, l.VATAmount, l.TotalAmount = a.Net, a.VAT, a.Total
	}
	t := Totals(inv.Lines)
	inv.NetTotal, inv.VATTotal, inv.Total = t.Net, t.VAT, t.Total
}

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
)

type Expense struct {
	ID            string        `json:"id"`
	Description   string        `json:"description" validate:"required"`
	Supplier      string        `json:"supplier" validate:"required"`
	SupplierNIF   string        `json:"supplierNIF,omitempty"`
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	Category      string        `json:"category"`
	Amount        float64       `json:"amount" validate:"gte=0"`
	VATAmount     float64       `json:"vatAmount"`
	VATRate       float64       `json:"vatRate" validate:"gte=0,lte=100"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash card mbway transfer multibanco other"`
	Status        ExpenseStatus `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	ReceiptNumber string        `json:"receiptNumber,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// EarningsSummary aggregates one calendar month (YYYY-MM).
type EarningsSummary struct {
	Month         string  `json:"month"`
	MonthIssued   float64 `json:"monthIssued"`
	MonthPaid     float64 `json:"monthPaid"`
	Outstanding   float64 `json:"outstanding"`
	MonthExpenses float64 `json:"monthExpenses"`
}

// Store keeps invoices and expenses as JSON arrays in the key-value store.
type Store struct {
	mu sync.Mutex
	kv kv.Store
}

func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

func (s *Store) Invoices() ([]Invoice, error) {
	var out []Invoice
	if _, err := kv.GetJSON(s.kv, kv.KeyInvoices, &out); err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	if out == nil {
		out = []Invoice{}
	}
	return out, nil
}

func (s *Store) Invoice(id string) (*Invoice, error) {
	invoices, err := s.Invoices()
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			return &invoices[i], nil
		}
	}
	return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
}

// CreateInvoice validates inv, prices its lines and appends it. Invoice
// numbers are unique within a series.
func (s *Store) CreateInvoice(inv *Invoice) error {
	if err := validate.Struct(inv); err != nil {
		return err
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = InvoiceDraft
	}
	inv.price()

	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.Invoices()
	if err != nil {
		return err
	}
	for _, existing := range invoices {
		if existing.ID == inv.ID {
			return fmt.Errorf("%w: invoice id %s", ErrDuplicate, inv.ID)
		}
		if existing.Series == inv.Series && existing.Number == inv.Number {
			return fmt.Errorf("%w: invoice number %s", ErrDuplicate, inv.Number)
		}
	}
	if err := kv.SetJSON(s.kv, kv.KeyInvoices, append(invoices, *inv)); err != nil {
		return fmt.Errorf("save invoices: %w", err)
	}
	return nil
}

// SetInvoiceStatus moves an invoice to status. A void invoice stays void.
func (s *Store) SetInvoiceStatus(id string, status InvoiceStatus) (*Invoice, error) {
	if !status.Valid() {
		return nil, &validate.Error{Fields: map[string]string{
			"status": "The field 'status' must be one of [DRAFT ISSUED PAID OVERDUE VOID].",
		}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	invoices, err := s.Invoices()
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID != id {
			continue
		}
		if invoices[i].Status == InvoiceVoid && status != InvoiceVoid {
			return nil, fmt.Errorf("%w: %s", ErrVoid, id)
		}
		invoices[i].Status = status
		if err := kv.SetJSON(s.kv, kv.KeyInvoices, invoices); err != nil {
			return nil, fmt.Errorf("save invoices: %w", err)
		}
		return &invoices[i], nil
	}
	return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
}

func (s *Store) Expenses() ([]Expense, error) {
	var out []Expense
	if _, err := kv.GetJSON(s.kv, kv.KeyExpenses, &out); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	if out == nil {
		out = []Expense{}
	}
	return out, nil
}

// CreateExpense records an expense. VAT is derived from the rate when the
// receipt does not state it; the total is always amount plus VAT.
func (s *Store) CreateExpense(e *Expense) error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = ExpensePending
	}
	if e.VATAmount == 0 {
		e.VATAmount = round2(VAT(e.Amount, e.VATRate))
	}
	e.TotalAmount = round2(e.Amount + e.VATAmount)

	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.Expenses()
	if err != nil {
		return err
	}
	if err := kv.SetJSON(s.kv, kv.KeyExpenses, append(expenses, *e)); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

// Summary totals the given month. Issued counts every invoice that left
// draft and is not void; outstanding covers issued and overdue invoices of
// any month; rejected expenses are left out.
func (s *Store) Summary(month string) (EarningsSummary, error) {
	out := EarningsSummary{Month: month}
	invoices, err := s.Invoices()
	if err != nil {
		return out, err
	}
	expenses, err := s.Expenses()
	if err != nil {
		return out, err
	}

	for _, inv := range invoices {
		inMonth := strings.HasPrefix(inv.Date, month)
		switch inv.Status {
		case InvoiceIssued, InvoiceOverdue:
			out.Outstanding += inv.Total
			if inMonth {
				out.MonthIssued += inv.Total
			}
		case InvoicePaid:
			if inMonth {
				out.MonthIssued += inv.Total
				out.MonthPaid += inv.Total
			}
		}
	}
	for _, e := range expenses {
		if e.Status != ExpenseRejected && strings.HasPrefix(e.Date, month) {
			out.MonthExpenses += e.TotalAmount
		}
	}

	out.MonthIssued = round2(out.MonthIssued)
	out.MonthPaid = round2(out.MonthPaid)
	out.Outstanding = round2(out.Outstanding)
	out.MonthExpenses = round2(out.MonthExpenses)
	return out, nil
}
