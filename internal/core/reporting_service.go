package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// ReportType selects which rows a report carries. Totals are always present.
type ReportType string

const (
	SalesReport    ReportType = "sales"
	PaymentsReport ReportType = "payments"
	CustomerReport ReportType = "customer"
)

// ParseReportType maps user input to a ReportType.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(s) {
	case SalesReport, PaymentsReport, CustomerReport:
		return ReportType(s), nil
	case "":
		return SalesReport, nil
	}
	return "", NewValidationError("type", fmt.Sprintf("unknown report type %q, expected sales, payments or customer", s))
}

// SalesRow is one invoice in the sales report.
type SalesRow struct {
	InvoiceID     string          `json:"invoiceId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	CustomerName  string          `json:"customerName"`
	Amount        decimal.Decimal `json:"amount"`
}

// PaymentRow is one payment in the payments report. CustomerName falls back
// to "Unknown" and InvoiceNumber to "N/A" when the reference does not resolve.
type PaymentRow struct {
	PaymentID     string          `json:"paymentId"`
	Date          string          `json:"date"`
	CustomerName  string          `json:"customerName"`
	InvoiceNumber string          `json:"invoiceNumber"`
	PaymentMode   PaymentMode     `json:"paymentMode"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
}

const (
	UnknownCustomerName = "Unknown"
	UnlinkedInvoice     = "N/A"
)

// Report is the result of a ledger query shaped for display. Only the rows of
// the requested type are filled; the other row lists are empty, never null.
type Report struct {
	Type          ReportType        `json:"type"`
	From          string            `json:"from"`
	To            string            `json:"to"`
	CustomerID    string            `json:"customerId,omitempty"`
	TotalSales    decimal.Decimal   `json:"totalSales"`
	TotalPayments decimal.Decimal   `json:"totalPayments"`
	Outstanding   decimal.Decimal   `json:"outstanding"`
	Sales         []SalesRow        `json:"sales"`
	Payments      []PaymentRow      `json:"payments"`
	Customers     []CustomerSummary `json:"customers"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only reports over invoices and payments.
type ReportingService interface {
	// Report runs the ledger query for the filter and shapes the rows for the
	// requested report type.
	Report(ctx context.Context, typ ReportType, filter LedgerFilter) (*Report, error)

	// Balances returns the all-time customer summary.
	Balances(ctx context.Context) (*Report, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	store *EntityStore
}

// NewReportingService constructs a ReportingService over the entity store.
func NewReportingService(store *EntityStore) ReportingService {
	return &reportingService{store: store}
}

func (s *reportingService) Report(ctx context.Context, typ ReportType, filter LedgerFilter) (*Report, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReport(typ, filter, customers, invoices, payments), nil
}

func (s *reportingService) Balances(ctx context.Context) (*Report, error) {
	return s.Report(ctx, CustomerReport, LedgerFilter{Range: AllTime()})
}

// BuildReport shapes a ledger query into a report.
func BuildReport(typ ReportType, filter LedgerFilter, customers []Customer, invoices []Invoice, payments []Payment) *Report {
	res := QueryLedger(invoices, payments, filter)
	r := &Report{
		Type:          typ,
		From:          filter.Range.Start.Format(DateLayout),
		To:            filter.Range.End.Format(DateLayout),
		CustomerID:    filter.CustomerID,
		TotalSales:    res.TotalSales,
		TotalPayments: res.TotalPayments,
		Outstanding:   res.Outstanding,
		Sales:         []SalesRow{},
		Payments:      []PaymentRow{},
		Customers:     []CustomerSummary{},
	}
	switch typ {
	case SalesReport:
		for _, inv := range res.Invoices {
			r.Sales = append(r.Sales, SalesRow{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				InvoiceDate:   inv.InvoiceDate,
				CustomerName:  inv.CustomerDetails.Name,
				Amount:        inv.GrandTotal,
			})
		}
	case PaymentsReport:
		idx := NewRecordIndex(customers, invoices)
		for _, p := range res.Payments {
			name, ok := idx.CustomerName(p.CustomerID)
			if !ok {
				name = UnknownCustomerName
			}
			number, ok := idx.InvoiceNumber(p.InvoiceID)
			if !ok || p.InvoiceID == "" {
				number = UnlinkedInvoice
			}
			r.Payments = append(r.Payments, PaymentRow{
				PaymentID:     p.ID,
				Date:          p.Date,
				CustomerName:  name,
				InvoiceNumber: number,
				PaymentMode:   p.PaymentMode,
				Reference:     p.Reference,
				Amount:        p.Amount,
			})
		}
	case CustomerReport:
		r.Customers = append(r.Customers, BuildCustomerSummary(customers, res.Invoices, res.Payments)...)
	}
	return r
}

// AllTime is a range covering every representable record date.
func AllTime() DateRange {
	return DateRange{
		Start: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC),
	}
}
