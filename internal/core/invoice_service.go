package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// InvoiceLineInput is one line as entered. Quantity and Price are raw text
// coerced with parse-or-zero. When ProductID names a catalog product its name
// and price are applied first; a non-empty Name or Price then overrides them.
type InvoiceLineInput struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Quantity  NumericText `json:"quantity"`
	Price     NumericText `json:"price"`
}

// InvoiceInput is an invoice as entered on the invoice form.
type InvoiceInput struct {
	InvoiceNumber string             `json:"invoiceNumber"`
	InvoiceDate   string             `json:"invoiceDate"`
	CustomerID    string             `json:"customerId"`
	Items         []InvoiceLineInput `json:"items"`
}

// ReferenceMiss records a customer or product reference that did not resolve
// and was therefore ignored.
type ReferenceMiss struct {
	Field string `json:"field"`
	ID    string `json:"id"`
}

// InvoicePreview is the computed draft for an input, with any ignored references.
type InvoicePreview struct {
	Draft  *InvoiceDraft
	Misses []ReferenceMiss
}

// InvoiceQuery selects invoices for a list view. Ledger is optional.
type InvoiceQuery struct {
	Search string
	Ledger *LedgerFilter
}

// InvoiceService builds, stores and lists invoices.
type InvoiceService interface {
	// Preview computes line and invoice totals for the input without saving.
	Preview(ctx context.Context, in InvoiceInput) (*InvoicePreview, error)

	// Save builds the invoice, freezing the customer snapshot, and appends it.
	Save(ctx context.Context, in InvoiceInput) (*Invoice, []ReferenceMiss, error)

	// List returns invoices matching the query, in stored order.
	List(ctx context.Context, q InvoiceQuery) ([]Invoice, error)

	// Get returns a single invoice by id.
	Get(ctx context.Context, id string) (*Invoice, error)

	// ForCustomer returns the invoices a payment from the customer may be allocated to.
	ForCustomer(ctx context.Context, customerID string) ([]Invoice, error)

	// Delete removes an invoice and returns how many payments were allocated to it.
	// Those payments are kept with their invoice link dangling.
	Delete(ctx context.Context, id string) (int, error)
}

// InvoiceServiceOptions tunes invoice validation.
type InvoiceServiceOptions struct {
	// RequireCustomer rejects invoices saved without a customer.
	RequireCustomer bool
}

type invoiceService struct {
	store *EntityStore
	opts  InvoiceServiceOptions
	log   zerolog.Logger
}

// NewInvoiceService constructs an InvoiceService over the entity store.
func NewInvoiceService(store *EntityStore, opts InvoiceServiceOptions, log zerolog.Logger) InvoiceService {
	return &invoiceService{store: store, opts: opts, log: log}
}

// BuildDraft turns entered input into a computed draft. Unknown customer or
// product references are skipped and reported.
func BuildDraft(in InvoiceInput, customers []Customer, products []Product) *InvoicePreview {
	d := &InvoiceDraft{
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		InvoiceDate:   strings.TrimSpace(in.InvoiceDate),
	}
	var misses []ReferenceMiss
	if in.CustomerID != "" && d.SelectCustomer(in.CustomerID, customers) == OutcomeSoftMiss {
		misses = append(misses, ReferenceMiss{Field: "customerId", ID: in.CustomerID})
	}
	for i, line := range in.Items {
		id := d.AppendLine(NewLineItem(0).WithQuantity(ParseQuantity(line.Quantity.String())))
		if line.ProductID != "" && d.SelectProduct(id, line.ProductID, products) == OutcomeSoftMiss {
			misses = append(misses, ReferenceMiss{Field: fmt.Sprintf("items[%d].productId", i), ID: line.ProductID})
		}
		if line.Name != "" {
			d.UpdateName(id, line.Name)
		}
		if line.Price.String() != "" {
			d.UpdatePrice(id, line.Price.String())
		}
	}
	d.recompute()
	return &InvoicePreview{Draft: d, Misses: misses}
}

func (s *invoiceService) draft(ctx context.Context, in InvoiceInput) (*InvoicePreview, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDraft(in, customers, products), nil
}

func (s *invoiceService) Preview(ctx context.Context, in InvoiceInput) (*InvoicePreview, error) {
	return s.draft(ctx, in)
}

func (s *invoiceService) Save(ctx context.Context, in InvoiceInput) (*Invoice, []ReferenceMiss, error) {
	preview, err := s.draft(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if s.opts.RequireCustomer && preview.Draft.Customer.IsZero() {
		return nil, preview.Misses, NewValidationError("customerId", "a customer is required")
	}
	inv, err := preview.Draft.BuildInvoice(NewID())
	if err != nil {
		return nil, preview.Misses, err
	}
	err = s.store.MutateInvoices(ctx, func(invoices []Invoice) ([]Invoice, error) {
		return append(invoices, inv), nil
	})
	if err != nil {
		return nil, preview.Misses, err
	}
	s.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("customer_id", inv.CustomerDetails.ID).
		Str("grand_total", inv.GrandTotal.StringFixed(2)).
		Int("ignored_references", len(preview.Misses)).
		Msg("invoice saved")
	return &inv, preview.Misses, nil
}

func (s *invoiceService) List(ctx context.Context, q InvoiceQuery) ([]Invoice, error) {
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	return FilterInvoices(invoices, strings.TrimSpace(q.Search), q.Ledger), nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*Invoice, error) {
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	inv, ok := findInvoice(invoices, id)
	if !ok {
		return nil, &NotFoundError{Collection: InvoicesCollection, ID: id}
	}
	return &inv, nil
}

func (s *invoiceService) ForCustomer(ctx context.Context, customerID string) ([]Invoice, error) {
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	out := []Invoice{}
	for _, inv := range invoices {
		if customerID != "" && inv.CustomerDetails.ID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) (int, error) {
	err := s.store.MutateInvoices(ctx, func(invoices []Invoice) ([]Invoice, error) {
		out := make([]Invoice, 0, len(invoices))
		for _, inv := range invoices {
			if inv.ID != id {
				out = append(out, inv)
			}
		}
		if len(out) == len(invoices) {
			return nil, &NotFoundError{Collection: InvoicesCollection, ID: id}
		}
		return out, nil
	})
	if err != nil {
		return 0, err
	}
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return 0, err
	}
	allocated := 0
	for _, p := range payments {
		if p.InvoiceID == id {
			allocated++
		}
	}
	s.log.Info().Str("invoice_id", id).Int("allocated_payments", allocated).Msg("invoice deleted")
	return allocated, nil
}
