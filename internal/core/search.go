package core

import "strings"

// Free-text search over the list views. An empty term matches everything.
// Name-like fields match case-insensitively; dates, phone numbers, codes and
// amounts match as raw substrings.

func containsFold(field, term string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(term))
}

// CustomerMatches matches on name or phone.
func CustomerMatches(c Customer, term string) bool {
	if term == "" {
		return true
	}
	return containsFold(c.Name, term) || strings.Contains(c.Phone, term)
}

// ProductMatches matches on name, description or HSN code.
func ProductMatches(p Product, term string) bool {
	if term == "" {
		return true
	}
	return containsFold(p.Name, term) ||
		containsFold(p.Description, term) ||
		strings.Contains(p.HSNCode, term)
}

// InvoiceMatches matches on invoice number, snapshot customer name or date.
func InvoiceMatches(inv Invoice, term string) bool {
	if term == "" {
		return true
	}
	return containsFold(inv.InvoiceNumber, term) ||
		containsFold(inv.CustomerDetails.Name, term) ||
		strings.Contains(inv.InvoiceDate, term)
}

// RecordIndex resolves customer and invoice ids for display and search.
type RecordIndex struct {
	customers map[string]Customer
	invoices  map[string]Invoice
}

// NewRecordIndex indexes the given records by id.
func NewRecordIndex(customers []Customer, invoices []Invoice) *RecordIndex {
	idx := &RecordIndex{
		customers: make(map[string]Customer, len(customers)),
		invoices:  make(map[string]Invoice, len(invoices)),
	}
	for _, c := range customers {
		idx.customers[c.ID] = c
	}
	for _, inv := range invoices {
		idx.invoices[inv.ID] = inv
	}
	return idx
}

// CustomerName returns the customer's current name.
func (idx *RecordIndex) CustomerName(id string) (string, bool) {
	c, ok := idx.customers[id]
	return c.Name, ok
}

// InvoiceNumber returns the invoice's number.
func (idx *RecordIndex) InvoiceNumber(id string) (string, bool) {
	inv, ok := idx.invoices[id]
	return inv.InvoiceNumber, ok
}

// PaymentMatches matches on the resolved customer name, resolved invoice
// number, date, amount or payment mode.
func PaymentMatches(p Payment, term string, idx *RecordIndex) bool {
	if term == "" {
		return true
	}
	if name, ok := idx.CustomerName(p.CustomerID); ok && containsFold(name, term) {
		return true
	}
	if p.InvoiceID != "" {
		if number, ok := idx.InvoiceNumber(p.InvoiceID); ok && containsFold(number, term) {
			return true
		}
	}
	return strings.Contains(p.Date, term) ||
		strings.Contains(p.Amount.String(), term) ||
		strings.Contains(p.Amount.StringFixed(2), term) ||
		containsFold(string(p.PaymentMode), term)
}

// FilterCustomers returns the customers matching term, in input order.
func FilterCustomers(customers []Customer, term string) []Customer {
	out := []Customer{}
	for _, c := range customers {
		if CustomerMatches(c, term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterProducts returns the products matching term, in input order.
func FilterProducts(products []Product, term string) []Product {
	out := []Product{}
	for _, p := range products {
		if ProductMatches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterInvoices applies the search term and, when ledger is non-nil, the
// ledger filter. Both must match.
func FilterInvoices(invoices []Invoice, term string, ledger *LedgerFilter) []Invoice {
	out := []Invoice{}
	for _, inv := range invoices {
		if !InvoiceMatches(inv, term) {
			continue
		}
		if ledger != nil && !ledger.invoiceMatches(inv) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// FilterPayments applies the search term and, when ledger is non-nil, the
// ledger filter. Both must match.
func FilterPayments(payments []Payment, term string, ledger *LedgerFilter, idx *RecordIndex) []Payment {
	out := []Payment{}
	for _, p := range payments {
		if !PaymentMatches(p, term, idx) {
			continue
		}
		if ledger != nil && !ledger.paymentMatches(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
