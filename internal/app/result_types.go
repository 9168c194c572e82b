package app

import "billing-engine/internal/core"

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer
}

// CustomerResult is returned by single-customer operations.
type CustomerResult struct {
	Customer *core.Customer
}

// CustomerDeleteResult is returned by DeleteCustomer.
type CustomerDeleteResult struct {
	Customer          core.Customer
	DependentInvoices int
	DependentPayments int
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product
}

// InvoiceListResult is returned by ListInvoices and CustomerInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// InvoiceResult is returned by GetInvoice and SaveInvoice.
// IgnoredReferences lists customer or product ids that did not resolve.
type InvoiceResult struct {
	Invoice           *core.Invoice
	IgnoredReferences []core.ReferenceMiss
}

// InvoicePreviewResult is returned by PreviewInvoice.
type InvoicePreviewResult struct {
	Draft             *core.InvoiceDraft
	IgnoredReferences []core.ReferenceMiss
}

// InvoiceDeleteResult is returned by DeleteInvoice.
type InvoiceDeleteResult struct {
	AllocatedPayments int
}

// PaymentListResult is returned by ListPayments.
type PaymentListResult struct {
	Payments []core.Payment
}

// PaymentResult is returned by RecordPayment.
type PaymentResult struct {
	Payment     core.Payment
	Created     bool
	InvoiceLink core.Outcome
}

// ReportResult is returned by GetReport and GetBalances.
type ReportResult struct {
	Report *core.Report
}

// CollectionStatus is the load state of one stored collection.
type CollectionStatus struct {
	Name    core.Collection
	Status  core.LoadStatus
	Records int
}

// StoreStatusResult is returned by VerifyStore.
type StoreStatusResult struct {
	Collections          []CollectionStatus
	UnreconciledInvoices []core.Invoice
}

// Healthy reports whether nothing is corrupt or unreconciled.
func (r *StoreStatusResult) Healthy() bool {
	for _, c := range r.Collections {
		if c.Status == core.LoadCorrupt {
			return false
		}
	}
	return len(r.UnreconciledInvoices) == 0
}
