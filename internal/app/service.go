package app

import (
	"context"

	"billing-engine/internal/core"
)

// ApplicationService is what the REPL, CLI, web and scheduler adapters call.
// Implementations return data only; formatting belongs to the adapter.
type ApplicationService interface {
	// Health checks that the store backend is reachable.
	Health(ctx context.Context) error

	// ListCustomers returns customers whose name or phone matches search.
	ListCustomers(ctx context.Context, search string) (*CustomerListResult, error)

	// GetCustomer returns a single customer by id.
	GetCustomer(ctx context.Context, id string) (*CustomerResult, error)

	// CreateCustomer validates and stores a new customer.
	CreateCustomer(ctx context.Context, in core.CustomerInput) (*CustomerResult, error)

	// UpdateCustomer replaces a customer's editable fields. Saved invoices keep their snapshot.
	UpdateCustomer(ctx context.Context, id string, in core.CustomerInput) (*CustomerResult, error)

	// DeleteCustomer removes a customer and reports records still referencing it.
	DeleteCustomer(ctx context.Context, id string) (*CustomerDeleteResult, error)

	// ListProducts returns products whose name, description or HSN code matches search.
	ListProducts(ctx context.Context, search string) (*ProductListResult, error)

	// GetProduct returns a single product by id.
	GetProduct(ctx context.Context, id string) (*ProductResult, error)

	// CreateProduct validates and stores a new product.
	CreateProduct(ctx context.Context, in core.ProductInput) (*ProductResult, error)

	// UpdateProduct replaces a product's fields.
	UpdateProduct(ctx context.Context, id string, in core.ProductInput) (*ProductResult, error)

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, id string) error

	// ListInvoices returns invoices matching the search term and, when any of
	// From, To or CustomerID is set, the ledger filter.
	ListInvoices(ctx context.Context, req ListRequest) (*InvoiceListResult, error)

	// GetInvoice returns a single invoice by id.
	GetInvoice(ctx context.Context, id string) (*InvoiceResult, error)

	// PreviewInvoice computes line and invoice totals without saving.
	PreviewInvoice(ctx context.Context, in core.InvoiceInput) (*InvoicePreviewResult, error)

	// SaveInvoice builds and stores an invoice, freezing the customer snapshot.
	SaveInvoice(ctx context.Context, in core.InvoiceInput) (*InvoiceResult, error)

	// DeleteInvoice removes an invoice. Payments allocated to it are kept.
	DeleteInvoice(ctx context.Context, id string) (*InvoiceDeleteResult, error)

	// CustomerInvoices returns the invoices a payment from the customer may be allocated to.
	CustomerInvoices(ctx context.Context, customerID string) (*InvoiceListResult, error)

	// ListPayments returns payments matching the search term and optional ledger filter.
	ListPayments(ctx context.Context, req ListRequest) (*PaymentListResult, error)

	// RecordPayment inserts a payment, or replaces the one with the same id.
	RecordPayment(ctx context.Context, in core.PaymentInput) (*PaymentResult, error)

	// DeletePayment removes a payment.
	DeletePayment(ctx context.Context, id string) error

	// GetReport runs a sales, payments or customer report.
	// An empty From/To range defaults to the current month to date.
	GetReport(ctx context.Context, req ReportRequest) (*ReportResult, error)

	// GetBalances returns the all-time outstanding balance of every customer.
	GetBalances(ctx context.Context) (*ReportResult, error)

	// VerifyStore reports the load status of every collection and lists
	// invoices whose stored totals do not reconcile with their lines.
	VerifyStore(ctx context.Context) (*StoreStatusResult, error)

	// CollectionSchema returns the JSON Schema of a stored collection.
	CollectionSchema(collection string) ([]byte, error)
}
