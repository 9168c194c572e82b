package app

import (
	"context"
	"time"

	"billing-engine/internal/core"
	"billing-engine/internal/schema"
)

type appService struct {
	store            *core.EntityStore
	customerService  core.CustomerService
	productService   core.ProductService
	invoiceService   core.InvoiceService
	paymentService   core.PaymentService
	reportingService core.ReportingService
	now              func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	store *core.EntityStore,
	customerService core.CustomerService,
	productService core.ProductService,
	invoiceService core.InvoiceService,
	paymentService core.PaymentService,
	reportingService core.ReportingService,
) ApplicationService {
	return &appService{
		store:            store,
		customerService:  customerService,
		productService:   productService,
		invoiceService:   invoiceService,
		paymentService:   paymentService,
		reportingService: reportingService,
		now:              time.Now,
	}
}

func (s *appService) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context, search string) (*CustomerListResult, error) {
	customers, err := s.customerService.List(ctx, search)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) GetCustomer(ctx context.Context, id string) (*CustomerResult, error) {
	c, err := s.customerService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, in core.CustomerInput) (*CustomerResult, error) {
	c, err := s.customerService.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) UpdateCustomer(ctx context.Context, id string, in core.CustomerInput) (*CustomerResult, error) {
	c, err := s.customerService.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) DeleteCustomer(ctx context.Context, id string) (*CustomerDeleteResult, error) {
	d, err := s.customerService.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerDeleteResult{
		Customer:          d.Customer,
		DependentInvoices: d.DependentInvoices,
		DependentPayments: d.DependentPayments,
	}, nil
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, search string) (*ProductListResult, error) {
	products, err := s.productService.List(ctx, search)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, id string) (*ProductResult, error) {
	p, err := s.productService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) CreateProduct(ctx context.Context, in core.ProductInput) (*ProductResult, error) {
	p, err := s.productService.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id string, in core.ProductInput) (*ProductResult, error) {
	p, err := s.productService.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) DeleteProduct(ctx context.Context, id string) error {
	return s.productService.Delete(ctx, id)
}

// ── Invoices ──────────────────────────────────────────────────────────────────

// ledgerFilter builds the optional ledger filter of a list request.
func (s *appService) ledgerFilter(req ListRequest) (*core.LedgerFilter, error) {
	if !req.hasLedgerFilter() {
		return nil, nil
	}
	// list views have no default window, an empty side is unbounded
	r, err := core.ParseDateRangeWithin(req.From, req.To, core.AllTime())
	if err != nil {
		return nil, err
	}
	return &core.LedgerFilter{Range: r, CustomerID: req.CustomerID}, nil
}

func (s *appService) ListInvoices(ctx context.Context, req ListRequest) (*InvoiceListResult, error) {
	ledger, err := s.ledgerFilter(req)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceService.List(ctx, core.InvoiceQuery{Search: req.Search, Ledger: ledger})
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) GetInvoice(ctx context.Context, id string) (*InvoiceResult, error) {
	inv, err := s.invoiceService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) PreviewInvoice(ctx context.Context, in core.InvoiceInput) (*InvoicePreviewResult, error) {
	p, err := s.invoiceService.Preview(ctx, in)
	if err != nil {
		return nil, err
	}
	return &InvoicePreviewResult{Draft: p.Draft, IgnoredReferences: p.Misses}, nil
}

func (s *appService) SaveInvoice(ctx context.Context, in core.InvoiceInput) (*InvoiceResult, error) {
	inv, misses, err := s.invoiceService.Save(ctx, in)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv, IgnoredReferences: misses}, nil
}

func (s *appService) DeleteInvoice(ctx context.Context, id string) (*InvoiceDeleteResult, error) {
	allocated, err := s.invoiceService.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceDeleteResult{AllocatedPayments: allocated}, nil
}

func (s *appService) CustomerInvoices(ctx context.Context, customerID string) (*InvoiceListResult, error) {
	invoices, err := s.invoiceService.ForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

// ── Payments ──────────────────────────────────────────────────────────────────

func (s *appService) ListPayments(ctx context.Context, req ListRequest) (*PaymentListResult, error) {
	ledger, err := s.ledgerFilter(req)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentService.List(ctx, core.PaymentQuery{Search: req.Search, Ledger: ledger})
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Payments: payments}, nil
}

func (s *appService) RecordPayment(ctx context.Context, in core.PaymentInput) (*PaymentResult, error) {
	rec, err := s.paymentService.Record(ctx, in)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: rec.Payment, Created: rec.Created, InvoiceLink: rec.InvoiceLink}, nil
}

func (s *appService) DeletePayment(ctx context.Context, id string) error {
	return s.paymentService.Delete(ctx, id)
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *appService) GetReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	typ, err := core.ParseReportType(req.Type)
	if err != nil {
		return nil, err
	}
	r, err := core.ParseDateRange(req.From, req.To, s.now())
	if err != nil {
		return nil, err
	}
	report, err := s.reportingService.Report(ctx, typ, core.LedgerFilter{Range: r, CustomerID: req.CustomerID})
	if err != nil {
		return nil, err
	}
	return &ReportResult{Report: report}, nil
}

func (s *appService) GetBalances(ctx context.Context) (*ReportResult, error) {
	report, err := s.reportingService.Balances(ctx)
	if err != nil {
		return nil, err
	}
	return &ReportResult{Report: report}, nil
}

func (s *appService) VerifyStore(ctx context.Context) (*StoreStatusResult, error) {
	res := &StoreStatusResult{}
	for _, c := range core.Collections {
		status, n, err := s.store.Status(ctx, c)
		if err != nil {
			return nil, err
		}
		res.Collections = append(res.Collections, CollectionStatus{Name: c, Status: status, Records: n})
	}
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if !inv.Reconciles() {
			res.UnreconciledInvoices = append(res.UnreconciledInvoices, inv)
		}
	}
	return res, nil
}

func (s *appService) CollectionSchema(collection string) ([]byte, error) {
	return schema.MarshalCollection(core.Collection(collection))
}
