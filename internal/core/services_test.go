package core_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"billing-engine/internal/core"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	store     *core.EntityStore
	customers core.CustomerService
	products  core.ProductService
	invoices  core.InvoiceService
	payments  core.PaymentService
	reports   core.ReportingService
}

func newServices(t *testing.T, opts core.InvoiceServiceOptions) *services {
	t.Helper()
	s, _ := newTestStore(t)
	log := zerolog.Nop()
	return &services{
		store:     s,
		customers: core.NewCustomerService(s, log),
		products:  core.NewProductService(s, log),
		invoices:  core.NewInvoiceService(s, opts, log),
		payments:  core.NewPaymentService(s, log),
		reports:   core.NewReportingService(s),
	}
}

func TestCustomerService_CRUD(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()

	_, err := svc.customers.Create(ctx, core.CustomerInput{Name: "   "})
	require.ErrorIs(t, err, core.ErrValidation)

	acme, err := svc.customers.Create(ctx, core.CustomerInput{Name: " Acme ", Phone: "555-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, acme.ID)
	assert.Equal(t, "Acme", acme.Name)

	globex, err := svc.customers.Create(ctx, core.CustomerInput{Name: "Globex"})
	require.NoError(t, err)
	assert.NotEqual(t, acme.ID, globex.ID)

	list, err := svc.customers.List(ctx, "555")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, acme.ID, list[0].ID)

	updated, err := svc.customers.Update(ctx, acme.ID, core.CustomerInput{Name: "Acme Ltd", Address: "1 Road"})
	require.NoError(t, err)
	assert.Equal(t, acme.ID, updated.ID)
	assert.Equal(t, "1 Road", updated.Address)

	_, err = svc.customers.Update(ctx, "missing", core.CustomerInput{Name: "X"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := svc.customers.Get(ctx, globex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.Name)
}

func TestProductService_Validation(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input core.ProductInput
	}{
		{"missing name", core.ProductInput{Price: "10"}},
		{"missing price", core.ProductInput{Name: "Rod"}},
		{"non numeric price", core.ProductInput{Name: "Rod", Price: "ten"}},
		{"negative price", core.ProductInput{Name: "Rod", Price: "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.products.Create(ctx, tt.input)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}

	p, err := svc.products.Create(ctx, core.ProductInput{Name: "Rod", Price: "0", HSNCode: "7214"})
	require.NoError(t, err)
	assert.True(t, p.Price.IsZero())

	require.NoError(t, svc.products.Delete(ctx, p.ID))
	assert.ErrorIs(t, svc.products.Delete(ctx, p.ID), core.ErrNotFound)
}

func TestInvoiceService_SaveFreezesSnapshot(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()

	acme, err := svc.customers.Create(ctx, core.CustomerInput{Name: "Acme", Address: "Old Street"})
	require.NoError(t, err)
	widget, err := svc.products.Create(ctx, core.ProductInput{Name: "Widget", Price: "100"})
	require.NoError(t, err)

	inv, misses, err := svc.invoices.Save(ctx, core.InvoiceInput{
		InvoiceNumber: "INV-1",
		InvoiceDate:   "2024-03-10",
		CustomerID:    acme.ID,
		Items: []core.InvoiceLineInput{
			{ProductID: widget.ID, Quantity: "2"},
			{Name: "Delivery", Quantity: "1", Price: "50"},
			{ProductID: "ghost", Name: "Misc", Quantity: "1", Price: "0"},
		},
	})
	require.NoError(t, err)
	require.Len(t, misses, 1)
	assert.Equal(t, "items[2].productId", misses[0].Field)
	assert.True(t, inv.GrandTotal.Equal(dec("250")))
	assert.Equal(t, []int{1, 2, 3}, []int{inv.Items[0].ID, inv.Items[1].ID, inv.Items[2].ID})
	assert.Equal(t, "Widget", inv.Items[0].Name)

	owed, err := svc.invoices.ForCustomer(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, owed, 1)
	assert.Equal(t, inv.ID, owed[0].ID)
	none, err := svc.invoices.ForCustomer(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	// editing or deleting the customer never touches the saved invoice
	_, err = svc.customers.Update(ctx, acme.ID, core.CustomerInput{Name: "Acme Renamed", Address: "New Street"})
	require.NoError(t, err)
	deletion, err := svc.customers.Delete(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deletion.DependentInvoices)

	stored, err := svc.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.CustomerDetails.Name)
	assert.Equal(t, "Old Street", stored.CustomerDetails.Address)
}

func TestInvoiceService_PriceOverridesProduct(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()
	widget, err := svc.products.Create(ctx, core.ProductInput{Name: "Widget", Price: "100"})
	require.NoError(t, err)

	preview, err := svc.invoices.Preview(ctx, core.InvoiceInput{
		InvoiceDate: "2024-03-10",
		Items:       []core.InvoiceLineInput{{ProductID: widget.ID, Quantity: "3", Price: "90"}},
	})
	require.NoError(t, err)
	assert.True(t, preview.Draft.Totals.GrandTotal.Equal(dec("270")))
	assert.Equal(t, "Widget", preview.Draft.Items[0].Name)
}

func TestInvoiceService_RequireCustomer(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{RequireCustomer: true})
	ctx := context.Background()

	_, misses, err := svc.invoices.Save(ctx, core.InvoiceInput{
		InvoiceDate: "2024-03-10",
		CustomerID:  "ghost",
		Items:       []core.InvoiceLineInput{{Name: "X", Quantity: "1", Price: "1"}},
	})
	assert.ErrorIs(t, err, core.ErrValidation)
	require.Len(t, misses, 1)
	assert.Equal(t, "customerId", misses[0].Field)

	invoices, err := svc.invoices.List(ctx, core.InvoiceQuery{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestInvoiceService_RejectsInvalidInvoice(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()

	_, _, err := svc.invoices.Save(ctx, core.InvoiceInput{InvoiceDate: "2024-03-10"})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, _, err = svc.invoices.Save(ctx, core.InvoiceInput{
		InvoiceDate: "2024-03-10",
		Items:       []core.InvoiceLineInput{{Name: "X", Quantity: "zero", Price: "5"}},
	})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPaymentService_RecordAndUpsert(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()

	acme, err := svc.customers.Create(ctx, core.CustomerInput{Name: "Acme"})
	require.NoError(t, err)
	globex, err := svc.customers.Create(ctx, core.CustomerInput{Name: "Globex"})
	require.NoError(t, err)
	inv, _, err := svc.invoices.Save(ctx, core.InvoiceInput{
		InvoiceNumber: "INV-1", InvoiceDate: "2024-03-10", CustomerID: acme.ID,
		Items: []core.InvoiceLineInput{{Name: "X", Quantity: "1", Price: "250"}},
	})
	require.NoError(t, err)

	rec, err := svc.payments.Record(ctx, core.PaymentInput{
		Date: "2024-03-15", CustomerID: acme.ID, InvoiceID: inv.ID, Amount: "120",
	})
	require.NoError(t, err)
	assert.True(t, rec.Created)
	assert.Equal(t, core.OutcomeApplied, rec.InvoiceLink)
	assert.Equal(t, core.PaymentCash, rec.Payment.PaymentMode)
	assert.Equal(t, inv.ID, rec.Payment.InvoiceID)

	// unknown invoice: link keeps its previous value
	again, err := svc.payments.Record(ctx, core.PaymentInput{
		ID: rec.Payment.ID, Date: "2024-03-16", CustomerID: acme.ID, InvoiceID: "ghost", Amount: "130", PaymentMode: "UPI",
	})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, core.OutcomeSoftMiss, again.InvoiceLink)
	assert.Equal(t, inv.ID, again.Payment.InvoiceID)

	// an invoice of another customer is not linked
	other, err := svc.payments.Record(ctx, core.PaymentInput{
		Date: "2024-03-16", CustomerID: globex.ID, InvoiceID: inv.ID, Amount: "10",
	})
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeSoftMiss, other.InvoiceLink)
	assert.Empty(t, other.Payment.InvoiceID)

	all, err := svc.payments.List(ctx, core.PaymentQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Amount.Equal(dec("130")))

	byInvoice, err := svc.payments.List(ctx, core.PaymentQuery{Search: "inv-1"})
	require.NoError(t, err)
	assert.Len(t, byInvoice, 1)

	allocated, err := svc.invoices.Delete(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, allocated)
}

func TestPaymentService_Validation(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()
	acme, err := svc.customers.Create(ctx, core.CustomerInput{Name: "Acme"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input core.PaymentInput
	}{
		{"missing customer", core.PaymentInput{Date: "2024-03-01", Amount: "1"}},
		{"unknown customer", core.PaymentInput{Date: "2024-03-01", Amount: "1", CustomerID: "ghost"}},
		{"missing amount", core.PaymentInput{Date: "2024-03-01", CustomerID: acme.ID}},
		{"zero amount", core.PaymentInput{Date: "2024-03-01", CustomerID: acme.ID, Amount: "0"}},
		{"bad date", core.PaymentInput{Date: "March", CustomerID: acme.ID, Amount: "1"}},
		{"bad mode", core.PaymentInput{Date: "2024-03-01", CustomerID: acme.ID, Amount: "1", PaymentMode: "Barter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.payments.Record(ctx, tt.input)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestReportingService_Reports(t *testing.T) {
	svc := newServices(t, core.InvoiceServiceOptions{})
	ctx := context.Background()

	acme, err := svc.customers.Create(ctx, core.CustomerInput{Name: "Acme"})
	require.NoError(t, err)
	inv, _, err := svc.invoices.Save(ctx, core.InvoiceInput{
		InvoiceNumber: "INV-1", InvoiceDate: "2024-03-10", CustomerID: acme.ID,
		Items: []core.InvoiceLineInput{{Name: "A", Quantity: "2", Price: "100"}, {Name: "B", Quantity: "1", Price: "50"}},
	})
	require.NoError(t, err)
	_, err = svc.payments.Record(ctx, core.PaymentInput{Date: "2024-03-15", CustomerID: acme.ID, InvoiceID: inv.ID, Amount: "120"})
	require.NoError(t, err)
	_, err = svc.payments.Record(ctx, core.PaymentInput{Date: "2024-03-20", CustomerID: acme.ID, Amount: "30"})
	require.NoError(t, err)

	r, err := core.ParseDateRange("2024-03-01", "2024-03-31", time.Now())
	require.NoError(t, err)
	filter := core.LedgerFilter{Range: r, CustomerID: acme.ID}

	sales, err := svc.reports.Report(ctx, core.SalesReport, filter)
	require.NoError(t, err)
	require.Len(t, sales.Sales, 1)
	assert.Equal(t, "Acme", sales.Sales[0].CustomerName)
	assert.True(t, sales.Outstanding.Equal(dec("100")))

	_, err = svc.customers.Delete(ctx, acme.ID)
	require.NoError(t, err)

	payments, err := svc.reports.Report(ctx, core.PaymentsReport, filter)
	require.NoError(t, err)
	require.Len(t, payments.Payments, 2)
	assert.Equal(t, core.UnknownCustomerName, payments.Payments[0].CustomerName)
	assert.Equal(t, "INV-1", payments.Payments[0].InvoiceNumber)
	assert.Equal(t, core.UnlinkedInvoice, payments.Payments[1].InvoiceNumber)

	balances, err := svc.reports.Balances(ctx)
	require.NoError(t, err)
	assert.Empty(t, balances.Customers)
	assert.True(t, balances.TotalPayments.Equal(dec("150")))
}

func TestParseReportType(t *testing.T) {
	typ, err := core.ParseReportType("")
	require.NoError(t, err)
	assert.Equal(t, core.SalesReport, typ)

	_, err = core.ParseReportType("ledger")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestBuildReport_EmptyRowsSerializeAsArrays(t *testing.T) {
	filter := core.LedgerFilter{Range: core.AllTime(), CustomerID: "nobody"}
	for _, typ := range []core.ReportType{core.SalesReport, core.PaymentsReport, core.CustomerReport} {
		t.Run(string(typ), func(t *testing.T) {
			rep := core.BuildReport(typ, filter, []core.Customer{{ID: "c1", Name: "Acme"}}, nil, nil)
			raw, err := json.Marshal(rep)
			require.NoError(t, err)

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &body))
			for _, key := range []string{"sales", "payments", "customers"} {
				require.Contains(t, body, key)
				assert.JSONEq(t, "[]", string(body[key]), key)
			}
		})
	}
}
