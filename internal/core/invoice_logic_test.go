package core_test

import (
	"math/rand"
	"testing"

	"billing-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLineTotal(t *testing.T) {
	assert.True(t, core.ComputeLineTotal(3, dec("19.99")).Equal(dec("59.97")))
	assert.True(t, core.ComputeLineTotal(0, dec("10")).IsZero())
	assert.True(t, core.ComputeLineTotal(-2, dec("10")).IsZero())
	assert.True(t, core.ComputeLineTotal(2, dec("-10")).IsZero())
}

func TestComputeInvoiceTotals_ExactSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		n := rng.Intn(12)
		items := make([]core.LineItem, n)
		want := decimal.Zero
		for i := range items {
			qty := rng.Intn(50)
			price := decimal.New(rng.Int63n(1_000_000), -2)
			// stored totals are deliberately stale
			items[i] = core.LineItem{ID: i + 1, Quantity: qty, Price: price, Total: dec("999")}
			want = want.Add(decimal.NewFromInt(int64(qty)).Mul(price))
		}
		totals := core.ComputeInvoiceTotals(items)
		require.True(t, totals.SubTotal.Equal(want), "run %d: %s != %s", run, totals.SubTotal, want)
		require.True(t, totals.GrandTotal.Equal(totals.SubTotal))
		require.True(t, totals.TaxAmount.IsZero())
	}
}

func TestComputeInvoiceTotals_DecimalPrecision(t *testing.T) {
	items := []core.LineItem{
		{ID: 1, Quantity: 3, Price: dec("0.1")},
		{ID: 2, Quantity: 1, Price: dec("0.2")},
	}
	assert.Equal(t, "0.5", core.ComputeInvoiceTotals(items).GrandTotal.String())
}

func TestApplyProduct(t *testing.T) {
	products := []core.Product{{ID: "p1", Name: "Widget", Price: dec("25")}}
	item := core.NewLineItem(1).WithQuantity(4)

	got, outcome := core.ApplyProduct(item, "p1", products)
	assert.Equal(t, core.OutcomeApplied, outcome)
	assert.Equal(t, "p1", got.ProductID)
	assert.Equal(t, "Widget", got.Name)
	assert.True(t, got.Total.Equal(dec("100")))

	got, outcome = core.ApplyProduct(item, "missing", products)
	assert.Equal(t, core.OutcomeSoftMiss, outcome)
	assert.Equal(t, item, got)

	_, outcome = core.ApplyProduct(item, "", products)
	assert.Equal(t, core.OutcomeSoftMiss, outcome)
}

func TestInvoiceDraft_RemoveLastItemIsNoop(t *testing.T) {
	d := core.NewInvoiceDraft("2024-03-10")
	require.Len(t, d.Items, 1)

	assert.False(t, d.RemoveItem(d.Items[0].ID))
	assert.False(t, d.RemoveItem(d.Items[0].ID))
	assert.Len(t, d.Items, 1)
}

func TestInvoiceDraft_AddThenRemoveRestoresItems(t *testing.T) {
	d := core.NewInvoiceDraft("2024-03-10")
	d.AddItem()
	d.UpdateQuantity(2, "3")
	d.UpdatePrice(2, "9.5")
	before := append([]core.LineItem(nil), d.Items...)

	id := d.AddItem()
	require.Len(t, d.Items, 3)
	require.True(t, d.RemoveItem(id))

	assert.Equal(t, before, d.Items)
}

func TestInvoiceDraft_IDsNeverReused(t *testing.T) {
	d := core.NewInvoiceDraft("2024-03-10")
	assert.Equal(t, 1, d.Items[0].ID)
	assert.Equal(t, 2, d.AddItem())
	assert.Equal(t, 3, d.AddItem())

	require.True(t, d.RemoveItem(3))
	assert.Equal(t, 4, d.AddItem())
}

func TestInvoiceDraft_MutationsRecomputeTotals(t *testing.T) {
	products := []core.Product{{ID: "p1", Name: "Widget", Price: dec("100")}}
	d := core.NewInvoiceDraft("2024-03-10")

	assert.Equal(t, core.OutcomeApplied, d.SelectProduct(1, "p1", products))
	d.UpdateQuantity(1, "2")
	second := d.AddItem()
	d.UpdateName(second, "Service")
	d.UpdatePrice(second, "50")
	assert.True(t, d.Totals.GrandTotal.Equal(dec("250")))

	d.UpdateQuantity(1, "abc")
	assert.True(t, d.Totals.GrandTotal.Equal(dec("50")))

	assert.Equal(t, core.OutcomeSoftMiss, d.SelectProduct(1, "nope", products))
	assert.Equal(t, core.OutcomeSoftMiss, d.UpdatePrice(99, "1"))
}

func TestInvoiceDraft_SelectCustomer(t *testing.T) {
	customers := []core.Customer{{ID: "c1", Name: "Acme", Address: "1 Road", Phone: "555"}}
	d := core.NewInvoiceDraft("2024-03-10")

	assert.Equal(t, core.OutcomeApplied, d.SelectCustomer("c1", customers))
	assert.Equal(t, core.CustomerSnapshot{ID: "c1", Name: "Acme", Address: "1 Road", Phone: "555"}, d.Customer)

	assert.Equal(t, core.OutcomeSoftMiss, d.SelectCustomer("c9", customers))
	assert.Equal(t, "c1", d.Customer.ID)

	assert.Equal(t, core.OutcomeApplied, d.SelectCustomer("", customers))
	assert.True(t, d.Customer.IsZero())
}

func TestInvoiceDraft_BuildInvoice(t *testing.T) {
	d := core.NewInvoiceDraft("2024-03-10")
	d.InvoiceNumber = " INV-1 "
	d.UpdateQuantity(1, "2")
	d.UpdatePrice(1, "100")
	d.UpdatePrice(d.AddItem(), "50")

	inv, err := d.BuildInvoice("inv-1")
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
	assert.True(t, inv.SubTotal.Equal(dec("250")))
	assert.True(t, inv.GrandTotal.Equal(dec("250")))
	assert.True(t, inv.Reconciles())

	// the invoice does not alias the draft
	d.UpdatePrice(1, "1")
	assert.True(t, inv.Items[0].Price.Equal(dec("100")))
}

func TestInvoiceDraft_Validate(t *testing.T) {
	d := core.NewInvoiceDraft("not-a-date")
	d.UpdateQuantity(1, "0")

	_, err := d.BuildInvoice("x")
	require.ErrorIs(t, err, core.ErrValidation)

	var verrs core.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"invoiceDate", "items[0].quantity"}, fields)

	empty := &core.InvoiceDraft{InvoiceDate: "2024-01-01"}
	assert.ErrorIs(t, empty.Validate(), core.ErrValidation)
}

func TestInvoice_Reconciles(t *testing.T) {
	inv := core.Invoice{
		Items:      []core.LineItem{{ID: 1, Quantity: 2, Price: dec("10"), Total: dec("20")}},
		SubTotal:   dec("20"),
		GrandTotal: dec("20"),
	}
	assert.True(t, inv.Reconciles())

	inv.GrandTotal = dec("21")
	assert.False(t, inv.Reconciles())
}
