package core

import "github.com/shopspring/decimal"

// BuildCustomerSummary aggregates the already filtered invoices and payments
// per customer. Output follows the order of customers; customers with no
// invoices and no payment amount are omitted. Records referencing unknown
// customers are not attributed to anyone.
func BuildCustomerSummary(customers []Customer, invoices []Invoice, payments []Payment) []CustomerSummary {
	type acc struct {
		count    int
		invoiced decimal.Decimal
		paid     decimal.Decimal
	}
	totals := make(map[string]*acc, len(customers))
	get := func(id string) *acc {
		a, ok := totals[id]
		if !ok {
			a = &acc{invoiced: decimal.Zero, paid: decimal.Zero}
			totals[id] = a
		}
		return a
	}
	for _, inv := range invoices {
		a := get(inv.CustomerDetails.ID)
		a.count++
		a.invoiced = a.invoiced.Add(inv.GrandTotal)
	}
	for _, p := range payments {
		a := get(p.CustomerID)
		a.paid = a.paid.Add(p.Amount)
	}

	out := []CustomerSummary{}
	for _, c := range customers {
		a, ok := totals[c.ID]
		if !ok || (a.count == 0 && a.paid.IsZero()) {
			continue
		}
		out = append(out, CustomerSummary{
			CustomerID:         c.ID,
			Name:               c.Name,
			InvoiceCount:       a.count,
			TotalInvoiceAmount: a.invoiced,
			TotalPaymentAmount: a.paid,
			Balance:            a.invoiced.Sub(a.paid),
		})
	}
	return out
}
