package repl

import (
	"fmt"
	"io"
	"strings"

	"billing-engine/internal/app"
	"billing-engine/internal/core"
)

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func printCustomers(w io.Writer, result *app.CustomerListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "  CUSTOMERS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	if len(result.Customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		fmt.Fprintln(w, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(w, "  %-36s %-20s %s\n", "ID", "NAME", "PHONE")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, c := range result.Customers {
		fmt.Fprintf(w, "  %-36s %-20s %s\n", c.ID, truncate(c.Name, 20), c.Phone)
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printProducts(w io.Writer, result *app.ProductListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "  PRODUCTS")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	if len(result.Products) == 0 {
		fmt.Fprintln(w, "  No products found.")
		fmt.Fprintln(w, strings.Repeat("=", 80))
		return
	}
	fmt.Fprintf(w, "  %-36s %-22s %-8s %10s\n", "ID", "NAME", "HSN", "PRICE")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, p := range result.Products {
		fmt.Fprintf(w, "  %-36s %-22s %-8s %10s\n", p.ID, truncate(p.Name, 22), p.HSNCode, p.Price.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func printInvoices(w io.Writer, result *app.InvoiceListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 90))
	fmt.Fprintln(w, "  INVOICES")
	fmt.Fprintln(w, strings.Repeat("=", 90))
	if len(result.Invoices) == 0 {
		fmt.Fprintln(w, "  No invoices found.")
		fmt.Fprintln(w, strings.Repeat("=", 90))
		return
	}
	fmt.Fprintf(w, "  %-36s %-12s %-12s %-14s %10s\n", "ID", "NUMBER", "DATE", "CUSTOMER", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, inv := range result.Invoices {
		fmt.Fprintf(w, "  %-36s %-12s %-12s %-14s %10s\n",
			inv.ID, truncate(inv.InvoiceNumber, 12), inv.InvoiceDate,
			truncate(inv.CustomerDetails.Name, 14), inv.GrandTotal.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 90))
}

// printLines renders line items with their running totals.
func printLines(w io.Writer, items []core.LineItem, totals core.InvoiceTotals) {
	fmt.Fprintln(w, strings.Repeat("-", 64))
	fmt.Fprintf(w, "  %-5s %-25s %6s %12s %12s\n", "LINE", "ITEM", "QTY", "PRICE", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for _, l := range items {
		name := l.Name
		if name == "" {
			name = "(blank)"
		}
		fmt.Fprintf(w, "  %-5d %-25s %6d %12s %12s\n",
			l.ID, truncate(name, 25), l.Quantity, l.Price.StringFixed(2), l.Total.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 64))
	fmt.Fprintf(w, "  %-51s %12s\n", "SUBTOTAL", totals.SubTotal.StringFixed(2))
	fmt.Fprintf(w, "  %-51s %12s\n", "TAX", totals.TaxAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-51s %12s\n", "GRAND TOTAL", totals.GrandTotal.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("-", 64))
}

func printDraft(w io.Writer, d *core.InvoiceDraft) {
	customer := d.Customer.Name
	if d.Customer.IsZero() {
		customer = "(none)"
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Invoice:   %s\n", d.InvoiceNumber)
	fmt.Fprintf(w, "  Date:      %s\n", d.InvoiceDate)
	fmt.Fprintf(w, "  Customer:  %s\n", customer)
	printLines(w, d.Items, d.Totals)
}

func printInvoiceDetail(w io.Writer, inv *core.Invoice) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Invoice:   %s (%s)\n", inv.InvoiceNumber, inv.ID)
	fmt.Fprintf(w, "  Date:      %s\n", inv.InvoiceDate)
	fmt.Fprintf(w, "  Customer:  %s\n", inv.CustomerDetails.Name)
	if inv.CustomerDetails.Address != "" {
		fmt.Fprintf(w, "             %s\n", inv.CustomerDetails.Address)
	}
	printLines(w, inv.Items, core.InvoiceTotals{SubTotal: inv.SubTotal, TaxAmount: inv.TaxAmount, GrandTotal: inv.GrandTotal})
}

func printPayments(w io.Writer, result *app.PaymentListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "  PAYMENTS")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	if len(result.Payments) == 0 {
		fmt.Fprintln(w, "  No payments found.")
		fmt.Fprintln(w, strings.Repeat("=", 80))
		return
	}
	fmt.Fprintf(w, "  %-36s %-12s %-14s %12s\n", "ID", "DATE", "MODE", "AMOUNT")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, p := range result.Payments {
		fmt.Fprintf(w, "  %-36s %-12s %-14s %12s\n", p.ID, p.Date, p.PaymentMode, p.Amount.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func printReport(w io.Writer, rep *core.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "  %s REPORT  %s to %s\n", strings.ToUpper(string(rep.Type)), rep.From, rep.To)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	switch rep.Type {
	case core.SalesReport:
		fmt.Fprintf(w, "  %-14s %-12s %-30s %14s\n", "INVOICE", "DATE", "CUSTOMER", "AMOUNT")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, r := range rep.Sales {
			fmt.Fprintf(w, "  %-14s %-12s %-30s %14s\n",
				truncate(r.InvoiceNumber, 14), r.InvoiceDate, truncate(r.CustomerName, 30), r.Amount.StringFixed(2))
		}
	case core.PaymentsReport:
		fmt.Fprintf(w, "  %-12s %-22s %-14s %-14s %12s\n", "DATE", "CUSTOMER", "INVOICE", "MODE", "AMOUNT")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, r := range rep.Payments {
			fmt.Fprintf(w, "  %-12s %-22s %-14s %-14s %12s\n",
				r.Date, truncate(r.CustomerName, 22), truncate(r.InvoiceNumber, 14), r.PaymentMode, r.Amount.StringFixed(2))
		}
	case core.CustomerReport:
		fmt.Fprintf(w, "  %-26s %8s %14s %12s %12s\n", "CUSTOMER", "INVOICES", "INVOICED", "PAID", "BALANCE")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, r := range rep.Customers {
			fmt.Fprintf(w, "  %-26s %8d %14s %12s %12s\n",
				truncate(r.Name, 26), r.InvoiceCount,
				r.TotalInvoiceAmount.StringFixed(2), r.TotalPaymentAmount.StringFixed(2), r.Balance.StringFixed(2))
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "  %-62s %14s\n", "TOTAL SALES", rep.TotalSales.StringFixed(2))
	fmt.Fprintf(w, "  %-62s %14s\n", "TOTAL PAYMENTS", rep.TotalPayments.StringFixed(2))
	fmt.Fprintf(w, "  %-62s %14s\n", "OUTSTANDING", rep.Outstanding.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func printStoreStatus(w io.Writer, result *app.StoreStatusResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-12s %-8s %8s\n", "COLLECTION", "STATUS", "RECORDS")
	fmt.Fprintln(w, strings.Repeat("-", 32))
	for _, c := range result.Collections {
		fmt.Fprintf(w, "  %-12s %-8s %8d\n", c.Name, c.Status, c.Records)
	}
	for _, inv := range result.UnreconciledInvoices {
		fmt.Fprintf(w, "  UNRECONCILED invoice %s (%s)\n", inv.ID, inv.InvoiceNumber)
	}
	if result.Healthy() {
		fmt.Fprintln(w, "  Store OK.")
	}
}

func printMisses(w io.Writer, misses []core.ReferenceMiss) {
	for _, m := range misses {
		fmt.Fprintf(w, "  Note: %s %q did not match any record and was ignored.\n", m.Field, m.ID)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "BILLING ENGINE COMMANDS")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  MASTER DATA")
	fmt.Fprintln(w, "  /customers [search]                   List customers")
	fmt.Fprintln(w, "  /add-customer <name>                  Add a customer")
	fmt.Fprintln(w, "  /products  [search]                   List products")
	fmt.Fprintln(w, "  /add-product <price> <name>           Add a product")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  INVOICES")
	fmt.Fprintln(w, "  /invoices [search]                    List invoices")
	fmt.Fprintln(w, "  /invoice <id>                         Show an invoice")
	fmt.Fprintln(w, "  /new-invoice                          Create an invoice (interactive)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PAYMENTS")
	fmt.Fprintln(w, "  /payments [search]                    List payments")
	fmt.Fprintln(w, "  /pay <customer-id> <amount> [invoice-id]  Record a payment dated today")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  REPORTS")
	fmt.Fprintln(w, "  /report [sales|payments|customer] [from] [to]   Month to date by default")
	fmt.Fprintln(w, "  /balances                             Outstanding balance per customer")
	fmt.Fprintln(w, "  /verify                               Check stored collections")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SESSION")
	fmt.Fprintln(w, "  /help                                 Show this help")
	fmt.Fprintln(w, "  /exit                                 Exit")
	fmt.Fprintln(w, strings.Repeat("=", 70))
}
