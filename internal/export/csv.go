// Package export renders reports for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"billing-engine/internal/core"
)

// CSVSafe prevents CSV formula injection by prefixing cells that begin with a
// formula-triggering character with a single quote.
func CSVSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Filename is the suggested attachment name for a report.
func Filename(rep *core.Report) string {
	return "report-" + string(rep.Type) + "-" + rep.From + "-" + rep.To + ".csv"
}

// WriteReportCSV writes the report rows followed by the three ledger totals.
func WriteReportCSV(w io.Writer, rep *core.Report) error {
	cw := csv.NewWriter(w)
	var rows [][]string
	switch rep.Type {
	case core.SalesReport:
		rows = append(rows, []string{"Invoice Number", "Date", "Customer", "Amount"})
		for _, row := range rep.Sales {
			rows = append(rows, []string{
				CSVSafe(row.InvoiceNumber),
				row.InvoiceDate,
				CSVSafe(row.CustomerName),
				row.Amount.StringFixed(2),
			})
		}
	case core.PaymentsReport:
		rows = append(rows, []string{"Date", "Customer", "Invoice", "Mode", "Reference", "Amount"})
		for _, row := range rep.Payments {
			rows = append(rows, []string{
				row.Date,
				CSVSafe(row.CustomerName),
				CSVSafe(row.InvoiceNumber),
				string(row.PaymentMode),
				CSVSafe(row.Reference),
				row.Amount.StringFixed(2),
			})
		}
	case core.CustomerReport:
		rows = append(rows, []string{"Customer", "Invoices", "Invoiced", "Paid", "Balance"})
		for _, row := range rep.Customers {
			rows = append(rows, []string{
				CSVSafe(row.Name),
				strconv.Itoa(row.InvoiceCount),
				row.TotalInvoiceAmount.StringFixed(2),
				row.TotalPaymentAmount.StringFixed(2),
				row.Balance.StringFixed(2),
			})
		}
	}
	rows = append(rows,
		[]string{"Total Sales", rep.TotalSales.StringFixed(2)},
		[]string{"Total Payments", rep.TotalPayments.StringFixed(2)},
		[]string{"Outstanding", rep.Outstanding.StringFixed(2)},
	)
	return cw.WriteAll(rows)
}
