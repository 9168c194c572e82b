package export

import (
	"bytes"
	"strings"
	"testing"

	"billing-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSafe(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", CSVSafe("=SUM(A1)"))
	assert.Equal(t, "'-5", CSVSafe("-5"))
	assert.Equal(t, "'@cmd", CSVSafe("@cmd"))
	assert.Equal(t, "Acme", CSVSafe("Acme"))
	assert.Equal(t, "", CSVSafe(""))
}

func TestWriteReportCSV_Payments(t *testing.T) {
	rep := &core.Report{
		Type:          core.PaymentsReport,
		From:          "2024-03-01",
		To:            "2024-03-31",
		TotalSales:    decimal.NewFromInt(100),
		TotalPayments: decimal.NewFromInt(40),
		Outstanding:   decimal.NewFromInt(60),
		Payments: []core.PaymentRow{{
			Date:          "2024-03-05",
			CustomerName:  core.UnknownCustomerName,
			InvoiceNumber: core.UnlinkedInvoice,
			PaymentMode:   core.PaymentUPI,
			Reference:     "+ref",
			Amount:        decimal.NewFromInt(40),
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, rep))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Customer,Invoice,Mode,Reference,Amount", lines[0])
	assert.Equal(t, "2024-03-05,Unknown,N/A,UPI,'+ref,40.00", lines[1])
	assert.Equal(t, "Total Sales,100.00", lines[2])
	assert.Equal(t, "Outstanding,60.00", lines[4])
	assert.Equal(t, "report-payments-2024-03-01-2024-03-31.csv", Filename(rep))
}

func TestWriteReportCSV_CustomerSummary(t *testing.T) {
	rep := &core.Report{
		Type: core.CustomerReport,
		Customers: []core.CustomerSummary{{
			Name:               "Acme",
			InvoiceCount:       2,
			TotalInvoiceAmount: decimal.NewFromInt(200),
			TotalPaymentAmount: decimal.NewFromInt(50),
			Balance:            decimal.NewFromInt(150),
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, rep))
	assert.Contains(t, buf.String(), "Acme,2,200.00,50.00,150.00\n")
}
