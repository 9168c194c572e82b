package core

import (
	"github.com/shopspring/decimal"
)

// Collection names a persisted record collection in the entity store.
type Collection string

const (
	CustomersCollection Collection = "customers"
	ProductsCollection  Collection = "products"
	InvoicesCollection  Collection = "invoices"
	PaymentsCollection  Collection = "payments"
)

// Collections lists every collection the engine persists, in dependency order.
var Collections = []Collection{
	CustomersCollection,
	ProductsCollection,
	InvoicesCollection,
	PaymentsCollection,
}

// Customer is a customer master record.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name" jsonschema:"minLength=1"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Product is a catalog item. Price is the default unit price copied onto
// line items when the product is selected.
type Product struct {
	ID          string          `json:"id"`
	ProductCode string          `json:"productCode"`
	Name        string          `json:"name" jsonschema:"minLength=1"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	HSNCode     string          `json:"hsnCode"`
}

// LineItem is one billed line of an invoice.
// Total always equals Quantity * Price.
type LineItem struct {
	ID        int             `json:"id"`
	ProductID string          `json:"productId"` // empty when no product is selected
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// CustomerSnapshot is a copy of the customer's fields frozen onto an invoice
// when it is saved. Later edits to the Customer record never alter it.
type CustomerSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// SnapshotOf copies the customer's current fields into a snapshot.
func SnapshotOf(c Customer) CustomerSnapshot {
	return CustomerSnapshot{ID: c.ID, Name: c.Name, Address: c.Address, Phone: c.Phone}
}

// IsZero reports whether no customer was attached.
func (s CustomerSnapshot) IsZero() bool {
	return s == CustomerSnapshot{}
}

// Invoice is a saved invoice record.
// SubTotal and GrandTotal equal the sum of item totals; TaxAmount is always zero.
type Invoice struct {
	ID              string           `json:"id"`
	InvoiceNumber   string           `json:"invoiceNumber"`
	InvoiceDate     string           `json:"invoiceDate" jsonschema:"format=date"` // YYYY-MM-DD
	CustomerDetails CustomerSnapshot `json:"customerDetails"`
	Items           []LineItem       `json:"items" jsonschema:"minItems=1"`
	SubTotal        decimal.Decimal  `json:"subTotal"`
	TaxAmount       decimal.Decimal  `json:"taxAmount"`
	GrandTotal      decimal.Decimal  `json:"grandTotal"`
}

// PaymentMode is the instrument a payment was received with.
type PaymentMode string

const (
	PaymentCash         PaymentMode = "Cash"
	PaymentCheque       PaymentMode = "Cheque"
	PaymentBankTransfer PaymentMode = "Bank Transfer"
	PaymentUPI          PaymentMode = "UPI"
	PaymentOther        PaymentMode = "Other"
)

// PaymentModes lists the accepted payment modes in display order.
var PaymentModes = []PaymentMode{PaymentCash, PaymentCheque, PaymentBankTransfer, PaymentUPI, PaymentOther}

// Valid reports whether m is one of the accepted payment modes.
func (m PaymentMode) Valid() bool {
	for _, known := range PaymentModes {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is money received from a customer, optionally allocated to one invoice.
type Payment struct {
	ID          string          `json:"id"`
	Date        string          `json:"date" jsonschema:"format=date"` // YYYY-MM-DD
	CustomerID  string          `json:"customerId"`
	InvoiceID   string          `json:"invoiceId"` // empty for an unallocated payment
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode PaymentMode     `json:"paymentMode" jsonschema:"enum=Cash,enum=Cheque,enum=Bank Transfer,enum=UPI,enum=Other"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// CustomerSummary is the per-customer aggregate of a ledger query.
// Balance equals TotalInvoiceAmount - TotalPaymentAmount.
type CustomerSummary struct {
	CustomerID         string          `json:"customerId"`
	Name               string          `json:"name"`
	InvoiceCount       int             `json:"invoiceCount"`
	TotalInvoiceAmount decimal.Decimal `json:"totalInvoiceAmount"`
	TotalPaymentAmount decimal.Decimal `json:"totalPaymentAmount"`
	Balance            decimal.Decimal `json:"balance"`
}
