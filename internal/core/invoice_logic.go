package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceTotals are the derived totals of a set of line items.
type InvoiceTotals struct {
	SubTotal   decimal.Decimal `json:"subTotal"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// ComputeInvoiceTotals sums quantity * price over the items. Each line is
// recomputed from its quantity and price rather than trusting its stored
// total. Tax is always zero, so GrandTotal equals SubTotal.
func ComputeInvoiceTotals(items []LineItem) InvoiceTotals {
	sub := decimal.Zero
	for _, item := range items {
		sub = sub.Add(ComputeLineTotal(item.Quantity, item.Price))
	}
	return InvoiceTotals{SubTotal: sub, TaxAmount: decimal.Zero, GrandTotal: sub}
}

// Reconciles reports whether the invoice's stored totals and line totals
// agree with its quantities and prices.
func (inv Invoice) Reconciles() bool {
	for _, item := range inv.Items {
		if !item.Total.Equal(ComputeLineTotal(item.Quantity, item.Price)) {
			return false
		}
	}
	t := ComputeInvoiceTotals(inv.Items)
	return inv.SubTotal.Equal(t.SubTotal) && inv.TaxAmount.Equal(t.TaxAmount) && inv.GrandTotal.Equal(t.GrandTotal)
}

// InvoiceDraft is the editable state of an invoice before it is saved.
// Every mutation recomputes the line totals and Totals.
type InvoiceDraft struct {
	InvoiceNumber string           `json:"invoiceNumber"`
	InvoiceDate   string           `json:"invoiceDate"`
	Customer      CustomerSnapshot `json:"customerDetails"`
	Items         []LineItem       `json:"items"`
	Totals        InvoiceTotals    `json:"totals"`

	// highest line id ever handed out by this draft
	lastItemID int
}

// NewInvoiceDraft starts a draft dated date with a single blank line.
func NewInvoiceDraft(date string) *InvoiceDraft {
	d := &InvoiceDraft{InvoiceDate: date}
	d.AddItem()
	return d
}

func (d *InvoiceDraft) nextItemID() int {
	next := 1
	for _, item := range d.Items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	if d.lastItemID >= next {
		next = d.lastItemID + 1
	}
	d.lastItemID = next
	return next
}

func (d *InvoiceDraft) recompute() {
	for i := range d.Items {
		d.Items[i].Total = ComputeLineTotal(d.Items[i].Quantity, d.Items[i].Price)
	}
	d.Totals = ComputeInvoiceTotals(d.Items)
}

func (d *InvoiceDraft) indexOf(id int) int {
	for i, item := range d.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// AddItem appends a blank line and returns its id. Ids are max+1 of the
// current lines and are never reused within the draft.
func (d *InvoiceDraft) AddItem() int {
	item := NewLineItem(d.nextItemID())
	d.Items = append(d.Items, item)
	d.recompute()
	return item.ID
}

// AppendLine appends a prepared line under a freshly assigned id.
func (d *InvoiceDraft) AppendLine(item LineItem) int {
	item.ID = d.nextItemID()
	d.Items = append(d.Items, item)
	d.recompute()
	return item.ID
}

// RemoveItem deletes the line with the given id. It is a no-op when only one
// line remains or when no line has that id.
func (d *InvoiceDraft) RemoveItem(id int) bool {
	if len(d.Items) <= 1 {
		return false
	}
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.Items = append(d.Items[:i:i], d.Items[i+1:]...)
	d.recompute()
	return true
}

// UpdateQuantity sets a line's quantity from raw input (parse-or-zero).
func (d *InvoiceDraft) UpdateQuantity(id int, raw string) Outcome {
	i := d.indexOf(id)
	if i < 0 {
		return OutcomeSoftMiss
	}
	d.Items[i] = d.Items[i].WithQuantity(ParseQuantity(raw))
	d.recompute()
	return OutcomeApplied
}

// UpdatePrice sets a line's price from raw input (parse-or-zero).
func (d *InvoiceDraft) UpdatePrice(id int, raw string) Outcome {
	i := d.indexOf(id)
	if i < 0 {
		return OutcomeSoftMiss
	}
	d.Items[i] = d.Items[i].WithPrice(ParseNonNegativeNumber(raw))
	d.recompute()
	return OutcomeApplied
}

// UpdateName sets a free-text line description.
func (d *InvoiceDraft) UpdateName(id int, name string) Outcome {
	i := d.indexOf(id)
	if i < 0 {
		return OutcomeSoftMiss
	}
	d.Items[i].Name = name
	return OutcomeApplied
}

// SelectProduct applies a catalog product to a line. An unknown line or
// product leaves the draft unchanged.
func (d *InvoiceDraft) SelectProduct(id int, productID string, products []Product) Outcome {
	i := d.indexOf(id)
	if i < 0 {
		return OutcomeSoftMiss
	}
	item, outcome := ApplyProduct(d.Items[i], productID, products)
	if outcome == OutcomeApplied {
		d.Items[i] = item
		d.recompute()
	}
	return outcome
}

// SelectCustomer snapshots the customer onto the draft. An empty id clears
// the customer; an unknown id keeps the previous snapshot.
func (d *InvoiceDraft) SelectCustomer(customerID string, customers []Customer) Outcome {
	if customerID == "" {
		d.Customer = CustomerSnapshot{}
		return OutcomeApplied
	}
	c, ok := findCustomer(customers, customerID)
	if !ok {
		return OutcomeSoftMiss
	}
	d.Customer = SnapshotOf(c)
	return OutcomeApplied
}

// Validate checks the draft can be saved as an invoice.
func (d *InvoiceDraft) Validate() error {
	var errs ValidationErrors
	if _, err := ParseDate(d.InvoiceDate); err != nil {
		errs = append(errs, NewValidationError("invoiceDate", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", d.InvoiceDate)))
	}
	if len(d.Items) == 0 {
		errs = append(errs, NewValidationError("items", "at least one line item is required"))
	}
	seen := make(map[int]bool, len(d.Items))
	for i, item := range d.Items {
		field := fmt.Sprintf("items[%d]", i)
		if seen[item.ID] {
			errs = append(errs, NewValidationError(field+".id", fmt.Sprintf("duplicate line id %d", item.ID)))
		}
		seen[item.ID] = true
		if item.Quantity < 1 {
			errs = append(errs, NewValidationError(field+".quantity", "quantity must be at least 1"))
		}
		if item.Price.IsNegative() {
			errs = append(errs, NewValidationError(field+".price", "price cannot be negative"))
		}
	}
	return errs.orNil()
}

// BuildInvoice freezes the draft into an invoice record with the given id.
// Totals are recomputed from the lines; the customer snapshot is copied as is.
func (d *InvoiceDraft) BuildInvoice(id string) (Invoice, error) {
	if err := d.Validate(); err != nil {
		return Invoice{}, err
	}
	items := make([]LineItem, len(d.Items))
	copy(items, d.Items)
	for i := range items {
		items[i].Total = ComputeLineTotal(items[i].Quantity, items[i].Price)
	}
	totals := ComputeInvoiceTotals(items)
	return Invoice{
		ID:              id,
		InvoiceNumber:   strings.TrimSpace(d.InvoiceNumber),
		InvoiceDate:     d.InvoiceDate,
		CustomerDetails: d.Customer,
		Items:           items,
		SubTotal:        totals.SubTotal,
		TaxAmount:       totals.TaxAmount,
		GrandTotal:      totals.GrandTotal,
	}, nil
}
