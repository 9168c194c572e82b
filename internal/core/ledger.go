package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format stored on invoices and payments.
const DateLayout = "2006-01-02"

// ParseDate parses a record date. Plain calendar dates and RFC 3339
// timestamps are accepted; both are interpreted in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// DateRange is an inclusive range of calendar days. A record dated on End
// is inside the range at any time of that day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from start to end inclusive.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: startOfDay(start), End: endOfDay(end)}
}

// DefaultDateRange runs from the first day of now's month through now's day.
func DefaultDateRange(now time.Time) DateRange {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return NewDateRange(first, now)
}

// ParseDateRange parses from/to dates. When both are empty the default range
// for now is used; when only one is empty it defaults to its side of that
// range. A start after the end is a validation failure.
func ParseDateRange(from, to string, now time.Time) (DateRange, error) {
	return ParseDateRangeWithin(from, to, DefaultDateRange(now))
}

// ParseDateRangeWithin is ParseDateRange with an explicit fallback for the
// sides left empty.
func ParseDateRangeWithin(from, to string, fallback DateRange) (DateRange, error) {
	start, end := fallback.Start, fallback.End
	var errs ValidationErrors
	if strings.TrimSpace(from) != "" {
		t, err := ParseDate(from)
		if err != nil {
			errs = append(errs, NewValidationError("from", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", from)))
		}
		start = t
	}
	if strings.TrimSpace(to) != "" {
		t, err := ParseDate(to)
		if err != nil {
			errs = append(errs, NewValidationError("to", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", to)))
		}
		end = t
	}
	if len(errs) > 0 {
		return DateRange{}, errs
	}
	r := NewDateRange(start, end)
	if r.Start.After(r.End) {
		return DateRange{}, NewValidationError("from", "start date is after end date")
	}
	return r, nil
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ContainsDate reports whether a record date string falls inside the range.
// Unparseable dates are never inside any range.
func (r DateRange) ContainsDate(s string) bool {
	t, err := ParseDate(s)
	if err != nil {
		return false
	}
	return r.Contains(t)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// LedgerFilter selects invoices and payments by date range and, optionally,
// by customer. An empty CustomerID matches every customer.
type LedgerFilter struct {
	Range      DateRange
	CustomerID string
}

func (f LedgerFilter) invoiceMatches(inv Invoice) bool {
	if f.CustomerID != "" && inv.CustomerDetails.ID != f.CustomerID {
		return false
	}
	return f.Range.ContainsDate(inv.InvoiceDate)
}

func (f LedgerFilter) paymentMatches(p Payment) bool {
	if f.CustomerID != "" && p.CustomerID != f.CustomerID {
		return false
	}
	return f.Range.ContainsDate(p.Date)
}

// LedgerResult is the filtered record set and its totals.
// Outstanding equals TotalSales - TotalPayments and may be negative.
type LedgerResult struct {
	Invoices      []Invoice
	Payments      []Payment
	TotalSales    decimal.Decimal
	TotalPayments decimal.Decimal
	Outstanding   decimal.Decimal
}

// QueryLedger filters invoices and payments and totals the filtered sets.
// Input order is preserved.
func QueryLedger(invoices []Invoice, payments []Payment, filter LedgerFilter) LedgerResult {
	res := LedgerResult{
		Invoices:      []Invoice{},
		Payments:      []Payment{},
		TotalSales:    decimal.Zero,
		TotalPayments: decimal.Zero,
	}
	for _, inv := range invoices {
		if filter.invoiceMatches(inv) {
			res.Invoices = append(res.Invoices, inv)
			res.TotalSales = res.TotalSales.Add(inv.GrandTotal)
		}
	}
	for _, p := range payments {
		if filter.paymentMatches(p) {
			res.Payments = append(res.Payments, p)
			res.TotalPayments = res.TotalPayments.Add(p.Amount)
		}
	}
	res.Outstanding = res.TotalSales.Sub(res.TotalPayments)
	return res
}
