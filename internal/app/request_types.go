package app

// ListRequest filters a list view. Search is free text. From, To and
// CustomerID apply the ledger filter; when only CustomerID is set every date
// matches.
type ListRequest struct {
	Search     string
	From       string // YYYY-MM-DD
	To         string // YYYY-MM-DD
	CustomerID string
}

func (r ListRequest) hasLedgerFilter() bool {
	return r.From != "" || r.To != "" || r.CustomerID != ""
}

// ReportRequest is the input for GetReport.
type ReportRequest struct {
	Type       string // sales, payments or customer
	From       string // YYYY-MM-DD, empty means first of the current month
	To         string // YYYY-MM-DD, empty means today
	CustomerID string // empty means all customers
}
