package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PaymentInput is a payment as entered. An empty ID records a new payment;
// an ID that already exists replaces that payment.
type PaymentInput struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	CustomerID  string      `json:"customerId"`
	InvoiceID   string      `json:"invoiceId"`
	Amount      NumericText `json:"amount"`
	PaymentMode string      `json:"paymentMode"`
	Reference   string      `json:"reference"`
	Notes       string      `json:"notes"`
}

func (in PaymentInput) parse() (decimal.Decimal, PaymentMode, error) {
	var errs ValidationErrors
	if strings.TrimSpace(in.CustomerID) == "" {
		errs = append(errs, NewValidationError("customerId", "customer is required"))
	}
	if strings.TrimSpace(in.Date) == "" {
		errs = append(errs, NewValidationError("date", "date is required"))
	} else if _, err := ParseDate(in.Date); err != nil {
		errs = append(errs, NewValidationError("date", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", in.Date)))
	}
	amount, err := decimal.NewFromString(in.Amount.String())
	switch {
	case in.Amount.String() == "":
		errs = append(errs, NewValidationError("amount", "amount is required"))
	case err != nil:
		errs = append(errs, NewValidationError("amount", "amount must be a number"))
	case !amount.IsPositive():
		errs = append(errs, NewValidationError("amount", "amount must be greater than zero"))
	}
	mode := PaymentMode(strings.TrimSpace(in.PaymentMode))
	if mode == "" {
		mode = PaymentCash
	}
	if !mode.Valid() {
		names := make([]string, len(PaymentModes))
		for i, m := range PaymentModes {
			names[i] = string(m)
		}
		errs = append(errs, NewValidationError("paymentMode", "must be one of: "+strings.Join(names, ", ")))
	}
	return amount, mode, errs.orNil()
}

// PaymentRecorded is the outcome of recording a payment.
// InvoiceLink is OutcomeSoftMiss when the requested invoice was not found or
// belongs to another customer; the link then keeps its previous value.
type PaymentRecorded struct {
	Payment     Payment
	Created     bool
	InvoiceLink Outcome
}

// PaymentQuery selects payments for a list view. Ledger is optional.
type PaymentQuery struct {
	Search string
	Ledger *LedgerFilter
}

// PaymentService records and lists customer payments.
type PaymentService interface {
	// Record inserts a new payment or replaces the one with the same id.
	Record(ctx context.Context, in PaymentInput) (*PaymentRecorded, error)

	// List returns payments matching the query, in stored order.
	List(ctx context.Context, q PaymentQuery) ([]Payment, error)

	// Delete removes a payment.
	Delete(ctx context.Context, id string) error
}

type paymentService struct {
	store *EntityStore
	log   zerolog.Logger
}

// NewPaymentService constructs a PaymentService over the entity store.
func NewPaymentService(store *EntityStore, log zerolog.Logger) PaymentService {
	return &paymentService{store: store, log: log}
}

func (s *paymentService) Record(ctx context.Context, in PaymentInput) (*PaymentRecorded, error) {
	amount, mode, err := in.parse()
	if err != nil {
		return nil, err
	}
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := findCustomer(customers, in.CustomerID); !ok {
		return nil, NewValidationError("customerId", fmt.Sprintf("unknown customer %q", in.CustomerID))
	}
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}

	res := &PaymentRecorded{InvoiceLink: OutcomeApplied}
	err = s.store.MutatePayments(ctx, func(payments []Payment) ([]Payment, error) {
		idx := -1
		if in.ID != "" {
			for i, p := range payments {
				if p.ID == in.ID {
					idx = i
					break
				}
			}
		}
		p := Payment{
			ID:          in.ID,
			Date:        strings.TrimSpace(in.Date),
			CustomerID:  in.CustomerID,
			Amount:      amount,
			PaymentMode: mode,
			Reference:   in.Reference,
			Notes:       in.Notes,
		}
		if p.ID == "" {
			p.ID = NewID()
		}

		// previous link survives a miss only while the customer is unchanged
		previousLink := ""
		if idx >= 0 && payments[idx].CustomerID == in.CustomerID {
			previousLink = payments[idx].InvoiceID
		}
		p.InvoiceID = previousLink
		if in.InvoiceID == "" {
			p.InvoiceID = ""
		} else if inv, ok := findInvoice(invoices, in.InvoiceID); ok && inv.CustomerDetails.ID == in.CustomerID {
			p.InvoiceID = inv.ID
		} else {
			res.InvoiceLink = OutcomeSoftMiss
		}

		res.Payment = p
		if idx >= 0 {
			payments[idx] = p
			return payments, nil
		}
		res.Created = true
		return append(payments, p), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("payment_id", res.Payment.ID).
		Str("customer_id", res.Payment.CustomerID).
		Str("invoice_id", res.Payment.InvoiceID).
		Str("amount", res.Payment.Amount.StringFixed(2)).
		Bool("created", res.Created).
		Stringer("invoice_link", res.InvoiceLink).
		Msg("payment recorded")
	return res, nil
}

func (s *paymentService) List(ctx context.Context, q PaymentQuery) ([]Payment, error) {
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	idx := NewRecordIndex(customers, invoices)
	return FilterPayments(payments, strings.TrimSpace(q.Search), q.Ledger, idx), nil
}

func (s *paymentService) Delete(ctx context.Context, id string) error {
	err := s.store.MutatePayments(ctx, func(payments []Payment) ([]Payment, error) {
		out := make([]Payment, 0, len(payments))
		for _, p := range payments {
			if p.ID != id {
				out = append(out, p)
			}
		}
		if len(out) == len(payments) {
			return nil, &NotFoundError{Collection: PaymentsCollection, ID: id}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("payment_id", id).Msg("payment deleted")
	return nil
}
