package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// CustomerInput holds the editable fields of a customer.
type CustomerInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Validate checks the input can be stored.
func (in CustomerInput) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, NewValidationError("name", "customer name is required"))
	}
	return errs.orNil()
}

// CustomerDeletion reports a deleted customer and the records that still
// reference it. Those records are kept: invoices carry their own snapshot,
// and payments keep the dangling customer id.
type CustomerDeletion struct {
	Customer          Customer
	DependentInvoices int
	DependentPayments int
}

// CustomerService manages the customer master.
type CustomerService interface {
	// List returns customers whose name or phone matches search, in stored order.
	List(ctx context.Context, search string) ([]Customer, error)

	// Get returns a single customer by id.
	Get(ctx context.Context, id string) (*Customer, error)

	// Create validates the input and appends a new customer with a fresh id.
	Create(ctx context.Context, in CustomerInput) (*Customer, error)

	// Update replaces the editable fields of an existing customer.
	// Invoice snapshots taken earlier are not affected.
	Update(ctx context.Context, id string, in CustomerInput) (*Customer, error)

	// Delete removes a customer and reports how many records still reference it.
	Delete(ctx context.Context, id string) (*CustomerDeletion, error)
}

type customerService struct {
	store *EntityStore
	log   zerolog.Logger
}

// NewCustomerService constructs a CustomerService over the entity store.
func NewCustomerService(store *EntityStore, log zerolog.Logger) CustomerService {
	return &customerService{store: store, log: log}
}

func (s *customerService) List(ctx context.Context, search string) ([]Customer, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCustomers(customers, strings.TrimSpace(search)), nil
}

func (s *customerService) Get(ctx context.Context, id string) (*Customer, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := findCustomer(customers, id)
	if !ok {
		return nil, &NotFoundError{Collection: CustomersCollection, ID: id}
	}
	return &c, nil
}

func (s *customerService) Create(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := Customer{
		ID:      NewID(),
		Name:    strings.TrimSpace(in.Name),
		Address: in.Address,
		Phone:   strings.TrimSpace(in.Phone),
	}
	err := s.store.MutateCustomers(ctx, func(customers []Customer) ([]Customer, error) {
		return append(customers, c), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("customer_id", c.ID).Str("name", c.Name).Msg("customer created")
	return &c, nil
}

func (s *customerService) Update(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated Customer
	err := s.store.MutateCustomers(ctx, func(customers []Customer) ([]Customer, error) {
		for i := range customers {
			if customers[i].ID == id {
				customers[i].Name = strings.TrimSpace(in.Name)
				customers[i].Address = in.Address
				customers[i].Phone = strings.TrimSpace(in.Phone)
				updated = customers[i]
				return customers, nil
			}
		}
		return nil, &NotFoundError{Collection: CustomersCollection, ID: id}
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("customer_id", id).Msg("customer updated")
	return &updated, nil
}

func (s *customerService) Delete(ctx context.Context, id string) (*CustomerDeletion, error) {
	var removed Customer
	err := s.store.MutateCustomers(ctx, func(customers []Customer) ([]Customer, error) {
		out := make([]Customer, 0, len(customers))
		found := false
		for _, c := range customers {
			if c.ID == id {
				removed = c
				found = true
				continue
			}
			out = append(out, c)
		}
		if !found {
			return nil, &NotFoundError{Collection: CustomersCollection, ID: id}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	res := &CustomerDeletion{Customer: removed}
	invoices, err := s.store.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if inv.CustomerDetails.ID == id {
			res.DependentInvoices++
		}
	}
	payments, err := s.store.Payments(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.CustomerID == id {
			res.DependentPayments++
		}
	}
	ev := s.log.Info()
	if res.DependentInvoices > 0 || res.DependentPayments > 0 {
		ev = s.log.Warn()
	}
	ev.Str("customer_id", id).
		Int("dependent_invoices", res.DependentInvoices).
		Int("dependent_payments", res.DependentPayments).
		Msg("customer deleted")
	return res, nil
}
