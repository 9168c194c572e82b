package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Backend persists one opaque payload per collection name.
// Load returns a nil payload and a nil error when the collection was never saved.
type Backend interface {
	Load(ctx context.Context, name Collection) ([]byte, error)
	Save(ctx context.Context, name Collection, payload []byte) error
	Ping(ctx context.Context) error
}

// LoadStatus describes what a collection load found.
type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadEmpty
	LoadCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadEmpty:
		return "empty"
	case LoadCorrupt:
		return "corrupt"
	default:
		return "ok"
	}
}

// EntityStore reads and replaces whole record collections encoded as JSON.
// An absent collection reads as empty. A collection whose payload cannot be
// decoded also reads as empty, is logged as corrupt, and refuses writes
// through Mutate until it is repaired.
//
// Read-modify-write cycles go through Mutate, which serializes writers of the
// same collection within this process. Across processes the last writer wins.
type EntityStore struct {
	backend Backend
	log     zerolog.Logger
	locks   map[Collection]*sync.Mutex
}

// NewEntityStore wraps a backend.
func NewEntityStore(backend Backend, log zerolog.Logger) *EntityStore {
	locks := make(map[Collection]*sync.Mutex, len(Collections))
	for _, c := range Collections {
		locks[c] = &sync.Mutex{}
	}
	return &EntityStore{backend: backend, log: log, locks: locks}
}

// Ping checks the backend is reachable.
func (s *EntityStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *EntityStore) lock(name Collection) *sync.Mutex {
	l, ok := s.locks[name]
	if !ok {
		panic(fmt.Sprintf("core: unknown collection %q", name))
	}
	return l
}

func loadCollection[T any](ctx context.Context, s *EntityStore, name Collection) ([]T, LoadStatus, error) {
	payload, err := s.backend.Load(ctx, name)
	if err != nil {
		return nil, LoadOK, fmt.Errorf("failed to load %s: %w", name, err)
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return []T{}, LoadEmpty, nil
	}
	var records []T
	if err := json.Unmarshal(payload, &records); err != nil {
		s.log.Warn().
			Err(err).
			Str("collection", string(name)).
			Int("bytes", len(payload)).
			Msg("collection payload is corrupt, treating as empty")
		return []T{}, LoadCorrupt, nil
	}
	if len(records) == 0 {
		return []T{}, LoadEmpty, nil
	}
	return records, LoadOK, nil
}

func saveCollection[T any](ctx context.Context, s *EntityStore, name Collection, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.backend.Save(ctx, name, payload); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	s.log.Debug().Str("collection", string(name)).Int("records", len(records)).Msg("collection saved")
	return nil
}

// mutate loads a collection, applies fn and saves the result while holding
// the collection's lock. Nothing is written when fn fails or when the stored
// payload is corrupt.
func mutate[T any](ctx context.Context, s *EntityStore, name Collection, fn func([]T) ([]T, error)) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	records, status, err := loadCollection[T](ctx, s, name)
	if err != nil {
		return err
	}
	if status == LoadCorrupt {
		return fmt.Errorf("refusing to overwrite %s: %w", name, ErrCorruptCollection)
	}
	out, err := fn(records)
	if err != nil {
		return err
	}
	return saveCollection(ctx, s, name, out)
}

// Status reports the load status of a collection and its record count.
func (s *EntityStore) Status(ctx context.Context, name Collection) (LoadStatus, int, error) {
	records, status, err := loadCollection[json.RawMessage](ctx, s, name)
	if err != nil {
		return LoadOK, 0, err
	}
	return status, len(records), nil
}

func (s *EntityStore) Customers(ctx context.Context) ([]Customer, error) {
	records, _, err := loadCollection[Customer](ctx, s, CustomersCollection)
	return records, err
}

func (s *EntityStore) Products(ctx context.Context) ([]Product, error) {
	records, _, err := loadCollection[Product](ctx, s, ProductsCollection)
	return records, err
}

func (s *EntityStore) Invoices(ctx context.Context) ([]Invoice, error) {
	records, _, err := loadCollection[Invoice](ctx, s, InvoicesCollection)
	return records, err
}

func (s *EntityStore) Payments(ctx context.Context) ([]Payment, error) {
	records, _, err := loadCollection[Payment](ctx, s, PaymentsCollection)
	return records, err
}

// SaveCustomers replaces the whole customers collection.
func (s *EntityStore) SaveCustomers(ctx context.Context, records []Customer) error {
	return saveCollection(ctx, s, CustomersCollection, records)
}

// SaveProducts replaces the whole products collection.
func (s *EntityStore) SaveProducts(ctx context.Context, records []Product) error {
	return saveCollection(ctx, s, ProductsCollection, records)
}

// SaveInvoices replaces the whole invoices collection.
func (s *EntityStore) SaveInvoices(ctx context.Context, records []Invoice) error {
	return saveCollection(ctx, s, InvoicesCollection, records)
}

// SavePayments replaces the whole payments collection.
func (s *EntityStore) SavePayments(ctx context.Context, records []Payment) error {
	return saveCollection(ctx, s, PaymentsCollection, records)
}

func (s *EntityStore) MutateCustomers(ctx context.Context, fn func([]Customer) ([]Customer, error)) error {
	return mutate(ctx, s, CustomersCollection, fn)
}

func (s *EntityStore) MutateProducts(ctx context.Context, fn func([]Product) ([]Product, error)) error {
	return mutate(ctx, s, ProductsCollection, fn)
}

func (s *EntityStore) MutateInvoices(ctx context.Context, fn func([]Invoice) ([]Invoice, error)) error {
	return mutate(ctx, s, InvoicesCollection, fn)
}

func (s *EntityStore) MutatePayments(ctx context.Context, fn func([]Payment) ([]Payment, error)) error {
	return mutate(ctx, s, PaymentsCollection, fn)
}
