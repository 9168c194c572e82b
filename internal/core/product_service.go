package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductInput holds the editable fields of a product. Price is raw input and
// must parse to a non-negative decimal.
type ProductInput struct {
	ProductCode string      `json:"productCode"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       NumericText `json:"price"`
	HSNCode     string      `json:"hsnCode"`
}

// parse validates the input and returns the parsed price.
func (in ProductInput) parse() (decimal.Decimal, error) {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, NewValidationError("name", "product name is required"))
	}
	price, err := decimal.NewFromString(in.Price.String())
	switch {
	case err != nil:
		errs = append(errs, NewValidationError("price", "please enter a valid price"))
	case price.IsNegative():
		errs = append(errs, NewValidationError("price", "price cannot be negative"))
	}
	return price, errs.orNil()
}

// ProductService manages the product catalog.
type ProductService interface {
	// List returns products whose name, description or HSN code matches search.
	List(ctx context.Context, search string) ([]Product, error)

	// Get returns a single product by id.
	Get(ctx context.Context, id string) (*Product, error)

	// Create validates the input and appends a new product with a fresh id.
	Create(ctx context.Context, in ProductInput) (*Product, error)

	// Update replaces the fields of an existing product. Lines already on
	// saved invoices keep the name and price they were billed with.
	Update(ctx context.Context, id string, in ProductInput) (*Product, error)

	// Delete removes a product. Invoice lines referencing it are kept.
	Delete(ctx context.Context, id string) error
}

type productService struct {
	store *EntityStore
	log   zerolog.Logger
}

// NewProductService constructs a ProductService over the entity store.
func NewProductService(store *EntityStore, log zerolog.Logger) ProductService {
	return &productService{store: store, log: log}
}

func (s *productService) List(ctx context.Context, search string) ([]Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	return FilterProducts(products, strings.TrimSpace(search)), nil
}

func (s *productService) Get(ctx context.Context, id string) (*Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := findProduct(products, id)
	if !ok {
		return nil, &NotFoundError{Collection: ProductsCollection, ID: id}
	}
	return &p, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	price, err := in.parse()
	if err != nil {
		return nil, err
	}
	p := Product{
		ID:          NewID(),
		ProductCode: strings.TrimSpace(in.ProductCode),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       price,
		HSNCode:     strings.TrimSpace(in.HSNCode),
	}
	err = s.store.MutateProducts(ctx, func(products []Product) ([]Product, error) {
		return append(products, p), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", p.ID).Str("name", p.Name).Str("price", p.Price.String()).Msg("product created")
	return &p, nil
}

func (s *productService) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	price, err := in.parse()
	if err != nil {
		return nil, err
	}
	var updated Product
	err = s.store.MutateProducts(ctx, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].ID != id {
				continue
			}
			products[i] = Product{
				ID:          id,
				ProductCode: strings.TrimSpace(in.ProductCode),
				Name:        strings.TrimSpace(in.Name),
				Description: in.Description,
				Price:       price,
				HSNCode:     strings.TrimSpace(in.HSNCode),
			}
			updated = products[i]
			return products, nil
		}
		return nil, &NotFoundError{Collection: ProductsCollection, ID: id}
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", id).Msg("product updated")
	return &updated, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	err := s.store.MutateProducts(ctx, func(products []Product) ([]Product, error) {
		out := make([]Product, 0, len(products))
		for _, p := range products {
			if p.ID != id {
				out = append(out, p)
			}
		}
		if len(out) == len(products) {
			return nil, &NotFoundError{Collection: ProductsCollection, ID: id}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
