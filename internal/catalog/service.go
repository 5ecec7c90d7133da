// Package catalog implements the product catalog operations shared by every
// transport: list, get, create, update and delete.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"product-catalog-manager/internal/domain"
	"product-catalog-manager/internal/store"
)

var (
	ErrValidation = errors.New("catalog: validation failed")
	ErrNotFound   = errors.New("Product not found")
)

const requiredFieldsMessage = "All fields (name, price, description, category) are required"

// ValidationError describes a rejected input. It matches ErrValidation.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Service mediates access to the product store.
type Service struct {
	store    store.ProductStorer
	validate *validator.Validate
	logger   *log.Logger
}

// NewService creates a Service. A nil logger falls back to the standard logger.
func NewService(ps store.ProductStorer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:    ps,
		validate: validator.New(),
		logger:   logger,
	}
}

// ListProducts returns every product in ascending price order.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListProducts(ctx, store.ListProductsParams{SortByPrice: true})
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

// GetProduct looks a product up by id. Surrounding whitespace in id is ignored.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError("get", id, err)
	}
	return product, nil
}

// CreateProduct validates input and stores a new product. Nothing reaches the
// store when validation fails.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	price, err := input.Price.Float64()
	if err != nil {
		return nil, &ValidationError{Message: "Price must be a number", Fields: []string{"price"}}
	}

	created, err := s.store.CreateProduct(ctx, &domain.Product{
		Name:        input.Name,
		Price:       price,
		Description: input.Description,
		Category:    input.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: create product: %w", err)
	}
	s.logger.Printf("INFO: Product created id=%s name=%q", created.ID, created.Name)
	return created, nil
}

// UpdateProduct applies patch to the stored product. Unlike CreateProduct it
// does not check that fields are present or non-empty.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	updated, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, s.mapStoreError("update", id, err)
	}
	return updated, nil
}

// DeleteProduct removes the product if it exists.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("catalog: delete product %s: %w", id, err)
	}
	return nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) validateInput(input ProductInput) error {
	var missing []string
	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("catalog: validate input: %w", err)
		}
		for _, fe := range fieldErrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
	}
	if !input.Price.IsSet() {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: requiredFieldsMessage, Fields: missing}
	}
	return nil
}

func (s *Service) mapStoreError(op, id string, err error) error {
	if errors.Is(err, store.ErrProductNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("catalog: %s product %s: %w", op, id, err)
}
