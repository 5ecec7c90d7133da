package store

import (
	"context"

	"product-catalog-manager/internal/domain"
)

// ListProductsParams holds parameters for listing products.
type ListProductsParams struct {
	SortByPrice bool // Ascending price order when true, store order otherwise
}

// ProductStorer defines the database operations for products.
//
// Identifiers are opaque strings. A malformed identifier is indistinguishable
// from an absent one: lookups and updates report ErrProductNotFound, deletes
// succeed without doing anything.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
