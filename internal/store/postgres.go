package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"product-catalog-manager/internal/domain"
)

const productColumns = "id, name, price, description, category"

// PostgresStore implements the ProductStorer interface using PostgreSQL.
// Identifiers are UUID strings generated on insert.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// isInvalidTextRepresentation reports a Postgres cast failure, e.g. a bad uuid literal.
func isInvalidTextRepresentation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

// parsePostgresID normalizes id, reporting ErrProductNotFound when it cannot be a UUID.
func parsePostgresID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrProductNotFound
	}
	return parsed.String(), nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO catalog.products (id, name, price, description, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, price, description, category;
	`
	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), product.Name, product.Price, product.Description, product.Category,
	)

	var created domain.Product
	if err := row.Scan(&created.ID, &created.Name, &created.Price, &created.Description, &created.Category); err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := parsePostgresID(id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, price, description, category
		FROM catalog.products
		WHERE id = $1;
	`
	var product domain.Product
	err = s.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID, &product.Name, &product.Price, &product.Description, &product.Category,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &product, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error) {
	query := "SELECT " + productColumns + " FROM catalog.products"
	if params.SortByPrice {
		query += " ORDER BY price ASC"
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category); err != nil {
			return nil, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, nil
}

// UpdateProduct sets only the columns named by patch.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	productID, err := parsePostgresID(id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetProductByID(ctx, productID)
	}

	var setClauses []string
	var queryArgs []interface{}
	argID := 1
	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		queryArgs = append(queryArgs, value)
		argID++
	}
	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.Price != nil {
		addSet("price", *patch.Price)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Category != nil {
		addSet("category", *patch.Category)
	}
	queryArgs = append(queryArgs, productID)

	query := fmt.Sprintf("UPDATE catalog.products SET %s WHERE id = $%d RETURNING %s;",
		strings.Join(setClauses, ", "), argID, productColumns)

	var updated domain.Product
	err = s.db.QueryRowContext(ctx, query, queryArgs...).Scan(
		&updated.ID, &updated.Name, &updated.Price, &updated.Description, &updated.Category,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return &updated, nil
}

// DeleteProduct does not report whether a row was actually removed.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	productID, err := parsePostgresID(id)
	if err != nil {
		return nil
	}
	query := `DELETE FROM catalog.products WHERE id = $1;`
	if _, err := s.db.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}

// EnsurePostgresSchema creates the products table when it does not exist yet.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS catalog;`,
		`CREATE TABLE IF NOT EXISTS catalog.products (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			price       DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL,
			category    TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: EnsurePostgresSchema failed: %w", err)
		}
	}
	return nil
}
