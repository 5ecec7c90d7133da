package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp" // For sqlmock query matching
	"testing"

	"product-catalog-manager/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProductID = "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"

var productRowColumns = []string{"id", "name", "price", "description", "category"}

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

func PtrTo[T any](v T) *T {
	return &v
}

func TestPostgresStore_CreateProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	toCreate := &domain.Product{Name: "Widget", Price: 5, Description: "A widget", Category: "Tools"}

	query := regexp.QuoteMeta(`
		INSERT INTO catalog.products (id, name, price, description, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, price, description, category;
	`)
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(testProductID, toCreate.Name, toCreate.Price, toCreate.Description, toCreate.Category)
	mock.ExpectQuery(query).
		WithArgs(sqlmock.AnyArg(), toCreate.Name, toCreate.Price, toCreate.Description, toCreate.Category).
		WillReturnRows(rows)

	created, err := store.CreateProduct(context.Background(), toCreate)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, testProductID, created.ID)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 5.0, created.Price)
	assert.Equal(t, "A widget", created.Description)
	assert.Equal(t, "Tools", created.Category)

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresStore_CreateProduct_DBError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO catalog.products")).
		WillReturnError(errors.New("connection reset"))

	created, err := store.CreateProduct(context.Background(), &domain.Product{Name: "Widget"})

	require.Error(t, err)
	assert.Nil(t, created)
	assert.Contains(t, err.Error(), "store: CreateProduct")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID_Found(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`
		SELECT id, name, price, description, category
		FROM catalog.products
		WHERE id = $1;
	`)
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(testProductID, "Gadget", 10.0, "A gadget", "Electronics")
	mock.ExpectQuery(query).WithArgs(testProductID).WillReturnRows(rows)

	product, err := store.GetProductByID(context.Background(), testProductID)

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, domain.Product{
		ID: testProductID, Name: "Gadget", Price: 10, Description: "A gadget", Category: "Electronics",
	}, *product)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog.products")).
		WithArgs(testProductID).
		WillReturnError(sql.ErrNoRows)

	product, err := store.GetProductByID(context.Background(), testProductID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	assert.Nil(t, product)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID_MalformedID(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	// No query is expected: the id is rejected before reaching the database.
	product, err := store.GetProductByID(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductByID_CastErrorIsNotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog.products")).
		WithArgs(testProductID).
		WillReturnError(&pq.Error{Code: "22P02"})

	_, err := store.GetProductByID(context.Background(), testProductID)

	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProducts_SortedByPrice(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta("SELECT id, name, price, description, category FROM catalog.products ORDER BY price ASC")
	rows := sqlmock.NewRows(productRowColumns).
		AddRow("a", "Ten", 10.0, "d", "c").
		AddRow("b", "Twenty", 20.0, "d", "c").
		AddRow("c", "Thirty", 30.0, "d", "c")
	mock.ExpectQuery(query).WillReturnRows(rows)

	products, err := store.ListProducts(context.Background(), ListProductsParams{SortByPrice: true})

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []float64{10, 20, 30}, []float64{products[0].Price, products[1].Price, products[2].Price})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProducts_Empty(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog.products")).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := store.ListProducts(context.Background(), ListProductsParams{})

	require.NoError(t, err)
	assert.NotNil(t, products, "empty list must not be nil")
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProducts_QueryError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog.products")).
		WillReturnError(errors.New("db down"))

	products, err := store.ListProducts(context.Background(), ListProductsParams{SortByPrice: true})

	require.Error(t, err)
	assert.Nil(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_PartialFields(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(
		"UPDATE catalog.products SET price = $1, category = $2 WHERE id = $3 RETURNING id, name, price, description, category;")
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(testProductID, "Widget", 7.5, "A widget", "Hardware")
	mock.ExpectQuery(query).WithArgs(7.5, "Hardware", testProductID).WillReturnRows(rows)

	updated, err := store.UpdateProduct(context.Background(), testProductID, domain.ProductPatch{
		Price:    PtrTo(7.5),
		Category: PtrTo("Hardware"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Hardware", updated.Category)
	assert.Equal(t, 7.5, updated.Price)
	assert.Equal(t, "Widget", updated.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE catalog.products SET name = $1 WHERE id = $2")).
		WithArgs("Renamed", testProductID).
		WillReturnError(sql.ErrNoRows)

	updated, err := store.UpdateProduct(context.Background(), testProductID, domain.ProductPatch{Name: PtrTo("Renamed")})

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_EmptyPatchReadsCurrent(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	rows := sqlmock.NewRows(productRowColumns).
		AddRow(testProductID, "Widget", 5.0, "A widget", "Tools")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, description, category")).
		WithArgs(testProductID).
		WillReturnRows(rows)

	updated, err := store.UpdateProduct(context.Background(), testProductID, domain.ProductPatch{})

	require.NoError(t, err)
	assert.Equal(t, "Widget", updated.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProduct_Idempotent(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`DELETE FROM catalog.products WHERE id = $1;`)
	mock.ExpectExec(query).WithArgs(testProductID).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteProduct(context.Background(), testProductID), "0 rows affected is not an error")
	require.NoError(t, store.DeleteProduct(context.Background(), "garbage"), "malformed ids are ignored")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProduct_DBError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.products`)).
		WithArgs(testProductID).
		WillReturnError(errors.New("disk full"))

	err := store.DeleteProduct(context.Background(), testProductID)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsurePostgresSchema(t *testing.T) {
	db, mock, _ := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE SCHEMA IF NOT EXISTS catalog")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS catalog.products")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsurePostgresSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
