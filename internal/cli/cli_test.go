package cli

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-catalog-manager/internal/api"
	"product-catalog-manager/internal/catalog"
	"product-catalog-manager/internal/client"
	"product-catalog-manager/internal/domain"
	"product-catalog-manager/internal/store"
)

type testEnv struct {
	url   string
	store *store.MemoryStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	color.NoColor = true
	logger := log.New(&bytes.Buffer{}, "", 0)
	ms := store.NewMemoryStore()
	router := api.NewRouter(api.NewHTTPHandler(catalog.NewService(ms, logger), logger), api.RouterOptions{}, logger)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{url: srv.URL, store: ms}
}

func (e *testEnv) seed(t *testing.T, products ...domain.Product) []*domain.Product {
	t.Helper()
	var out []*domain.Product
	for i := range products {
		p, err := e.store.CreateProduct(context.Background(), &products[i])
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Options{
		In:     strings.NewReader(stdin),
		Out:    &out,
		Err:    &errOut,
		NewAPI: func(baseURL string) API { return client.New(baseURL, nil) },
	})
	cmd.SetArgs(append([]string{"--api", e.url}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestList_FilterAndOrder(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t,
		domain.Product{Name: "Widget", Category: "Tools", Price: 5, Description: "Turns bolts"},
		domain.Product{Name: "Gadget", Category: "Electronics", Price: 10, Description: "Beeps"},
	)

	out, _, err := env.run(t, "", "list", "--order", "desc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Gadget"), strings.Index(out, "Widget"))
	assert.Contains(t, out, "Widget [Tools]")
	assert.Contains(t, out, "$10")

	out, _, err = env.run(t, "", "list", "--search", "TOOL")
	require.NoError(t, err)
	assert.Contains(t, out, "Widget")
	assert.NotContains(t, out, "Gadget")

	out, _, err = env.run(t, "", "list", "-s", "sprocket")
	require.NoError(t, err)
	assert.Equal(t, "No products found.\n", out)

	_, _, err = env.run(t, "", "list", "--order", "price")
	assert.EqualError(t, err, `invalid --order "price", want asc or desc`)
}

func TestCreate(t *testing.T) {
	env := setupTestEnv(t)

	out, _, err := env.run(t, "", "create", "--name", "Widget", "--price", "5", "--description", "Turns bolts", "--category", "Tools")

	require.NoError(t, err)
	assert.Contains(t, out, "Product added: Widget")
	list, err := env.store.ListProducts(context.Background(), store.ListProductsParams{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5.0, list[0].Price)
}

func TestCreate_IncompleteFormIsNotSent(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.run(t, "", "create", "--name", "Widget", "--price", "5")

	assert.ErrorContains(t, err, "all form fields are required")
	list, _ := env.store.ListProducts(context.Background(), store.ListProductsParams{})
	assert.Empty(t, list)
}

func TestEdit_ChangesOnlyGivenFields(t *testing.T) {
	env := setupTestEnv(t)
	seeded := env.seed(t, domain.Product{Name: "Widget", Category: "Tools", Price: 5, Description: "Turns bolts"})

	out, _, err := env.run(t, "", "edit", seeded[0].ID, "--category", "Hardware")

	require.NoError(t, err)
	assert.Contains(t, out, "Product updated: Widget")
	got, err := env.store.GetProductByID(context.Background(), seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Product{ID: seeded[0].ID, Name: "Widget", Category: "Hardware", Price: 5, Description: "Turns bolts"}, *got)
}

func TestEdit_UnknownID(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.run(t, "", "edit", "missing", "--name", "x")

	assert.EqualError(t, err, "product missing not found")
}

func TestDelete_Confirmation(t *testing.T) {
	env := setupTestEnv(t)
	seeded := env.seed(t, domain.Product{Name: "Widget", Category: "Tools", Price: 5, Description: "d"})

	out, _, err := env.run(t, "n\n", "delete", seeded[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete this product? [y/N]")
	assert.Contains(t, out, "Cancelled.")
	_, err = env.store.GetProductByID(context.Background(), seeded[0].ID)
	require.NoError(t, err)

	out, _, err = env.run(t, "y\n", "delete", seeded[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Product deleted")
	_, err = env.store.GetProductByID(context.Background(), seeded[0].ID)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestDelete_YesSkipsPrompt(t *testing.T) {
	env := setupTestEnv(t)

	out, _, err := env.run(t, "", "delete", "never-existed", "--yes")

	require.NoError(t, err)
	assert.NotContains(t, out, "Are you sure")
	assert.Contains(t, out, "Product deleted")
}

func TestGet(t *testing.T) {
	env := setupTestEnv(t)
	seeded := env.seed(t, domain.Product{Name: "Widget", Category: "Tools", Price: 5.5, Description: "Turns bolts"})

	out, _, err := env.run(t, "", "get", seeded[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Widget [Tools]")
	assert.Contains(t, out, "$5.5")
	assert.Contains(t, out, "id="+seeded[0].ID)

	_, _, err = env.run(t, "", "get", "missing")
	assert.EqualError(t, err, "catalog api: 404 Product not found")
}

type failingAPI struct {
	*client.Client
}

func (failingAPI) CreateProduct(context.Context, catalog.ProductInput) (*domain.Product, error) {
	return nil, &client.APIError{StatusCode: 500, Message: "store unavailable"}
}

func TestCreate_FailureAlertsOnStderr(t *testing.T) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Options{
		In:     strings.NewReader(""),
		Out:    &out,
		Err:    &errOut,
		NewAPI: func(baseURL string) API { return failingAPI{client.New(baseURL, nil)} },
	})
	cmd.SetArgs([]string{"create", "--name", "Widget", "--price", "5", "--description", "d", "--category", "c"})

	err := cmd.Execute()

	assert.EqualError(t, err, "catalog api: 500 store unavailable")
	assert.Contains(t, errOut.String(), "Something went wrong. Check console.")
	assert.Contains(t, errOut.String(), "ERROR: Failed to submit product")
	assert.Empty(t, out.String())
}
