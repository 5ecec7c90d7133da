// Package client is a typed Go client for the catalog REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"product-catalog-manager/internal/catalog"
	"product-catalog-manager/internal/domain"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the /api/products endpoints. It adds no timeout or retry
// of its own; callers bound requests through their context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the server at baseURL (e.g. http://localhost:5000).
// A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) productURL(id string) string {
	if id == "" {
		return c.baseURL + "/api/products"
	}
	return c.baseURL + "/api/products/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// ListProducts returns every product, ordered by ascending price.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := c.do(ctx, http.MethodGet, c.productURL(""), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, c.productURL(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, input catalog.ProductInput) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPost, c.productURL(""), input, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, input catalog.ProductPatchInput) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPut, c.productURL(id), input, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct returns the server's confirmation message.
func (c *Client) DeleteProduct(ctx context.Context, id string) (string, error) {
	var msg struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, c.productURL(id), nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}
