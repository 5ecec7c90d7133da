package view

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"

	"product-catalog-manager/internal/catalog"
	"product-catalog-manager/internal/domain"
)

const (
	DeletePrompt  = "Are you sure you want to delete this product?"
	SubmitFailure = "Something went wrong. Check console."
)

var (
	ErrFormIncomplete = errors.New("view: all form fields are required")
	ErrPriceNotNumber = errors.New("view: price must be a number")
)

// API is the subset of the catalog client the controller needs.
type API interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input catalog.ProductPatchInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (string, error)
}

// Controller applies user actions to the view state, calling the API where
// an action needs the server. A failed call leaves the state as it was.
type Controller struct {
	api     API
	confirm func(prompt string) bool
	alert   func(message string)
	logger  *log.Logger
	state   State
}

// NewController creates a Controller. confirm is asked before every delete and
// alert receives the message shown when a submit fails.
func NewController(api API, confirm func(string) bool, alert func(string), logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	if alert == nil {
		alert = func(string) {}
	}
	return &Controller{api: api, confirm: confirm, alert: alert, logger: logger, state: NewState()}
}

func (c *Controller) State() State { return c.state }

// Load fetches the full product list.
func (c *Controller) Load(ctx context.Context) error {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		c.logger.Printf("ERROR: Failed to load products: %v", err)
		return err
	}
	c.state = c.state.LoadSucceeded(products)
	return nil
}

func (c *Controller) SetSearch(term string) { c.state = c.state.FilterChanged(term) }

func (c *Controller) SetOrder(order SortOrder) { c.state = c.state.SortChanged(order) }

func (c *Controller) SetForm(form Form) { c.state = c.state.FormChanged(form) }

// Edit fills the form from p without fetching it again.
func (c *Controller) Edit(p domain.Product) { c.state = c.state.EditStarted(p) }

// Submit sends the form as an update when a record is being edited, otherwise
// as a create. On success the form is cleared and the list re-fetched.
func (c *Controller) Submit(ctx context.Context) error {
	form := c.state.Form()
	price, err := checkForm(form)
	if err != nil {
		return err
	}

	if c.state.Editing() {
		_, err = c.api.UpdateProduct(ctx, c.state.EditingID(), catalog.ProductPatchInput{
			Name:        &form.Name,
			Price:       catalog.Price(price),
			Description: &form.Description,
			Category:    &form.Category,
		})
	} else {
		_, err = c.api.CreateProduct(ctx, catalog.ProductInput{
			Name:        form.Name,
			Price:       catalog.Price(price),
			Description: form.Description,
			Category:    form.Category,
		})
	}
	if err != nil {
		c.logger.Printf("ERROR: Failed to submit product: %v", err)
		c.alert(SubmitFailure)
		return err
	}

	c.state = c.state.SubmitSucceeded()
	// A failed refresh is logged by Load and does not undo the submit.
	_ = c.Load(ctx)
	return nil
}

// Delete asks for confirmation, then deletes id and re-fetches the list. It
// reports whether the delete was sent.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	if !c.confirm(DeletePrompt) {
		return false, nil
	}
	if _, err := c.api.DeleteProduct(ctx, id); err != nil {
		c.logger.Printf("ERROR: Failed to delete product %s: %v", id, err)
		return true, err
	}
	c.state = c.state.DeleteSucceeded(id)
	_ = c.Load(ctx)
	return true, nil
}

// checkForm enforces what the form inputs require before anything is sent:
// every field filled in and a numeric price.
func checkForm(form Form) (float64, error) {
	for _, v := range []string{form.Name, form.Price, form.Description, form.Category} {
		if v == "" {
			return 0, ErrFormIncomplete
		}
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrPriceNotNumber
	}
	return price, nil
}
