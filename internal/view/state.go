// Package view holds the client-side catalog view model: the fetched product
// list, the search term, the price sort order, the create/edit form and the
// record being edited.
package view

import (
	"sort"
	"strconv"
	"strings"

	"product-catalog-manager/internal/domain"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" in any case.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	}
	return "", false
}

// Form mirrors the create/update form inputs. Price is kept as typed.
type Form struct {
	Name        string
	Price       string
	Description string
	Category    string
}

// State is an immutable snapshot of the view. Every transition returns a new
// State and leaves the receiver untouched.
type State struct {
	products  []domain.Product
	search    string
	order     SortOrder
	form      Form
	editingID string
}

// NewState returns the initial view: nothing loaded, ascending order.
func NewState() State {
	return State{order: SortAsc}
}

func (s State) Products() []domain.Product { return append([]domain.Product(nil), s.products...) }
func (s State) Search() string              { return s.search }
func (s State) Order() SortOrder            { return s.order }
func (s State) Form() Form                  { return s.form }
func (s State) EditingID() string           { return s.editingID }
func (s State) Editing() bool               { return s.editingID != "" }

func (s State) LoadSucceeded(products []domain.Product) State {
	s.products = append([]domain.Product(nil), products...)
	return s
}

func (s State) FilterChanged(term string) State {
	s.search = term
	return s
}

// SortChanged ignores unknown orders.
func (s State) SortChanged(order SortOrder) State {
	if order == SortAsc || order == SortDesc {
		s.order = order
	}
	return s
}

func (s State) FormChanged(form Form) State {
	s.form = form
	return s
}

// EditStarted copies p into the form and marks it as the record being edited.
func (s State) EditStarted(p domain.Product) State {
	s.editingID = p.ID
	s.form = Form{
		Name:        p.Name,
		Price:       FormatPrice(p.Price),
		Description: p.Description,
		Category:    p.Category,
	}
	return s
}

// SubmitSucceeded clears the form and leaves edit mode.
func (s State) SubmitSucceeded() State {
	s.form = Form{}
	s.editingID = ""
	return s
}

// DeleteSucceeded drops id from the held list until the next load.
func (s State) DeleteSucceeded(id string) State {
	kept := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	return s
}

// Visible returns the held products matching the search term, sorted by
// price in the current order. Filtering happens before sorting and ties keep
// their fetched order.
func (s State) Visible() []domain.Product {
	query := strings.ToLower(strings.TrimSpace(s.search))
	visible := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if matches(p, query) {
			visible = append(visible, p)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if s.order == SortDesc {
			return visible[i].Price > visible[j].Price
		}
		return visible[i].Price < visible[j].Price
	})
	return visible
}

func matches(p domain.Product, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Category), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(FormatPrice(p.Price), query)
}

// FormatPrice renders a price the way it is searched and displayed:
// shortest decimal form, no trailing zeros ("5", "10.5").
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
