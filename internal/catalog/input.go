package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"product-catalog-manager/internal/domain"
)

// PriceValue is a price exactly as the client sent it: a JSON number, a
// numeric JSON string, or anything else (which fails to parse later).
type PriceValue struct {
	raw json.RawMessage
}

// Price wraps a numeric price.
func Price(v float64) PriceValue {
	b, _ := json.Marshal(v)
	return PriceValue{raw: b}
}

// RawPrice wraps an arbitrary JSON literal, e.g. `"abc"`.
func RawPrice(literal string) PriceValue {
	return PriceValue{raw: json.RawMessage(literal)}
}

func (p *PriceValue) UnmarshalJSON(b []byte) error {
	p.raw = append(p.raw[:0], b...)
	return nil
}

func (p PriceValue) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// IsSet reports whether a non-null price was sent.
func (p PriceValue) IsSet() bool {
	return len(p.raw) > 0 && !bytes.Equal(bytes.TrimSpace(p.raw), []byte("null"))
}

// Float64 parses the price. Strings must be a plain decimal or exponent
// number: no surrounding whitespace, no currency symbols.
func (p PriceValue) Float64() (float64, error) {
	if !p.IsSet() {
		return 0, fmt.Errorf("price is missing")
	}

	var v float64
	raw := bytes.TrimSpace(p.raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("price is not a number: %w", err)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("price %q is not a number", s)
		}
		v = f
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("price %s is not a number", raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price %v is not a finite number", v)
	}
	return v, nil
}

// ProductInput defines the expected input for creating a product.
type ProductInput struct {
	Name        string     `json:"name" validate:"required"`
	Price       PriceValue `json:"price"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required"`
}

// ProductPatchInput defines the accepted input for updating a product.
// Every field is optional; unknown fields (including "id") are ignored.
type ProductPatchInput struct {
	Name        *string    `json:"name,omitempty"`
	Price       PriceValue `json:"price"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
}

// Patch converts the input to a domain patch. The only failure is a price
// that cannot be stored as a number.
func (in ProductPatchInput) Patch() (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
	}
	if in.Price.IsSet() {
		price, err := in.Price.Float64()
		if err != nil {
			return domain.ProductPatch{}, &ValidationError{Message: "Price must be a number", Fields: []string{"price"}}
		}
		patch.Price = &price
	}
	return patch, nil
}
