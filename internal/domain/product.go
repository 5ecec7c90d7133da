package domain

// Product represents a product in the catalog.
// The json tags correspond to the fields expected in API responses/requests.
type Product struct {
	ID          string  `json:"id"` // Opaque, assigned by the store
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// IsEmpty reports whether the patch names no field at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.Category == nil
}

// Apply copies the patch's non-nil fields onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
}
