// Package storefront computes everything the storefront pages render:
// variant resolution, listing filters, cart badges, the newsletter form
// state and the page view-models. It has no storage or transport concerns.
package storefront

import "strings"

// Option is a named configuration axis of a product.
type Option struct {
	Name     string            `json:"name"`
	Values   []string          `json:"values"`
	Swatches map[string]string `json:"swatches,omitempty"`
}

// IsColor reports whether the option's values render as colour swatches.
func (o Option) IsColor() bool {
	return strings.EqualFold(strings.TrimSpace(o.Name), "color")
}

// Variant is one purchasable configuration of a product. A nil Stock means
// inventory is not tracked; Available, when set, overrides the quantity.
type Variant struct {
	ID        string            `json:"id"`
	Options   map[string]string `json:"options"`
	Price     int64             `json:"price"`
	CompareAt int64             `json:"compare_at"`
	Stock     *int              `json:"stock,omitempty"`
	Available *bool             `json:"available,omitempty"`
	Image     string            `json:"image,omitempty"`
}

func (v Variant) inStock() bool {
	return stocked(v.Stock, v.Available)
}

// Product is the read-only catalog entry a page renders.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Slug          string    `json:"slug"`
	Images        []string  `json:"images"`
	Featured      bool      `json:"featured"`
	Price         int64     `json:"price"`
	CompareAt     int64     `json:"compare_at"`
	Currency      string    `json:"currency"`
	Options       []Option  `json:"options"`
	Variants      []Variant `json:"variants"`
	CollectionIDs []string  `json:"collection_ids"`
	Stock         *int      `json:"stock,omitempty"`
	Available     *bool     `json:"available,omitempty"`
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// InCollection reports membership in the collection with the given id.
func (p Product) InCollection(id string) bool {
	for _, cid := range p.CollectionIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// VariantByID looks up a variant of the product.
func (p Product) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Collection is a named grouping of products.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Selection maps option names to the value the shopper picked. It may be
// partial. Treat it as immutable: use With and Without to derive new ones.
type Selection map[string]string

// SelectionOf returns the full selection that identifies a variant.
func SelectionOf(v Variant) Selection {
	sel := make(Selection, len(v.Options))
	for name, value := range v.Options {
		sel[name] = value
	}
	return sel
}

// With returns a copy of the selection with name set to value. Other
// choices are kept even when they no longer combine with the new value.
func (s Selection) With(name, value string) Selection {
	out := s.clone()
	out[name] = value
	return out
}

// Without returns a copy of the selection with name unset.
func (s Selection) Without(name string) Selection {
	out := s.clone()
	delete(out, name)
	return out
}

func (s Selection) clone() Selection {
	out := make(Selection, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

func stocked(qty *int, available *bool) bool {
	if available != nil {
		return *available
	}
	if qty != nil {
		return *qty > 0
	}
	return true
}
