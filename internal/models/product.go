package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Product is a course sold in the storefront. Prices are stored in minor
// currency units.
type Product struct {
	BaseModel
	Slug              string                      `gorm:"uniqueIndex" json:"slug"`
	Title             string                      `json:"title"`
	Description       string                      `json:"description"`
	Images            datatypes.JSONSlice[string] `json:"images"`
	Featured          bool                        `gorm:"index" json:"featured"`
	PriceCents        int64                       `json:"price_cents"`
	CompareAtCents    int64                       `json:"compare_at_cents"`
	Currency          string                      `json:"currency"`
	InventoryQuantity *int                        `json:"inventory_quantity"`
	Available         *bool                       `json:"available"`
	DisplayOrder      int                         `json:"display_order"`
	Options           []ProductOption             `json:"options,omitempty"`
	Variants          []ProductVariant            `json:"variants,omitempty"`
	Collections       []Collection                `gorm:"many2many:product_collections;" json:"collections,omitempty"`
}

// ProductOption is one configuration axis of a product, e.g. "Format" with
// values "Live" and "Recorded". Swatches map a value to a colour and only
// matter for an option named "color".
type ProductOption struct {
	BaseModel
	ProductID    uuid.UUID                   `gorm:"type:uuid;index" json:"product_id"`
	Name         string                      `json:"name"`
	Values       datatypes.JSONSlice[string] `json:"values"`
	Swatches     datatypes.JSONMap           `json:"swatches"`
	DisplayOrder int                         `json:"display_order"`
}

// ProductVariant is a purchasable combination of option values.
// A nil InventoryQuantity means stock is not tracked.
type ProductVariant struct {
	BaseModel
	ProductID         uuid.UUID         `gorm:"type:uuid;index" json:"product_id"`
	SKU               string            `json:"sku"`
	OptionValues      datatypes.JSONMap `json:"option_values"`
	PriceCents        int64             `json:"price_cents"`
	CompareAtCents    int64             `json:"compare_at_cents"`
	InventoryQuantity *int              `json:"inventory_quantity"`
	Available         *bool             `json:"available"`
	Image             string            `json:"image"`
	DisplayOrder      int               `json:"display_order"`
}
