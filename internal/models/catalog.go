package models

// Collection groups courses for browsing. Products belong to a collection
// through the product_collections join table, never by containment.
type Collection struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	DisplayOrder int       `json:"display_order"`
	Products     []Product `gorm:"many2many:product_collections;" json:"products,omitempty"`
}
