package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a shopper's persisted cart. LastActivityAt drives expiry.
type Cart struct {
	BaseModel
	LastActivityAt time.Time  `gorm:"index" json:"last_activity_at"`
	Lines          []CartLine `json:"lines,omitempty"`
}

type CartLine struct {
	BaseModel
	CartID    uuid.UUID  `gorm:"type:uuid;index" json:"cart_id"`
	ProductID uuid.UUID  `gorm:"type:uuid" json:"product_id"`
	VariantID *uuid.UUID `gorm:"type:uuid" json:"variant_id"`
	Quantity  int        `json:"quantity"`
	Position  int        `json:"position"`
}
