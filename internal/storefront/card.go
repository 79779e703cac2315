package storefront

// NoImagePlaceholder replaces a missing product or collection image.
const NoImagePlaceholder = "no image"

// Add-to-cart button labels.
const (
	ActionEnroll  = "Enroll"
	ActionSoldOut = "Sold out"
)

// ProductCard is the logic object a product card renders.
type ProductCard struct {
	ID               string        `json:"id"`
	Slug             string        `json:"slug"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	ImagePlaceholder string        `json:"image_placeholder,omitempty"`
	Featured         bool          `json:"featured"`
	Price            Money         `json:"price"`
	CompareAt        *Money        `json:"compare_at,omitempty"`
	Discount         *int          `json:"discount_percentage,omitempty"`
	InStock          bool          `json:"in_stock"`
	CanAddToCart     bool          `json:"can_add_to_cart"`
	ActionLabel      string        `json:"action_label"`
	VariantID        string        `json:"variant_id,omitempty"`
	HasVariants      bool          `json:"has_variants"`
	Options          []OptionState `json:"options,omitempty"`
	Selection        Selection     `json:"selection"`
}

// BuildProductCard turns a resolution into the card view-model. currency
// is used when the product carries none.
func BuildProductCard(r Resolution, currency string) ProductCard {
	p := r.Product
	if p.Currency != "" {
		currency = p.Currency
	}

	card := ProductCard{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  StripMarkup(p.Description),
		Image:        r.Image(),
		Featured:     p.Featured,
		Price:        NewMoney(r.CurrentPrice, currency),
		InStock:      r.InStock,
		CanAddToCart: r.CanAddToCart,
		ActionLabel:  ActionEnroll,
		HasVariants:  p.HasVariants(),
		Options:      r.Options(),
		Selection:    r.Selection,
	}
	if card.Image == "" {
		card.ImagePlaceholder = NoImagePlaceholder
	}
	if !r.InStock {
		card.ActionLabel = ActionSoldOut
	}
	if r.CurrentCompareAt > r.CurrentPrice {
		m := NewMoney(r.CurrentCompareAt, currency)
		card.CompareAt = &m
	}
	if pct, ok := r.Discount(); ok {
		card.Discount = &pct
	}
	if r.Variant != nil {
		card.VariantID = r.Variant.ID
	}
	return card
}

// CollectionCard is the logic object a collection card renders.
type CollectionCard struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Image            string `json:"image,omitempty"`
	ImagePlaceholder string `json:"image_placeholder,omitempty"`
}

func BuildCollectionCard(c Collection) CollectionCard {
	card := CollectionCard{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
	}
	if card.Image == "" {
		card.ImagePlaceholder = NoImagePlaceholder
	}
	return card
}
