package storefront

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("cart line not found")
)

// BadgeLimit is the largest count the cart badge prints verbatim.
const BadgeLimit = 99

// CartLine is one product/variant in a cart. Quantity is always >= 1.
type CartLine struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart is an ordered sequence of lines. Mutators return a new Cart and
// leave the receiver untouched.
type Cart struct {
	ID    string     `json:"id"`
	Lines []CartLine `json:"lines"`
}

// TotalItems sums the quantities of all lines.
func TotalItems(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// CartBadge returns the badge text for a cart total. The badge is hidden for
// an empty cart and capped at "99+"; the total itself is not altered.
func CartBadge(total int) (string, bool) {
	if total <= 0 {
		return "", false
	}
	if total > BadgeLimit {
		return strconv.Itoa(BadgeLimit) + "+", true
	}
	return strconv.Itoa(total), true
}

func (c Cart) TotalItems() int {
	return TotalItems(c.Lines)
}

// Add appends a line, or increases the quantity of the line already holding
// the same product and variant.
func (c Cart) Add(productID, variantID string, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}

	next := c.copy()
	if i := next.index(productID, variantID); i >= 0 {
		next.Lines[i].Quantity += qty
		return next, nil
	}
	next.Lines = append(next.Lines, CartLine{ProductID: productID, VariantID: variantID, Quantity: qty})
	return next, nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes the line.
func (c Cart) SetQuantity(productID, variantID string, qty int) (Cart, error) {
	i := c.index(productID, variantID)
	if i < 0 {
		return c, ErrLineNotFound
	}
	if qty <= 0 {
		return c.Remove(productID, variantID)
	}

	next := c.copy()
	next.Lines[i].Quantity = qty
	return next, nil
}

func (c Cart) Remove(productID, variantID string) (Cart, error) {
	i := c.index(productID, variantID)
	if i < 0 {
		return c, ErrLineNotFound
	}

	next := Cart{ID: c.ID, Lines: make([]CartLine, 0, len(c.Lines)-1)}
	next.Lines = append(next.Lines, c.Lines[:i]...)
	next.Lines = append(next.Lines, c.Lines[i+1:]...)
	return next, nil
}

func (c Cart) index(productID, variantID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID && l.VariantID == variantID {
			return i
		}
	}
	return -1
}

func (c Cart) copy() Cart {
	lines := make([]CartLine, len(c.Lines), len(c.Lines)+1)
	copy(lines, c.Lines)
	return Cart{ID: c.ID, Lines: lines}
}

// CartLineView is a priced cart line ready for the cart panel.
type CartLineView struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	LineTotal Money  `json:"line_total"`
}

// CartView is the cart panel view-model.
type CartView struct {
	ID         string         `json:"id"`
	Lines      []CartLineView `json:"lines"`
	TotalItems int            `json:"total_items"`
	Badge      string         `json:"badge,omitempty"`
	ShowBadge  bool           `json:"show_badge"`
	Subtotal   Money          `json:"subtotal"`
}

// BuildCartView prices every line against the catalog. Lines whose product
// has disappeared from the catalog are skipped.
func BuildCartView(c Cart, products map[string]Product, currency string) CartView {
	view := CartView{ID: c.ID, Lines: make([]CartLineView, 0, len(c.Lines))}

	var subtotal int64
	for _, line := range c.Lines {
		p, ok := products[line.ProductID]
		if !ok {
			continue
		}

		sel := Selection{}
		if line.VariantID != "" {
			v, ok := p.VariantByID(line.VariantID)
			if !ok {
				continue
			}
			sel = SelectionOf(v)
		}
		r := Resolve(p, sel)

		lineTotal := r.CurrentPrice * int64(line.Quantity)
		subtotal += lineTotal
		view.Lines = append(view.Lines, CartLineView{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Title:     p.Title,
			Slug:      p.Slug,
			Image:     r.Image(),
			Quantity:  line.Quantity,
			UnitPrice: NewMoney(r.CurrentPrice, currency),
			LineTotal: NewMoney(lineTotal, currency),
		})
	}

	view.TotalItems = c.TotalItems()
	view.Badge, view.ShowBadge = CartBadge(view.TotalItems)
	view.Subtotal = NewMoney(subtotal, currency)
	return view
}
