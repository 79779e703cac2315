package storefront

// Resolution is the outcome of resolving a product against a selection.
// It is computed once per render and never mutated.
type Resolution struct {
	Product   Product
	Selection Selection

	// Variant is set only when exactly one variant matches the selection.
	Variant *Variant
	Matches int

	CurrentPrice     int64
	CurrentCompareAt int64
	InStock          bool
	CanAddToCart     bool
}

// Resolve finds the variant matching sel and derives price and stock.
//
// A variant matches when each of its option values equals the selected
// value for that option, for every option sel has a value for. Until the
// selection narrows the product down to one variant the product's base
// prices stand in as placeholders.
func Resolve(p Product, sel Selection) Resolution {
	r := Resolution{
		Product:          p,
		Selection:        sel.clone(),
		CurrentPrice:     p.Price,
		CurrentCompareAt: p.CompareAt,
	}

	if !p.HasVariants() {
		// Without options the product is its own single variant.
		if len(p.Options) == 0 {
			r.Matches = 1
			r.InStock = stocked(p.Stock, p.Available)
			r.CanAddToCart = r.InStock
		}
		return r
	}

	var match *Variant
	anyInStock := false
	for i := range p.Variants {
		v := &p.Variants[i]
		if !matchesSelection(*v, sel) {
			continue
		}
		r.Matches++
		match = v
		if v.inStock() {
			anyInStock = true
		}
	}

	if r.Matches != 1 {
		r.InStock = anyInStock
		return r
	}

	v := *match
	r.Variant = &v
	r.CurrentPrice = v.Price
	r.CurrentCompareAt = v.CompareAt
	r.InStock = v.inStock()
	r.CanAddToCart = r.InStock
	return r
}

// IsOptionValueAvailable reports whether some variant offers value for the
// named option while agreeing with every other option already selected.
// The option's own current choice is ignored so the shopper can always
// switch it.
func (r Resolution) IsOptionValueAvailable(name, value string) bool {
	for _, v := range r.Product.Variants {
		if got, ok := v.Options[name]; !ok || got != value {
			continue
		}
		if consistentExcept(v, r.Selection, name) {
			return true
		}
	}
	return false
}

// Discount returns the badge percentage for the current prices.
func (r Resolution) Discount() (int, bool) {
	return DiscountPercentage(r.CurrentPrice, r.CurrentCompareAt)
}

// Image returns the resolved variant's image, falling back to the first
// product image. An empty result means the page shows a placeholder.
func (r Resolution) Image() string {
	if r.Variant != nil && r.Variant.Image != "" {
		return r.Variant.Image
	}
	if len(r.Product.Images) > 0 {
		return r.Product.Images[0]
	}
	return ""
}

// OptionValueState is how one option value renders in the picker.
type OptionValueState struct {
	Value     string `json:"value"`
	Swatch    string `json:"swatch,omitempty"`
	Selected  bool   `json:"selected"`
	Available bool   `json:"available"`
	// Dimmed marks the non-chosen values of an option that has a choice.
	Dimmed bool `json:"dimmed"`
	// Disabled marks a kept choice that no longer combines with the others.
	Disabled bool `json:"disabled"`
}

// OptionState is the picker state of one option.
type OptionState struct {
	Name   string             `json:"name"`
	Values []OptionValueState `json:"values"`
}

// Options computes the picker for every option of the product. Values that
// are neither available nor selected are left out. Earlier choices are never
// cleared: a choice made unreachable by a later one stays selected and is
// marked disabled.
func (r Resolution) Options() []OptionState {
	if !r.Product.HasVariants() {
		return nil
	}

	states := make([]OptionState, 0, len(r.Product.Options))
	for _, opt := range r.Product.Options {
		chosen := r.Selection[opt.Name]
		state := OptionState{Name: opt.Name, Values: make([]OptionValueState, 0, len(opt.Values))}
		for _, val := range opt.Values {
			available := r.IsOptionValueAvailable(opt.Name, val)
			selected := chosen == val
			if !available && !selected {
				continue
			}

			vs := OptionValueState{
				Value:     val,
				Selected:  selected,
				Available: available,
				Dimmed:    chosen != "" && !selected,
				Disabled:  selected && !available,
			}
			if opt.IsColor() {
				vs.Swatch = opt.Swatches[val]
			}
			state.Values = append(state.Values, vs)
		}
		states = append(states, state)
	}
	return states
}

func matchesSelection(v Variant, sel Selection) bool {
	for name, value := range v.Options {
		want, ok := sel[name]
		if !ok || want == "" {
			continue
		}
		if want != value {
			return false
		}
	}
	return true
}

func consistentExcept(v Variant, sel Selection, skip string) bool {
	for name, want := range sel {
		if name == skip || want == "" {
			continue
		}
		if got, ok := v.Options[name]; ok && got != want {
			return false
		}
	}
	return true
}
