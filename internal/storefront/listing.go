package storefront

// FilterByCollection returns the products that belong to the collection,
// in their original order. An empty id means no filter and returns products
// itself. An unknown id yields an empty result. The input is never modified.
func FilterByCollection(products []Product, collectionID string) []Product {
	if collectionID == "" {
		return products
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.InCollection(collectionID) {
			out = append(out, p)
		}
	}
	return out
}

// ListingStatus tags which branch of a listing a page renders.
type ListingStatus string

const (
	ListingLoading ListingStatus = "loading"
	ListingEmpty   ListingStatus = "empty"
	ListingLoaded  ListingStatus = "loaded"
)

// Listing is a {Loading, Empty, Loaded(items)} view-model computed once per
// render. Items is only populated when Status is ListingLoaded.
type Listing[T any] struct {
	Status ListingStatus `json:"status"`
	Items  []T           `json:"items"`
}

func LoadingListing[T any]() Listing[T] {
	return Listing[T]{Status: ListingLoading, Items: []T{}}
}

// NewListing picks Empty or Loaded depending on items.
func NewListing[T any](items []T) Listing[T] {
	if len(items) == 0 {
		return Listing[T]{Status: ListingEmpty, Items: []T{}}
	}
	return Listing[T]{Status: ListingLoaded, Items: items}
}

// Loaded reports whether the listing finished loading with at least one item.
func (l Listing[T]) Loaded() bool {
	return l.Status == ListingLoaded
}
