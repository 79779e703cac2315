package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProductFilter narrows a catalog product listing.
type ProductFilter struct {
	CollectionID string
	FeaturedOnly bool
	Search       string
}

// Catalog is the read side of the product backend.
type Catalog interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}

// IndexTexts are the editable copy of the products section.
type IndexTexts struct {
	FeaturedHeading    string
	FeaturedSubheading string
	FallbackHeading    string
}

// IndexView is the home page products/collections view-model.
type IndexView struct {
	SelectedCollectionID string                  `json:"selected_collection_id,omitempty"`
	Heading              string                  `json:"heading"`
	Subheading           string                  `json:"subheading,omitempty"`
	ShowAllAction        bool                    `json:"show_all_action"`
	Collections          Listing[CollectionCard] `json:"collections"`
	Products             Listing[ProductCard]    `json:"products"`
}

// IndexController holds the home page state for one page instance. Fetches
// run in the background; their results are applied in the order the
// triggering calls were made, and a response for anything but the latest
// request is dropped. Close discards every pending result.
type IndexController struct {
	catalog  Catalog
	logger   *zap.Logger
	currency string
	texts    IndexTexts

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	collectionsSeq Sequencer
	productsSeq    Sequencer

	mu                 sync.Mutex
	collections        []Collection
	loadingCollections bool
	products           []Product
	loadingProducts    bool
	selected           string
}

func NewIndexController(ctx context.Context, catalog Catalog, logger *zap.Logger, currency string, texts IndexTexts) *IndexController {
	ctx, cancel := context.WithCancel(ctx)
	return &IndexController{
		catalog:            catalog,
		logger:             logger,
		currency:           currency,
		texts:              texts,
		ctx:                ctx,
		cancel:             cancel,
		loadingCollections: true,
		loadingProducts:    true,
	}
}

// Load fetches collections and products concurrently.
func (c *IndexController) Load() {
	c.mu.Lock()
	c.loadingCollections = true
	c.loadingProducts = true
	selected := c.selected
	collectionsToken := c.collectionsSeq.Next()
	productsToken := c.productsSeq.Next()
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		var g errgroup.Group
		g.Go(func() error {
			c.fetchCollections(collectionsToken)
			return nil
		})
		g.Go(func() error {
			c.fetchProducts(productsToken, selected)
			return nil
		})
		_ = g.Wait()
	}()
}

// Open sets the initial collection selection and loads the page.
func (c *IndexController) Open(collectionID string) {
	c.mu.Lock()
	c.selected = collectionID
	c.mu.Unlock()
	c.Load()
}

// SelectCollection switches the listing to one collection and refetches.
func (c *IndexController) SelectCollection(id string) {
	c.mu.Lock()
	c.selected = id
	c.loadingProducts = true
	token := c.productsSeq.Next()
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.fetchProducts(token, id)
	}()
}

// ShowAllProducts clears the collection filter.
func (c *IndexController) ShowAllProducts() {
	c.SelectCollection("")
}

// Wait blocks until every fetch issued so far has completed or been dropped.
func (c *IndexController) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight fetches and discards their results.
func (c *IndexController) Close() {
	c.mu.Lock()
	c.collectionsSeq.Close()
	c.productsSeq.Close()
	c.mu.Unlock()
	c.cancel()
}

func (c *IndexController) fetchCollections(token Token) {
	collections, err := c.catalog.ListCollections(c.ctx)
	if err != nil {
		c.logger.Warn("failed to load collections", zap.Error(err))
		collections = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectionsSeq.Apply(token, func() {
		c.collections = collections
		c.loadingCollections = false
	})
}

func (c *IndexController) fetchProducts(token Token, collectionID string) {
	products, err := c.catalog.ListProducts(c.ctx, ProductFilter{CollectionID: collectionID})
	if err != nil {
		c.logger.Warn("failed to load products",
			zap.String("collection_id", collectionID),
			zap.Error(err),
		)
		products = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	applied := c.productsSeq.Apply(token, func() {
		c.products = FilterByCollection(products, collectionID)
		c.loadingProducts = false
	})
	if !applied {
		c.logger.Debug("dropping stale product response", zap.String("collection_id", collectionID))
	}
}

// View computes the current view-model.
func (c *IndexController) View() IndexView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := IndexView{
		SelectedCollectionID: c.selected,
		ShowAllAction:        c.selected != "",
	}

	if c.loadingCollections {
		view.Collections = LoadingListing[CollectionCard]()
	} else {
		cards := make([]CollectionCard, 0, len(c.collections))
		for _, col := range c.collections {
			cards = append(cards, BuildCollectionCard(col))
		}
		view.Collections = NewListing(cards)
	}

	if c.loadingProducts {
		view.Products = LoadingListing[ProductCard]()
	} else {
		cards := make([]ProductCard, 0, len(c.products))
		for _, p := range c.products {
			cards = append(cards, BuildProductCard(Resolve(p, nil), c.currency))
		}
		view.Products = NewListing(cards)
	}

	if c.selected == "" {
		view.Heading = c.texts.FeaturedHeading
		view.Subheading = c.texts.FeaturedSubheading
	} else {
		view.Heading = c.texts.FallbackHeading
		for _, col := range c.collections {
			if col.ID == c.selected && col.Name != "" {
				view.Heading = col.Name
				break
			}
		}
	}
	return view
}
