package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/encore/internal/middleware"
	"github.com/example/encore/internal/services"
	"github.com/example/encore/internal/storefront"
)

// IndexHandler assembles the home page and the shared page template.
type IndexHandler struct {
	db       *gorm.DB
	catalog  storefront.Catalog
	carts    *services.CartStore
	log      *zap.Logger
	currency string
}

// NewIndexHandler constructs IndexHandler.
func NewIndexHandler(db *gorm.DB, catalog storefront.Catalog, carts *services.CartStore, log *zap.Logger, currency string) *IndexHandler {
	return &IndexHandler{db: db, catalog: catalog, carts: carts, log: log, currency: currency}
}

// Index returns the home page: header, heroes, the collections and products
// section, the newsletter section and the footer. collection_id narrows the
// product listing.
func (h *IndexHandler) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()

	settings, err := loadSettings(ctx, h.db)
	if err != nil {
		return err
	}

	ctrl := storefront.NewIndexController(ctx, h.catalog, h.log, h.currency, storefront.IndexTexts{
		FeaturedHeading:    settings.FeaturedHeading,
		FeaturedSubheading: settings.FeaturedSubheading,
		FallbackHeading:    defaultCollectionHeading,
	})
	ctrl.Open(c.Query("collection_id"))
	ctrl.Wait()
	view := ctrl.View()
	ctrl.Close()

	heroes, err := activeHeroes(ctx, h.db)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"header":             h.header(c, settings.BrandName, settings.LogoURL, "", view.Collections.Status),
			"heroes":             heroes,
			"index":              view,
			"empty_listing_text": settings.EmptyListingText,
			"newsletter":         newsletterSection(settings, *storefront.NewNewsletterAttempt()),
			"footer":             footerFromSettings(settings),
		},
	})
}

// Layout returns the header and footer for any other page. title sets the
// page title shown in the header.
func (h *IndexHandler) Layout(c *fiber.Ctx) error {
	ctx := c.UserContext()

	settings, err := loadSettings(ctx, h.db)
	if err != nil {
		return err
	}

	status := storefront.ListingEmpty
	collections, err := h.catalog.ListCollections(ctx)
	if err != nil {
		h.log.Warn("failed to load collections for header", zap.Error(err))
	} else {
		status = storefront.NewListing(collections).Status
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"header": h.header(c, settings.BrandName, settings.LogoURL, c.Query("title"), status),
			"footer": footerFromSettings(settings),
		},
	})
}

func (h *IndexHandler) header(c *fiber.Ctx, brand, logo, title string, collections storefront.ListingStatus) storefront.Header {
	items := 0
	if cartID, ok := middleware.GetCartID(c); ok {
		n, err := h.carts.TotalItems(c.UserContext(), cartID)
		if err != nil && !errors.Is(err, services.ErrCartNotFound) {
			h.log.Warn("failed to count cart items", zap.Error(err))
		}
		items = n
	}

	return storefront.BuildHeader(storefront.HeaderInput{
		Brand:       brand,
		LogoURL:     logo,
		PageTitle:   title,
		ShowCart:    true,
		Collections: collections,
		CartItems:   items,
	})
}
