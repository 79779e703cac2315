package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/services"
	"github.com/example/encore/internal/storefront"
	"github.com/example/encore/internal/utils"
)

// ProductHandler serves the course catalog and its admin CRUD.
type ProductHandler struct {
	db       *gorm.DB
	catalog  *services.CatalogService
	log      *zap.Logger
	currency string
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, catalog *services.CatalogService, log *zap.Logger, currency string) *ProductHandler {
	return &ProductHandler{db: db, catalog: catalog, log: log, currency: currency}
}

// ListProducts returns paginated product cards with optional filters. A
// failed fetch is logged and served as an empty page.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := storefront.ProductFilter{
		CollectionID: c.Query("collection_id"),
		FeaturedOnly: c.QueryBool("featured"),
		Search:       c.Query("search"),
	}

	products, total, err := h.catalog.PageProducts(c.UserContext(), filter, pg.Limit, pg.Offset)
	if err != nil {
		h.log.Warn("failed to list products",
			zap.String("collection_id", filter.CollectionID),
			zap.Error(err),
		)
		products, total = nil, 0
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       productCards(products, h.currency),
		"pagination": pg.Meta(total),
	})
}

// GetProduct returns a product by slug together with its unselected card.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.catalog.ProductBySlug(c.UserContext(), c.Params("slug"))
	if errors.Is(err, services.ErrProductNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"product": p,
			"card":    storefront.BuildProductCard(storefront.Resolve(p, nil), h.currency),
		},
	})
}

// ResolveProduct resolves the variant for the selection passed as query
// parameters, one per option name. Unknown parameters are ignored.
func (h *ProductHandler) ResolveProduct(c *fiber.Ctx) error {
	p, err := h.catalog.ProductBySlug(c.UserContext(), c.Params("slug"))
	if errors.Is(err, services.ErrProductNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}

	query := c.Queries()
	sel := storefront.Selection{}
	for _, opt := range p.Options {
		if v := strings.TrimSpace(query[opt.Name]); v != "" {
			sel = sel.With(opt.Name, v)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    storefront.BuildProductCard(storefront.Resolve(p, sel), h.currency),
	})
}

type productRequest struct {
	Slug              string           `json:"slug" validate:"omitempty,max=160"`
	Title             string           `json:"title" validate:"required,max=200"`
	Description       string           `json:"description"`
	Images            []string         `json:"images"`
	Featured          bool             `json:"featured"`
	PriceCents        int64            `json:"price_cents" validate:"gte=0"`
	CompareAtCents    int64            `json:"compare_at_cents" validate:"gte=0"`
	Currency          string           `json:"currency" validate:"omitempty,len=3"`
	InventoryQuantity *int             `json:"inventory_quantity"`
	Available         *bool            `json:"available"`
	DisplayOrder      int              `json:"display_order"`
	Options           []optionRequest  `json:"options" validate:"dive"`
	Variants          []variantRequest `json:"variants" validate:"dive"`
	CollectionIDs     []string         `json:"collection_ids"`
}

type optionRequest struct {
	Name         string            `json:"name" validate:"required"`
	Values       []string          `json:"values" validate:"required,min=1"`
	Swatches     map[string]string `json:"swatches"`
	DisplayOrder int               `json:"display_order"`
}

type variantRequest struct {
	SKU               string            `json:"sku"`
	OptionValues      map[string]string `json:"option_values"`
	PriceCents        int64             `json:"price_cents" validate:"gte=0"`
	CompareAtCents    int64             `json:"compare_at_cents" validate:"gte=0"`
	InventoryQuantity *int              `json:"inventory_quantity"`
	Available         *bool             `json:"available"`
	Image             string            `json:"image"`
	DisplayOrder      int               `json:"display_order"`
}

// CreateProduct handles product creation.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := buildProductFromRequest(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		collections, err := findCollections(tx, req.CollectionIDs)
		if err != nil {
			return err
		}
		product.Collections = collections
		return tx.Create(&product).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates an existing product and replaces its options,
// variants and collection memberships.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := buildProductFromRequest(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		collections, err := findCollections(tx, req.CollectionIDs)
		if err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&product).Error; err != nil {
			return err
		}

		for i := range product.Options {
			product.Options[i].ProductID = product.ID
		}
		for i := range product.Variants {
			product.Variants[i].ProductID = product.ID
		}
		if len(product.Options) > 0 {
			if err := tx.Create(&product.Options).Error; err != nil {
				return err
			}
		}
		if len(product.Variants) > 0 {
			if err := tx.Create(&product.Variants).Error; err != nil {
				return err
			}
		}

		if len(collections) == 0 {
			return tx.Model(&existing).Association("Collections").Clear()
		}
		product.Collections = collections
		return tx.Model(&existing).Association("Collections").Replace(collections)
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product, its options and variants, and its
// collection memberships.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}

		product := models.Product{BaseModel: models.BaseModel{ID: id}}
		if err := tx.Model(&product).Association("Collections").Clear(); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// buildProductFromRequest maps the request onto a product and checks that
// every variant names known option values and that no two variants share
// a combination.
func buildProductFromRequest(req productRequest) (models.Product, error) {
	product := models.Product{
		Slug:              req.Slug,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Images:            datatypes.JSONSlice[string](req.Images),
		Featured:          req.Featured,
		PriceCents:        req.PriceCents,
		CompareAtCents:    req.CompareAtCents,
		Currency:          strings.ToUpper(req.Currency),
		InventoryQuantity: req.InventoryQuantity,
		Available:         req.Available,
		DisplayOrder:      req.DisplayOrder,
	}
	if product.Slug == "" {
		product.Slug = slugify(product.Title)
	}
	if product.Images == nil {
		product.Images = datatypes.JSONSlice[string]{}
	}

	values := make(map[string]map[string]bool, len(req.Options))
	for i, o := range req.Options {
		if _, dup := values[o.Name]; dup {
			return product, fmt.Errorf("duplicate option %q", o.Name)
		}
		values[o.Name] = make(map[string]bool, len(o.Values))
		for _, v := range o.Values {
			values[o.Name][v] = true
		}

		swatches := datatypes.JSONMap{}
		for k, v := range o.Swatches {
			swatches[k] = v
		}
		order := o.DisplayOrder
		if order == 0 {
			order = i
		}
		product.Options = append(product.Options, models.ProductOption{
			Name:         o.Name,
			Values:       datatypes.JSONSlice[string](o.Values),
			Swatches:     swatches,
			DisplayOrder: order,
		})
	}

	seen := make(map[string]bool, len(req.Variants))
	for i, v := range req.Variants {
		if len(v.OptionValues) != len(values) {
			return product, fmt.Errorf("variant %d must set a value for every option", i)
		}
		optionValues := datatypes.JSONMap{}
		keys := make([]string, 0, len(req.Options))
		for _, o := range req.Options {
			val, ok := v.OptionValues[o.Name]
			if !ok || !values[o.Name][val] {
				return product, fmt.Errorf("variant %d has no valid value for option %q", i, o.Name)
			}
			optionValues[o.Name] = val
			keys = append(keys, o.Name+"="+val)
		}
		combo := strings.Join(keys, "&")
		if seen[combo] {
			return product, fmt.Errorf("variant %d repeats combination %s", i, combo)
		}
		seen[combo] = true

		order := v.DisplayOrder
		if order == 0 {
			order = i
		}
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:               v.SKU,
			OptionValues:      optionValues,
			PriceCents:        v.PriceCents,
			CompareAtCents:    v.CompareAtCents,
			InventoryQuantity: v.InventoryQuantity,
			Available:         v.Available,
			Image:             v.Image,
			DisplayOrder:      order,
		})
	}

	return product, nil
}

func findCollections(tx *gorm.DB, ids []string) ([]models.Collection, error) {
	parsed := stringSliceToUUID(ids)
	if len(parsed) == 0 {
		return nil, nil
	}

	var collections []models.Collection
	if err := tx.Where("id IN ?", parsed).Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

func stringSliceToUUID(values []string) []uuid.UUID {
	var ids []uuid.UUID
	for _, value := range values {
		if value == "" {
			continue
		}
		if id, err := uuid.Parse(value); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func productCards(products []storefront.Product, currency string) []storefront.ProductCard {
	cards := make([]storefront.ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, storefront.BuildProductCard(storefront.Resolve(p, nil), currency))
	}
	return cards
}
