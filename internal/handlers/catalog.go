package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/services"
	"github.com/example/encore/internal/storefront"
	"github.com/example/encore/internal/utils"
)

// CatalogHandler manages collections.
type CatalogHandler struct {
	db       *gorm.DB
	catalog  *services.CatalogService
	log      *zap.Logger
	currency string
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB, catalog *services.CatalogService, log *zap.Logger, currency string) *CatalogHandler {
	return &CatalogHandler{db: db, catalog: catalog, log: log, currency: currency}
}

type collectionRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Slug         string `json:"slug" validate:"omitempty,max=140"`
	Description  string `json:"description"`
	Image        string `json:"image" validate:"omitempty,max=500"`
	DisplayOrder int    `json:"display_order"`
}

func (r collectionRequest) apply(col *models.Collection) {
	col.Name = strings.TrimSpace(r.Name)
	col.Slug = r.Slug
	if col.Slug == "" {
		col.Slug = slugify(col.Name)
	}
	col.Description = r.Description
	col.Image = r.Image
	col.DisplayOrder = r.DisplayOrder
}

// ListCollections returns every collection as collection cards.
func (h *CatalogHandler) ListCollections(c *fiber.Ctx) error {
	collections, err := h.catalog.ListCollections(c.UserContext())
	if err != nil {
		h.log.Warn("failed to list collections", zap.Error(err))
		collections = nil
	}

	cards := make([]storefront.CollectionCard, 0, len(collections))
	for _, col := range collections {
		cards = append(cards, storefront.BuildCollectionCard(col))
	}

	return c.JSON(fiber.Map{"success": true, "data": storefront.NewListing(cards)})
}

// GetCollection returns a collection with one page of its products.
func (h *CatalogHandler) GetCollection(c *fiber.Ctx) error {
	col, err := h.catalog.CollectionByID(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrCollectionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "collection not found")
	}
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	products, total, err := h.catalog.PageProducts(c.UserContext(), storefront.ProductFilter{CollectionID: col.ID}, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"collection": storefront.BuildCollectionCard(col),
			"products":   productCards(products, h.currency),
		},
		"pagination": pg.Meta(total),
	})
}

// CreateCollection persists a new collection.
func (h *CatalogHandler) CreateCollection(c *fiber.Ctx) error {
	var req collectionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var col models.Collection
	req.apply(&col)
	if err := h.db.Create(&col).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": col})
}

// UpdateCollection updates an existing collection.
func (h *CatalogHandler) UpdateCollection(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var col models.Collection
	if err := h.db.First(&col, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "collection not found")
		}
		return err
	}

	var req collectionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	req.apply(&col)
	if err := h.db.Save(&col).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": col})
}

// DeleteCollection removes a collection. Its products stay in the catalog.
func (h *CatalogHandler) DeleteCollection(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		col := models.Collection{BaseModel: models.BaseModel{ID: id}}
		if err := tx.Model(&col).Association("Products").Clear(); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Delete(&models.Collection{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
