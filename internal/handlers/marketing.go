package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
	"github.com/example/encore/internal/utils"
)

// MarketingHandler manages home page hero banners.
type MarketingHandler struct {
	db *gorm.DB
}

// NewMarketingHandler constructs MarketingHandler.
func NewMarketingHandler(db *gorm.DB) *MarketingHandler {
	return &MarketingHandler{db: db}
}

type bannerRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Subtitle     string `json:"subtitle"`
	Body         string `json:"body"`
	Image        string `json:"image"`
	Layout       string `json:"layout" validate:"required,oneof=full_bleed illustration split"`
	URL          string `json:"url" validate:"omitempty,url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

func (r bannerRequest) apply(b *models.Banner) {
	b.Title = r.Title
	b.Subtitle = r.Subtitle
	b.Body = r.Body
	b.Image = r.Image
	b.Layout = r.Layout
	b.URL = r.URL
	b.DisplayOrder = r.DisplayOrder
	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}
}

// ListHeroes returns the active banners as hero view-models.
func (h *MarketingHandler) ListHeroes(c *fiber.Ctx) error {
	heroes, err := activeHeroes(c.UserContext(), h.db)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": heroes})
}

// ListBanners returns every banner, active or not.
func (h *MarketingHandler) ListBanners(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var total int64
	if err := h.db.Model(&models.Banner{}).Count(&total).Error; err != nil {
		return err
	}
	var items []models.Banner
	if err := h.db.Order("display_order asc, created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items, "pagination": pg.Meta(total)})
}

func (h *MarketingHandler) CreateBanner(c *fiber.Ctx) error {
	var req bannerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item := models.Banner{IsActive: true}
	req.apply(&item)
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *MarketingHandler) UpdateBanner(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var item models.Banner
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "banner not found")
		}
		return err
	}
	var req bannerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.apply(&item)
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *MarketingHandler) DeleteBanner(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Banner{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func activeHeroes(ctx context.Context, db *gorm.DB) ([]storefront.Hero, error) {
	var items []models.Banner
	if err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order asc, created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	heroes := make([]storefront.Hero, 0, len(items))
	for _, b := range items {
		heroes = append(heroes, storefront.Hero{
			ID:       b.Key(),
			Layout:   b.Layout,
			Title:    b.Title,
			Subtitle: b.Subtitle,
			Body:     b.Body,
			Image:    b.Image,
			URL:      b.URL,
		})
	}
	return heroes, nil
}
