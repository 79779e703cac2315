package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())

	var totalProducts int64
	if err := db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalCollections int64
	if err := db.Model(&models.Collection{}).Count(&totalCollections).Error; err != nil {
		return err
	}

	var totalBanners int64
	if err := db.Model(&models.Banner{}).Count(&totalBanners).Error; err != nil {
		return err
	}

	// Subscribers by status
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := db.Model(&models.Subscriber{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	subscribersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		subscribersByStatus[sc.Status] = sc.Count
	}

	var openCarts int64
	if err := db.Model(&models.Cart{}).Count(&openCarts).Error; err != nil {
		return err
	}

	var itemsInCarts int64
	if err := db.Model(&models.CartLine{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&itemsInCarts).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_products":        totalProducts,
			"total_collections":     totalCollections,
			"total_banners":         totalBanners,
			"active_subscribers":    subscribersByStatus[models.SubscriberActive],
			"subscribers_by_status": subscribersByStatus,
			"open_carts":            openCarts,
			"items_in_carts":        itemsInCarts,
		},
	})
}

// ListSubscribers returns newsletter subscribers with pagination and search.
func (h *AdminHandler) ListSubscribers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Subscriber{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("email LIKE ? ESCAPE '"+utils.LikeEscape+"'", utils.ContainsPattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var subscribers []models.Subscriber
	if err := query.Order("subscribed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&subscribers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       subscribers,
		"pagination": pg.Meta(total),
	})
}
