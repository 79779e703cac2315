package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/encore/internal/middleware"
	"github.com/example/encore/internal/services"
	"github.com/example/encore/internal/storefront"
	"github.com/example/encore/internal/utils"
)

// CartHandler exposes the shopper's cart. The cart is identified by the
// signed token in the X-Cart-Token header; a fresh token is returned after
// every change so the session slides with activity.
type CartHandler struct {
	carts    *services.CartStore
	secret   string
	ttl      time.Duration
	currency string
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts *services.CartStore, secret string, ttl time.Duration, currency string) *CartHandler {
	return &CartHandler{carts: carts, secret: secret, ttl: ttl, currency: currency}
}

type cartLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int    `json:"quantity"`
}

// GetCart returns the priced cart. Without a session the cart is empty.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	view, err := h.currentView(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": view})
}

// Badge returns just the cart item count and its badge label.
func (h *CartHandler) Badge(c *fiber.Ctx) error {
	total := 0
	if cartID, ok := middleware.GetCartID(c); ok {
		n, err := h.carts.TotalItems(c.UserContext(), cartID)
		if err != nil && !errors.Is(err, services.ErrCartNotFound) {
			return err
		}
		total = n
	}

	badge, show := storefront.CartBadge(total)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_items": total,
			"badge":       badge,
			"show_badge":  show,
		},
	})
}

// AddLine adds a course to the cart, opening a cart when the shopper has
// none yet.
func (h *CartHandler) AddLine(c *fiber.Ctx) error {
	var req cartLineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cartID, err := h.ensureCart(c)
	if err != nil {
		return err
	}

	if _, err := h.carts.AddLine(c.UserContext(), cartID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		return cartError(err)
	}
	return h.respond(c, cartID, fiber.StatusCreated)
}

// UpdateLine sets the quantity of a line; zero removes it.
func (h *CartHandler) UpdateLine(c *fiber.Ctx) error {
	var req cartLineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	cartID, ok := middleware.GetCartID(c)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "cart not found")
	}

	if _, err := h.carts.UpdateLine(c.UserContext(), cartID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		return cartError(err)
	}
	return h.respond(c, cartID, fiber.StatusOK)
}

// RemoveLine drops the line named by the product_id and variant_id query
// parameters.
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}

	cartID, ok := middleware.GetCartID(c)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "cart not found")
	}

	if _, err := h.carts.RemoveLine(c.UserContext(), cartID, productID, c.Query("variant_id")); err != nil {
		return cartError(err)
	}
	return h.respond(c, cartID, fiber.StatusOK)
}

// Clear ends the cart session.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if cartID, ok := middleware.GetCartID(c); ok {
		if err := h.carts.Forget(c.UserContext(), cartID); err != nil {
			return err
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) ensureCart(c *fiber.Ctx) (uuid.UUID, error) {
	if cartID, ok := middleware.GetCartID(c); ok {
		_, err := h.carts.Load(c.UserContext(), cartID)
		if err == nil {
			return cartID, nil
		}
		if !errors.Is(err, services.ErrCartNotFound) {
			return uuid.Nil, err
		}
	}

	cart, err := h.carts.Open(c.UserContext())
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(cart.ID)
}

func (h *CartHandler) respond(c *fiber.Ctx, cartID uuid.UUID, status int) error {
	token, err := utils.GenerateCartToken(h.secret, cartID, h.ttl)
	if err != nil {
		return err
	}
	view, err := h.carts.View(c.UserContext(), cartID, h.currency)
	if err != nil {
		return cartError(err)
	}

	c.Set(middleware.CartTokenHeader, token)
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"cart":  view,
			"token": token,
		},
	})
}

func (h *CartHandler) currentView(c *fiber.Ctx) (storefront.CartView, error) {
	empty := storefront.BuildCartView(storefront.Cart{}, nil, h.currency)

	cartID, ok := middleware.GetCartID(c)
	if !ok {
		return empty, nil
	}
	view, err := h.carts.View(c.UserContext(), cartID, h.currency)
	if errors.Is(err, services.ErrCartNotFound) {
		return empty, nil
	}
	return view, err
}

func cartError(err error) error {
	switch {
	case errors.Is(err, storefront.ErrInvalidQuantity):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotPurchasable):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrVariantNotFound),
		errors.Is(err, storefront.ErrLineNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
