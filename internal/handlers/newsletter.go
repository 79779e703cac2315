package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/encore/internal/services"
	"github.com/example/encore/internal/storefront"
)

// NewsletterHandler handles newsletter sign-ups.
type NewsletterHandler struct {
	db         *gorm.DB
	newsletter *services.NewsletterService
}

// NewNewsletterHandler constructs NewsletterHandler.
func NewNewsletterHandler(db *gorm.DB, newsletter *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{db: db, newsletter: newsletter}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type unsubscribeRequest struct {
	Email string `json:"email" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// Subscribe runs one newsletter attempt. The response always carries the
// attempt and the newsletter section it renders.
func (h *NewsletterHandler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	settings, err := loadSettings(c.UserContext(), h.db)
	if err != nil {
		return err
	}

	result, err := h.newsletter.Subscribe(c.UserContext(), req.Email)
	data := fiber.Map{
		"attempt": result.Attempt,
		"section": newsletterSection(settings, result.Attempt),
	}

	switch {
	case err == nil:
		data["unsubscribe_token"] = result.UnsubscribeToken
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
	case errors.Is(err, storefront.ErrInvalidEmail):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"data":    data,
		})
	case errors.Is(err, services.ErrSubscriptionInFlight):
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "data": data})
	case errors.Is(err, services.ErrSubscribeFailed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   services.SubscribeFailedMessage,
			"data":    data,
		})
	default:
		return err
	}
}

// Unsubscribe removes an address from the list given its unsubscribe token.
func (h *NewsletterHandler) Unsubscribe(c *fiber.Ctx) error {
	var req unsubscribeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := h.newsletter.Unsubscribe(c.UserContext(), req.Email, req.Token)
	switch {
	case errors.Is(err, services.ErrSubscriberNotFound):
		return fiber.NewError(fiber.StatusNotFound, "subscriber not found")
	case errors.Is(err, services.ErrInvalidUnsubscribe):
		return fiber.NewError(fiber.StatusForbidden, "invalid unsubscribe token")
	case err != nil:
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
