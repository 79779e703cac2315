package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
)

// SettingsHandler manages the page-template texts.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

const (
	defaultBrandName              = "Encore"
	defaultTagline                = "Music appreciation courses for curious listeners."
	defaultContactTitle           = "Get in touch"
	defaultContactText            = "hello@encore.example"
	defaultCopyrightText          = "© 2026 Encore. All rights reserved."
	defaultNewsletterTitle        = "Stay in tune"
	defaultNewsletterText         = "New courses, listening guides and concert notes, once a month."
	defaultNewsletterSuccessTitle = "You're on the list"
	defaultNewsletterSuccessText  = "We'll write when a new course opens."
	defaultFeaturedHeading        = "Featured courses"
	defaultFeaturedSubheading     = "Start listening with our most loved courses."
	defaultEmptyListingText       = "No courses here yet."
	defaultCollectionHeading      = "Courses"
)

func applySettingsDefaults(settings *models.SiteSettings) {
	if settings == nil {
		return
	}
	setDefault(&settings.BrandName, defaultBrandName)
	setDefault(&settings.Tagline, defaultTagline)
	setDefault(&settings.ContactTitle, defaultContactTitle)
	setDefault(&settings.ContactText, defaultContactText)
	setDefault(&settings.CopyrightText, defaultCopyrightText)
	setDefault(&settings.NewsletterTitle, defaultNewsletterTitle)
	setDefault(&settings.NewsletterText, defaultNewsletterText)
	setDefault(&settings.NewsletterSuccessTitle, defaultNewsletterSuccessTitle)
	setDefault(&settings.NewsletterSuccessText, defaultNewsletterSuccessText)
	setDefault(&settings.FeaturedHeading, defaultFeaturedHeading)
	setDefault(&settings.FeaturedSubheading, defaultFeaturedSubheading)
	setDefault(&settings.EmptyListingText, defaultEmptyListingText)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// loadSettings returns the stored settings with defaults applied. A missing
// row is not an error.
func loadSettings(ctx context.Context, db *gorm.DB) (models.SiteSettings, error) {
	var settings models.SiteSettings
	err := db.WithContext(ctx).First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SiteSettings{}, err
	}
	applySettingsDefaults(&settings)
	return settings, nil
}

func footerFromSettings(s models.SiteSettings) storefront.Footer {
	return storefront.Footer{
		Brand:         s.BrandName,
		Tagline:       s.Tagline,
		ContactTitle:  s.ContactTitle,
		ContactText:   s.ContactText,
		CopyrightText: s.CopyrightText,
	}
}

func newsletterSection(s models.SiteSettings, attempt storefront.NewsletterAttempt) storefront.NewsletterSection {
	return storefront.BuildNewsletterSection(
		s.NewsletterTitle,
		s.NewsletterText,
		s.NewsletterSuccessTitle,
		s.NewsletterSuccessText,
		attempt,
	)
}

// GetSettings returns the current settings (public endpoint).
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := loadSettings(c.UserContext(), h.db)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": settings})
}

type settingsRequest struct {
	BrandName              string `json:"brand_name" validate:"max=80"`
	LogoURL                string `json:"logo_url" validate:"omitempty,url"`
	Tagline                string `json:"tagline"`
	ContactTitle           string `json:"contact_title"`
	ContactText            string `json:"contact_text"`
	CopyrightText          string `json:"copyright_text"`
	NewsletterTitle        string `json:"newsletter_title"`
	NewsletterText         string `json:"newsletter_text"`
	NewsletterSuccessTitle string `json:"newsletter_success_title"`
	NewsletterSuccessText  string `json:"newsletter_success_text"`
	FeaturedHeading        string `json:"featured_heading"`
	FeaturedSubheading     string `json:"featured_subheading"`
	EmptyListingText       string `json:"empty_listing_text"`
}

// UpdateSettings creates or updates the settings row (admin endpoint).
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var input settingsRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}

	var existing models.SiteSettings
	result := h.db.First(&existing)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	existing.BrandName = input.BrandName
	existing.LogoURL = input.LogoURL
	existing.Tagline = input.Tagline
	existing.ContactTitle = input.ContactTitle
	existing.ContactText = input.ContactText
	existing.CopyrightText = input.CopyrightText
	existing.NewsletterTitle = input.NewsletterTitle
	existing.NewsletterText = input.NewsletterText
	existing.NewsletterSuccessTitle = input.NewsletterSuccessTitle
	existing.NewsletterSuccessText = input.NewsletterSuccessText
	existing.FeaturedHeading = input.FeaturedHeading
	existing.FeaturedSubheading = input.FeaturedSubheading
	existing.EmptyListingText = input.EmptyListingText

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := h.db.Create(&existing).Error; err != nil {
			return err
		}
	} else if err := h.db.Save(&existing).Error; err != nil {
		return err
	}

	applySettingsDefaults(&existing)
	return c.JSON(fiber.Map{"success": true, "data": existing})
}
