package models

// SiteSettings stores the page-template texts managed from the admin panel.
// There should be only one row.
type SiteSettings struct {
	BaseModel
	BrandName     string `json:"brand_name"`
	LogoURL       string `json:"logo_url"`
	Tagline       string `json:"tagline"`
	ContactTitle  string `json:"contact_title"`
	ContactText   string `json:"contact_text"`
	CopyrightText string `json:"copyright_text"`

	// Newsletter section
	NewsletterTitle        string `json:"newsletter_title"`
	NewsletterText         string `json:"newsletter_text"`
	NewsletterSuccessTitle string `json:"newsletter_success_title"`
	NewsletterSuccessText  string `json:"newsletter_success_text"`

	// Products section
	FeaturedHeading    string `json:"featured_heading"`
	FeaturedSubheading string `json:"featured_subheading"`
	EmptyListingText   string `json:"empty_listing_text"`
}
