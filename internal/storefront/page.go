package storefront

// Header is the page-template header view-model.
type Header struct {
	Brand               string `json:"brand"`
	LogoURL             string `json:"logo_url,omitempty"`
	PageTitle           string `json:"page_title,omitempty"`
	ShowCollectionsLink bool   `json:"show_collections_link"`
	ShowCart            bool   `json:"show_cart"`
	CartCount           int    `json:"cart_count"`
	CartBadge           string `json:"cart_badge,omitempty"`
	ShowCartBadge       bool   `json:"show_cart_badge"`
}

// HeaderInput carries what the header depends on.
type HeaderInput struct {
	Brand       string
	LogoURL     string
	PageTitle   string
	ShowCart    bool
	Collections ListingStatus
	CartItems   int
}

// BuildHeader hides the collections link until collections have loaded and
// at least one exists.
func BuildHeader(in HeaderInput) Header {
	h := Header{
		Brand:               in.Brand,
		LogoURL:             in.LogoURL,
		PageTitle:           in.PageTitle,
		ShowCollectionsLink: in.Collections == ListingLoaded,
		ShowCart:            in.ShowCart,
		CartCount:           in.CartItems,
	}
	if in.ShowCart {
		h.CartBadge, h.ShowCartBadge = CartBadge(in.CartItems)
	}
	return h
}

// Footer is the page-template footer view-model.
type Footer struct {
	Brand         string `json:"brand"`
	Tagline       string `json:"tagline"`
	ContactTitle  string `json:"contact_title"`
	ContactText   string `json:"contact_text"`
	CopyrightText string `json:"copyright_text"`
}

// Hero is one hero section. Layout is one of full_bleed, illustration or split.
type Hero struct {
	ID       string `json:"id"`
	Layout   string `json:"layout"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body,omitempty"`
	Image    string `json:"image,omitempty"`
	URL      string `json:"url,omitempty"`
}

// NewsletterSection is the newsletter block view-model. When the attempt has
// succeeded the form is replaced by the confirmation texts.
type NewsletterSection struct {
	Title         string            `json:"title"`
	Text          string            `json:"text"`
	SuccessTitle  string            `json:"success_title"`
	SuccessText   string            `json:"success_text"`
	ShowForm      bool              `json:"show_form"`
	InputDisabled bool              `json:"input_disabled"`
	Attempt       NewsletterAttempt `json:"attempt"`
}

func BuildNewsletterSection(title, text, successTitle, successText string, a NewsletterAttempt) NewsletterSection {
	return NewsletterSection{
		Title:         title,
		Text:          text,
		SuccessTitle:  successTitle,
		SuccessText:   successText,
		ShowForm:      a.Status != NewsletterSuccess,
		InputDisabled: a.Status == NewsletterSubmitting,
		Attempt:       a,
	}
}
