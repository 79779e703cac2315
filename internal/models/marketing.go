package models

// Hero layouts supported by the home page.
const (
	BannerLayoutFullBleed    = "full_bleed"
	BannerLayoutIllustration = "illustration"
	BannerLayoutSplit        = "split"
)

// Banner is a hero section shown at the top of the home page.
type Banner struct {
	BaseModel
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Body         string `json:"body"`
	Image        string `json:"image"`
	Layout       string `json:"layout"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}
