// Package domain holds the menu data model and the pure view logic shared by
// the public page and the admin panels: record normalization, category label
// aggregation, and hero presentation.
package domain

// Record is one identified entry from a collection path, the uniform shape
// every stored collection normalizes into regardless of how it is persisted.
type Record struct {
	ID     string
	Fields map[string]any
}

// Product is a menu entry. Price is a pointer because a stored product can
// legitimately carry no price at all.
type Product struct {
	ID          string   `mapstructure:"-" json:"id"`
	Name        string   `mapstructure:"name" json:"name"`
	Description string   `mapstructure:"description" json:"description"`
	Category    string   `mapstructure:"category" json:"category"`
	Price       *float64 `mapstructure:"price" json:"price,omitempty"`
	Tags        []string `mapstructure:"tags" json:"tags,omitempty"`
	Image       string   `mapstructure:"image" json:"image,omitempty"`
	ImageBase64 string   `mapstructure:"imageBase64" json:"imageBase64,omitempty"`
}

// DisplayImage returns the image to present, inlined data taking precedence
// over an external URL.
func (p Product) DisplayImage() string {
	if p.ImageBase64 != "" {
		return p.ImageBase64
	}
	return p.Image
}

// Category is one explicit filter label.
type Category struct {
	ID   string `mapstructure:"-" json:"id"`
	Name string `mapstructure:"name" json:"name"`
}

// GalleryItem is one photo shown on the public page.
type GalleryItem struct {
	ID          string `mapstructure:"-" json:"id"`
	Title       string `mapstructure:"title" json:"title"`
	Image       string `mapstructure:"image" json:"image,omitempty"`
	ImageBase64 string `mapstructure:"imageBase64" json:"imageBase64,omitempty"`
}

// DisplayImage returns the gallery image, inlined data first.
func (g GalleryItem) DisplayImage() string {
	if g.ImageBase64 != "" {
		return g.ImageBase64
	}
	return g.Image
}

// BackgroundItem is the hero background record. The path is intended to hold
// at most one; the guard lives in the gallery service, not the store.
type BackgroundItem struct {
	ID          string `mapstructure:"-" json:"id"`
	Title       string `mapstructure:"title" json:"title"`
	Description string `mapstructure:"description" json:"description,omitempty"`
	Image       string `mapstructure:"image" json:"image,omitempty"`
	ImageBase64 string `mapstructure:"imageBase64" json:"imageBase64,omitempty"`
}

// DisplayImage returns the background image, inlined data first.
func (b BackgroundItem) DisplayImage() string {
	if b.ImageBase64 != "" {
		return b.ImageBase64
	}
	return b.Image
}

// SiteSettings is the singleton settings document. HeroOverlayOpacity stays
// untyped because existing documents hold it as either a number or a numeric
// string; Overlay handles both.
type SiteSettings struct {
	Title              string `mapstructure:"title" json:"title,omitempty"`
	CompanyName        string `mapstructure:"companyName" json:"companyName,omitempty"`
	Phone              string `mapstructure:"phone" json:"phone,omitempty"`
	Email              string `mapstructure:"email" json:"email,omitempty"`
	Address            string `mapstructure:"address" json:"address,omitempty"`
	About              string `mapstructure:"about" json:"about,omitempty"`
	MapURL             string `mapstructure:"mapUrl" json:"mapUrl,omitempty"`
	HeroImage          string `mapstructure:"heroImage" json:"heroImage,omitempty"`
	HeroTextColor      string `mapstructure:"heroTextColor" json:"heroTextColor,omitempty"`
	HeroOverlayColor   string `mapstructure:"heroOverlayColor" json:"heroOverlayColor,omitempty"`
	HeroOverlayOpacity any    `mapstructure:"heroOverlayOpacity" json:"heroOverlayOpacity,omitempty"`
	ShowBadges         bool   `mapstructure:"showBadges" json:"showBadges,omitempty"`
}

// FooterName returns the name shown in the footer contact block.
func (s SiteSettings) FooterName() string {
	if s.CompanyName != "" {
		return s.CompanyName
	}
	return s.Title
}
