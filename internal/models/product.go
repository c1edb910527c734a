package models

import "fmt"

// Product is the client-side copy of a catalog entry. Identifiers are
// assigned by the API; the client never invents one.
type Product struct {
	ID                string  `json:"_id,omitempty" yaml:"id"`
	Title             string  `json:"title" yaml:"title"`
	Description       string  `json:"description" yaml:"description"`
	Price             float64 `json:"price" yaml:"price"`
	AvailableQuantity int     `json:"availableQuantity" yaml:"available_quantity"`
	ProductType       string  `json:"productType" yaml:"product_type"`
	Image             string  `json:"image" yaml:"image"`
}

// PlaceholderImage is shown for products saved without an image URL.
const PlaceholderImage = "https://via.placeholder.com/400"

// Category names known to the storefront. The API stores productType as a
// free string, so the set is configurable (see config.CatalogConfig).
const (
	CategoryAll            = "All"
	CategoryWatch          = "Watch"
	CategorySunglasses     = "Sunglasses"
	CategoryBackpack       = "Backpack"
	CategorySpeaker        = "Speaker"
	CategoryElectronics    = "Electronics"
	CategoryHomeAppliances = "Home Appliances"
)

// DefaultCategories is the category set offered when none is configured.
func DefaultCategories() []string {
	return []string{
		CategoryWatch,
		CategorySunglasses,
		CategoryBackpack,
		CategorySpeaker,
		CategoryElectronics,
		CategoryHomeAppliances,
	}
}

// FormatPrice renders a price the way the storefront displays it.
func FormatPrice(price float64) string {
	return fmt.Sprintf("₹%.2f", price)
}

// ImageURL returns the product image or the placeholder when unset.
func (p Product) ImageURL() string {
	if p.Image == "" {
		return PlaceholderImage
	}
	return p.Image
}
