package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Extension is a single browser extension in the catalog.
type Extension struct {
	ID            string           `json:"id" yaml:"id"`
	Slug          string           `json:"slug" yaml:"slug"`
	Name          string           `json:"name" yaml:"name"`
	Tagline       string           `json:"tagline" yaml:"tagline"`
	Description   string           `json:"description" yaml:"description"`
	Features      []string         `json:"features" yaml:"features"`
	Category      string           `json:"category" yaml:"category"`
	Price         decimal.Decimal  `json:"price" yaml:"price"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty" yaml:"sale_price"`
	Icon          string           `json:"icon" yaml:"icon"`
	Color         string           `json:"color" yaml:"color"`
	Compatibility []string         `json:"compatibility" yaml:"compatibility"`
	Version       string           `json:"version" yaml:"version"`
	Featured      bool             `json:"featured" yaml:"featured"`
	DownloadURL   string           `json:"download_url" yaml:"download_url"`
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (e Extension) EffectivePrice() decimal.Decimal {
	return effectivePrice(e.Price, e.SalePrice)
}

// Entry converts the extension to the minimal form the cart consumes.
func (e Extension) Entry() CatalogEntry {
	return CatalogEntry{ID: e.ID, Kind: KindExtension, Slug: e.Slug, Name: e.Name, Price: e.Price, SalePrice: e.SalePrice}
}

// Bundle is a discounted set of extensions.
type Bundle struct {
	ID            string           `json:"id" yaml:"id"`
	Slug          string           `json:"slug" yaml:"slug"`
	Name          string           `json:"name" yaml:"name"`
	Description   string           `json:"description" yaml:"description"`
	Price         decimal.Decimal  `json:"price" yaml:"price"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty" yaml:"sale_price"`
	OriginalPrice decimal.Decimal  `json:"original_price" yaml:"original_price"`
	Savings       int              `json:"savings" yaml:"savings"`
	Color         string           `json:"color" yaml:"color"`
	Popular       bool             `json:"popular" yaml:"popular"`
	Extensions    []string         `json:"extensions" yaml:"extensions"`
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (b Bundle) EffectivePrice() decimal.Decimal {
	return effectivePrice(b.Price, b.SalePrice)
}

// Entry converts the bundle to the minimal form the cart consumes.
func (b Bundle) Entry() CatalogEntry {
	return CatalogEntry{ID: b.ID, Kind: KindBundle, Slug: b.Slug, Name: b.Name, Price: b.Price, SalePrice: b.SalePrice}
}

// Includes reports whether the bundle contains the extension slug.
func (b Bundle) Includes(slug string) bool {
	for _, s := range b.Extensions {
		if s == slug {
			return true
		}
	}
	return false
}

// CatalogEntry is the kind-agnostic view of something purchasable.
type CatalogEntry struct {
	ID        string
	Kind      Kind
	Slug      string
	Name      string
	Price     decimal.Decimal
	SalePrice *decimal.Decimal
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (c CatalogEntry) EffectivePrice() decimal.Decimal {
	return effectivePrice(c.Price, c.SalePrice)
}

// Candidate builds the ledger candidate for this entry. The catalog ID is the
// aggregation key, so adding the same entry twice merges into one line.
func (c CatalogEntry) Candidate() LineCandidate {
	return LineCandidate{
		ID:        c.ID,
		Kind:      c.Kind,
		Slug:      c.Slug,
		Name:      c.Name,
		UnitPrice: c.EffectivePrice(),
	}
}

func effectivePrice(price decimal.Decimal, sale *decimal.Decimal) decimal.Decimal {
	if sale != nil {
		return *sale
	}
	return price
}

// ExtensionFilter narrows an extension listing. Empty fields match everything.
type ExtensionFilter struct {
	Category     string
	FeaturedOnly bool
}

// Matches applies the filter to a single extension. Category comparison is
// case-insensitive.
func (f ExtensionFilter) Matches(e Extension) bool {
	if f.Category != "" && !strings.EqualFold(e.Category, strings.TrimSpace(f.Category)) {
		return false
	}
	if f.FeaturedOnly && !e.Featured {
		return false
	}
	return true
}
