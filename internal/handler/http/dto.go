package http

import (
	"github.com/shopspring/decimal"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/service"
)

// Money is rendered as a fixed two-decimal string so clients never see
// binary float artefacts.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

// --- Catalog ---

// ExtensionResponse is the public shape of a catalog extension.
type ExtensionResponse struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	Tagline        string   `json:"tagline"`
	Description    string   `json:"description"`
	Features       []string `json:"features"`
	Category       string   `json:"category"`
	Price          string   `json:"price"`
	SalePrice      *string  `json:"sale_price,omitempty"`
	EffectivePrice string   `json:"effective_price"`
	Icon           string   `json:"icon"`
	Color          string   `json:"color"`
	Compatibility  []string `json:"compatibility"`
	Version        string   `json:"version"`
	Featured       bool     `json:"featured"`
	DownloadURL    string   `json:"download_url"`
}

// ExtensionDetailResponse adds related extensions to an extension.
type ExtensionDetailResponse struct {
	ExtensionResponse
	Related []ExtensionResponse `json:"related"`
}

// BundleResponse is the public shape of a bundle with its members resolved.
type BundleResponse struct {
	ID               string              `json:"id"`
	Slug             string              `json:"slug"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Price            string              `json:"price"`
	SalePrice        *string             `json:"sale_price,omitempty"`
	EffectivePrice   string              `json:"effective_price"`
	OriginalPrice    string              `json:"original_price"`
	Savings          int                 `json:"savings"`
	Color            string              `json:"color"`
	Popular          bool                `json:"popular"`
	Extensions       []string            `json:"extensions"`
	ExtensionDetails []ExtensionResponse `json:"extension_details"`
}

func toExtensionResponse(e domain.Extension) ExtensionResponse {
	features := e.Features
	if features == nil {
		features = []string{}
	}
	compat := e.Compatibility
	if compat == nil {
		compat = []string{}
	}
	return ExtensionResponse{
		ID:             e.ID,
		Slug:           e.Slug,
		Name:           e.Name,
		Tagline:        e.Tagline,
		Description:    e.Description,
		Features:       features,
		Category:       e.Category,
		Price:          money(e.Price),
		SalePrice:      optionalMoney(e.SalePrice),
		EffectivePrice: money(e.EffectivePrice()),
		Icon:           e.Icon,
		Color:          e.Color,
		Compatibility:  compat,
		Version:        e.Version,
		Featured:       e.Featured,
		DownloadURL:    e.DownloadURL,
	}
}

func toExtensionResponses(exts []domain.Extension) []ExtensionResponse {
	out := make([]ExtensionResponse, 0, len(exts))
	for _, e := range exts {
		out = append(out, toExtensionResponse(e))
	}
	return out
}

func toExtensionDetailResponse(d *service.ExtensionDetail) ExtensionDetailResponse {
	return ExtensionDetailResponse{
		ExtensionResponse: toExtensionResponse(d.Extension),
		Related:           toExtensionResponses(d.Related),
	}
}

func toBundleResponse(d service.BundleDetail) BundleResponse {
	b := d.Bundle
	members := b.Extensions
	if members == nil {
		members = []string{}
	}
	return BundleResponse{
		ID:               b.ID,
		Slug:             b.Slug,
		Name:             b.Name,
		Description:      b.Description,
		Price:            money(b.Price),
		SalePrice:        optionalMoney(b.SalePrice),
		EffectivePrice:   money(b.EffectivePrice()),
		OriginalPrice:    money(b.OriginalPrice),
		Savings:          b.Savings,
		Color:            b.Color,
		Popular:          b.Popular,
		Extensions:       members,
		ExtensionDetails: toExtensionResponses(d.ExtensionDetails),
	}
}

// --- Cart ---

// LineResponse is one cart or checkout line.
type LineResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// CartResponse is the cart as the drawer renders it.
type CartResponse struct {
	Items     []LineResponse `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
	Open      bool           `json:"open"`
}

func toLineResponses(lines []domain.CartLine) []LineResponse {
	out := make([]LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineResponse{
			ID:        l.ID,
			Type:      string(l.Kind),
			Slug:      l.Slug,
			Name:      l.Name,
			Price:     money(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: money(l.LineTotal()),
		})
	}
	return out
}

func toCartResponse(l domain.Ledger) CartResponse {
	return CartResponse{
		Items:     toLineResponses(l.Lines),
		ItemCount: l.TotalItemCount(),
		Total:     money(l.TotalPrice()),
		Open:      l.Open,
	}
}

// --- Checkout ---

// SummaryResponse is a priced checkout selection.
type SummaryResponse struct {
	Items        []LineResponse `json:"items"`
	Direct       bool           `json:"direct"`
	Empty        bool           `json:"empty"`
	ItemCount    int            `json:"item_count"`
	Subtotal     string         `json:"subtotal"`
	Discount     string         `json:"discount"`
	Total        string         `json:"total"`
	PromoCode    string         `json:"promo_code,omitempty"`
	PromoApplied bool           `json:"promo_applied"`
	Status       string         `json:"status"`
}

// SubmitResponse tells the client where to send the shopper.
type SubmitResponse struct {
	RedirectURL      string          `json:"redirect_url"`
	PaymentSessionID string          `json:"payment_session_id"`
	Summary          SummaryResponse `json:"summary"`
}

func toSummaryResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		Items:        toLineResponses(s.Lines),
		Direct:       s.Direct,
		Empty:        s.Empty,
		ItemCount:    s.ItemCount,
		Subtotal:     money(s.Subtotal),
		Discount:     money(s.Discount),
		Total:        money(s.Total),
		PromoCode:    s.Promo.Code,
		PromoApplied: s.Promo.Applied,
		Status:       string(s.Status),
	}
}

// --- Contact ---

// ContactResponse acknowledges an accepted contact message.
type ContactResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
