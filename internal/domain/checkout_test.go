package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleEntry() CatalogEntry {
	sale := dec("24.99")
	return CatalogEntry{ID: "ext-006", Kind: KindExtension, Slug: "dom-sink-tracker", Name: "DOM Sink Tracker", Price: dec("29.99"), SalePrice: &sale}
}

func TestCheckoutState_Transitions(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewCheckoutState()
	assert.Equal(t, CheckoutIdle, s.Status)
	assert.True(t, s.CanSubmit())

	s = s.BeginSubmission("sub-1", now)
	assert.Equal(t, CheckoutSubmitting, s.Status)
	assert.Equal(t, "sub-1", s.SubmissionID)
	assert.False(t, s.CanSubmit())
	assert.Equal(t, 1, s.Attempts)

	failed := s.Failed("provider timeout", now)
	assert.Equal(t, CheckoutFailed, failed.Status)
	assert.True(t, failed.CanSubmit())

	retry := failed.BeginSubmission("sub-2", now)
	assert.Empty(t, retry.FailureReason)
	assert.Equal(t, "sub-2", retry.SubmissionID)
	assert.Equal(t, 2, retry.Attempts)

	done := retry.Redirected("cs_1", "https://pay.example/cs_1", now)
	assert.Equal(t, CheckoutRedirected, done.Status)
	assert.Equal(t, "https://pay.example/cs_1", done.RedirectURL)
	assert.True(t, done.CanSubmit())
}

func TestCheckoutState_BeginSubmissionKeepsPromo(t *testing.T) {
	s := NewCheckoutState().ApplyPromo("HUNTER10", time.Now()).BeginSubmission("sub-1", time.Now())
	assert.True(t, s.Promo.Applied)
}

func TestSelectDirect_SingleLineAtEffectivePrice(t *testing.T) {
	sel := SelectDirect(saleEntry())

	require.Len(t, sel.Lines, 1)
	assert.True(t, sel.Direct)
	assert.Equal(t, 1, sel.Lines[0].Quantity)
	assert.True(t, sel.Lines[0].UnitPrice.Equal(dec("24.99")))
	assert.Equal(t, "ext-006", sel.Lines[0].ID)
}

func TestSelectLedger_IsSnapshot(t *testing.T) {
	l := NewLedger().AddItem(radar())
	sel := SelectLedger(l)
	sel.Lines[0].Quantity = 99

	assert.Equal(t, 1, l.Lines[0].Quantity)
	assert.False(t, sel.Direct)
}

func TestSummarize(t *testing.T) {
	l := NewLedger().AddItem(radar()).AddItem(radar()).AddItem(hawk())

	s := Summarize(SelectLedger(l), DefaultPromo(), NewCheckoutState())
	assert.Equal(t, "84.97", s.Subtotal.String())
	assert.True(t, s.Discount.IsZero())
	assert.Equal(t, "84.97", s.Total.String())
	assert.Equal(t, 3, s.ItemCount)
	assert.False(t, s.Empty)

	applied := NewCheckoutState().ApplyPromo("HUNTER10", time.Now())
	s = Summarize(SelectLedger(l), DefaultPromo(), applied)
	assert.Equal(t, "8.497", s.Discount.String())
	assert.Equal(t, "76.473", s.Total.String())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(SelectLedger(NewLedger()), DefaultPromo(), NewCheckoutState())
	assert.True(t, s.Empty)
	assert.NotNil(t, s.Lines)
	assert.True(t, s.Total.IsZero())
}

// --- Catalog ---

func TestCatalogEntry_EffectivePrice(t *testing.T) {
	e := saleEntry()
	assert.True(t, e.EffectivePrice().Equal(dec("24.99")))

	e.SalePrice = nil
	assert.True(t, e.EffectivePrice().Equal(dec("29.99")))
}

func TestCatalogEntry_Candidate(t *testing.T) {
	c := saleEntry().Candidate()
	assert.Equal(t, "ext-006", c.ID)
	assert.True(t, c.UnitPrice.Equal(dec("24.99")))
	assert.NoError(t, c.Validate())
}

func TestExtensionFilter_Matches(t *testing.T) {
	ext := Extension{Slug: "paramhawk", Category: "TRACKING", Featured: true}

	assert.True(t, ExtensionFilter{}.Matches(ext))
	assert.True(t, ExtensionFilter{Category: "tracking"}.Matches(ext))
	assert.True(t, ExtensionFilter{Category: "Tracking", FeaturedOnly: true}.Matches(ext))
	assert.False(t, ExtensionFilter{Category: "recon"}.Matches(ext))

	ext.Featured = false
	assert.False(t, ExtensionFilter{FeaturedOnly: true}.Matches(ext))
}

func TestBundle_Includes(t *testing.T) {
	b := Bundle{Slug: "starter-pack", Extensions: []string{"js-recon-radar", "paramhawk"}}
	assert.True(t, b.Includes("paramhawk"))
	assert.False(t, b.Includes("scope-guardian"))
	assert.Equal(t, KindBundle, b.Entry().Kind)
}
