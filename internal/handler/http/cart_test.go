package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addItem(t *testing.T, h http.Handler, kind, slug string) CartResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/cart/items", AddItemRequest{Type: kind, Slug: slug})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cart CartResponse
	decodeData(t, rec, &cart)
	return cart
}

// ---------------------------------------------------------------------------
// GetCart
// ---------------------------------------------------------------------------

func TestGetCart_EmptyForNewSession(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/cart", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.Equal(t, 0, cart.ItemCount)
	assert.Equal(t, "0.00", cart.Total)
	assert.False(t, cart.Open)
}

func TestGetCart_CorruptDocumentResets(t *testing.T) {
	router, mr := setupRouter(t)
	require.NoError(t, mr.Set("hexstrike-cart:"+testSession, "{{nope"))

	rec := do(t, router, http.MethodGet, "/api/cart", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.False(t, mr.Exists("hexstrike-cart:"+testSession))
}

// ---------------------------------------------------------------------------
// AddItem
// ---------------------------------------------------------------------------

func TestAddItem_AggregatesAndTotals(t *testing.T) {
	router, mr := setupRouter(t)

	addItem(t, router, "extension", "js-recon-radar")
	addItem(t, router, "extension", "js-recon-radar")
	cart := addItem(t, router, "extension", "dom-sink-tracker")

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "ext-001", cart.Items[0].ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "59.98", cart.Items[0].LineTotal)
	assert.Equal(t, "24.99", cart.Items[1].Price)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "84.97", cart.Total)
	assert.True(t, mr.Exists("hexstrike-cart:"+testSession))

	// Persisted state is what the next request sees.
	rec := do(t, router, http.MethodGet, "/api/cart", nil)
	var reloaded CartResponse
	decodeData(t, rec, &reloaded)
	assert.Equal(t, cart.Items, reloaded.Items)
}

func TestAddItem_Bundle(t *testing.T) {
	router, _ := setupRouter(t)

	cart := addItem(t, router, "bundle", "elite-arsenal")

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "bundle", cart.Items[0].Type)
	assert.Equal(t, "299.99", cart.Total)
}

func TestAddItem_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"unknown type", AddItemRequest{Type: "theme", Slug: "paramhawk"}, "VALIDATION_ERROR"},
		{"missing slug", AddItemRequest{Type: "extension"}, "VALIDATION_ERROR"},
		{"malformed json", `{"type":`, "INVALID_INPUT"},
		{"unknown field", `{"type":"extension","slug":"paramhawk","price":"0.01"}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/cart/items", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestAddItem_UnknownSlug(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/cart/items", AddItemRequest{Type: "extension", Slug: "ghost-scanner"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------------------------------------------------------------------------
// UpdateItemQuantity / RemoveItem / ClearCart
// ---------------------------------------------------------------------------

func TestUpdateItemQuantity_SetsExactly(t *testing.T) {
	router, _ := setupRouter(t)
	addItem(t, router, "extension", "paramhawk")

	rec := do(t, router, http.MethodPatch, "/api/cart/items/ext-002", map[string]int{"quantity": 5})

	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5, cart.ItemCount)
}

func TestUpdateItemQuantity_ZeroRemoves(t *testing.T) {
	router, mr := setupRouter(t)
	addItem(t, router, "extension", "paramhawk")

	rec := do(t, router, http.MethodPatch, "/api/cart/items/ext-002", map[string]int{"quantity": 0})

	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.False(t, mr.Exists("hexstrike-cart:"+testSession))
}

func TestUpdateItemQuantity_MissingQuantity(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodPatch, "/api/cart/items/ext-002", map[string]int{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "quantity")
}

func TestRemoveItem_UnknownIDIsNoop(t *testing.T) {
	router, _ := setupRouter(t)
	addItem(t, router, "extension", "paramhawk")

	rec := do(t, router, http.MethodDelete, "/api/cart/items/ext-999", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Len(t, cart.Items, 1)
}

func TestClearCart(t *testing.T) {
	router, _ := setupRouter(t)
	addItem(t, router, "extension", "paramhawk")
	addItem(t, router, "bundle", "starter-pack")

	rec := do(t, router, http.MethodDelete, "/api/cart", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)
}

// ---------------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------------

func TestVisibility(t *testing.T) {
	router, _ := setupRouter(t)

	steps := []struct {
		path string
		open bool
	}{
		{"/api/cart/toggle", true},
		{"/api/cart/toggle", false},
		{"/api/cart/open", true},
		{"/api/cart/open", true},
		{"/api/cart/close", false},
	}
	for _, s := range steps {
		rec := do(t, router, http.MethodPost, s.path, nil)
		require.Equal(t, http.StatusOK, rec.Code, s.path)
		var cart CartResponse
		decodeData(t, rec, &cart)
		assert.Equal(t, s.open, cart.Open, s.path)
	}
}
