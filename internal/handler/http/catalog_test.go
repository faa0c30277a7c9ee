package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantkulkarni1234/website/pkg/httputil"
)

func TestListExtensions_All(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/extensions", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var list httputil.ListResponse[ExtensionResponse]
	decodeList(t, rec, &list)
	assert.Equal(t, 9, list.Total)
	assert.Equal(t, "js-recon-radar", list.Data[0].Slug)
}

func TestListExtensions_Filters(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name  string
		query string
		total int
	}{
		{"category is case-insensitive", "?category=recon", 2},
		{"featured only", "?featured=true", 3},
		{"featured false lists everything", "?featured=false", 9},
		{"limit", "?limit=4", 4},
		{"offset past end", "?offset=20", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/extensions"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var list httputil.ListResponse[ExtensionResponse]
			decodeList(t, rec, &list)
			assert.Equal(t, tt.total, list.Total)
			assert.Len(t, list.Data, tt.total)
		})
	}
}

func TestListExtensions_BadQuery(t *testing.T) {
	router, _ := setupRouter(t)

	for _, q := range []string{"?limit=abc", "?offset=-1", "?featured=maybe"} {
		rec := do(t, router, http.MethodGet, "/api/extensions"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code, q)
	}
}

func TestGetExtension_WithRelated(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/extensions/dom-sink-tracker", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var detail ExtensionDetailResponse
	decodeData(t, rec, &detail)
	assert.Equal(t, "ext-006", detail.ID)
	assert.Equal(t, "29.99", detail.Price)
	require.NotNil(t, detail.SalePrice)
	assert.Equal(t, "24.99", *detail.SalePrice)
	assert.Equal(t, "24.99", detail.EffectivePrice)
	assert.LessOrEqual(t, len(detail.Related), 3)
	for _, rel := range detail.Related {
		assert.NotEqual(t, "dom-sink-tracker", rel.Slug)
		assert.Equal(t, detail.Category, rel.Category)
	}
}

func TestGetExtension_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/extensions/ghost-scanner", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestListBundles(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/bundles", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var list httputil.ListResponse[BundleResponse]
	decodeList(t, rec, &list)
	require.Equal(t, 3, list.Total)

	byslug := map[string]BundleResponse{}
	for _, b := range list.Data {
		byslug[b.Slug] = b
	}
	assert.Len(t, byslug["starter-pack"].ExtensionDetails, 3)
	assert.Len(t, byslug["pro-hunter"].ExtensionDetails, 8)
	assert.True(t, byslug["pro-hunter"].Popular)
	assert.Len(t, byslug["elite-arsenal"].ExtensionDetails, 9)
}

func TestGetBundle(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/bundles/pro-hunter", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var b BundleResponse
	decodeData(t, rec, &b)
	assert.Equal(t, "149.99", b.EffectivePrice)
	assert.Equal(t, "239.92", b.OriginalPrice)
	for _, e := range b.ExtensionDetails {
		assert.NotEqual(t, "scope-guardian", e.Slug)
	}

	rec = do(t, router, http.MethodGet, "/api/bundles/mega-pack", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
