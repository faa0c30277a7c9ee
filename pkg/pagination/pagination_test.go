package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/extensions", nil)
	p, err := FromRequest(r, 50)
	require.NoError(t, err)
	assert.Equal(t, Params{}, p)
}

func TestFromRequest_CustomValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/extensions?limit=3&offset=2", nil)
	p, err := FromRequest(r, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Limit)
	assert.Equal(t, 2, p.Offset)
}

func TestFromRequest_ClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=500", nil)
	p, err := FromRequest(r, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Limit)
}

func TestFromRequest_NoClampWhenMaxDisabled(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=500", nil)
	p, err := FromRequest(r, 0)
	require.NoError(t, err)
	assert.Equal(t, 500, p.Limit)
}

func TestFromRequest_Invalid(t *testing.T) {
	for _, q := range []string{"limit=abc", "limit=-1", "offset=x", "offset=-5"} {
		t.Run(q, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/?"+q, nil)
			_, err := FromRequest(r, 50)
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	tests := []struct {
		name string
		p    Params
		want []string
	}{
		{"everything", Params{}, []string{"a", "b", "c", "d"}},
		{"limit", Params{Limit: 2}, []string{"a", "b"}},
		{"limit beyond length", Params{Limit: 10}, []string{"a", "b", "c", "d"}},
		{"offset", Params{Offset: 3}, []string{"d"}},
		{"offset and limit", Params{Offset: 1, Limit: 2}, []string{"b", "c"}},
		{"offset past end", Params{Offset: 9}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(items, tt.p))
		})
	}
}
