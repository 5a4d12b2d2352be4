package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageLink(t *testing.T) {
	assert.Equal(t, "/?page=3", pageLink("", 3))
	assert.Equal(t, "/?category=Memory&page=2", pageLink("category=Memory", 2))
}

func TestTemplateFuncs(t *testing.T) {
	funcs := NewTemplateCache().funcs

	money := funcs["money"].(func(decimal.Decimal) string)
	assert.Equal(t, "6.50 €", money(decimal.RequireFromString("6.5")))

	contains := funcs["contains"].(func([]int64, int64) bool)
	assert.True(t, contains([]int64{1, 3}, 3))
	assert.False(t, contains(nil, 3))

	has := funcs["has"].(func(map[string][]string, string, string) bool)
	selected := map[string][]string{"Socket": {"AM5"}}
	assert.True(t, has(selected, "Socket", "AM5"))
	assert.False(t, has(selected, "Socket", "AM4"))
}

func TestTemplatesLoadAndRender(t *testing.T) {
	tc := NewTemplateCache()
	require.NoError(t, tc.Load("../../templates"))
	assert.NotNil(t, tc.Get("home.html"))
	assert.NotNil(t, tc.Get("admin_product_edit.html"))

	rec := httptest.NewRecorder()
	tc.Render(rec, 404, "missing.html", nil)
	assert.Equal(t, 500, rec.Code)

	assert.Error(t, NewTemplateCache().Load(t.TempDir()), "an empty directory has no pages")
}
