package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}

	page := Slice(items, Params{Limit: 2, Page: 2})
	assert.Equal(t, []int{3, 4}, page.Docs)
	assert.Equal(t, 5, page.TotalDocs)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNextPage)

	last := Slice(items, Params{Limit: 2, Page: 3})
	assert.Equal(t, []int{5}, last.Docs)
	assert.False(t, last.HasNextPage)

	beyond := Slice(items, Params{Limit: 2, Page: 9})
	assert.Empty(t, beyond.Docs)
	assert.NotNil(t, beyond.Docs)
}

func TestParamsNormalize(t *testing.T) {
	t.Parallel()

	p := Params{}.Normalize()
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, Params{Limit: 10_000}.Normalize().Limit)
	assert.Equal(t, 20, Params{Limit: 10, Page: 3}.Offset())
}

func TestNew_Empty(t *testing.T) {
	t.Parallel()

	page := New[string](nil, 0, Params{Limit: 10})
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNextPage)
	_, ok := page.First()
	assert.False(t, ok)
}
