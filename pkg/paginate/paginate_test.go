package paginate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyPage(t *testing.T) {
	p := New[int](NewRequest(1, 12, "/", nil), 0, nil)

	assert.Equal(t, []int{}, p.Data)
	assert.Equal(t, 1, p.LastPage)
	assert.Zero(t, p.From)
	require.Len(t, p.Links, 3)
	assert.Nil(t, p.Links[0].URL)
	assert.Equal(t, "1", p.Links[1].Label)
	assert.True(t, p.Links[1].Active)
	assert.Nil(t, p.Links[2].URL)
}

func TestMiddlePageKeepsQuery(t *testing.T) {
	r := NewRequest(2, 10, "/admin/news", url.Values{"type": {"hero"}})
	p := New(r, 25, []string{"a", "b"})

	assert.Equal(t, 3, p.LastPage)
	assert.Equal(t, 11, p.From)
	assert.Equal(t, 12, p.To)
	require.Len(t, p.Links, 5)
	require.NotNil(t, p.Links[0].URL)
	assert.Equal(t, "/admin/news?page=1&type=hero", *p.Links[0].URL)
	assert.True(t, p.Links[2].Active)
	require.NotNil(t, p.Links[4].URL)
	assert.Equal(t, "/admin/news?page=3&type=hero", *p.Links[4].URL)

	// 原 Query 不被修改
	assert.Empty(t, r.Query.Get("page"))
}

func TestLastPageDisablesNext(t *testing.T) {
	p := New(NewRequest(3, 10, "/news", nil), 25, []int{1})
	assert.Nil(t, p.Links[len(p.Links)-1].URL)
	assert.Equal(t, NextLabel, p.Links[len(p.Links)-1].Label)
}

func TestWindow(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Window(1, 5))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 0, 29, 30}, Window(2, 30))
	assert.Equal(t, []int{1, 2, 0, 12, 13, 14, 15, 16, 17, 18, 0, 29, 30}, Window(15, 30))
	assert.Equal(t, []int{1, 2, 0, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, Window(29, 30))
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 4, ParsePage("4"))
}
