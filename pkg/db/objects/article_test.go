package objects

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleDisplayFields(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := Article{ID: 7, Title: "t", Slug: "t", CreatedAt: created, User: &User{Name: "Ana"}}

	assert.Equal(t, "Ana", a.Byline())
	assert.Equal(t, created, a.DisplayDate())
	assert.Equal(t, "/fallback.png", a.DisplayImage("/fallback.png"))

	byline := "Redacción"
	published := created.Add(-time.Hour)
	a.AuthorName = &byline
	a.PublishedAt = &published
	a.Image = "/storage/uploads/articles/a.png"
	assert.Equal(t, "Redacción", a.Byline())
	assert.Equal(t, published, a.DisplayDate())
	assert.Equal(t, a.Image, a.DisplayImage("/fallback.png"))
}

func TestArticleMarshalJSON(t *testing.T) {
	a := Article{ID: 3, Slug: "hola", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "hola", out["slug"])
	assert.Equal(t, "", out["byline"])
	assert.Equal(t, Placeholder, out["display_image"])
	assert.Equal(t, "2024-01-02T00:00:00Z", out["display_date"])
	assert.NotContains(t, out, "category")
}
