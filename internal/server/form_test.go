package server

import (
	"mime/multipart"
	"testing"

	"github.com/iceymoss/go-press/internal/media"

	"github.com/stretchr/testify/assert"
)

func TestGalleryFieldOrder(t *testing.T) {
	form := &multipart.Form{
		Value: map[string][]string{
			"gallery_images[1]": {"b.jpg"},
			"gallery_images[0]": {"a.jpg"},
			"gallery_images[]":  {"c.jpg", ""},
			"title":             {"ignored"},
		},
		File: map[string][]*multipart.FileHeader{
			"gallery_images[2]": {{Filename: "new.png", Size: 3}},
		},
	}

	g := galleryField(form)
	assert.True(t, g.Submitted)
	if assert.Len(t, g.Items, 4) {
		assert.Equal(t, media.Keep("a.jpg"), g.Items[0])
		assert.Equal(t, media.Keep("b.jpg"), g.Items[1])
		assert.Equal(t, media.NewFile, g.Items[2].Kind)
		assert.Equal(t, "new.png", g.Items[2].File.Name)
		assert.Equal(t, media.Keep("c.jpg"), g.Items[3])
	}
}

func TestGalleryFieldAbsent(t *testing.T) {
	g := galleryField(&multipart.Form{Value: map[string][]string{"title": {"x"}}})
	assert.False(t, g.Submitted)
	assert.Empty(t, g.Items)

	// 提交了空值也算提交，表示清空
	g = galleryField(&multipart.Form{Value: map[string][]string{"gallery_images[]": {""}}})
	assert.True(t, g.Submitted)
	assert.Empty(t, g.Items)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "on", "YES", " True "} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"", "0", "false", "off", "nope"} {
		assert.False(t, parseBool(s), s)
	}
}
