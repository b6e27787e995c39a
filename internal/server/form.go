package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iceymoss/go-press/internal/media"
	"github.com/iceymoss/go-press/internal/service"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const maxFormMemory = 32 << 20

// gallery_images / gallery_images[] / gallery_images[3]
var galleryKey = regexp.MustCompile(`^gallery_images(?:\[(\d*)\])?$`)

// parseForm multipart 与 urlencoded 两种表单
func parseForm(c *gin.Context) (*multipart.Form, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, apperrors.Wrap(xerr.ErrInvalidInput, "Malformed multipart form.", err)
		}
		return c.Request.MultipartForm, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, apperrors.Wrap(xerr.ErrInvalidInput, "Malformed form.", err)
	}
	return &multipart.Form{Value: c.Request.PostForm}, nil
}

// articleInput 同一个字段可能是文件也可能是已有 URL
func articleInput(c *gin.Context) (service.ArticleInput, error) {
	var in service.ArticleInput
	form, err := parseForm(c)
	if err != nil {
		return in, err
	}
	value := func(k string) string {
		if v := form.Value[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	in.Title = value("title")
	in.Content = value("content")
	in.AuthorName = value("author_name")
	in.PublishedAt = value("published_at")
	in.IsHero = parseBool(value("is_hero"))

	if raw := strings.TrimSpace(value("category_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, apperrors.Field("category_id", "The selected category id is invalid.")
		}
		in.CategoryID = &id
	}

	in.Media.Image = mediaField(form, "image")
	in.Media.Video = mediaField(form, "video")
	in.Media.Gallery = galleryField(form)
	return in, nil
}

func mediaField(form *multipart.Form, key string) media.Field {
	if files := form.File[key]; len(files) > 0 {
		return media.Upload(media.FromMultipart(files[0]))
	}
	if v := form.Value[key]; len(v) > 0 && v[0] != "" {
		return media.Keep(v[0])
	}
	return media.Field{}
}

// galleryField 带下标的按下标排序，其余按出现顺序排在后面
func galleryField(form *multipart.Form) media.Gallery {
	type entry struct {
		index int
		seq   int
		field media.Field
	}
	var (
		entries   []entry
		submitted bool
		seq       int
	)
	add := func(key string, f media.Field) {
		m := galleryKey.FindStringSubmatch(key)
		idx := int(^uint(0) >> 1)
		if m[1] != "" {
			if n, err := strconv.Atoi(m[1]); err == nil {
				idx = n
			}
		}
		entries = append(entries, entry{index: idx, seq: seq, field: f})
		seq++
	}

	for _, key := range sortedKeys(form.Value) {
		if !galleryKey.MatchString(key) {
			continue
		}
		submitted = true
		for _, v := range form.Value[key] {
			if v != "" {
				add(key, media.Keep(v))
			}
		}
	}
	for _, key := range sortedKeys(form.File) {
		if !galleryKey.MatchString(key) {
			continue
		}
		submitted = true
		for _, fh := range form.File[key] {
			add(key, media.Upload(media.FromMultipart(fh)))
		}
	}
	if !submitted {
		return media.Gallery{}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].index != entries[j].index {
			return entries[i].index < entries[j].index
		}
		return entries[i].seq < entries[j].seq
	})
	items := make([]media.Field, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.field)
	}
	return media.SubmitGallery(items...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// uploadFile POST /admin/uploads 的 file 字段
func uploadFile(c *gin.Context) (*media.File, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(xerr.ErrInvalidInput, "Malformed multipart form.", err)
	}
	return media.FromMultipart(fh), nil
}
