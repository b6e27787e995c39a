package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/iceymoss/go-press/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage 内存存储，文件名包含 failOn 时模拟存储失败
type memStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	failOn  string
	seq     int
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) UploadFile(_ context.Context, r io.Reader, filename, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.Contains(filename, m.failOn) {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.seq++
	url := fmt.Sprintf("/storage/%s/%d-%s", folder, m.seq, filename)
	m.files[url] = data
	return url, nil
}

func (m *memStorage) DeleteFile(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memStorage) GetFileURL(path string) string { return "/storage/" + path }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func mp4Bytes() []byte {
	b := []byte{0x00, 0x00, 0x00, 0x18}
	b = append(b, []byte("ftypisom")...)
	b = append(b, 0x00, 0x00, 0x02, 0x00)
	b = append(b, []byte("isomiso2avc1mp41")...)
	return append(b, make([]byte, 64)...)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var cm *apperrors.CodeMsg
	require.ErrorAs(t, err, &cm)
	return cm.Fields
}

func TestCreateWithoutImageUsesPlaceholder(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "", Limits{})

	res, err := ing.Ingest(context.Background(), Request{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultImage, res.Image)
	assert.Nil(t, res.Video)
	assert.Equal(t, []string{}, res.Gallery)
	assert.Empty(t, st.files)
}

func TestCreateStoresAllMedia(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "/placeholder.png", DefaultLimits())
	img := pngBytes(t)

	res, err := ing.Ingest(context.Background(), Request{
		Image:   Upload(FromBytes("cover.png", img)),
		Video:   Upload(FromBytes("clip.mp4", mp4Bytes())),
		Gallery: SubmitGallery(Upload(FromBytes("g1.png", img)), Upload(FromBytes("g2.png", img))),
	}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Image, "/storage/"+ImageFolder+"/"))
	assert.Equal(t, img, st.files[res.Image])
	require.NotNil(t, res.Video)
	assert.True(t, strings.HasPrefix(*res.Video, "/storage/"+VideoFolder+"/"))
	require.Len(t, res.Gallery, 2)
	assert.Contains(t, res.Gallery[0], "g1.png")
	assert.Contains(t, res.Gallery[1], "g2.png")
	assert.Empty(t, res.Warnings)
}

func TestValidationRejectsBeforeAnyWrite(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "", Limits{ImageMaxBytes: 1024, VideoMaxBytes: 1024})
	img := pngBytes(t)

	_, err := ing.Ingest(context.Background(), Request{
		Image: Upload(FromBytes("cover.png", img)),
		Video: Upload(FromBytes("clip.mp4", []byte("plain text, not a video"))),
		Gallery: SubmitGallery(
			Keep("/storage/a.jpg"),
			Upload(FromBytes("big.png", append(img, make([]byte, 2048)...))),
			Upload(FromBytes("notes.txt", []byte("hello"))),
		),
	}, nil)
	require.Error(t, err)

	fields := fieldErrors(t, err)
	assert.Contains(t, fields["video"], "must be a file of type")
	assert.Contains(t, fields["gallery_images.1"], "must not be greater than 1 kilobytes")
	assert.Equal(t, "The gallery_images.2 field must be an image.", fields["gallery_images.2"])
	assert.NotContains(t, fields, "image")
	assert.Empty(t, st.files, "nothing stored when validation fails")
}

func TestCreateRejectsExistingImageReference(t *testing.T) {
	ing := NewIngestor(newMemStorage(), "", Limits{})
	_, err := ing.Ingest(context.Background(), Request{Image: Keep("/elsewhere.png")}, nil)
	assert.Contains(t, fieldErrors(t, err), "image")
}

func TestUpdateWithoutMediaFieldsIsIdempotent(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "", Limits{})
	video := "/storage/v.mp4"
	cur := &Current{Image: "/storage/cover.jpg", Video: &video, Gallery: []string{"a.jpg", "b.jpg"}}

	res, err := ing.Ingest(context.Background(), Request{}, cur)
	require.NoError(t, err)
	assert.Equal(t, cur.Image, res.Image)
	assert.Equal(t, cur.Video, res.Video)
	assert.Equal(t, cur.Gallery, res.Gallery)
	assert.Empty(t, st.files)
}

func TestUpdateImageFallbacks(t *testing.T) {
	ing := NewIngestor(newMemStorage(), "/placeholder.png", Limits{})
	ctx := context.Background()

	res, err := ing.Ingest(ctx, Request{}, &Current{})
	require.NoError(t, err)
	assert.Equal(t, "/placeholder.png", res.Image)

	res, err = ing.Ingest(ctx, Request{Image: Keep("/storage/kept.jpg")}, &Current{Image: "/storage/old.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/storage/kept.jpg", res.Image)

	res, err = ing.Ingest(ctx, Request{Image: Keep("")}, &Current{Image: "/storage/old.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/storage/old.jpg", res.Image)
}

func TestUpdateGalleryKeepsSubmittedThenAppendsNew(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "", Limits{})
	cur := &Current{Image: "/storage/cover.jpg", Gallery: []string{"a.jpg", "b.jpg"}}

	// 新文件放在前面提交，结果中仍排在已有项之后
	res, err := ing.Ingest(context.Background(), Request{
		Gallery: SubmitGallery(Upload(FromBytes("new.png", pngBytes(t))), Keep("a.jpg")),
	}, cur)
	require.NoError(t, err)
	require.Len(t, res.Gallery, 2)
	assert.Equal(t, "a.jpg", res.Gallery[0])
	assert.Contains(t, res.Gallery[1], GalleryFolder+"/")
	assert.Contains(t, res.Gallery[1], "new.png")
}

func TestGalleryStorageFailureIsWarning(t *testing.T) {
	st := newMemStorage()
	st.failOn = "broken"
	ing := NewIngestor(st, "", Limits{})
	img := pngBytes(t)

	res, err := ing.Ingest(context.Background(), Request{
		Gallery: SubmitGallery(Upload(FromBytes("ok.png", img)), Upload(FromBytes("broken.png", img))),
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Gallery, 1)
	assert.Contains(t, res.Gallery[0], "ok.png")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "gallery_images.1")
}

func TestVideoStorageFailureDiscardsImage(t *testing.T) {
	st := newMemStorage()
	st.failOn = "clip"
	ing := NewIngestor(st, "", Limits{})

	_, err := ing.Ingest(context.Background(), Request{
		Image: Upload(FromBytes("cover.png", pngBytes(t))),
		Video: Upload(FromBytes("clip.mp4", mp4Bytes())),
	}, nil)
	require.Error(t, err)
	assert.Equal(t, "The video failed to upload.", fieldErrors(t, err)["video"])
	assert.Empty(t, st.files)
	assert.Len(t, st.deleted, 1)
}

func TestResultDiscard(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "", Limits{})
	res, err := ing.Ingest(context.Background(), Request{Image: Upload(FromBytes("cover.png", pngBytes(t)))}, nil)
	require.NoError(t, err)
	require.Len(t, st.files, 1)

	res.Discard(context.Background())
	assert.Empty(t, st.files)
}

func TestUploadOne(t *testing.T) {
	st := newMemStorage()
	ing := NewIngestor(st, "", Limits{})
	ctx := context.Background()

	url, err := ing.UploadOne(ctx, PurposeGallery, FromBytes("one.png", pngBytes(t)))
	require.NoError(t, err)
	assert.Contains(t, url, GalleryFolder+"/")

	_, err = ing.UploadOne(ctx, PurposeVideo, FromBytes("one.png", pngBytes(t)))
	assert.Contains(t, fieldErrors(t, err), "file")

	_, err = ing.UploadOne(ctx, PurposeImage, nil)
	assert.Contains(t, fieldErrors(t, err), "file")
}

func TestParsePurpose(t *testing.T) {
	p, ok := ParsePurpose("video")
	assert.True(t, ok)
	assert.Equal(t, PurposeVideo, p)
	_, ok = ParsePurpose("pdf")
	assert.False(t, ok)
}
