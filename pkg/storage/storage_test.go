package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	base := t.TempDir()
	s := NewLocalStorage(base, "/storage")
	ctx := context.Background()

	url, err := s.UploadFile(ctx, strings.NewReader("hello"), "Photo.JPG", "uploads/articles")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/storage/uploads/articles/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	rel := strings.TrimPrefix(url, "/storage/")
	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.DeleteFile(ctx, url))
	_, err = os.Stat(filepath.Join(base, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	// 已删除再删视为成功
	assert.NoError(t, s.DeleteFile(ctx, url))
}

func TestLocalStorageRejectsForeignURL(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "/storage")
	assert.Error(t, s.DeleteFile(context.Background(), "/UdD-Logo.png"))
	assert.Error(t, s.DeleteFile(context.Background(), "/storage/../etc/passwd"))
}

func TestUniqueNames(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "/storage/")
	ctx := context.Background()
	a, err := s.UploadFile(ctx, strings.NewReader("a"), "same.png", "g")
	require.NoError(t, err)
	b, err := s.UploadFile(ctx, strings.NewReader("b"), "same.png", "g")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "/storage/g/"))
}

type fakeS3 struct {
	puts    map[string][]byte
	types   map[string]string
	deleted []string
	failPut error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, _ := io.ReadAll(in.Body)
	f.puts[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
	s := NewS3StorageWithClient(fake, "press", "https://cdn.example.com")
	ctx := context.Background()

	url, err := s.UploadFile(ctx, strings.NewReader("%PDF-1.4 fake"), "doc.pdf", "uploads/articles")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example.com/uploads/articles/"))

	key := strings.TrimPrefix(url, "https://cdn.example.com/")
	assert.Equal(t, "%PDF-1.4 fake", string(fake.puts[key]))
	assert.Equal(t, "application/pdf", fake.types[key])

	require.NoError(t, s.DeleteFile(ctx, url))
	assert.Equal(t, []string{key}, fake.deleted)

	fake.failPut = errors.New("denied")
	_, err = s.UploadFile(ctx, strings.NewReader("x"), "x.png", "g")
	assert.ErrorIs(t, err, fake.failPut)
}
