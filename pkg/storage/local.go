package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iceymoss/go-press/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	basePath string // 基础存储路径，如 ./storage/public
	baseURL  string // 基础访问URL，如 /storage
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage 创建本地文件存储实例
func NewLocalStorage(basePath, baseURL string) *LocalStorage {
	// 确保基础目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Error("create storage dir failed", zap.String("path", basePath), zap.Error(err))
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}
}

// BasePath 静态文件服务使用
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// UploadFile 上传文件到本地存储
func (s *LocalStorage) UploadFile(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	relativePath := ObjectKey(folder, filename)
	filePath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(filePath) // 复制失败，删除已创建的文件
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.GetFileURL(relativePath), nil
}

// DeleteFile 删除文件
// URL格式: /storage/uploads/articles/<uuid>.jpg -> uploads/articles/<uuid>.jpg
func (s *LocalStorage) DeleteFile(ctx context.Context, url string) error {
	relativePath, ok := trimBaseURL(s.baseURL, url)
	if !ok {
		return fmt.Errorf("url %q is not managed by this storage", url)
	}

	filePath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// GetFileURL 获取文件的访问URL
func (s *LocalStorage) GetFileURL(path string) string {
	return joinURL(s.baseURL, path)
}

// ObjectKey folder/<uuid><ext>，扩展名统一小写
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	folder = strings.Trim(filepath.ToSlash(folder), "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func joinURL(baseURL, path string) string {
	// 确保路径使用正斜杠（URL格式）
	urlPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
	if baseURL == "" {
		return "/" + urlPath
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + urlPath
}

// trimBaseURL 从URL中提取相对路径，拒绝 ../ 逃逸
func trimBaseURL(baseURL, url string) (string, bool) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(url, prefix)
	if rel == "" || strings.Contains(rel, "..") {
		return "", false
	}
	return rel, true
}
