package storage

import (
	"context"
	"io"
)

// FileStorage 文件存储接口
// 通过实现此接口，可以切换不同的存储服务（本地存储、S3 等）
type FileStorage interface {
	// UploadFile 上传文件
	// file: 文件内容
	// filename: 原始文件名（只取扩展名）
	// folder: 存储文件夹（如 "uploads/articles"）
	// 返回: 文件的访问URL
	UploadFile(ctx context.Context, file io.Reader, filename, folder string) (string, error)

	// DeleteFile 删除文件，文件不存在视为成功
	DeleteFile(ctx context.Context, url string) error

	// GetFileURL 存储路径 -> 访问URL
	GetFileURL(path string) string
}
