package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/iceymoss/go-press/internal/conf"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// S3API 只依赖用到的两个方法，便于测试替换
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage 基于 S3（或兼容服务）的存储实现
type S3Storage struct {
	client  S3API
	bucket  string
	baseURL string // 公网访问前缀，如 https://cdn.example.com
}

var _ FileStorage = (*S3Storage)(nil)

// NewS3Storage 使用默认 AWS 配置链创建，Region/Profile 可覆盖
func NewS3Storage(ctx context.Context, c conf.S3Config) (*S3Storage, error) {
	if c.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if c.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(c.Region))
	}
	if c.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(c.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = c.UsePathStyle
	})

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", c.Bucket)
	}
	return NewS3StorageWithClient(client, c.Bucket, baseURL), nil
}

func NewS3StorageWithClient(client S3API, bucket, baseURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, baseURL: baseURL}
}

// UploadFile 整个文件读入内存后上传（单文件上限 50MB），Content-Type 由内容嗅探
func (s *S3Storage) UploadFile(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	key := ObjectKey(folder, filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimetype.Detect(data).String()),
		CacheControl:  aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.GetFileURL(key), nil
}

// DeleteFile S3 删除不存在的对象也返回成功
func (s *S3Storage) DeleteFile(ctx context.Context, url string) error {
	key, ok := trimBaseURL(s.baseURL, url)
	if !ok {
		return fmt.Errorf("url %q is not managed by this storage", url)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) GetFileURL(path string) string {
	return joinURL(s.baseURL, path)
}
