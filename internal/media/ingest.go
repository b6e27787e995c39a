package media

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/storage"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	ImageFolder   = "uploads/articles"
	VideoFolder   = "uploads/articles/videos"
	GalleryFolder = "uploads/articles/gallery"

	DefaultImage = "/UdD-Logo.png"
)

var (
	imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp", "image/svg+xml"}
	videoTypes = []string{"video/x-msvideo", "video/mpeg", "video/mp4", "video/quicktime"}
)

// Purpose 决定存储目录与校验规则
type Purpose string

const (
	PurposeImage   Purpose = "image"
	PurposeVideo   Purpose = "video"
	PurposeGallery Purpose = "gallery"
)

func ParsePurpose(s string) (Purpose, bool) {
	switch p := Purpose(s); p {
	case PurposeImage, PurposeVideo, PurposeGallery:
		return p, true
	}
	return "", false
}

type Limits struct {
	ImageMaxBytes int64
	VideoMaxBytes int64
}

func DefaultLimits() Limits {
	return Limits{ImageMaxBytes: 2 << 20, VideoMaxBytes: 50 << 20}
}

// Current 文章现有的媒体字段，创建时为 nil
type Current struct {
	Image   string
	Video   *string
	Gallery []string
}

type Request struct {
	Image   Field
	Video   Field
	Gallery Gallery
}

// Result 可直接合并到 Article 的字段
type Result struct {
	Image    string
	Video    *string
	Gallery  []string
	Warnings []string

	stored  []string
	storage storage.FileStorage
}

// Discard 后续写库失败时删除本次请求已存储的文件
func (r *Result) Discard(ctx context.Context) {
	for _, url := range r.stored {
		if err := r.storage.DeleteFile(ctx, url); err != nil {
			logger.Warn("discard upload failed", zap.String("url", url), zap.Error(err))
		}
	}
	r.stored = nil
}

type Ingestor struct {
	storage      storage.FileStorage
	defaultImage string
	limits       Limits
}

func NewIngestor(s storage.FileStorage, defaultImage string, limits Limits) *Ingestor {
	if defaultImage == "" {
		defaultImage = DefaultImage
	}
	if limits.ImageMaxBytes <= 0 {
		limits.ImageMaxBytes = DefaultLimits().ImageMaxBytes
	}
	if limits.VideoMaxBytes <= 0 {
		limits.VideoMaxBytes = DefaultLimits().VideoMaxBytes
	}
	return &Ingestor{storage: s, defaultImage: defaultImage, limits: limits}
}

func (i *Ingestor) DefaultImage() string {
	return i.defaultImage
}

// Ingest 先校验全部新文件，任何一个不合法都不写存储
// current 为 nil 表示创建
func (i *Ingestor) Ingest(ctx context.Context, req Request, current *Current) (*Result, error) {
	if err := i.Validate(req, current == nil); err != nil {
		return nil, err
	}

	res := &Result{storage: i.storage}

	imageURL, err := i.storeField(ctx, res, req.Image, PurposeImage)
	if err != nil {
		return nil, err
	}
	videoURL, err := i.storeField(ctx, res, req.Video, PurposeVideo)
	if err != nil {
		return nil, err
	}

	// image
	switch {
	case imageURL != "":
		res.Image = imageURL
	case req.Image.Kind == Existing && req.Image.Ref != "":
		res.Image = req.Image.Ref
	case current != nil && current.Image != "":
		res.Image = current.Image
	default:
		res.Image = i.defaultImage
	}

	// video 没有"清空"操作，未上传新文件就保留
	switch {
	case videoURL != "":
		res.Video = &videoURL
	case current != nil:
		res.Video = current.Video
	}

	// gallery
	switch {
	case req.Gallery.Submitted:
		res.Gallery = i.buildGallery(ctx, res, req.Gallery)
	case current != nil:
		res.Gallery = append([]string{}, current.Gallery...)
	default:
		res.Gallery = []string{}
	}
	return res, nil
}

// UploadOne 单文件上传接口：收一个文件，返回一个 URL
func (i *Ingestor) UploadOne(ctx context.Context, purpose Purpose, f *File) (string, error) {
	if f == nil {
		return "", apperrors.Field("file", "The file field is required.")
	}
	if msg := i.check(f, purpose, "file"); msg != "" {
		return "", apperrors.Field("file", msg)
	}
	url, err := i.put(ctx, f, folderFor(purpose))
	if err != nil {
		logger.Error("upload failed", zap.String("purpose", string(purpose)), zap.Error(err))
		return "", apperrors.Field("file", "The file failed to upload.")
	}
	return url, nil
}

// Validate 只校验不存储，返回字段错误
func (i *Ingestor) Validate(req Request, creating bool) error {
	verr := apperrors.NewValidation()

	switch req.Image.Kind {
	case NewFile:
		if msg := i.check(req.Image.File, PurposeImage, "image"); msg != "" {
			verr.Add("image", msg)
		}
	case Existing:
		if creating && req.Image.Ref != "" {
			verr.Add("image", "The image field must be an image.")
		}
	}

	if req.Video.Kind == NewFile {
		if msg := i.check(req.Video.File, PurposeVideo, "video"); msg != "" {
			verr.Add("video", msg)
		}
	}

	for n, item := range req.Gallery.Items {
		if item.Kind != NewFile {
			continue
		}
		field := fmt.Sprintf("gallery_images.%d", n)
		if msg := i.check(item.File, PurposeGallery, field); msg != "" {
			verr.Add(field, msg)
		}
	}

	if verr.HasAny() {
		return verr
	}
	return nil
}

// check 返回空串表示通过
func (i *Ingestor) check(f *File, purpose Purpose, field string) string {
	limit, allowed := i.limits.ImageMaxBytes, imageTypes
	if purpose == PurposeVideo {
		limit, allowed = i.limits.VideoMaxBytes, videoTypes
	}

	if f.Size > limit {
		return fmt.Sprintf("The %s field must not be greater than %d kilobytes.", field, limit/1024)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Sprintf("The %s failed to upload.", field)
	}
	defer rc.Close()

	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return fmt.Sprintf("The %s failed to upload.", field)
	}
	for _, a := range allowed {
		if mt.Is(a) {
			return ""
		}
	}
	if purpose == PurposeVideo {
		return fmt.Sprintf("The %s field must be a file of type: %s.", field, strings.Join(videoTypes, ", "))
	}
	return fmt.Sprintf("The %s field must be an image.", field)
}

func (i *Ingestor) storeField(ctx context.Context, res *Result, f Field, purpose Purpose) (string, error) {
	if f.Kind != NewFile {
		return "", nil
	}
	url, err := i.put(ctx, f.File, folderFor(purpose))
	if err != nil {
		logger.Error("store media failed", zap.String("field", string(purpose)), zap.Error(err))
		res.Discard(ctx)
		return "", apperrors.Field(string(purpose), fmt.Sprintf("The %s failed to upload.", purpose))
	}
	res.stored = append(res.stored, url)
	return url, nil
}

// buildGallery 先保留提交的已有 URL（按提交顺序），再追加新上传文件
// 单个文件存储失败不影响其他文件，记为 warning
func (i *Ingestor) buildGallery(ctx context.Context, res *Result, g Gallery) []string {
	out := make([]string, 0, len(g.Items))
	for _, item := range g.Items {
		if item.Kind == Existing && item.Ref != "" {
			out = append(out, item.Ref)
		}
	}
	for n, item := range g.Items {
		if item.Kind != NewFile {
			continue
		}
		url, err := i.put(ctx, item.File, GalleryFolder)
		if err != nil {
			logger.Warn("gallery upload skipped", zap.Int("index", n), zap.String("name", item.File.Name), zap.Error(err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("gallery_images.%d (%s) failed to upload and was skipped.", n, item.File.Name))
			continue
		}
		res.stored = append(res.stored, url)
		out = append(out, url)
	}
	return out
}

func (i *Ingestor) put(ctx context.Context, f *File, folder string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return i.storage.UploadFile(ctx, rc, f.Name, folder)
}

func folderFor(p Purpose) string {
	switch p {
	case PurposeVideo:
		return VideoFolder
	case PurposeGallery:
		return GalleryFolder
	}
	return ImageFolder
}
