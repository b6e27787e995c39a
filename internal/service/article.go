// Package service 后台写操作与权限、校验
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iceymoss/go-press/internal/auth"
	"github.com/iceymoss/go-press/internal/media"
	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/internal/slug"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/sensitive"
	"github.com/iceymoss/go-press/pkg/transaction"
	"github.com/iceymoss/go-press/pkg/xerr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AdminPerPage = 10

	// 并发创建同名文章时 slug 唯一索引冲突的重试次数
	slugAttempts = 5

	TypeNews = "news"
	TypeHero = "hero"
)

// ArticleInput 创建/编辑文章的表单
type ArticleInput struct {
	Title       string        `json:"title" validate:"required,max=255"`
	Content     string        `json:"content" validate:"required"`
	CategoryID  *uint64       `json:"category_id"`
	AuthorName  string        `json:"author_name" validate:"max=255"`
	PublishedAt string        `json:"published_at"`
	IsHero      bool          `json:"is_hero"`
	Media       media.Request `json:"-" validate:"-"`
}

func (in *ArticleInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
}

// Saved 写入结果，Warnings 为部分 gallery 文件上传失败的提示
type Saved struct {
	Article  *objects.Article `json:"article"`
	Warnings []string         `json:"warnings,omitempty"`
}

type ArticleForm struct {
	Article    *objects.Article   `json:"article,omitempty"`
	Categories []objects.Category `json:"categories"`
	Type       string             `json:"type,omitempty"`
}

type ArticleService struct {
	articles   *repo.ArticleRepo
	categories *repo.CategoryRepo
	ingestor   *media.Ingestor
	slugs      *slug.Generator
	tx         *transaction.Manager
	words      *sensitive.Word
}

// NewArticleService words 可以为 nil
func NewArticleService(articles *repo.ArticleRepo, categories *repo.CategoryRepo, ingestor *media.Ingestor, tx *transaction.Manager, words *sensitive.Word) *ArticleService {
	return &ArticleService{
		articles:   articles,
		categories: categories,
		ingestor:   ingestor,
		slugs:      slug.NewGenerator(articles),
		tx:         tx,
		words:      words,
	}
}

// AdminIndex type=hero 只列 hero 文章，其余只列普通文章
func (s *ArticleService) AdminIndex(ctx context.Context, id *auth.Identity, typ string, page int, path string, query url.Values) (paginate.Page[objects.Article], error) {
	if err := auth.RequireAdmin(id); err != nil {
		return paginate.Page[objects.Article]{}, err
	}
	hero := typ == TypeHero
	return s.articles.Paginate(ctx, repo.ArticleFilter{Hero: &hero}, paginate.NewRequest(page, AdminPerPage, path, query))
}

func (s *ArticleService) CreateForm(ctx context.Context, id *auth.Identity, typ string) (*ArticleForm, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	if typ == "" {
		typ = TypeNews
	}
	cats, err := s.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	return &ArticleForm{Categories: cats, Type: typ}, nil
}

func (s *ArticleService) EditForm(ctx context.Context, id *auth.Identity, articleID uint64) (*ArticleForm, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	cats, err := s.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	return &ArticleForm{Article: a, Categories: cats}, nil
}

// check 字段校验与媒体校验合并成一个错误返回
func (s *ArticleService) check(ctx context.Context, in *ArticleInput, creating bool) (*checked, error) {
	in.normalize()
	verr := apperrors.NewValidation()

	if err := checkStruct(verr, in); err != nil {
		return nil, err
	}
	// 只有标点的标题生成不了 slug
	if creating && in.Title != "" && slug.Slugify(in.Title) == "" {
		verr.Add("title", "The title field must contain at least one letter or number.")
	}
	checkWords(verr, s.words, "title", in.Title)
	checkWords(verr, s.words, "author_name", in.AuthorName)

	out := &checked{}
	if at, ok := parseDate(in.PublishedAt); ok {
		out.publishedAt = at
	} else {
		verr.Add("published_at", "The published at field must be a valid date.")
	}

	if in.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *in.CategoryID); err != nil {
			if !apperrors.IsCode(err, xerr.ErrResourceNotFound) {
				return nil, err
			}
			verr.Add("category_id", "The selected category id is invalid.")
		}
	}

	var merr *apperrors.CodeMsg
	if err := s.ingestor.Validate(in.Media, creating); errors.As(err, &merr) {
		for k, v := range merr.Fields {
			verr.Add(k, v)
		}
	} else if err != nil {
		return nil, err
	}

	if verr.HasAny() {
		return nil, verr
	}
	return out, nil
}

type checked struct {
	publishedAt *time.Time
}

// Create 生成唯一 slug 并写入，slug 冲突时重新生成
func (s *ArticleService) Create(ctx context.Context, id *auth.Identity, in ArticleInput) (*Saved, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	c, err := s.check(ctx, &in, true)
	if err != nil {
		return nil, err
	}

	res, err := s.ingestor.Ingest(ctx, in.Media, nil)
	if err != nil {
		return nil, err
	}

	uid := id.ID
	a := &objects.Article{
		Title:         in.Title,
		Content:       in.Content,
		Image:         res.Image,
		Video:         res.Video,
		GalleryImages: res.Gallery,
		PublishedAt:   c.publishedAt,
		CategoryID:    in.CategoryID,
		UserID:        &uid,
		AuthorName:    optional(in.AuthorName),
		IsHero:        in.IsHero,
	}

	if err := s.insertWithSlug(ctx, a); err != nil {
		res.Discard(ctx)
		return nil, err
	}

	logger.Info("article created", zap.Uint64("id", a.ID), zap.String("slug", a.Slug), zap.Uint64("by", id.ID))
	saved, err := s.articles.FindByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &Saved{Article: saved, Warnings: res.Warnings}, nil
}

func (s *ArticleService) insertWithSlug(ctx context.Context, a *objects.Article) error {
	for attempt := 1; attempt <= slugAttempts; attempt++ {
		sl, err := s.slugs.Generate(ctx, a.Title)
		if err != nil {
			return err
		}
		a.Slug = sl
		err = s.articles.Create(ctx, a)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		logger.Warn("slug conflict, retrying", zap.String("slug", sl), zap.Int("attempt", attempt))
		a.ID = 0
	}
	return fmt.Errorf("could not allocate a unique slug for %q after %d attempts", a.Title, slugAttempts)
}

// Update slug 不变；未提交的媒体字段保持原值
func (s *ArticleService) Update(ctx context.Context, id *auth.Identity, articleID uint64, in ArticleInput) (*Saved, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	current, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	c, err := s.check(ctx, &in, false)
	if err != nil {
		return nil, err
	}

	res, err := s.ingestor.Ingest(ctx, in.Media, &media.Current{
		Image:   current.Image,
		Video:   current.Video,
		Gallery: current.GalleryImages,
	})
	if err != nil {
		return nil, err
	}

	var saved *objects.Article
	err = s.tx.Execute(ctx, nil, func(ctx context.Context) error {
		a, err := s.articles.FindByID(ctx, articleID)
		if err != nil {
			return err
		}
		a.Title = in.Title
		a.Content = in.Content
		a.Image = res.Image
		a.Video = res.Video
		a.GalleryImages = res.Gallery
		a.PublishedAt = c.publishedAt
		a.CategoryID = in.CategoryID
		a.AuthorName = optional(in.AuthorName)
		a.IsHero = in.IsHero
		// 关联对象需与外键一致，保存后重新加载
		a.Category, a.User = nil, nil
		if err := s.articles.Update(ctx, a); err != nil {
			return err
		}
		saved, err = s.articles.FindByID(ctx, articleID)
		return err
	})
	if err != nil {
		res.Discard(ctx)
		return nil, err
	}

	logger.Info("article updated", zap.Uint64("id", articleID), zap.Uint64("by", id.ID))
	return &Saved{Article: saved, Warnings: res.Warnings}, nil
}

// Delete 物理删除，不清理已上传的文件
func (s *ArticleService) Delete(ctx context.Context, id *auth.Identity, articleID uint64) error {
	if err := auth.RequireAdmin(id); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, articleID); err != nil {
		return err
	}
	logger.Info("article deleted", zap.Uint64("id", articleID), zap.Uint64("by", id.ID))
	return nil
}

// Upload 单文件上传，返回公开 URL
func (s *ArticleService) Upload(ctx context.Context, id *auth.Identity, purpose media.Purpose, f *media.File) (string, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return "", err
	}
	return s.ingestor.UploadOne(ctx, purpose, f)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
