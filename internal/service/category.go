package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/iceymoss/go-press/internal/auth"
	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/internal/slug"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/transaction"
	"github.com/iceymoss/go-press/pkg/xerr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name string `json:"name" form:"name" validate:"required,max=255"`
}

type CategoryService struct {
	categories *repo.CategoryRepo
	articles   *repo.ArticleRepo
	tx         *transaction.Manager
}

func NewCategoryService(categories *repo.CategoryRepo, articles *repo.ArticleRepo, tx *transaction.Manager) *CategoryService {
	return &CategoryService{categories: categories, articles: articles, tx: tx}
}

func (s *CategoryService) Index(ctx context.Context, id *auth.Identity, page int, path string, query url.Values) (paginate.Page[objects.CategoryWithCount], error) {
	if err := auth.RequireAdmin(id); err != nil {
		return paginate.Page[objects.CategoryWithCount]{}, err
	}
	return s.categories.PaginateWithCounts(ctx, paginate.NewRequest(page, AdminPerPage, path, query))
}

func (s *CategoryService) Find(ctx context.Context, id *auth.Identity, categoryID uint64) (*objects.Category, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	return s.categories.FindByID(ctx, categoryID)
}

// check exceptID 为编辑中的分类 id
func (s *CategoryService) check(ctx context.Context, in *CategoryInput, exceptID uint64) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	verr := apperrors.NewValidation()
	if err := checkStruct(verr, in); err != nil {
		return "", err
	}

	sl := slug.Slugify(in.Name)
	if in.Name != "" {
		exists, err := s.categories.NameExists(ctx, in.Name, exceptID)
		if err != nil {
			return "", err
		}
		if exists {
			verr.Add("name", "The name has already been taken.")
		}
		if sl == "" {
			verr.Add("name", "The name field must contain at least one letter or number.")
		}
	}
	if verr.HasAny() {
		return "", verr
	}
	return sl, nil
}

func (s *CategoryService) Create(ctx context.Context, id *auth.Identity, in CategoryInput) (*objects.Category, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	sl, err := s.check(ctx, &in, 0)
	if err != nil {
		return nil, err
	}
	c := &objects.Category{Name: in.Name, Slug: sl}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, duplicateName(err)
	}
	logger.Info("category created", zap.Uint64("id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id *auth.Identity, categoryID uint64, in CategoryInput) (*objects.Category, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	c, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	sl, err := s.check(ctx, &in, categoryID)
	if err != nil {
		return nil, err
	}
	c.Name, c.Slug = in.Name, sl
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, duplicateName(err)
	}
	return c, nil
}

// Delete 仍有文章引用时拒绝删除
func (s *CategoryService) Delete(ctx context.Context, id *auth.Identity, categoryID uint64) error {
	if err := auth.RequireAdmin(id); err != nil {
		return err
	}
	err := s.tx.Execute(ctx, nil, func(ctx context.Context) error {
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			return err
		}
		n, err := s.articles.CountByCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.New(xerr.ErrInUse, "This category still has articles and cannot be deleted.")
		}
		return s.categories.Delete(ctx, categoryID)
	})
	if err != nil {
		return err
	}
	logger.Info("category deleted", zap.Uint64("id", categoryID), zap.Uint64("by", id.ID))
	return nil
}

// duplicateName 名称或 slug 唯一索引冲突转为字段错误
func duplicateName(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Field("name", "The name has already been taken.")
	}
	return err
}
