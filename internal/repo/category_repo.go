package repo

import (
	"context"
	"errors"

	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/transaction"

	"gorm.io/gorm"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) conn(ctx context.Context) *gorm.DB {
	return transaction.GetTransactionOrDB(ctx, r.db)
}

// All 全部分类，按 id 升序
func (r *CategoryRepo) All(ctx context.Context) ([]objects.Category, error) {
	list := make([]objects.Category, 0)
	err := r.conn(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *CategoryRepo) FindByID(ctx context.Context, id uint64) (*objects.Category, error) {
	var c objects.Category
	err := r.conn(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("category")
	}
	return &c, err
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*objects.Category, error) {
	var c objects.Category
	err := r.conn(ctx).Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("category")
	}
	return &c, err
}

// NameExists exceptID 为 0 表示不排除任何记录
func (r *CategoryRepo) NameExists(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var n int64
	q := r.conn(ctx).Model(&objects.Category{}).Where("name = ?", name)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// PaginateWithCounts 后台列表，最新创建的在前，附带文章数
func (r *CategoryRepo) PaginateWithCounts(ctx context.Context, req paginate.Request) (paginate.Page[objects.CategoryWithCount], error) {
	var total int64
	if err := r.conn(ctx).Model(&objects.Category{}).Count(&total).Error; err != nil {
		return paginate.Page[objects.CategoryWithCount]{}, err
	}

	list := make([]objects.CategoryWithCount, 0, req.PerPage)
	err := r.conn(ctx).Model(&objects.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM articles WHERE articles.category_id = categories.id) AS articles_count").
		Order("categories.created_at DESC").Order("categories.id DESC").
		Offset(req.Offset()).Limit(req.PerPage).
		Scan(&list).Error
	if err != nil {
		return paginate.Page[objects.CategoryWithCount]{}, err
	}
	return paginate.New(req, total, list), nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *objects.Category) error {
	return r.conn(ctx).Create(c).Error
}

func (r *CategoryRepo) Update(ctx context.Context, c *objects.Category) error {
	return r.conn(ctx).Save(c).Error
}

func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res := r.conn(ctx).Delete(&objects.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("category")
	}
	return nil
}
