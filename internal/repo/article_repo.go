package repo

import (
	"context"
	"errors"

	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/transaction"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleFilter 列表查询条件，零值表示不过滤
type ArticleFilter struct {
	CategoryID *uint64
	Hero       *bool
	ExcludeIDs []uint64
}

func (f ArticleFilter) apply(q *gorm.DB) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("articles.category_id = ?", *f.CategoryID)
	}
	if f.Hero != nil {
		q = q.Where("articles.is_hero = ?", *f.Hero)
	}
	// NOT IN 空集合会被渲染成 NOT IN (NULL)，必须跳过
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("articles.id NOT IN ?", f.ExcludeIDs)
	}
	return q
}

// TrendingFilter 热门榜条件
type TrendingFilter struct {
	ExcludeID  *uint64
	CategoryID *uint64
}

type ArticleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) *ArticleRepo { return &ArticleRepo{db: db} }

func (r *ArticleRepo) conn(ctx context.Context) *gorm.DB {
	return transaction.GetTransactionOrDB(ctx, r.db)
}

func recent(q *gorm.DB) *gorm.DB {
	return q.Order("articles.created_at DESC").Order("articles.id DESC")
}

// FindBySlug 精确匹配，未找到返回 404 错误
func (r *ArticleRepo) FindBySlug(ctx context.Context, slug string) (*objects.Article, error) {
	var a objects.Article
	err := r.conn(ctx).Preload("User").Preload("Category").Where("slug = ?", slug).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("article")
	}
	return &a, err
}

func (r *ArticleRepo) FindByID(ctx context.Context, id uint64) (*objects.Article, error) {
	var a objects.Article
	err := r.conn(ctx).Preload("User").Preload("Category").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("article")
	}
	return &a, err
}

func (r *ArticleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.conn(ctx).Model(&objects.Article{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// Latest 按创建时间倒序取前 limit 条
func (r *ArticleRepo) Latest(ctx context.Context, f ArticleFilter, limit int) ([]objects.Article, error) {
	list := make([]objects.Article, 0, limit)
	q := f.apply(r.conn(ctx).Model(&objects.Article{}))
	err := recent(q).Preload("User").Preload("Category").Limit(limit).Find(&list).Error
	return list, err
}

// Paginate 按创建时间倒序分页
func (r *ArticleRepo) Paginate(ctx context.Context, f ArticleFilter, req paginate.Request) (paginate.Page[objects.Article], error) {
	var total int64
	if err := f.apply(r.conn(ctx).Model(&objects.Article{})).Count(&total).Error; err != nil {
		return paginate.Page[objects.Article]{}, err
	}

	list := make([]objects.Article, 0, req.PerPage)
	if total > int64(req.Offset()) {
		q := f.apply(r.conn(ctx).Model(&objects.Article{}))
		err := recent(q).Preload("User").Preload("Category").
			Offset(req.Offset()).Limit(req.PerPage).Find(&list).Error
		if err != nil {
			return paginate.Page[objects.Article]{}, err
		}
	}
	return paginate.New(req, total, list), nil
}

// Trending 按阅读量倒序，阅读量相同时 id 大的在前
func (r *ArticleRepo) Trending(ctx context.Context, f TrendingFilter, limit int) ([]objects.Article, error) {
	list := make([]objects.Article, 0, limit)
	q := r.conn(ctx).Model(&objects.Article{}).Preload("User").Preload("Category")
	if f.ExcludeID != nil {
		q = q.Where("articles.id <> ?", *f.ExcludeID)
	}
	if f.CategoryID != nil {
		q = q.Where("articles.category_id = ?", *f.CategoryID)
	}
	err := q.Order("articles.views DESC").Order("articles.id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// IncrementViews 原子自增
func (r *ArticleRepo) IncrementViews(ctx context.Context, id uint64) error {
	return r.AddViews(ctx, id, 1)
}

// AddViews 批量落库时使用
func (r *ArticleRepo) AddViews(ctx context.Context, id uint64, n int64) error {
	if n <= 0 {
		return nil
	}
	return r.conn(ctx).Model(&objects.Article{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", n)).Error
}

// Create 唯一索引冲突返回 gorm.ErrDuplicatedKey
func (r *ArticleRepo) Create(ctx context.Context, a *objects.Article) error {
	return r.conn(ctx).Omit(clause.Associations).Create(a).Error
}

// Update 保存全部字段，关联对象不写
func (r *ArticleRepo) Update(ctx context.Context, a *objects.Article) error {
	return r.conn(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *ArticleRepo) Delete(ctx context.Context, id uint64) error {
	res := r.conn(ctx).Delete(&objects.Article{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("article")
	}
	return nil
}

func (r *ArticleRepo) CountByCategory(ctx context.Context, categoryID uint64) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&objects.Article{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

// DetachAuthor 删除用户前把其文章的 user_id 置空
func (r *ArticleRepo) DetachAuthor(ctx context.Context, userID uint64) error {
	return r.conn(ctx).Model(&objects.Article{}).Where("user_id = ?", userID).
		UpdateColumn("user_id", nil).Error
}
