// Package feed 组装前台各页面需要的文章列表
package feed

import (
	"context"
	"net/url"
	"sort"

	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/pkg/db/objects"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/xerr"

	"go.uber.org/zap"
)

const (
	HeroLimit         = 3
	LatestLimit       = 4
	MorePerPage       = 12
	TrendingLimit     = 4
	SpotlightLimit    = 4
	NewsPerPage       = 9
	CategoryPerPage   = 12
	CategoryTrending  = 4
	ShowTrendingLimit = 5
)

type ArticleSource interface {
	FindBySlug(ctx context.Context, slug string) (*objects.Article, error)
	Latest(ctx context.Context, f repo.ArticleFilter, limit int) ([]objects.Article, error)
	Paginate(ctx context.Context, f repo.ArticleFilter, req paginate.Request) (paginate.Page[objects.Article], error)
	Trending(ctx context.Context, f repo.TrendingFilter, limit int) ([]objects.Article, error)
}

type CategorySource interface {
	All(ctx context.Context) ([]objects.Category, error)
	FindBySlug(ctx context.Context, slug string) (*objects.Category, error)
}

// PageQuery 列表页的分页参数，Query 会带到分页链接上
type PageQuery struct {
	Page  int
	Path  string
	Query url.Values
}

func (q PageQuery) request(perPage int) paginate.Request {
	return paginate.NewRequest(q.Page, perPage, q.Path, q.Query)
}

type Spotlight struct {
	Category objects.Category  `json:"category"`
	Articles []objects.Article `json:"articles"`
}

// Home 首页数据；Hero、Latest、More 三组按 id 互不重复
type Home struct {
	Hero            []objects.Article              `json:"hero_articles"`
	Latest          []objects.Article              `json:"latest_articles"`
	More            paginate.Page[objects.Article] `json:"more_articles"`
	Trending        []objects.Article              `json:"trending_articles"`
	Spotlights      []Spotlight                    `json:"category_spotlights"`
	Categories      []objects.Category             `json:"categories"`
	CurrentCategory *objects.Category              `json:"current_category"`
}

type News struct {
	Articles   paginate.Page[objects.Article] `json:"articles"`
	Categories []objects.Category             `json:"categories"`
}

type CategoryPage struct {
	Category   objects.Category               `json:"category"`
	Articles   paginate.Page[objects.Article] `json:"articles"`
	Trending   []objects.Article              `json:"trending_articles"`
	Categories []objects.Category             `json:"categories"`
}

type Show struct {
	Article    objects.Article    `json:"article"`
	Trending   []objects.Article  `json:"trending_articles"`
	Categories []objects.Category `json:"categories"`
}

type Composer struct {
	articles   ArticleSource
	categories CategorySource
}

func NewComposer(articles ArticleSource, categories CategorySource) *Composer {
	return &Composer{articles: articles, categories: categories}
}

// Home 首页
// categorySlug 非空时 hero/latest/more 只取该分类，找不到分类则忽略过滤；trending 始终是全站
func (c *Composer) Home(ctx context.Context, q PageQuery, categorySlug string) (*Home, error) {
	out := &Home{}

	filter := repo.ArticleFilter{}
	if categorySlug != "" {
		cat, err := c.categories.FindBySlug(ctx, categorySlug)
		switch {
		case err == nil:
			out.CurrentCategory = cat
			filter.CategoryID = &cat.ID
		case apperrors.IsCode(err, xerr.ErrResourceNotFound):
			logger.Debug("home category filter ignored", zap.String("slug", categorySlug))
		default:
			return nil, err
		}
	}

	hero := true
	heroFilter := filter
	heroFilter.Hero = &hero
	heroes, err := c.articles.Latest(ctx, heroFilter, HeroLimit)
	if err != nil {
		return nil, err
	}
	out.Hero = heroes

	seen := newIDSet(heroes)

	// 多取 len(hero) 条，去掉 hero 后仍能凑满
	candidates, err := c.articles.Latest(ctx, filter, LatestLimit+len(heroes))
	if err != nil {
		return nil, err
	}
	out.Latest = seen.difference(candidates, LatestLimit)
	seen.add(out.Latest)

	moreFilter := filter
	moreFilter.ExcludeIDs = seen.ids()
	out.More, err = c.articles.Paginate(ctx, moreFilter, q.request(MorePerPage))
	if err != nil {
		return nil, err
	}

	out.Trending, err = c.articles.Trending(ctx, repo.TrendingFilter{}, TrendingLimit)
	if err != nil {
		return nil, err
	}

	out.Categories, err = c.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	out.Spotlights = make([]Spotlight, 0, len(out.Categories))
	for _, cat := range out.Categories {
		id := cat.ID
		list, err := c.articles.Latest(ctx, repo.ArticleFilter{CategoryID: &id}, SpotlightLimit)
		if err != nil {
			return nil, err
		}
		out.Spotlights = append(out.Spotlights, Spotlight{Category: cat, Articles: list})
	}
	return out, nil
}

// News 全部文章列表
func (c *Composer) News(ctx context.Context, q PageQuery) (*News, error) {
	page, err := c.articles.Paginate(ctx, repo.ArticleFilter{}, q.request(NewsPerPage))
	if err != nil {
		return nil, err
	}
	cats, err := c.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	return &News{Articles: page, Categories: cats}, nil
}

// Category 分类页，分类不存在返回 404
func (c *Composer) Category(ctx context.Context, slug string, q PageQuery) (*CategoryPage, error) {
	cat, err := c.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	id := cat.ID

	out := &CategoryPage{Category: *cat}
	out.Articles, err = c.articles.Paginate(ctx, repo.ArticleFilter{CategoryID: &id}, q.request(CategoryPerPage))
	if err != nil {
		return nil, err
	}
	out.Trending, err = c.articles.Trending(ctx, repo.TrendingFilter{CategoryID: &id}, CategoryTrending)
	if err != nil {
		return nil, err
	}
	out.Categories, err = c.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Show 文章详情，trending 中不包含当前文章
func (c *Composer) Show(ctx context.Context, slug string) (*Show, error) {
	a, err := c.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	id := a.ID
	trending, err := c.articles.Trending(ctx, repo.TrendingFilter{ExcludeID: &id}, ShowTrendingLimit)
	if err != nil {
		return nil, err
	}
	cats, err := c.categories.All(ctx)
	if err != nil {
		return nil, err
	}
	return &Show{Article: *a, Trending: trending, Categories: cats}, nil
}

// idSet 首页去重用的 id 集合
type idSet map[uint64]struct{}

func newIDSet(lists ...[]objects.Article) idSet {
	s := idSet{}
	for _, l := range lists {
		s.add(l)
	}
	return s
}

func (s idSet) add(list []objects.Article) {
	for _, a := range list {
		s[a.ID] = struct{}{}
	}
}

// difference 保持 list 原有顺序，去掉已出现的 id，最多 limit 条
func (s idSet) difference(list []objects.Article, limit int) []objects.Article {
	out := make([]objects.Article, 0, limit)
	for _, a := range list {
		if len(out) == limit {
			break
		}
		if _, ok := s[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s idSet) ids() []uint64 {
	out := make([]uint64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
