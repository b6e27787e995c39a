package server

import (
	"context"
	"net/http"

	"github.com/iceymoss/go-press/internal/auth"
	"github.com/iceymoss/go-press/internal/feed"
	"github.com/iceymoss/go-press/internal/media"
	"github.com/iceymoss/go-press/internal/service"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/paginate"
	"github.com/iceymoss/go-press/pkg/xerr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func pageQuery(c *gin.Context) feed.PageQuery {
	return feed.PageQuery{
		Page:  paginate.ParsePage(c.Query("page")),
		Path:  c.Request.URL.Path,
		Query: c.Request.URL.Query(),
	}
}

// ---- 前台 ----

func (s *Server) home(c *gin.Context) {
	out, err := s.deps.Feed.Home(c.Request.Context(), pageQuery(c), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) newsIndex(c *gin.Context) {
	out, err := s.deps.Feed.News(c.Request.Context(), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) categoryShow(c *gin.Context) {
	out, err := s.deps.Feed.Category(c.Request.Context(), c.Param("slug"), pageQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

// newsShow 阅读量计数失败不影响页面
func (s *Server) newsShow(c *gin.Context) {
	out, err := s.deps.Feed.Show(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if err := s.deps.Counter.Hit(ctx, out.Article.ID); err != nil {
		logger.Warn("increment views failed", zap.Uint64("article_id", out.Article.ID), zap.Error(err))
	}
	ok(c, out)
}

// ---- 后台: 文章 ----

func (s *Server) adminNewsIndex(c *gin.Context) {
	typ := c.DefaultQuery("type", service.TypeNews)
	q := pageQuery(c)
	page, err := s.deps.Articles.AdminIndex(c.Request.Context(), identity(c), typ, q.Page, q.Path, q.Query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"articles": page, "type": typ})
}

func (s *Server) adminNewsCreate(c *gin.Context) {
	out, err := s.deps.Articles.CreateForm(c.Request.Context(), identity(c), c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) adminNewsStore(c *gin.Context) {
	if err := auth.RequireAdmin(identity(c)); err != nil {
		fail(c, err)
		return
	}
	in, err := articleInput(c)
	if err != nil {
		fail(c, err)
		return
	}
	saved, err := s.deps.Articles.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Article created successfully.",
		"article":  saved.Article,
		"warnings": saved.Warnings,
	})
}

func (s *Server) adminNewsEdit(c *gin.Context) {
	id, err := paramID(c, "article")
	if err != nil {
		fail(c, err)
		return
	}
	out, err := s.deps.Articles.EditForm(c.Request.Context(), identity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) adminNewsUpdate(c *gin.Context) {
	if err := auth.RequireAdmin(identity(c)); err != nil {
		fail(c, err)
		return
	}
	id, err := paramID(c, "article")
	if err != nil {
		fail(c, err)
		return
	}
	in, err := articleInput(c)
	if err != nil {
		fail(c, err)
		return
	}
	saved, err := s.deps.Articles.Update(c.Request.Context(), identity(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"message":  "Article updated successfully.",
		"article":  saved.Article,
		"warnings": saved.Warnings,
	})
}

func (s *Server) adminNewsDestroy(c *gin.Context) {
	id, err := paramID(c, "article")
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.deps.Articles.Delete(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Article deleted successfully."})
}

// adminUpload 单文件上传，返回 URL
func (s *Server) adminUpload(c *gin.Context) {
	if err := auth.RequireAdmin(identity(c)); err != nil {
		fail(c, err)
		return
	}
	purpose, valid := media.ParsePurpose(c.DefaultPostForm("kind", string(media.PurposeImage)))
	if !valid {
		fail(c, apperrors.Field("kind", "The selected kind is invalid."))
		return
	}
	f, err := uploadFile(c)
	if err != nil {
		fail(c, err)
		return
	}
	url, err := s.deps.Articles.Upload(c.Request.Context(), identity(c), purpose, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// ---- 后台: 分类 ----

func (s *Server) adminCategoryIndex(c *gin.Context) {
	q := pageQuery(c)
	page, err := s.deps.Categories.Index(c.Request.Context(), identity(c), q.Page, q.Path, q.Query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"categories": page})
}

// adminGate 只做权限判断的空表单页
func adminGate(c *gin.Context) {
	if err := auth.RequireAdmin(identity(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

func (s *Server) adminCategoryStore(c *gin.Context) {
	var in service.CategoryInput
	if err := c.ShouldBind(&in); err != nil {
		fail(c, apperrors.Wrap(xerr.ErrInvalidInput, "Malformed request body.", err))
		return
	}
	cat, err := s.deps.Categories.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully.", "category": cat})
}

func (s *Server) adminCategoryEdit(c *gin.Context) {
	id, err := paramID(c, "category")
	if err != nil {
		fail(c, err)
		return
	}
	cat, err := s.deps.Categories.Find(c.Request.Context(), identity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"category": cat})
}

func (s *Server) adminCategoryUpdate(c *gin.Context) {
	id, err := paramID(c, "category")
	if err != nil {
		fail(c, err)
		return
	}
	var in service.CategoryInput
	if err := c.ShouldBind(&in); err != nil {
		fail(c, apperrors.Wrap(xerr.ErrInvalidInput, "Malformed request body.", err))
		return
	}
	cat, err := s.deps.Categories.Update(c.Request.Context(), identity(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Category updated successfully.", "category": cat})
}

func (s *Server) adminCategoryDestroy(c *gin.Context) {
	id, err := paramID(c, "category")
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.deps.Categories.Delete(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Category deleted successfully."})
}

// ---- 后台: 管理员 ----

func (s *Server) adminUserIndex(c *gin.Context) {
	q := pageQuery(c)
	page, err := s.deps.Users.Index(c.Request.Context(), identity(c), q.Page, q.Path, q.Query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": page})
}

func (s *Server) adminUserStore(c *gin.Context) {
	var in service.UserInput
	if err := c.ShouldBind(&in); err != nil {
		fail(c, apperrors.Wrap(xerr.ErrInvalidInput, "Malformed request body.", err))
		return
	}
	u, err := s.deps.Users.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin user created successfully.", "user": u})
}

func (s *Server) adminUserDestroy(c *gin.Context) {
	id, err := paramID(c, "user")
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.deps.Users.Delete(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "User deleted successfully."})
}

// ---- 后台: 定时任务 ----

func (s *Server) adminJobs(c *gin.Context) {
	if err := auth.RequireAdmin(identity(c)); err != nil {
		fail(c, err)
		return
	}
	out := gin.H{"data": s.deps.Scheduler.Stats.GetAll()}
	if s.deps.Jobs != nil {
		runs, err := s.deps.Jobs.Recent(c.Request.Context(), c.Query("name"), 20)
		if err != nil {
			fail(c, err)
			return
		}
		out["runs"] = runs
	}
	ok(c, out)
}

func (s *Server) adminJobRun(c *gin.Context) {
	if err := auth.RequireAdmin(identity(c)); err != nil {
		fail(c, err)
		return
	}
	if err := s.deps.Scheduler.ManualRun(c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Triggered"})
}
