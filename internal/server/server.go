package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iceymoss/go-press/internal/auth"
	"github.com/iceymoss/go-press/internal/engine"
	"github.com/iceymoss/go-press/internal/feed"
	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/internal/service"
	"github.com/iceymoss/go-press/internal/views"
	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps 路由依赖；StaticDir 为空表示文件不在本地（如 S3）
type Deps struct {
	Feed       *feed.Composer
	Articles   *service.ArticleService
	Categories *service.CategoryService
	Users      *service.UserService
	Auth       *auth.Authenticator
	Counter    views.Counter
	Scheduler  *engine.Scheduler
	Jobs       *repo.JobRepo

	StaticURL string
	StaticDir string
}

type Server struct {
	engine    *gin.Engine
	scheduler *engine.Scheduler
	deps      Deps
	http      *http.Server
}

func NewServer(deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), securityHeaders(), identify(deps.Auth))

	s := &Server{engine: router, scheduler: deps.Scheduler, deps: deps}

	if deps.StaticDir != "" && deps.StaticURL != "" {
		router.Static(deps.StaticURL, deps.StaticDir)
	}

	router.GET("/", s.home)
	router.GET("/news", s.newsIndex)
	router.GET("/news/:slug", s.newsShow)
	router.GET("/category/:slug", s.categoryShow)

	admin := router.Group("/admin", requireLogin())
	{
		admin.GET("/news", s.adminNewsIndex)
		admin.GET("/news/create", s.adminNewsCreate)
		admin.POST("/news", s.adminNewsStore)
		admin.GET("/news/:id/edit", s.adminNewsEdit)
		admin.PUT("/news/:id", s.adminNewsUpdate)
		admin.DELETE("/news/:id", s.adminNewsDestroy)

		admin.POST("/uploads", s.adminUpload)

		admin.GET("/categories", s.adminCategoryIndex)
		admin.GET("/categories/create", adminGate)
		admin.POST("/categories", s.adminCategoryStore)
		admin.GET("/categories/:id/edit", s.adminCategoryEdit)
		admin.PUT("/categories/:id", s.adminCategoryUpdate)
		admin.DELETE("/categories/:id", s.adminCategoryDestroy)

		admin.GET("/users", s.adminUserIndex)
		admin.GET("/users/create", adminGate)
		admin.POST("/users", s.adminUserStore)
		admin.DELETE("/users/:id", s.adminUserDestroy)

		if deps.Scheduler != nil {
			admin.GET("/jobs", s.adminJobs)
			admin.POST("/jobs/:name/run", s.adminJobRun)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		what := "page"
		if strings.HasPrefix(c.Request.URL.Path, "/admin") {
			what = "admin route"
		}
		fail(c, apperrors.NotFound(what))
	})

	return s
}

// Handler 测试中直接使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	// 启动任务调度器
	if s.scheduler != nil {
		s.scheduler.Start()
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("http server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 先停 HTTP 再等待正在执行的任务
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return err
}
