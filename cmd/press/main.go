package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iceymoss/go-press/internal/auth"
	"github.com/iceymoss/go-press/internal/conf"
	"github.com/iceymoss/go-press/internal/engine"
	"github.com/iceymoss/go-press/internal/feed"
	"github.com/iceymoss/go-press/internal/media"
	"github.com/iceymoss/go-press/internal/repo"
	"github.com/iceymoss/go-press/internal/server"
	"github.com/iceymoss/go-press/internal/service"
	"github.com/iceymoss/go-press/internal/views"
	"github.com/iceymoss/go-press/pkg/db"
	"github.com/iceymoss/go-press/pkg/db/objects"
	"github.com/iceymoss/go-press/pkg/logger"
	"github.com/iceymoss/go-press/pkg/sensitive"
	"github.com/iceymoss/go-press/pkg/storage"
	"github.com/iceymoss/go-press/pkg/transaction"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// .env 可选，线上直接用环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("❌ .env error", zap.Error(err))
	}

	cfg, err := conf.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("❌ LoadConfig error", zap.Error(err))
	}
	logger.SetLevel(cfg.Log.Level)
	defer logger.Sync()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	ctx := context.Background()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("❌ database error", zap.Error(err))
	}

	store, staticDir, err := newStorage(ctx, cfg.Upload)
	if err != nil {
		logger.Fatal("❌ storage error", zap.Error(err))
	}

	var words *sensitive.Word
	if cfg.Moderation.WordDict != "" || len(cfg.Moderation.Words) > 0 {
		if words, err = sensitive.NewWord(cfg.Moderation.WordDict, cfg.Moderation.Words); err != nil {
			logger.Fatal("❌ moderation dict error", zap.Error(err))
		}
	}

	articles := repo.NewArticleRepo(conn)
	categories := repo.NewCategoryRepo(conn)
	users := repo.NewUserRepo(conn)
	jobs := repo.NewJobRepo(conn)
	tx := transaction.NewManager(conn)

	ingestor := media.NewIngestor(store, cfg.Media.DefaultImage, media.Limits{
		ImageMaxBytes: cfg.Media.ImageMaxBytes,
		VideoMaxBytes: cfg.Media.VideoMaxBytes,
	})
	objects.Placeholder = ingestor.DefaultImage()

	scheduler := engine.NewScheduler(jobs)
	var counter views.Counter = views.NewDirectCounter(articles)
	if cfg.Views.Mode == views.ModeBuffered {
		rdb, err := db.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("❌ redis error", zap.Error(err))
		}
		defer rdb.Close()

		counter = views.NewBufferedCounter(rdb, cfg.Views.RedisKey)
		flush := views.NewFlushTask(rdb, articles, cfg.Views.RedisKey)
		if err := scheduler.AddJob(cfg.Views.FlushCron, views.FlushJobName, flush, nil); err != nil {
			logger.Fatal("❌ schedule views flush error", zap.Error(err))
		}
		logger.Info("✅ Job scheduled", zap.String("job", views.FlushJobName), zap.String("cron", cfg.Views.FlushCron))
	}

	srv := server.NewServer(server.Deps{
		Feed:       feed.NewComposer(articles, categories),
		Articles:   service.NewArticleService(articles, categories, ingestor, tx, words),
		Categories: service.NewCategoryService(categories, articles, tx),
		Users:      service.NewUserService(users, articles, tx),
		Auth:       auth.NewAuthenticator(users),
		Counter:    counter,
		Scheduler:  scheduler,
		Jobs:       jobs,
		StaticURL:  cfg.Upload.BaseURL,
		StaticDir:  staticDir,
	})

	go func() {
		if err := srv.Run(cfg.Server.Port); err != nil {
			logger.Fatal("❌ Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("bye")
}

// newStorage 本地存储时额外返回需要静态托管的目录
func newStorage(ctx context.Context, c conf.UploadConfig) (storage.FileStorage, string, error) {
	switch c.Driver {
	case "s3":
		s, err := storage.NewS3Storage(ctx, c.S3)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	case "", "local":
		return storage.NewLocalStorage(c.BasePath, c.BaseURL), c.BasePath, nil
	}
	return nil, "", errors.New("unknown upload driver: " + c.Driver)
}
