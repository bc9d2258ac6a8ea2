package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SlpAus/guo-backend/api"
	"github.com/SlpAus/guo-backend/internal/platform/backup"
	"github.com/SlpAus/guo-backend/internal/platform/config"
	"github.com/SlpAus/guo-backend/internal/platform/database"
	"github.com/SlpAus/guo-backend/internal/platform/events"
	"github.com/SlpAus/guo-backend/internal/platform/health"
	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/internal/platform/shutdown"
	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/SlpAus/guo-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// runServer 组装所有模块并阻塞直到停机完成。
func runServer(cfg *config.Config, log *logger.Logger) error {
	gracefulMgr := lifecycle.NewManager("graceful", log)
	forcefulMgr := lifecycle.NewManager("forceful", log)
	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr, log)

	// 1. 加载账本。落盘失败时内存与磁盘已经不一致，只能退出
	repo := pot.OpenRepository(cfg.Storage.Path, log, pot.WithPersistFailureHandler(func(err error) {
		log.Fatal("账本落盘失败，进程退出", "path", cfg.Storage.Path, "error", err)
	}))

	// 2. 可选的Redis事件广播
	var (
		rdb     *redis.Client
		monitor *health.Monitor
		sink    pot.EventSink
	)
	if cfg.Redis.Enabled {
		var err error
		rdb, err = database.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("Redis 连接成功", "address", cfg.Redis.Address)

		monitor = health.NewMonitor(rdb, log)
		publisher, err := events.NewPublisher(rdb, cfg.Redis.Instance, monitor.IsHealthy, log)
		if err != nil {
			return err
		}
		sink = publisher

		handle, err := gracefulMgr.NewServiceHandle("redis-health")
		if err != nil {
			return err
		}
		go monitor.StartChecker(handle, cfg.Redis.HealthInterval)
	}

	// 3. 可选的SQLite镜像备份
	if cfg.Backup.Enabled {
		db, err := database.OpenSQLite(cfg.Backup.SqlitePath)
		if err != nil {
			return err
		}
		defer database.Close(db)
		if err := backup.Migrate(db); err != nil {
			return err
		}

		backuper := backup.NewBackuper(db, repo, log)
		coordinator.FinalSnapshot = func(ctx context.Context) error {
			_, err := backuper.CreateSnapshot(ctx)
			return err
		}

		// 定时备份在优雅停机阶段仍可完成正在进行的事务，强制停机时才中断
		gracefulHandle, err := gracefulMgr.NewServiceHandle("backup")
		if err != nil {
			return err
		}
		forcefulHandle, err := forcefulMgr.NewServiceHandle("backup")
		if err != nil {
			return err
		}
		go backuper.StartScheduler(gracefulHandle, forcefulHandle, cfg.Backup.Interval)
	}

	// 4. HTTP服务
	svc := pot.NewService(repo, sink, log)
	router := newRouter(cfg.Server, log)
	api.SetupRoutes(router, pot.NewHandler(svc), health.Handler(repo, monitor))

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("服务器已准备就绪，开始监听", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server, serverErr)
	return nil
}

func newRouter(cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	gin.SetMode(cfg.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return r
}
