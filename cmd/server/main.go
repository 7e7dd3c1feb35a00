package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"onair/backend/config"
	"onair/backend/internal/api/handler"
	"onair/backend/internal/api/router"
	"onair/backend/internal/repository"
	"onair/backend/internal/service"
	"onair/backend/pkg/database"
	"onair/backend/pkg/jwt"
	applogger "onair/backend/pkg/logger"
	"onair/backend/pkg/queue"
	"onair/backend/pkg/redis"
)

func main() {
	// 0. 本地开发时加载 .env（不存在则忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与播出缓存将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 连接消息队列（可选：通知事件发布）
	var publisher *queue.Publisher
	if cfg.Queue.Enabled {
		publisher, err = queue.NewPublisher(&cfg.Queue, logger)
		if err != nil {
			logger.Warn("消息队列连接失败，通知事件将不发布", zap.Error(err))
			publisher = nil
		}
	}

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, publisher, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭外部连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	if publisher != nil {
		publisher.Close()
	}

	logger.Info("服务器已关闭")
}
