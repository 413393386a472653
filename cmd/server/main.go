package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Service:  cfg.AppName,
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	store, err := openStore(appCtx, cfg, manager, zapLogger)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal("storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	zapLogger.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	var probes []monitor.Probe
	if pinger, ok := store.(repository.Pinger); ok {
		probes = append(probes, monitor.Probe{Name: cfg.Storage.Driver, Check: pinger.Ping})
	}

	tasks := store
	if cfg.CacheEnabled() {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			_ = manager.Shutdown(context.Background())
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
		probes = append(probes, monitor.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
		tasks = redisRepo.NewCachedTaskRepository(store, redisClient, cfg.Redis.TTL, zapLogger)
	}

	mon := monitor.New(cfg.Health.Interval, zapLogger, probes...)
	if err := mon.Start(); err != nil {
		zapLogger.Fatal("health monitor failed", zap.Error(err))
	}
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	taskUseCase := taskUC.New(tasks, zapLogger)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	r := router.New(router.Handlers{
		Root:   apiHandler.NewRootHandler(ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}, zapLogger)

	server := &fasthttp.Server{
		Handler:      router.Handler(r, cfg.CORS.AllowOrigins, zapLogger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
