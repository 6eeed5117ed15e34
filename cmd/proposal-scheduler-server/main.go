package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LENAX/proposal-scheduler/internal/storage"
	"github.com/LENAX/proposal-scheduler/pkg/api"
	"github.com/LENAX/proposal-scheduler/pkg/config"
	"github.com/LENAX/proposal-scheduler/pkg/core/cache"
	"github.com/LENAX/proposal-scheduler/pkg/core/engine"
	"github.com/LENAX/proposal-scheduler/pkg/core/realtime"
	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "./configs/scheduler.yaml", "调度服务配置文件路径")
	host := flag.String("host", "", "监听地址（覆盖配置文件）")
	port := flag.Int("port", 0, "监听端口（覆盖配置文件）")
	flag.Parse()

	log.Printf("Proposal Scheduler Server v%s", Version)
	log.Printf("配置文件: %s", *configPath)

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *host != "" {
		cfg.Scheduler.API.Host = *host
	}
	if *port > 0 {
		cfg.Scheduler.API.Port = *port
	}

	// 1. 构建注册表提供方
	provider, cleanup, err := buildRegistryProvider(cfg)
	if err != nil {
		log.Fatalf("构建注册表提供方失败: %v", err)
	}
	defer cleanup()

	// 2. 构建状态查询接口
	var lookup status.Lookup
	if baseURL := cfg.Scheduler.StatusCollaborator.BaseURL; baseURL != "" {
		lookup = status.NewHTTPLookup(baseURL, cfg.GetStatusRequestTimeout())
		log.Printf("✅ 状态协作方: %s", baseURL)
	} else {
		log.Println("⚠️ 未配置状态协作方，所有任务状态按unknown处理")
	}

	// 3. 事件总线与结果缓存
	bus := realtime.NewEventBus(false)
	defer bus.Close()

	var resultCache cache.ScheduleCache
	if cfg.Scheduler.Recompute.Cache.Enabled {
		resultCache = cache.NewMemoryScheduleCache()
	}

	// 4. 构建并启动引擎
	eng, err := engine.NewEngineWithBus(provider, lookup, bus, resultCache, cfg.Scheduler.Recompute.Cache.TTL)
	if err != nil {
		log.Fatalf("创建Engine失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		log.Fatalf("启动Engine失败: %v", err)
	}

	if expr := cfg.Scheduler.Recompute.CronExpr; expr != "" {
		if err := eng.GetCronScheduler().RegisterRecompute(expr); err != nil {
			log.Fatalf("注册定时重新计算失败: %v", err)
		}
	}

	// 5. WebSocket广播器
	broadcaster := realtime.NewBroadcaster()
	go func() {
		if err := broadcaster.Run(ctx, bus); err != nil {
			log.Printf("进度广播器错误: %v", err)
		}
	}()

	// 6. 创建API服务器
	serverConfig := api.ServerConfig{
		Host:         cfg.Scheduler.API.Host,
		Port:         cfg.Scheduler.API.Port,
		ReadTimeout:  cfg.Scheduler.API.ReadTimeout,
		WriteTimeout: cfg.Scheduler.API.WriteTimeout,
	}
	apiServer := api.NewAPIServer(eng, broadcaster, serverConfig, Version)

	// 7. 在goroutine中启动API服务器
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API服务器错误: %v", err)
		}
	}()

	log.Printf("✅ Proposal Scheduler Server started on %s:%d", serverConfig.Host, serverConfig.Port)

	// 8. 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 9. 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.WriteTimeout)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭API服务器失败: %v", err)
	}

	eng.Stop()
	log.Println("✅ 服务已停止")
}

// buildRegistryProvider 按配置构建注册表提供方
// source=file: 启动时加载YAML任务文件为静态注册表
// source=database: 每次计算从数据库加载
func buildRegistryProvider(cfg *config.SchedulerConfig) (engine.RegistryProvider, func(), error) {
	switch cfg.Scheduler.Registry.Source {
	case "file":
		reg, err := registry.LoadFromFile(cfg.Scheduler.Registry.FilePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✅ 任务注册表: %s (%d个任务)", cfg.Scheduler.Registry.FilePath, reg.Size())
		return &engine.StaticRegistryProvider{Registry: reg}, func() {}, nil

	case "database":
		factory, err := storage.NewDatabaseFactory(cfg.GetDatabaseType(), cfg.GetDatabaseDSN())
		if err != nil {
			return nil, nil, err
		}
		repo, err := factory.CreateTaskRegistryRepo()
		if err != nil {
			factory.Close()
			return nil, nil, err
		}
		log.Printf("✅ 任务注册表: %s数据库", cfg.GetDatabaseType())
		return repo, func() { factory.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("不支持的注册表来源: %s", cfg.Scheduler.Registry.Source)
	}
}
