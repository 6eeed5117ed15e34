// Package api 提供调度服务的HTTP接口层
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/proposal-scheduler/pkg/api/handler"
	"github.com/LENAX/proposal-scheduler/pkg/core/engine"
	"github.com/LENAX/proposal-scheduler/pkg/core/realtime"
)

// ServerConfig API服务器配置（对外导出）
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig 默认API服务器配置（对外导出）
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// APIServer 调度服务API服务器（对外导出）
type APIServer struct {
	engine      *engine.Engine
	broadcaster *realtime.Broadcaster
	config      ServerConfig
	httpServer  *http.Server
	router      *gin.Engine
}

// NewAPIServer 创建API服务器实例（对外导出）
// broadcaster可为nil，此时不注册WebSocket路由
func NewAPIServer(eng *engine.Engine, broadcaster *realtime.Broadcaster, config ServerConfig, version string) *APIServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	server := &APIServer{
		engine:      eng,
		broadcaster: broadcaster,
		config:      config,
		router:      router,
	}
	server.registerRoutes(version)
	return server
}

// registerRoutes 注册路由（内部方法）
func (s *APIServer) registerRoutes(version string) {
	scheduleHandler := handler.NewScheduleHandler(s.engine)
	healthHandler := handler.NewHealth(version)

	s.router.GET("/health", healthHandler.Check)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/schedule/compute", scheduleHandler.Compute)
		v1.GET("/schedule/critical-path", scheduleHandler.GetCriticalPath)
		v1.GET("/schedule/priorities", scheduleHandler.GetPriorities)
		v1.GET("/tasks", scheduleHandler.ListTasks)
	}

	if s.broadcaster != nil {
		s.router.GET("/ws/schedule", func(c *gin.Context) {
			s.broadcaster.HandleUpgrade(c.Writer, c.Request)
		})
	}
}

// Router 获取底层gin路由（对外导出，测试用途）
func (s *APIServer) Router() *gin.Engine {
	return s.router
}

// Start 启动API服务器（对外导出）
// 阻塞运行直到服务器关闭
func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	log.Printf("✅ [API服务器] 监听地址: %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API服务器异常退出: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭API服务器（对外导出）
func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Println("🕐 [API服务器] 正在优雅关闭...")
	return s.httpServer.Shutdown(ctx)
}
