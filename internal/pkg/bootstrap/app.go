// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"corre/internal/pkg/logger"
	"corre/internal/pkg/nacos"
	"corre/internal/pkg/tracing"
	"corre/internal/pkg/utils"
)

// AppCtx 在路由注册阶段暴露给各服务的共享组件。
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// Runner 是需要随服务生命周期启停的后台组件（如 Kafka 消费者）。
type Runner interface {
	Start(ctx context.Context)
	Stop()
}

// AppInfo 包含启动一个微服务所需的全部信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己的 HTTP 路由
	Runners          []Runner            // 随服务启停的后台组件
}

// StartService 封装所有微服务通用的启动与优雅关停流程。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)
	cfg := GetCurrentConfig()

	// 1. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 服务注册
	nacosClient, err := nacos.NewClient(
		getEnv("NACOS_SERVER_ADDRS", "localhost:8848"),
		os.Getenv("NACOS_NAMESPACE"),
		getEnv("NACOS_GROUP", "DEFAULT_GROUP"),
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := utils.GetOutboundIP()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to get outbound IP address")
	}
	if err := nacosClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to register service with nacos")
	}

	// 3. HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: nacosClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.Logger.Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	// 4. 后台组件
	runCtx, cancelRunners := context.WithCancel(context.Background())
	for _, r := range info.Runners {
		r.Start(runCtx)
	}

	// 5. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info().Msgf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 关停顺序与启动顺序相反
	cancelRunners()
	for _, r := range info.Runners {
		r.Stop()
	}

	if err := nacosClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Logger.Error().Err(err).Msg("error deregistering from nacos")
	}
	if nacosConfigClient != nil {
		nacosConfigClient.CloseClient()
	}
	if err := tp.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down tracer provider")
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down http server")
	}

	logger.Logger.Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}

// splitHostPort 解析 "host:port" 形式的地址。
func splitHostPort(addr string) (string, uint64, error) {
	parts := strings.Split(strings.TrimSpace(addr), ":")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid address format: %s", addr)
	}
	port, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %s: %w", addr, err)
	}
	return parts[0], port, nil
}
