// cmd/wallet-service/main.go
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"corre/internal/pkg/bootstrap"
	"corre/internal/pkg/logger"
	"corre/internal/pkg/mq"
	"corre/internal/pkg/redis"
	"corre/internal/service/wallet/application"
	"corre/internal/service/wallet/domain"
	"corre/internal/service/wallet/infrastructure"
	"corre/internal/service/wallet/infrastructure/adapter"
	"corre/internal/service/wallet/interfaces"
	"corre/internal/zookeeper"
)

const (
	serviceName = "wallet-service"
	servicePort = 8091

	grantCommandTopic   = "corre.wallet.grants.v1"
	grantConsumerGroup  = "wallet-grant-consumer-group"
	walletEventTopic    = "corre.wallet.events.v1"
	dedupTTLSeconds     = 7 * 24 * 3600
	snapshotCacheExpiry = 30 * time.Second
)

// main 是钱包服务的组装根：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	// 1. 持久化
	db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	grantRepo := infrastructure.NewGormGrantRepository(db)
	xpRepo := infrastructure.NewGormXPRepository(db)

	// 2. Redis：快照缓存 + 命令去重
	redisClient := redis.NewClient(cfg.Infra.Redis.Addr)
	defer redisClient.Close()

	snapshotCache := adapter.NewSnapshotRedisCache(redisClient, snapshotCacheExpiry)
	dedup, err := adapter.NewDedupRedisAdapter(redisClient, dedupTTLSeconds)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize dedup adapter")
	}

	// 3. Owner 级互斥锁：多实例部署用 Zookeeper，单实例用进程内锁
	var locker domain.OwnerLocker
	if os.Getenv("OWNER_LOCK_MODE") == "zookeeper" {
		zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers, 5*time.Second)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		defer zkConn.Close()
		locker = adapter.NewZookeeperOwnerLocker(zkConn)
	} else {
		locker = infrastructure.NewKeyedOwnerLocker()
	}

	// 4. Kafka：事件发布 + 入账命令消费
	eventWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, walletEventTopic)
	defer eventWriter.Close()
	publisher := infrastructure.NewWalletEventProducerAdapter(eventWriter)

	tracer := otel.Tracer(serviceName)
	walletService := application.NewWalletService(
		grantRepo, xpRepo, locker, publisher, dedup, snapshotCache, tracer,
	)

	grantReader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, grantCommandTopic, grantConsumerGroup)
	grantConsumer := infrastructure.NewGrantCommandConsumerAdapter(grantReader, walletService)

	handler := interfaces.NewWalletHandler(walletService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
		Runners: []bootstrap.Runner{grantConsumer},
	})
}
