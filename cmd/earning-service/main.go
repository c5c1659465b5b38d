// cmd/earning-service/main.go
package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"corre/internal/pkg/bootstrap"
	"corre/internal/pkg/logger"
	"corre/internal/pkg/mq"
	"corre/internal/service/earning/application"
	"corre/internal/service/earning/infrastructure"
	"corre/internal/service/earning/interfaces"
)

const (
	serviceName = "earning-service"
	servicePort = 8092

	activityTopic         = "corre.activity.v1"
	activityConsumerGroup = "earning-activity-consumer-group"
	grantCommandTopic     = "corre.wallet.grants.v1"
)

// main 是收益服务的组装根。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	// 1. CEL 规则引擎：运营可通过表达式收紧发放条件（为空则全部放行）
	ruleEngine, err := infrastructure.NewCELRuleEngineAdapter()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize rule engine")
	}
	eligibilityRule := os.Getenv("EARNING_ELIGIBILITY_RULE")

	// 2. Kafka：入账命令生产 + 活动事件消费
	grantWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, grantCommandTopic)
	defer grantWriter.Close()
	producer := infrastructure.NewGrantCommandProducerAdapter(grantWriter)

	tracer := otel.Tracer(serviceName)
	earningService := application.NewEarningService(ruleEngine, producer, tracer, eligibilityRule)

	activityReader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, activityTopic, activityConsumerGroup)
	activityConsumer := infrastructure.NewActivityConsumerAdapter(activityReader, earningService)

	handler := interfaces.NewEarningHandler(earningService)

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
		Runners: []bootstrap.Runner{activityConsumer},
	})
}
