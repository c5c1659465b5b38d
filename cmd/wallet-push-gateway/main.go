// cmd/wallet-push-gateway/main.go
package main

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corre/internal/pkg/bootstrap"
	"corre/internal/pkg/mq"
	"corre/internal/pkg/session"
	"corre/internal/service/gateway"
)

const (
	serviceName = "wallet-push-gateway"
	servicePort = 8094

	walletEventTopic = "corre.wallet.events.v1"
)

// main 是推送网关的组装根。
// 每个网关节点用独立消费组消费全量钱包事件，只把本节点持有连接的用户事件推下去。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	nodeID := "wallet-push-gateway-" + uuid.New().String()[:8]

	sessionMgr := session.NewManager(cfg.Infra.Redis.Addr)
	hub := gateway.NewHub(nodeID)
	go hub.Run()

	eventReader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, walletEventTopic, nodeID)
	eventConsumer := gateway.NewWalletEventConsumer(eventReader, hub, func() bool {
		return bootstrap.GetCurrentConfig().App.FeatureFlags.EnableWalletPush
	})

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				gateway.ServeWS(hub, sessionMgr, w, r)
			})
			appCtx.Mux.HandleFunc("/presence", gateway.PresenceHandler(sessionMgr))
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, "online=%d", hub.OnlineCount())
			})
		},
		Runners: []bootstrap.Runner{eventConsumer},
	})
}
