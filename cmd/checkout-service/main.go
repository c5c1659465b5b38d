// cmd/checkout-service/main.go
package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"corre/internal/pkg/bootstrap"
	"corre/internal/pkg/httpclient"
	"corre/internal/service/checkout/application"
	"corre/internal/service/checkout/infrastructure/adapter"
	"corre/internal/service/checkout/interfaces"
)

const (
	serviceName = "checkout-service"
	servicePort = 8093
)

// main 是结算服务的组装根。
func main() {
	bootstrap.Init()

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)

	// 钱包地址优先走 Nacos 发现，WALLET_SERVICE_URL 作为静态兜底
	walletBaseURL := os.Getenv("WALLET_SERVICE_URL")

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			walletClient := adapter.NewWalletHTTPAdapter(httpClient, appCtx.Nacos, walletBaseURL)
			checkoutService := application.NewCheckoutService(walletClient, tracer)
			handler := interfaces.NewCheckoutHandler(checkoutService)

			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
	})
}
