// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
	"gopkg.in/yaml.v3"

	"corre/internal/pkg/logger"
)

// Config 是所有服务共享的配置结构。
// 优先级: Nacos 配置中心 > 本地 yaml 文件 > 内置默认值。
type Config struct {
	App struct {
		FeatureFlags struct {
			// 是否向推送网关广播钱包事件
			EnableWalletPush bool `yaml:"enable_wallet_push"`
		} `yaml:"feature_flags"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`
}

var currentConfig atomic.Pointer[Config]

var nacosConfigClient config_client.IConfigClient

// GetCurrentConfig 返回当前生效的配置快照。
// 配置可能被 Nacos 热更新替换，调用方不应缓存返回值。
func GetCurrentConfig() *Config {
	if cfg := currentConfig.Load(); cfg != nil {
		return cfg
	}
	return defaultConfig()
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.FeatureFlags.EnableWalletPush = true
	cfg.Infra.Mysql.DSN = getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/corre?charset=utf8mb4&parseTime=True&loc=Local")
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Infra.Kafka.Brokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	cfg.Infra.Zookeeper.Servers = strings.Split(getEnv("ZK_SERVERS", "localhost:2181"), ",")
	return cfg
}

// Init 加载配置。必须在 StartService 之前调用。
// 本地文件路径取自 CONFIG_PATH；若设置了 NACOS_CONFIG_DATA_ID，
// 则改从 Nacos 配置中心拉取，并监听后续变更。
func Init() {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("failed to parse config file")
		}
	}
	currentConfig.Store(cfg)

	if dataID := os.Getenv("NACOS_CONFIG_DATA_ID"); dataID != "" {
		initNacosConfig(dataID)
	}
}

// initNacosConfig 从 Nacos 配置中心加载配置并注册变更监听。
func initNacosConfig(dataID string) {
	addrs := getEnv("NACOS_SERVER_ADDRS", "localhost:8848")
	group := getEnv("NACOS_GROUP", "DEFAULT_GROUP")

	serverConfigs, err := parseNacosAddrs(addrs)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("invalid nacos server address")
	}
	clientConfig := *constant.NewClientConfig(
		constant.WithNotLoadCacheAtStart(true),
		constant.WithLogDir("/tmp/nacos/log"),
		constant.WithCacheDir("/tmp/nacos/cache"),
		constant.WithLogLevel("warn"),
		constant.WithNamespaceId(os.Getenv("NACOS_NAMESPACE")),
	)

	nacosConfigClient, err = clients.NewConfigClient(vo.NacosClientParam{
		ClientConfig:  &clientConfig,
		ServerConfigs: serverConfigs,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to create nacos config client")
	}

	apply := func(content string) {
		cfg := defaultConfig()
		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			logger.Logger.Error().Err(err).Msg("failed to parse config from nacos, keeping previous config")
			return
		}
		currentConfig.Store(cfg)
		logger.Logger.Info().Str("data_id", dataID).Msg("config reloaded from nacos")
	}

	content, err := nacosConfigClient.GetConfig(vo.ConfigParam{DataId: dataID, Group: group})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to fetch config from nacos")
	}
	apply(content)

	err = nacosConfigClient.ListenConfig(vo.ConfigParam{
		DataId: dataID,
		Group:  group,
		OnChange: func(namespace, group, dataId, data string) {
			apply(data)
		},
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("failed to listen config changes from nacos")
	}
}

func parseNacosAddrs(addrs string) ([]constant.ServerConfig, error) {
	var serverConfigs []constant.ServerConfig
	for _, addr := range strings.Split(addrs, ",") {
		host, port, err := splitHostPort(addr)
		if err != nil {
			return nil, err
		}
		serverConfigs = append(serverConfigs, *constant.NewServerConfig(host, port))
	}
	return serverConfigs, nil
}

// getEnv 从环境变量中读取配置，缺省时返回 fallback。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
