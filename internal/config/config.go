// Package config defines the process-wide flags/environment surface, styled
// on the teacher's cmd/utils flag set: every setting is a cli.Flag with an
// EnvVars fallback, so the same binary works from a flag, an env var, or (in
// production) an orchestrator-injected environment.
package config

import (
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/urfave/cli/v2"
)

// RateLimit is a per-provider three-window rate limit (spec.md §4.1, §6).
type RateLimit struct {
	PerSecond int
	PerMinute int
	PerDay    int
}

// Config is the fully resolved process configuration.
type Config struct {
	MongoURI        string
	APIPort         int
	EtherscanAPIKey string
	GeminiAPIKey    string

	InitialScanMaxTx      int
	RequestTimeout        time.Duration
	ScanInterval          time.Duration
	MaxAttempts           int
	GatewayTickInterval    time.Duration
	WorkerPollInterval    time.Duration
	GatewayLeaseTimeout   time.Duration

	EtherscanRateLimit RateLimit
	AIRateLimit        RateLimit

	RPCURLs map[model.Chain]string

	TelegramBotToken string

	LogFile string
}

var Flags = []cli.Flag{
	&cli.StringFlag{Name: "mongo-uri", EnvVars: []string{"MONGO_URI"}, Value: "mongodb://localhost:27017/sentinel"},
	&cli.IntFlag{Name: "api-port", EnvVars: []string{"API_PORT"}, Value: 8080},
	&cli.StringFlag{Name: "etherscan-api-key", EnvVars: []string{"ETHERSCAN_API_KEY"}},
	&cli.StringFlag{Name: "gemini-api-key", EnvVars: []string{"GEMINI_API_KEY"}},
	&cli.IntFlag{Name: "initial-scan-max-tx", EnvVars: []string{"INITIAL_SCAN_MAX_TX"}, Value: 1000},
	&cli.IntFlag{Name: "request-timeout-seconds", EnvVars: []string{"REQUEST_TIMEOUT_SECONDS"}, Value: 120},
	&cli.IntFlag{Name: "scan-interval-hours", EnvVars: []string{"SCAN_INTERVAL_HOURS"}, Value: 24},
	&cli.IntFlag{Name: "etherscan-rate-limit-second", EnvVars: []string{"ETHERSCAN_RATE_LIMIT_SECOND"}, Value: 4},
	&cli.IntFlag{Name: "etherscan-rate-limit-minute", EnvVars: []string{"ETHERSCAN_RATE_LIMIT_MINUTE"}, Value: 240},
	&cli.IntFlag{Name: "etherscan-rate-limit-day", EnvVars: []string{"ETHERSCAN_RATE_LIMIT_DAY"}, Value: 100000},
	&cli.IntFlag{Name: "ai-rate-limit-second", EnvVars: []string{"AI_RATE_LIMIT_SECOND"}, Value: 1},
	&cli.IntFlag{Name: "ai-rate-limit-minute", EnvVars: []string{"AI_RATE_LIMIT_MINUTE"}, Value: 50},
	&cli.IntFlag{Name: "ai-rate-limit-day", EnvVars: []string{"AI_RATE_LIMIT_DAY"}, Value: 1000},
	&cli.StringFlag{Name: "log-file", EnvVars: []string{"SENTINEL_LOG_FILE"}},
	&cli.StringFlag{Name: "telegram-bot-token", EnvVars: []string{"TELEGRAM_BOT_TOKEN"}},
	&cli.StringFlag{Name: "rpc-url-ethereum", EnvVars: []string{"RPC_URL_ETHEREUM"}},
	&cli.StringFlag{Name: "rpc-url-polygon", EnvVars: []string{"RPC_URL_POLYGON"}},
	&cli.StringFlag{Name: "rpc-url-arbitrum", EnvVars: []string{"RPC_URL_ARBITRUM"}},
	&cli.StringFlag{Name: "rpc-url-base", EnvVars: []string{"RPC_URL_BASE"}},
	&cli.StringFlag{Name: "rpc-url-zksync", EnvVars: []string{"RPC_URL_ZKSYNC"}},
}

// FromContext resolves a Config from a populated cli.Context.
func FromContext(c *cli.Context) *Config {
	return &Config{
		MongoURI:        c.String("mongo-uri"),
		APIPort:         c.Int("api-port"),
		EtherscanAPIKey: c.String("etherscan-api-key"),
		GeminiAPIKey:    c.String("gemini-api-key"),

		InitialScanMaxTx:    c.Int("initial-scan-max-tx"),
		RequestTimeout:      time.Duration(c.Int("request-timeout-seconds")) * time.Second,
		ScanInterval:        time.Duration(c.Int("scan-interval-hours")) * time.Hour,
		MaxAttempts:         3,
		GatewayTickInterval: 200 * time.Millisecond, // ~5 Hz, spec.md §4.1
		WorkerPollInterval:  7 * time.Second,         // spec.md §4.3: 5-10s
		GatewayLeaseTimeout: 5 * time.Minute,          // spec.md §9 reaper lease

		EtherscanRateLimit: RateLimit{
			PerSecond: c.Int("etherscan-rate-limit-second"),
			PerMinute: c.Int("etherscan-rate-limit-minute"),
			PerDay:    c.Int("etherscan-rate-limit-day"),
		},
		AIRateLimit: RateLimit{
			PerSecond: c.Int("ai-rate-limit-second"),
			PerMinute: c.Int("ai-rate-limit-minute"),
			PerDay:    c.Int("ai-rate-limit-day"),
		},
		RPCURLs: map[model.Chain]string{
			model.ChainEthereum: c.String("rpc-url-ethereum"),
			model.ChainPolygon:  c.String("rpc-url-polygon"),
			model.ChainArbitrum: c.String("rpc-url-arbitrum"),
			model.ChainBase:     c.String("rpc-url-base"),
			model.ChainZkSync:   c.String("rpc-url-zksync"),
		},

		TelegramBotToken: c.String("telegram-bot-token"),

		LogFile: c.String("log-file"),
	}
}
